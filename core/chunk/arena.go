package chunk

import (
	"github.com/cloudwego/eino/schema"
)

// NodeArena 节点池，按稳定ID存放分片
// 构建阶段写入，检索阶段只读，没有并发写入场景
type NodeArena struct {
	nodes map[string]*schema.Document
	order []string
}

func NewNodeArena() *NodeArena {
	return &NodeArena{
		nodes: make(map[string]*schema.Document),
	}
}

// Add 注册节点，ID重复时覆盖旧值但不重复记录顺序
func (a *NodeArena) Add(doc *schema.Document) {
	if doc == nil || doc.ID == "" {
		return
	}
	if _, exists := a.nodes[doc.ID]; !exists {
		a.order = append(a.order, doc.ID)
	}
	a.nodes[doc.ID] = doc
}

// Get 按ID取节点
func (a *NodeArena) Get(id string) (*schema.Document, bool) {
	doc, ok := a.nodes[id]
	return doc, ok
}

// Len 节点总数
func (a *NodeArena) Len() int {
	return len(a.nodes)
}

// IDs 按注册顺序返回所有节点ID
func (a *NodeArena) IDs() []string {
	ids := make([]string, len(a.order))
	copy(ids, a.order)
	return ids
}
