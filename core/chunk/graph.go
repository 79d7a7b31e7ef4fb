package chunk

import (
	"context"
	"fmt"
	"strings"

	"github.com/Malowking/ragpack/core/common"
	"github.com/Malowking/ragpack/core/errors"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"
)

// NodeGraphBuilder 把原始文档切成父子两层分片
// 父分片是粗粒度上下文单元，子分片是细粒度检索单元，按稳定ID互相引用
type NodeGraphBuilder struct {
	ParentChunkSize int
	ChildChunkSizes []int
}

// NodeGraph 构建结果
// Parents 按文档顺序编号，Children 的元数据里带父节点引用
type NodeGraph struct {
	Parents  []*schema.Document
	Children []*schema.Document
	Arena    *NodeArena
}

// IndexableNodes 返回应该进向量索引的全部节点
// 除了子分片，父分片自身也参与索引，引用指向自己，粗粒度命中时直接返回原文
func (ng *NodeGraph) IndexableNodes() []*schema.Document {
	nodes := make([]*schema.Document, 0, len(ng.Children)+len(ng.Parents))
	nodes = append(nodes, ng.Children...)
	nodes = append(nodes, ng.Parents...)
	return nodes
}

// Build 构建节点图
// 父分片ID形如 node-0、node-1，跨文档连续编号，顺序与输入文档顺序一致
func (b *NodeGraphBuilder) Build(ctx context.Context, docs []*schema.Document) (*NodeGraph, error) {
	if b.ParentChunkSize <= 0 {
		return nil, errors.New(errors.ErrInvalidParameter, "parent chunk size must be positive")
	}
	if len(b.ChildChunkSizes) == 0 {
		return nil, errors.New(errors.ErrInvalidParameter, "at least one child chunk size is required")
	}

	parentSplitter, err := newSizeSplitter(ctx, b.ParentChunkSize, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create parent splitter: %w", err)
	}

	childSplitters := make(map[int]document.Transformer, len(b.ChildChunkSizes))
	for _, size := range b.ChildChunkSizes {
		if size <= 0 {
			return nil, errors.Newf(errors.ErrInvalidParameter, "invalid child chunk size: %d", size)
		}
		splitter, err := newSizeSplitter(ctx, size, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to create child splitter for size %d: %w", size, err)
		}
		childSplitters[size] = splitter
	}

	graph := &NodeGraph{Arena: NewNodeArena()}
	parentIndex := 0

	for _, doc := range docs {
		if doc == nil || strings.TrimSpace(doc.Content) == "" {
			continue
		}

		// 每个文档单独切分，保证父分片编号与文档顺序一致
		pieces, err := parentSplitter.Transform(ctx, []*schema.Document{{Content: doc.Content}})
		if err != nil {
			return nil, fmt.Errorf("failed to split document '%s': %w", doc.ID, err)
		}

		for localIdx, piece := range pieces {
			parent := &schema.Document{
				ID:       fmt.Sprintf("node-%d", parentIndex),
				Content:  piece.Content,
				MetaData: make(map[string]any),
			}
			for k, v := range doc.MetaData {
				parent.MetaData[k] = v
			}
			parent.MetaData[common.DocumentId] = doc.ID
			parent.MetaData[common.MetaChunkIndex] = localIdx
			parent.MetaData[common.MetaChunkSize] = b.ParentChunkSize
			// 父分片引用自己，检索命中时走同一条解析路径
			parent.MetaData[common.MetaParentId] = parent.ID

			graph.Parents = append(graph.Parents, parent)
			graph.Arena.Add(parent)
			parentIndex++
		}
	}

	if len(graph.Parents) == 0 {
		return nil, errors.New(errors.ErrEmptyCorpus, "no content to index: all input documents are empty")
	}

	for _, parent := range graph.Parents {
		for _, size := range b.ChildChunkSizes {
			pieces, err := childSplitters[size].Transform(ctx, []*schema.Document{{Content: parent.Content}})
			if err != nil {
				return nil, fmt.Errorf("failed to split parent '%s' at size %d: %w", parent.ID, size, err)
			}

			for childIdx, piece := range pieces {
				child := &schema.Document{
					ID:       fmt.Sprintf("%s-%d-%d", parent.ID, size, childIdx),
					Content:  piece.Content,
					MetaData: make(map[string]any),
				}
				child.MetaData[common.MetaParentId] = parent.ID
				child.MetaData[common.MetaChunkSize] = size
				child.MetaData[common.MetaChunkIndex] = childIdx
				if docID, ok := parent.MetaData[common.DocumentId]; ok {
					child.MetaData[common.DocumentId] = docID
				}

				graph.Children = append(graph.Children, child)
				graph.Arena.Add(child)
			}
		}
	}

	return graph, nil
}
