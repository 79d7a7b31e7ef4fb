package chunk

import (
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestNodeArenaAddGet(t *testing.T) {
	arena := NewNodeArena()

	arena.Add(&schema.Document{ID: "node-0", Content: "父分片内容"})
	arena.Add(&schema.Document{ID: "node-1", Content: "另一个父分片"})

	if arena.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", arena.Len())
	}

	doc, ok := arena.Get("node-0")
	if !ok {
		t.Fatal("node-0 should exist")
	}
	if doc.Content != "父分片内容" {
		t.Errorf("Get(node-0).Content = %q, want %q", doc.Content, "父分片内容")
	}

	if _, ok := arena.Get("node-99"); ok {
		t.Error("node-99 should not exist")
	}
}

func TestNodeArenaSkipInvalid(t *testing.T) {
	arena := NewNodeArena()

	// nil 和空ID的节点直接忽略
	arena.Add(nil)
	arena.Add(&schema.Document{ID: "", Content: "没有ID"})

	if arena.Len() != 0 {
		t.Errorf("Len() = %d, want 0", arena.Len())
	}
}

func TestNodeArenaOverwrite(t *testing.T) {
	arena := NewNodeArena()

	arena.Add(&schema.Document{ID: "node-0", Content: "旧内容"})
	arena.Add(&schema.Document{ID: "node-1", Content: "中间节点"})
	// 同ID覆盖旧值，注册顺序保持第一次的位置
	arena.Add(&schema.Document{ID: "node-0", Content: "新内容"})

	if arena.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", arena.Len())
	}

	doc, _ := arena.Get("node-0")
	if doc.Content != "新内容" {
		t.Errorf("Get(node-0).Content = %q, want %q", doc.Content, "新内容")
	}

	ids := arena.IDs()
	if len(ids) != 2 || ids[0] != "node-0" || ids[1] != "node-1" {
		t.Errorf("IDs() = %v, want [node-0 node-1]", ids)
	}
}

func TestNodeArenaIDsCopy(t *testing.T) {
	arena := NewNodeArena()
	arena.Add(&schema.Document{ID: "node-0", Content: "内容"})

	// 返回的切片是副本，修改不影响内部状态
	ids := arena.IDs()
	ids[0] = "tampered"

	fresh := arena.IDs()
	if fresh[0] != "node-0" {
		t.Errorf("IDs() after tamper = %v, want [node-0]", fresh)
	}
}
