package pack

import (
	"context"

	"github.com/Malowking/ragpack/core/engine"
)

// 模块名，GetModules 返回的map以这些为键
const (
	ModuleVectorRetriever    = "vector_retriever"
	ModuleBM25Retriever      = "bm25_retriever"
	ModuleFusionRetriever    = "fusion_retriever"
	ModuleRecursiveRetriever = "recursive_retriever"
	ModuleQueryEngine        = "query_engine"
	ModuleLLM                = "llm"
	ModuleEmbedModel         = "embed_model"
	ModuleNodeArena          = "node_arena"
)

// Pack 检索包的公共面
// 构造即完成建库，GetModules 暴露内部组件给调用方自由组合，Run 执行端到端问答
type Pack interface {
	GetModules() map[string]any
	Run(ctx context.Context, query string) (*engine.QueryResult, error)
}
