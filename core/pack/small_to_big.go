package pack

import (
	"context"

	"github.com/Malowking/ragpack/core/chunk"
	"github.com/Malowking/ragpack/core/common"
	"github.com/Malowking/ragpack/core/engine"
	"github.com/Malowking/ragpack/core/errors"
	"github.com/Malowking/ragpack/core/retriever"
	"github.com/Malowking/ragpack/core/vector_store"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	einoretriever "github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
)

// 小到大检索包的固定分片策略
// 父分片1024，子分片三档，细粒度召回、粗粒度返回
const (
	smallToBigParentChunkSize = 1024
	defaultSmallToBigTopK     = 2
	defaultSmallToBigColl     = "small_to_big_pack"
)

var smallToBigChildSizes = []int{128, 256, 512}

// SmallToBigPackConfig 小到大检索包配置
type SmallToBigPackConfig struct {
	TopK       int    // 检索数量 (default: 2)
	Collection string // 向量集合名

	Store     vector_store.VectorStore
	Embedder  embedding.Embedder
	ChatModel model.BaseChatModel // 问答用，为nil时只能检索
}

func (c *SmallToBigPackConfig) normalize() error {
	if c.Store == nil {
		return errors.New(errors.ErrInvalidParameter, "vector store cannot be nil")
	}
	if c.Embedder == nil {
		return errors.New(errors.ErrInvalidParameter, "embedder cannot be nil")
	}
	if c.TopK < 0 {
		return errors.Newf(errors.ErrInvalidParameter, "similarity_top_k cannot be negative: %d", c.TopK)
	}
	if c.TopK == 0 {
		c.TopK = defaultSmallToBigTopK
	}
	if c.Collection == "" {
		c.Collection = defaultSmallToBigColl
	}
	if !common.ValidateCollectionName(c.Collection) {
		return errors.Newf(errors.ErrInvalidParameter, "invalid collection name: %s", c.Collection)
	}
	return nil
}

// SmallToBigPack 小到大检索包
// 文档先切成父分片再切成多档子分片，全部进向量索引
// 检索命中子分片后沿引用换回父分片，返回完整上下文
type SmallToBigPack struct {
	config    *SmallToBigPackConfig
	graph     *chunk.NodeGraph
	vector    *retriever.VectorBackend
	recursive *retriever.RecursiveRetriever
	engine    *engine.QueryEngine
}

// NewSmallToBigPack 从文档构建小到大检索包，构造返回即可检索
func NewSmallToBigPack(ctx context.Context, docs []*schema.Document, config *SmallToBigPackConfig) (*SmallToBigPack, error) {
	if config == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "pack config cannot be nil")
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}

	builder := &chunk.NodeGraphBuilder{
		ParentChunkSize: smallToBigParentChunkSize,
		ChildChunkSizes: smallToBigChildSizes,
	}
	graph, err := builder.Build(ctx, docs)
	if err != nil {
		return nil, err
	}

	vectorBackend, err := retriever.NewVectorBackend(&retriever.VectorBackendConfig{
		Store:      config.Store,
		Embedder:   config.Embedder,
		Collection: config.Collection,
		TopK:       config.TopK,
	})
	if err != nil {
		return nil, err
	}

	if err = vectorBackend.Build(ctx, graph.IndexableNodes()); err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrPackBuildFailed, err, "build vector index failed")
	}

	recursiveRetriever, err := retriever.NewRecursiveRetriever(&retriever.RecursiveRetrieverConfig{
		Backend: vectorBackend,
		Arena:   graph.Arena,
		TopK:    config.TopK,
	})
	if err != nil {
		return nil, err
	}

	queryEngine, err := engine.NewQueryEngine(&engine.QueryEngineConfig{
		Retriever: recursiveRetriever.AsRetriever(nil),
		ChatModel: config.ChatModel,
	})
	if err != nil {
		return nil, err
	}

	g.Log().Infof(ctx, "small to big pack built, parents: %d, children: %d",
		len(graph.Parents), len(graph.Children))

	return &SmallToBigPack{
		config:    config,
		graph:     graph,
		vector:    vectorBackend,
		recursive: recursiveRetriever,
		engine:    queryEngine,
	}, nil
}

// GetModules 暴露内部组件
func (p *SmallToBigPack) GetModules() map[string]any {
	return map[string]any{
		ModuleRecursiveRetriever: p.recursive,
		ModuleVectorRetriever:    p.vector,
		ModuleQueryEngine:        p.engine,
		ModuleLLM:                p.config.ChatModel,
		ModuleEmbedModel:         p.config.Embedder,
		ModuleNodeArena:          p.graph.Arena,
	}
}

// Retrieve 小到大检索，不生成答案
func (p *SmallToBigPack) Retrieve(ctx context.Context, query string) ([]*schema.Document, error) {
	return p.recursive.Retrieve(ctx, query)
}

// AsRetriever 暴露成 eino Retriever，支持 WithTopK/WithScoreThreshold 覆盖
func (p *SmallToBigPack) AsRetriever() einoretriever.Retriever {
	return p.recursive.AsRetriever(&retriever.RetrieverConfig{TopK: p.config.TopK})
}

// Run 检索并生成答案
func (p *SmallToBigPack) Run(ctx context.Context, query string) (*engine.QueryResult, error) {
	return p.engine.Query(ctx, query)
}

// NodeGraph 构建出的父子分片图
func (p *SmallToBigPack) NodeGraph() *chunk.NodeGraph {
	return p.graph
}
