package pack

import (
	"context"
	"fmt"
	"strings"

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

// 混合检索包的默认参数
const (
	defaultFusionChunkSize   = 256
	defaultFusionOverlapSize = 20
	defaultFusionVectorTopK  = 2
	defaultFusionBM25TopK    = 2
	defaultFusionTopK        = 2
	defaultFusionNumQueries  = 4
	defaultFusionCollection  = "hybrid_fusion_pack"
)

// HybridFusionPackConfig 混合检索包配置
// 数值参数为0时使用默认值，负数视为非法
type HybridFusionPackConfig struct {
	ChunkSize   int                 // 分片大小 (default: 256)
	OverlapSize int                 // 分片重叠 (default: 20)
	Mode        retriever.FusionMode // 融合策略 (default: reciprocal_rerank)
	VectorTopK  int                 // 向量召回数量 (default: 2)
	BM25TopK    int                 // 词法召回数量 (default: 2)
	FusionTopK  int                 // 融合后返回数量 (default: 2)
	NumQueries  int                 // 查询总数，含原始查询，1表示关闭查询扩展 (default: 4)
	Collection  string              // 向量集合名

	Store     vector_store.VectorStore
	Embedder  embedding.Embedder
	ChatModel model.BaseChatModel // 问答与查询扩展用，为nil时只能检索
}

func (c *HybridFusionPackConfig) normalize() error {
	if c.Store == nil {
		return errors.New(errors.ErrInvalidParameter, "vector store cannot be nil")
	}
	if c.Embedder == nil {
		return errors.New(errors.ErrInvalidParameter, "embedder cannot be nil")
	}

	if c.ChunkSize < 0 {
		return errors.Newf(errors.ErrInvalidParameter, "chunk_size cannot be negative: %d", c.ChunkSize)
	}
	if c.OverlapSize < 0 {
		return errors.Newf(errors.ErrInvalidParameter, "overlap_size cannot be negative: %d", c.OverlapSize)
	}
	if c.VectorTopK < 0 {
		return errors.Newf(errors.ErrInvalidParameter, "vector_similarity_top_k cannot be negative: %d", c.VectorTopK)
	}
	if c.BM25TopK < 0 {
		return errors.Newf(errors.ErrInvalidParameter, "bm25_similarity_top_k cannot be negative: %d", c.BM25TopK)
	}
	if c.FusionTopK < 0 {
		return errors.Newf(errors.ErrInvalidParameter, "fusion_similarity_top_k cannot be negative: %d", c.FusionTopK)
	}
	if c.NumQueries < 0 {
		return errors.Newf(errors.ErrInvalidParameter, "num_queries cannot be negative: %d", c.NumQueries)
	}

	if c.ChunkSize == 0 {
		c.ChunkSize = defaultFusionChunkSize
	}
	if c.OverlapSize == 0 {
		c.OverlapSize = defaultFusionOverlapSize
	}
	if c.Mode == "" {
		c.Mode = retriever.FusionModeReciprocalRerank
	}
	if !c.Mode.Valid() {
		return errors.Newf(errors.ErrInvalidParameter, "unsupported fusion mode: %s", c.Mode)
	}
	if c.VectorTopK == 0 {
		c.VectorTopK = defaultFusionVectorTopK
	}
	if c.BM25TopK == 0 {
		c.BM25TopK = defaultFusionBM25TopK
	}
	if c.FusionTopK == 0 {
		c.FusionTopK = defaultFusionTopK
	}
	if c.NumQueries == 0 {
		c.NumQueries = defaultFusionNumQueries
	}
	if c.Collection == "" {
		c.Collection = defaultFusionCollection
	}
	if !common.ValidateCollectionName(c.Collection) {
		return errors.Newf(errors.ErrInvalidParameter, "invalid collection name: %s", c.Collection)
	}
	return nil
}

// HybridFusionPack 混合检索包
// 语料切片后同时建向量和词法索引，检索时两路召回按配置的策略融合
type HybridFusionPack struct {
	config     *HybridFusionPackConfig
	fusion     *retriever.FusionBackend
	engine     *engine.QueryEngine
	chunkCount int
}

// NewHybridFusionPack 从已切好的分片构建混合检索包，构造返回即可检索
func NewHybridFusionPack(ctx context.Context, chunks []*schema.Document, config *HybridFusionPackConfig) (*HybridFusionPack, error) {
	if config == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "pack config cannot be nil")
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}

	// 过滤空分片
	valid := make([]*schema.Document, 0, len(chunks))
	for _, c := range chunks {
		if c == nil || strings.TrimSpace(c.Content) == "" {
			continue
		}
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return nil, errors.New(errors.ErrEmptyCorpus, "no content to index: all input chunks are empty")
	}
	chunks = valid

	fusionBackend, err := retriever.NewFusionBackend(&retriever.FusionBackendConfig{
		Vector: &retriever.VectorBackendConfig{
			Store:      config.Store,
			Embedder:   config.Embedder,
			Collection: config.Collection,
			TopK:       config.VectorTopK,
		},
		BM25: &retriever.BM25BackendConfig{
			TopK: config.BM25TopK,
		},
		Mode:       config.Mode,
		TopK:       config.FusionTopK,
		NumQueries: config.NumQueries,
		Rewriter:   retriever.NewQueryRewriter(config.ChatModel),
	})
	if err != nil {
		return nil, err
	}

	if err = fusionBackend.Build(ctx, chunks); err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrPackBuildFailed, err, "build fusion indexes failed")
	}

	queryEngine, err := engine.NewQueryEngine(&engine.QueryEngineConfig{
		Retriever: fusionBackend.AsRetriever(&retriever.RetrieverConfig{TopK: config.FusionTopK}),
		ChatModel: config.ChatModel,
	})
	if err != nil {
		return nil, err
	}

	g.Log().Infof(ctx, "hybrid fusion pack built, chunks: %d, mode: %s, num_queries: %d",
		len(chunks), config.Mode, config.NumQueries)

	return &HybridFusionPack{
		config:     config,
		fusion:     fusionBackend,
		engine:     queryEngine,
		chunkCount: len(chunks),
	}, nil
}

// HybridFusionPackFromDocuments 从原始文档构建混合检索包，
// 按配置的 chunk_size 先切片再建索引
func HybridFusionPackFromDocuments(ctx context.Context, docs []*schema.Document, config *HybridFusionPackConfig) (*HybridFusionPack, error) {
	if config == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "pack config cannot be nil")
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}

	chunks, err := splitDocuments(ctx, docs, config.ChunkSize, config.OverlapSize)
	if err != nil {
		return nil, err
	}

	return NewHybridFusionPack(ctx, chunks, config)
}

// GetModules 暴露内部组件
func (p *HybridFusionPack) GetModules() map[string]any {
	return map[string]any{
		ModuleVectorRetriever: p.fusion.VectorBackend(),
		ModuleBM25Retriever:   p.fusion.BM25Backend(),
		ModuleFusionRetriever: p.fusion,
		ModuleQueryEngine:     p.engine,
	}
}

// Retrieve 融合检索，不生成答案
func (p *HybridFusionPack) Retrieve(ctx context.Context, query string) ([]*schema.Document, error) {
	return p.fusion.Retrieve(ctx, query)
}

// AsRetriever 暴露成 eino Retriever，支持 WithTopK/WithScoreThreshold 覆盖
func (p *HybridFusionPack) AsRetriever() einoretriever.Retriever {
	return p.fusion.AsRetriever(&retriever.RetrieverConfig{TopK: p.config.FusionTopK})
}

// ChunkCount 建索引的分片数
func (p *HybridFusionPack) ChunkCount() int {
	return p.chunkCount
}

// Run 检索并生成答案
func (p *HybridFusionPack) Run(ctx context.Context, query string) (*engine.QueryResult, error) {
	return p.engine.Query(ctx, query)
}

// splitDocuments 逐文档切片，分片ID按文档顺序连续编号
func splitDocuments(ctx context.Context, docs []*schema.Document, chunkSize, overlapSize int) ([]*schema.Document, error) {
	transformer, err := chunk.NewTransformer(ctx, chunkSize, overlapSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create transformer: %w", err)
	}

	var chunks []*schema.Document
	chunkIdx := 0
	for _, doc := range docs {
		if doc == nil || strings.TrimSpace(doc.Content) == "" {
			continue
		}

		pieces, err := transformer.Transform(ctx, []*schema.Document{doc})
		if err != nil {
			return nil, errors.Wrap(errors.ErrDocumentParseFailed, err,
				fmt.Sprintf("failed to split document '%s'", doc.ID))
		}

		for _, piece := range pieces {
			c := &schema.Document{
				ID:       fmt.Sprintf("chunk-%d", chunkIdx),
				Content:  piece.Content,
				MetaData: make(map[string]any),
			}
			// markdown 切片会把标题层级写进元数据，保留
			for k, v := range piece.MetaData {
				c.MetaData[k] = v
			}
			c.MetaData[common.DocumentId] = doc.ID
			chunks = append(chunks, c)
			chunkIdx++
		}
	}

	if len(chunks) == 0 {
		return nil, errors.New(errors.ErrEmptyCorpus, "no content to index: all input documents are empty")
	}
	return chunks, nil
}
