package retriever

import (
	"context"

	"github.com/Malowking/ragpack/core/errors"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
)

// BackendKind 检索后端类型
type BackendKind string

const (
	// BackendKindVector 向量相似度检索
	BackendKindVector BackendKind = "vector"
	// BackendKindBM25 词法检索
	BackendKindBM25 BackendKind = "bm25"
	// BackendKindFusion 向量+词法混合检索
	BackendKindFusion BackendKind = "fusion"
)

// Backend 统一的检索后端
// Build 建索引，Retrieve 按后端默认参数检索，AsRetriever 适配成 eino 检索器给上层编排用
type Backend interface {
	Build(ctx context.Context, chunks []*schema.Document) error
	Retrieve(ctx context.Context, query string) ([]*schema.Document, error)
	AsRetriever(config *RetrieverConfig) retriever.Retriever
}

// BackendConfig 带类型标签的后端配置，Kind 决定哪个分支生效
type BackendConfig struct {
	Kind   BackendKind
	Vector *VectorBackendConfig
	BM25   *BM25BackendConfig
	Fusion *FusionBackendConfig
}

// NewBackend 根据配置创建检索后端
func NewBackend(ctx context.Context, config *BackendConfig) (Backend, error) {
	if config == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "backend config cannot be nil")
	}

	switch config.Kind {
	case BackendKindVector:
		return NewVectorBackend(config.Vector)
	case BackendKindBM25:
		return NewBM25Backend(config.BM25)
	case BackendKindFusion:
		return NewFusionBackend(config.Fusion)
	default:
		return nil, errors.Newf(errors.ErrInvalidParameter, "unsupported backend kind: %s", config.Kind)
	}
}

// backendRetriever 把后端包装成 eino 的 retriever.Retriever
// 调用方通过 retriever.WithTopK 等选项覆盖基础配置
type backendRetriever struct {
	retrieve func(ctx context.Context, query string, cfg *RetrieverConfig) ([]*schema.Document, error)
	base     *RetrieverConfig
}

func newBackendRetriever(
	retrieve func(ctx context.Context, query string, cfg *RetrieverConfig) ([]*schema.Document, error),
	base *RetrieverConfig,
) retriever.Retriever {
	return &backendRetriever{retrieve: retrieve, base: base}
}

func (r *backendRetriever) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	cfg := &RetrieverConfig{}
	if r.base != nil {
		*cfg = *r.base
	}

	baseOptions := &retriever.Options{
		ScoreThreshold: cfg.ScoreThreshold,
	}
	if cfg.TopK > 0 {
		baseOptions.TopK = &cfg.TopK
	}
	options := retriever.GetCommonOptions(baseOptions, opts...)
	if options.TopK != nil {
		cfg.TopK = *options.TopK
	}
	cfg.ScoreThreshold = options.ScoreThreshold

	return r.retrieve(ctx, query, cfg)
}
