package retriever

import (
	"context"

	"github.com/Malowking/ragpack/core/common"
	"github.com/Malowking/ragpack/core/errors"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
)

// BM25BackendConfig 词法检索后端配置
// K1/B 为0时使用默认参数
type BM25BackendConfig struct {
	TopK int
	K1   float64 // 词频饱和参数 (default: 1.5)
	B    float64 // 长度归一参数 (default: 0.75)
}

// BM25Backend 词法检索后端，倒排统计常驻内存
// 分数按当次检索的最大值归一化到 0-1
type BM25Backend struct {
	params common.BM25Parameters
	topK   int

	scorer *common.BM25Scorer
	chunks map[string]*schema.Document
}

// NewBM25Backend 创建词法检索后端
func NewBM25Backend(config *BM25BackendConfig) (*BM25Backend, error) {
	backend := &BM25Backend{
		params: common.DefaultBM25Parameters(),
		topK:   defaultTopK,
	}
	if config != nil {
		if config.K1 > 0 {
			backend.params.K1 = config.K1
		}
		if config.B > 0 {
			backend.params.B = config.B
		}
		if config.TopK > 0 {
			backend.topK = config.TopK
		}
	}
	return backend, nil
}

// Build 重建倒排统计
func (b *BM25Backend) Build(ctx context.Context, chunks []*schema.Document) error {
	if len(chunks) == 0 {
		return errors.New(errors.ErrEmptyCorpus, "no chunks to index")
	}

	docs := make([]common.BM25Document, len(chunks))
	index := make(map[string]*schema.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = common.BM25Document{ID: chunk.ID, Content: chunk.Content}
		index[chunk.ID] = chunk
	}

	b.scorer = common.NewBM25Scorer(docs, b.params)
	b.chunks = index

	g.Log().Infof(ctx, "bm25 backend built, chunks: %d", len(chunks))
	return nil
}

// Retrieve 按后端默认参数检索
func (b *BM25Backend) Retrieve(ctx context.Context, query string) ([]*schema.Document, error) {
	return b.retrieveWithConfig(ctx, query, nil)
}

// AsRetriever 适配成 eino 检索器
func (b *BM25Backend) AsRetriever(config *RetrieverConfig) retriever.Retriever {
	return newBackendRetriever(b.retrieveWithConfig, config)
}

func (b *BM25Backend) retrieveWithConfig(ctx context.Context, query string, cfg *RetrieverConfig) ([]*schema.Document, error) {
	if b.scorer == nil {
		return nil, errors.New(errors.ErrPackNotBuilt, "bm25 index is not built")
	}

	topK := b.topK
	if cfg != nil && cfg.TopK > 0 {
		topK = cfg.TopK
	}

	scored := common.NormalizeBM25Scores(b.scorer.Score(query))

	// 没有命中任何词项的文档不参与排序
	var results []*schema.Document
	for _, s := range scored {
		if s.Score <= 0 {
			continue
		}
		chunk, ok := b.chunks[s.ID]
		if !ok {
			continue
		}
		doc := common.CloneDocument(chunk)
		doc.WithScore(s.Score)
		results = append(results, doc)
	}

	sortByScore(results)
	results = truncateTopK(results, topK)
	if cfg != nil {
		results = filterByScore(ctx, results, cfg.ScoreThreshold)
	}
	return results, nil
}
