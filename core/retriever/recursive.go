package retriever

import (
	"context"

	"github.com/Malowking/ragpack/core/chunk"
	"github.com/Malowking/ragpack/core/common"
	"github.com/Malowking/ragpack/core/errors"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
)

// RecursiveRetrieverConfig 小到大检索配置
type RecursiveRetrieverConfig struct {
	Backend Backend          // 细粒度召回用的底层后端
	Arena   *chunk.NodeArena // 引用解析用的节点池
	TopK    int              // 解析后的返回数量
}

// RecursiveRetriever 小到大检索
// 先在细粒度子分片上召回，再沿元数据里的引用换回粗粒度父分片
// 同一父分片被多个子分片命中时只保留一次，分数取命中子分片的最高分
type RecursiveRetriever struct {
	backend Backend
	arena   *chunk.NodeArena
	topK    int
}

// NewRecursiveRetriever 创建小到大检索器
func NewRecursiveRetriever(config *RecursiveRetrieverConfig) (*RecursiveRetriever, error) {
	if config == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "recursive retriever config cannot be nil")
	}
	if config.Backend == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "backend cannot be nil")
	}
	if config.Arena == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "node arena cannot be nil")
	}

	topK := config.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	return &RecursiveRetriever{
		backend: config.Backend,
		arena:   config.Arena,
		topK:    topK,
	}, nil
}

// Build 在底层后端上建索引
func (r *RecursiveRetriever) Build(ctx context.Context, chunks []*schema.Document) error {
	return r.backend.Build(ctx, chunks)
}

// Retrieve 按默认参数检索
func (r *RecursiveRetriever) Retrieve(ctx context.Context, query string) ([]*schema.Document, error) {
	return r.retrieveWithConfig(ctx, query, nil)
}

// AsRetriever 适配成 eino 检索器
func (r *RecursiveRetriever) AsRetriever(config *RetrieverConfig) retriever.Retriever {
	return newBackendRetriever(r.retrieveWithConfig, config)
}

func (r *RecursiveRetriever) retrieveWithConfig(ctx context.Context, query string, cfg *RetrieverConfig) ([]*schema.Document, error) {
	topK := r.topK
	if cfg != nil && cfg.TopK > 0 {
		topK = cfg.TopK
	}

	hits, err := r.backend.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	// 命中结果已按分数降序，同一父分片第一次出现时携带的就是最高分
	seen := make(map[string]bool)
	resolved := make([]*schema.Document, 0, len(hits))

	appendOnce := func(doc *schema.Document) {
		if seen[doc.ID] {
			return
		}
		seen[doc.ID] = true
		resolved = append(resolved, doc)
	}

	for _, hit := range hits {
		parentID, _ := hit.MetaData[common.MetaParentId].(string)
		if parentID == "" {
			// 没有引用的命中原样返回
			appendOnce(hit)
			continue
		}

		parent, ok := r.arena.Get(parentID)
		if !ok {
			// 引用悬空：告警后降级返回子分片本身，不中断检索
			g.Log().Warningf(ctx, "parent node '%s' referenced by chunk '%s' not found, returning the chunk itself", parentID, hit.ID)
			appendOnce(hit)
			continue
		}

		if seen[parent.ID] {
			continue
		}
		doc := common.CloneDocument(parent)
		doc.WithScore(hit.Score())
		appendOnce(doc)
	}

	resolved = truncateTopK(resolved, topK)
	if cfg != nil {
		resolved = filterByScore(ctx, resolved, cfg.ScoreThreshold)
	}
	return resolved, nil
}
