package retriever

import (
	"context"
	"math"
	"sync"

	"github.com/Malowking/ragpack/core/common"
	"github.com/Malowking/ragpack/core/errors"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
	"golang.org/x/sync/errgroup"
)

// rrfK RRF常数
const rrfK = 60.0

// FusionBackendConfig 混合检索后端配置
type FusionBackendConfig struct {
	Vector *VectorBackendConfig
	BM25   *BM25BackendConfig

	Mode       FusionMode     // 融合策略，默认倒数排名融合
	TopK       int            // 融合后返回数量
	NumQueries int            // 查询总数（含原始查询），大于1时启用查询扩展
	Rewriter   *QueryRewriter // 查询扩展器，NumQueries大于1时使用
}

// FusionBackend 混合检索后端
// 每个查询在向量和词法两路各跑一次，结果按融合策略合并
type FusionBackend struct {
	vector     *VectorBackend
	bm25       *BM25Backend
	rewriter   *QueryRewriter
	mode       FusionMode
	topK       int
	numQueries int
}

// NewFusionBackend 创建混合检索后端
func NewFusionBackend(config *FusionBackendConfig) (*FusionBackend, error) {
	if config == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "fusion backend config cannot be nil")
	}

	mode := config.Mode
	if mode == "" {
		mode = FusionModeReciprocalRerank
	}
	if !mode.Valid() {
		return nil, errors.Newf(errors.ErrInvalidParameter, "unsupported fusion mode: %s", mode)
	}

	vector, err := NewVectorBackend(config.Vector)
	if err != nil {
		return nil, err
	}
	bm25, err := NewBM25Backend(config.BM25)
	if err != nil {
		return nil, err
	}

	topK := config.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	numQueries := config.NumQueries
	if numQueries < 1 {
		numQueries = 1
	}

	return &FusionBackend{
		vector:     vector,
		bm25:       bm25,
		rewriter:   config.Rewriter,
		mode:       mode,
		topK:       topK,
		numQueries: numQueries,
	}, nil
}

// Mode 当前融合策略
func (f *FusionBackend) Mode() FusionMode {
	return f.mode
}

// VectorBackend 向量召回那一路
func (f *FusionBackend) VectorBackend() *VectorBackend {
	return f.vector
}

// BM25Backend 词法召回那一路
func (f *FusionBackend) BM25Backend() *BM25Backend {
	return f.bm25
}

// Build 两路后端并行建索引
func (f *FusionBackend) Build(ctx context.Context, chunks []*schema.Document) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return f.vector.Build(egCtx, chunks)
	})
	eg.Go(func() error {
		return f.bm25.Build(egCtx, chunks)
	})
	return eg.Wait()
}

// Retrieve 按后端默认参数检索
func (f *FusionBackend) Retrieve(ctx context.Context, query string) ([]*schema.Document, error) {
	return f.retrieveWithConfig(ctx, query, nil)
}

// AsRetriever 适配成 eino 检索器
func (f *FusionBackend) AsRetriever(config *RetrieverConfig) retriever.Retriever {
	return newBackendRetriever(f.retrieveWithConfig, config)
}

func (f *FusionBackend) retrieveWithConfig(ctx context.Context, query string, cfg *RetrieverConfig) ([]*schema.Document, error) {
	topK := f.topK
	if cfg != nil && cfg.TopK > 0 {
		topK = cfg.TopK
	}

	queries := []string{query}
	if f.numQueries > 1 {
		queries = f.rewriter.GenerateQueries(ctx, query, f.numQueries)
	}

	lists, failures := f.fanOut(ctx, queries)
	if failures == len(lists) {
		return nil, errors.New(errors.ErrRetrievalFailed, "all retrieval passes failed")
	}

	var fused []*schema.Document
	switch f.mode {
	case FusionModeRelativeScore:
		fused = fuseRelativeScore(lists, len(queries))
	default:
		fused = fuseReciprocalRank(lists)
	}

	sortByScore(fused)
	fused = truncateTopK(fused, topK)
	if cfg != nil {
		fused = filterByScore(ctx, fused, cfg.ScoreThreshold)
	}
	return fused, nil
}

// fanOut 每个查询在两路后端上各检索一次
// 结果槽位固定：查询i的向量结果在 2i，词法结果在 2i+1，融合结果与goroutine调度无关
func (f *FusionBackend) fanOut(ctx context.Context, queries []string) ([][]*schema.Document, int) {
	lists := make([][]*schema.Document, len(queries)*2)

	var wg sync.WaitGroup
	var mu sync.Mutex
	failures := 0

	markFailure := func() {
		mu.Lock()
		failures++
		mu.Unlock()
	}

	for i, q := range queries {
		wg.Add(2)
		go func(slot int, query string) {
			defer wg.Done()
			defer common.RecoverPanic(ctx, "fusion vector retrieval")
			docs, err := f.vector.Retrieve(ctx, query)
			if err != nil {
				g.Log().Errorf(ctx, "vector retrieval failed for query [%s]: %v", query, err)
				markFailure()
				return
			}
			lists[slot] = docs
		}(i*2, q)
		go func(slot int, query string) {
			defer wg.Done()
			defer common.RecoverPanic(ctx, "fusion bm25 retrieval")
			docs, err := f.bm25.Retrieve(ctx, query)
			if err != nil {
				g.Log().Errorf(ctx, "bm25 retrieval failed for query [%s]: %v", query, err)
				markFailure()
				return
			}
			lists[slot] = docs
		}(i*2+1, q)
	}
	wg.Wait()

	return lists, failures
}

// fuseReciprocalRank 倒数排名融合
// RRF公式: score = sum(1/(k+rank)), k通常为60
func fuseReciprocalRank(lists [][]*schema.Document) []*schema.Document {
	rrfScores := make(map[string]float64) // docID -> RRF score
	docMap := make(map[string]*schema.Document)

	for _, list := range lists {
		for rank, doc := range list {
			rrfScores[doc.ID] += 1.0 / (rrfK + float64(rank+1))
			if _, exists := docMap[doc.ID]; !exists {
				docMap[doc.ID] = doc
			}
		}
	}

	// 归一化RRF分数到0-1范围
	// 最大可能分数是 len(lists)/(k+1)（每一路都排第一）
	maxPossibleScore := float64(len(lists)) / (rrfK + 1.0)

	docs := make([]*schema.Document, 0, len(docMap))
	for docID, doc := range docMap {
		normalizedScore := math.Min(rrfScores[docID]/maxPossibleScore, 1.0)
		doc.WithScore(normalizedScore)
		docs = append(docs, doc)
	}
	return docs
}

// fuseRelativeScore 相对得分融合
// 每路结果先做 min-max 归一，两路后端等权，再除以查询遍数，同ID的分数累加
func fuseRelativeScore(lists [][]*schema.Document, numQueries int) []*schema.Document {
	if numQueries < 1 {
		numQueries = 1
	}
	const numBackends = 2.0
	weight := 1.0 / (numBackends * float64(numQueries))

	scores := make(map[string]float64)
	docMap := make(map[string]*schema.Document)

	for _, list := range lists {
		if len(list) == 0 {
			continue
		}

		minScore, maxScore := list[0].Score(), list[0].Score()
		for _, doc := range list[1:] {
			s := doc.Score()
			if s < minScore {
				minScore = s
			}
			if s > maxScore {
				maxScore = s
			}
		}

		for _, doc := range list {
			var norm float64
			if maxScore > minScore {
				norm = (doc.Score() - minScore) / (maxScore - minScore)
			} else if maxScore > 0 {
				// 全列表同分时保留满权重
				norm = 1.0
			}
			scores[doc.ID] += norm * weight
			if _, exists := docMap[doc.ID]; !exists {
				docMap[doc.ID] = doc
			}
		}
	}

	docs := make([]*schema.Document, 0, len(docMap))
	for docID, doc := range docMap {
		doc.WithScore(math.Min(scores[docID], 1.0))
		docs = append(docs, doc)
	}
	return docs
}
