package retriever

import (
	"context"
	"testing"

	"github.com/Malowking/ragpack/core/errors"
	"github.com/Malowking/ragpack/core/vector_store"
	"github.com/cloudwego/eino/components/embedding"
	einoretriever "github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

// panicEmbedder 对特定查询panic，用来验证检索协程的恢复逻辑
type panicEmbedder struct {
	inner   *mockEmbedder
	panicOn string
}

func (e *panicEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	for _, text := range texts {
		if text == e.panicOn {
			panic("embedder exploded")
		}
	}
	return e.inner.EmbedStrings(ctx, texts, opts...)
}

func fusionTestChunks() []*schema.Document {
	return []*schema.Document{
		{ID: "c1", Content: "苹果的营养价值很高"},
		{ID: "c2", Content: "香蕉富含钾元素"},
		{ID: "c3", Content: "今天的天气很不错"},
		{ID: "c4", Content: "苹果手机的价格走势"},
	}
}

func newFusionEmbedder() *mockEmbedder {
	return &mockEmbedder{vocab: []string{"苹果", "香蕉", "价格", "天气"}}
}

func newFusionConfig(embedder embedding.Embedder, collection string) *FusionBackendConfig {
	return &FusionBackendConfig{
		Vector: &VectorBackendConfig{
			Store:      vector_store.NewMemoryStore(),
			Embedder:   embedder,
			Collection: collection,
			TopK:       3,
		},
		BM25:       &BM25BackendConfig{TopK: 3},
		TopK:       2,
		NumQueries: 1,
	}
}

func scoresByID(docs []*schema.Document) map[string]float64 {
	out := make(map[string]float64, len(docs))
	for _, doc := range docs {
		out[doc.ID] = doc.Score()
	}
	return out
}

func TestFuseReciprocalRank(t *testing.T) {
	// 两路结果：A都排第一，B和C各只出现在一路的第二位
	lists := [][]*schema.Document{
		{
			{ID: "A", Content: "内容A"},
			{ID: "B", Content: "内容B"},
		},
		{
			{ID: "A", Content: "内容A"},
			{ID: "C", Content: "内容C"},
		},
	}

	fused := fuseReciprocalRank(lists)
	assert.Len(t, fused, 3)

	scores := scoresByID(fused)
	// 每路都第一的文档拿满分，只出现一次的按排名折算
	assert.InDelta(t, 1.0, scores["A"], 1e-9)
	assert.InDelta(t, 61.0/124.0, scores["B"], 1e-9)
	assert.InDelta(t, 61.0/124.0, scores["C"], 1e-9)
}

func TestFuseReciprocalRankSkipsEmptyList(t *testing.T) {
	// 一路失败为空时，归一化基数仍是两路
	lists := [][]*schema.Document{
		{
			{ID: "A", Content: "内容A"},
		},
		nil,
	}

	fused := fuseReciprocalRank(lists)
	assert.Len(t, fused, 1)
	assert.InDelta(t, 0.5, fused[0].Score(), 1e-9)
}

func TestFuseRelativeScore(t *testing.T) {
	// 同ID不同指针，模拟两路后端各自返回的副本
	lists := [][]*schema.Document{
		{
			(&schema.Document{ID: "A", Content: "内容A"}).WithScore(0.9),
			(&schema.Document{ID: "B", Content: "内容B"}).WithScore(0.1),
		},
		{
			(&schema.Document{ID: "B", Content: "内容B"}).WithScore(0.8),
			(&schema.Document{ID: "C", Content: "内容C"}).WithScore(0.4),
		},
	}

	fused := fuseRelativeScore(lists, 1)
	assert.Len(t, fused, 3)

	scores := scoresByID(fused)
	// 每路min-max归一后等权平均：A和B各是一路的最高分
	assert.InDelta(t, 0.5, scores["A"], 1e-9)
	assert.InDelta(t, 0.5, scores["B"], 1e-9)
	assert.InDelta(t, 0.0, scores["C"], 1e-9)
}

func TestFuseRelativeScoreUniformList(t *testing.T) {
	// 全列表同分时保留满权重，全零列表不产生分数
	lists := [][]*schema.Document{
		{
			(&schema.Document{ID: "A", Content: "内容A"}).WithScore(0.7),
		},
		{
			(&schema.Document{ID: "B", Content: "内容B"}).WithScore(0.0),
		},
	}

	fused := fuseRelativeScore(lists, 1)
	scores := scoresByID(fused)
	assert.InDelta(t, 0.5, scores["A"], 1e-9)
	assert.InDelta(t, 0.0, scores["B"], 1e-9)
}

func TestFusionBackendRetrieve(t *testing.T) {
	ctx := context.Background()

	backend, err := NewFusionBackend(newFusionConfig(newFusionEmbedder(), "fusion_test"))
	assert.NoError(t, err)
	assert.Equal(t, FusionModeReciprocalRerank, backend.Mode())
	assert.NotNil(t, backend.VectorBackend())
	assert.NotNil(t, backend.BM25Backend())

	assert.NoError(t, backend.Build(ctx, fusionTestChunks()))

	results, err := backend.Retrieve(ctx, "苹果的价格")
	assert.NoError(t, err)
	assert.LessOrEqual(t, len(results), 2)
	assert.Len(t, results, 2)

	// c4 在向量和词法两路都排第一，融合后必须领先只被部分命中的c1
	assert.Equal(t, "c4", results[0].ID)
	assert.Equal(t, "c1", results[1].ID)
	assert.Greater(t, results[0].Score(), results[1].Score())
	assert.LessOrEqual(t, results[0].Score(), 1.0)
}

func TestFusionBackendDeterministic(t *testing.T) {
	ctx := context.Background()

	backend, err := NewFusionBackend(newFusionConfig(newFusionEmbedder(), "fusion_det_test"))
	assert.NoError(t, err)
	assert.NoError(t, backend.Build(ctx, fusionTestChunks()))

	first, err := backend.Retrieve(ctx, "苹果的价格")
	assert.NoError(t, err)
	second, err := backend.Retrieve(ctx, "苹果的价格")
	assert.NoError(t, err)

	// 不做查询扩展时结果完全可复现，与协程调度无关
	assert.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Score(), second[i].Score())
	}
}

func TestFusionBackendNumQueriesWithoutRewriter(t *testing.T) {
	ctx := context.Background()

	config := newFusionConfig(newFusionEmbedder(), "fusion_nq_test")
	config.NumQueries = 3 // 没配扩展器时退化为单查询

	backend, err := NewFusionBackend(config)
	assert.NoError(t, err)
	assert.NoError(t, backend.Build(ctx, fusionTestChunks()))

	results, err := backend.Retrieve(ctx, "苹果的价格")
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "c4", results[0].ID)
}

func TestFusionBackendRelativeScoreMode(t *testing.T) {
	ctx := context.Background()

	config := newFusionConfig(newFusionEmbedder(), "fusion_rel_test")
	config.Mode = FusionModeRelativeScore

	backend, err := NewFusionBackend(config)
	assert.NoError(t, err)
	assert.NoError(t, backend.Build(ctx, fusionTestChunks()))

	results, err := backend.Retrieve(ctx, "苹果的价格")
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "c4", results[0].ID)
	for _, doc := range results {
		assert.LessOrEqual(t, doc.Score(), 1.0)
		assert.GreaterOrEqual(t, doc.Score(), 0.0)
	}
}

func TestFusionBackendPartialFailure(t *testing.T) {
	ctx := context.Background()

	// 向量化在查询阶段故障，词法那一路继续服务
	embedder := newFusionEmbedder()
	embedder.failOn = "苹果的价格"

	backend, err := NewFusionBackend(newFusionConfig(embedder, "fusion_partial_test"))
	assert.NoError(t, err)
	assert.NoError(t, backend.Build(ctx, fusionTestChunks()))

	results, err := backend.Retrieve(ctx, "苹果的价格")
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "c4", results[0].ID)
	assert.Equal(t, "c1", results[1].ID)
}

func TestFusionBackendPanicIsolation(t *testing.T) {
	ctx := context.Background()

	embedder := &panicEmbedder{inner: newFusionEmbedder(), panicOn: "苹果的价格"}

	backend, err := NewFusionBackend(newFusionConfig(embedder, "fusion_panic_test"))
	assert.NoError(t, err)
	assert.NoError(t, backend.Build(ctx, fusionTestChunks()))

	// 向量协程panic被恢复，检索退化为词法单路而不是整个进程崩掉
	results, err := backend.Retrieve(ctx, "苹果的价格")
	assert.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "c4", results[0].ID)
}

func TestFusionBackendRetrieveBeforeBuild(t *testing.T) {
	ctx := context.Background()

	backend, err := NewFusionBackend(newFusionConfig(newFusionEmbedder(), "fusion_nobuild_test"))
	assert.NoError(t, err)

	_, err = backend.Retrieve(ctx, "苹果的价格")
	assert.Error(t, err)

	appErr := errors.GetAppError(err)
	assert.NotNil(t, appErr)
	assert.Equal(t, errors.ErrRetrievalFailed, appErr.Code)
}

func TestNewFusionBackendValidation(t *testing.T) {
	t.Run("配置为nil", func(t *testing.T) {
		_, err := NewFusionBackend(nil)
		assert.Error(t, err)
	})

	t.Run("不支持的融合模式", func(t *testing.T) {
		config := newFusionConfig(newFusionEmbedder(), "fusion_mode_test")
		config.Mode = "weighted_sum"
		_, err := NewFusionBackend(config)
		assert.Error(t, err)

		appErr := errors.GetAppError(err)
		assert.NotNil(t, appErr)
		assert.Equal(t, errors.ErrInvalidParameter, appErr.Code)
	})

	t.Run("缺少向量配置", func(t *testing.T) {
		_, err := NewFusionBackend(&FusionBackendConfig{BM25: &BM25BackendConfig{}})
		assert.Error(t, err)
	})
}

func TestFusionBackendAsRetriever(t *testing.T) {
	ctx := context.Background()

	backend, err := NewFusionBackend(newFusionConfig(newFusionEmbedder(), "fusion_adapter_test"))
	assert.NoError(t, err)
	assert.NoError(t, backend.Build(ctx, fusionTestChunks()))

	r := backend.AsRetriever(&RetrieverConfig{TopK: 2})

	results, err := r.Retrieve(ctx, "苹果的价格", einoretriever.WithTopK(1))
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "c4", results[0].ID)
}
