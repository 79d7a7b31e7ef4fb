package retriever

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Malowking/ragpack/core/errors"
	"github.com/Malowking/ragpack/core/vector_store"
	"github.com/cloudwego/eino/components/embedding"
	einoretriever "github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

// mockEmbedder 词频向量化器，向量第i维是词表第i个词在文本里出现的次数
// 结果完全确定，适合离线测试相似度排序
type mockEmbedder struct {
	vocab  []string
	failOn string // 等于该文本时返回错误，用来模拟向量化服务故障
}

func (e *mockEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	vectors := make([][]float64, 0, len(texts))
	for _, text := range texts {
		if e.failOn != "" && text == e.failOn {
			return nil, fmt.Errorf("embedding service unavailable")
		}
		vec := make([]float64, len(e.vocab))
		for i, term := range e.vocab {
			vec[i] = float64(strings.Count(text, term))
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

// brokenEmbedder 返回的向量数量和输入文本数量不一致
type brokenEmbedder struct{}

func (brokenEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	return [][]float64{{1, 0}, {0, 1}}, nil
}

func newFruitEmbedder() *mockEmbedder {
	return &mockEmbedder{vocab: []string{"苹果", "香蕉", "天气"}}
}

func vectorTestChunks() []*schema.Document {
	return []*schema.Document{
		{ID: "v1", Content: "苹果的营养价值"},
		{ID: "v2", Content: "香蕉的产地分布"},
		{ID: "v3", Content: "今天天气不错"},
	}
}

func TestNewVectorBackendValidation(t *testing.T) {
	store := vector_store.NewMemoryStore()
	embedder := newFruitEmbedder()

	tests := []struct {
		name   string
		config *VectorBackendConfig
	}{
		{name: "配置为nil", config: nil},
		{name: "缺少向量库", config: &VectorBackendConfig{Embedder: embedder, Collection: "c"}},
		{name: "缺少向量化模型", config: &VectorBackendConfig{Store: store, Collection: "c"}},
		{name: "集合名为空", config: &VectorBackendConfig{Store: store, Embedder: embedder}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVectorBackend(tt.config)
			assert.Error(t, err)

			appErr := errors.GetAppError(err)
			assert.NotNil(t, appErr)
			assert.Equal(t, errors.ErrInvalidParameter, appErr.Code)
		})
	}
}

func TestVectorBackendBuildAndRetrieve(t *testing.T) {
	ctx := context.Background()

	backend, err := NewVectorBackend(&VectorBackendConfig{
		Store:      vector_store.NewMemoryStore(),
		Embedder:   newFruitEmbedder(),
		Collection: "vector_backend_test",
	})
	assert.NoError(t, err)
	assert.NoError(t, backend.Build(ctx, vectorTestChunks()))

	results, err := backend.Retrieve(ctx, "苹果")
	assert.NoError(t, err)
	assert.Len(t, results, 3)

	// 与查询同向的分片分数最高
	assert.Equal(t, "v1", results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score(), 1e-9)
	assert.Greater(t, results[0].Score(), results[1].Score())
}

func TestVectorBackendTopK(t *testing.T) {
	ctx := context.Background()

	backend, err := NewVectorBackend(&VectorBackendConfig{
		Store:      vector_store.NewMemoryStore(),
		Embedder:   newFruitEmbedder(),
		Collection: "vector_topk_test",
		TopK:       1,
	})
	assert.NoError(t, err)
	assert.NoError(t, backend.Build(ctx, vectorTestChunks()))

	results, err := backend.Retrieve(ctx, "苹果")
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "v1", results[0].ID)
}

func TestVectorBackendRebuild(t *testing.T) {
	ctx := context.Background()

	backend, err := NewVectorBackend(&VectorBackendConfig{
		Store:      vector_store.NewMemoryStore(),
		Embedder:   newFruitEmbedder(),
		Collection: "vector_rebuild_test",
	})
	assert.NoError(t, err)
	assert.NoError(t, backend.Build(ctx, vectorTestChunks()))

	// 重新构建会丢弃旧集合，不会出现新旧数据混在一起
	assert.NoError(t, backend.Build(ctx, []*schema.Document{
		{ID: "v9", Content: "苹果的新品种介绍"},
	}))

	results, err := backend.Retrieve(ctx, "苹果")
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "v9", results[0].ID)
}

func TestVectorBackendBuildEmpty(t *testing.T) {
	ctx := context.Background()

	backend, err := NewVectorBackend(&VectorBackendConfig{
		Store:      vector_store.NewMemoryStore(),
		Embedder:   newFruitEmbedder(),
		Collection: "vector_empty_test",
	})
	assert.NoError(t, err)

	err = backend.Build(ctx, nil)
	assert.Error(t, err)

	appErr := errors.GetAppError(err)
	assert.NotNil(t, appErr)
	assert.Equal(t, errors.ErrEmptyCorpus, appErr.Code)
}

func TestVectorBackendQueryEmbeddingFails(t *testing.T) {
	ctx := context.Background()

	embedder := newFruitEmbedder()
	embedder.failOn = "苹果"

	backend, err := NewVectorBackend(&VectorBackendConfig{
		Store:      vector_store.NewMemoryStore(),
		Embedder:   embedder,
		Collection: "vector_fail_test",
	})
	assert.NoError(t, err)
	assert.NoError(t, backend.Build(ctx, vectorTestChunks()))

	_, err = backend.Retrieve(ctx, "苹果")
	assert.Error(t, err)

	appErr := errors.GetAppError(err)
	assert.NotNil(t, appErr)
	assert.Equal(t, errors.ErrEmbeddingFailed, appErr.Code)
}

func TestVectorBackendBadEmbedderLength(t *testing.T) {
	ctx := context.Background()

	backend, err := NewVectorBackend(&VectorBackendConfig{
		Store:      vector_store.NewMemoryStore(),
		Embedder:   brokenEmbedder{},
		Collection: "vector_broken_test",
	})
	assert.NoError(t, err)

	// 两个分片刚好对上brokenEmbedder的两个向量，建库能通过
	assert.NoError(t, backend.Build(ctx, []*schema.Document{
		{ID: "v1", Content: "内容一"},
		{ID: "v2", Content: "内容二"},
	}))

	// 单条查询却拿回两个向量，属于向量化结果异常
	_, err = backend.Retrieve(ctx, "查询")
	assert.Error(t, err)

	appErr := errors.GetAppError(err)
	assert.NotNil(t, appErr)
	assert.Equal(t, errors.ErrEmbeddingFailed, appErr.Code)
}

func TestVectorBackendAsRetriever(t *testing.T) {
	ctx := context.Background()

	backend, err := NewVectorBackend(&VectorBackendConfig{
		Store:      vector_store.NewMemoryStore(),
		Embedder:   newFruitEmbedder(),
		Collection: "vector_adapter_test",
	})
	assert.NoError(t, err)
	assert.NoError(t, backend.Build(ctx, vectorTestChunks()))

	r := backend.AsRetriever(&RetrieverConfig{TopK: 3})

	results, err := r.Retrieve(ctx, "苹果", einoretriever.WithTopK(1))
	assert.NoError(t, err)
	assert.Len(t, results, 1)

	// 无关分片的归一化分数是0.5，阀值0.9只留下同向分片
	results, err = r.Retrieve(ctx, "苹果", einoretriever.WithScoreThreshold(0.9))
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "v1", results[0].ID)
}
