package indexer

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/Malowking/ragpack/core/errors"
	"github.com/Malowking/ragpack/core/vector_store"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
)

// VectorStoreEmbedder 向量化入库器，支持重试和并发
type VectorStoreEmbedder struct {
	embedder    embedding.Embedder
	vectorStore vector_store.VectorStore
}

// BatchInfo 批次信息
type BatchInfo struct {
	Index  int
	Start  int
	End    int
	Chunks []*schema.Document
	Texts  []string
}

// BatchResult 批次结果
type BatchResult struct {
	BatchIndex int
	ChunkIds   []string
	Error      error
}

// NewVectorStoreEmbedder 创建向量化入库器
func NewVectorStoreEmbedder(embedder embedding.Embedder, store vector_store.VectorStore) (*VectorStoreEmbedder, error) {
	if embedder == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "embedder cannot be nil")
	}
	if store == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "vector store cannot be nil")
	}

	return &VectorStoreEmbedder{
		embedder:    embedder,
		vectorStore: store,
	}, nil
}

// EmbedAndStore 分批向量化并写入向量库，返回全部chunk ID
func (v *VectorStoreEmbedder) EmbedAndStore(ctx context.Context, collectionName string, chunks []*schema.Document) ([]string, error) {
	if len(chunks) == 0 {
		return []string{}, nil
	}

	// 配置参数（可以根据需要调整）
	const (
		batchSize    = 30               // 每批30个文本（避免API限制）
		concurrency  = 3                // 3个并发（避免API限流）
		maxRetries   = 5                // 最大重试次数
		initialDelay = 1 * time.Second  // 初始延迟
		maxDelay     = 30 * time.Second // 最大延迟
		multiplier   = 2.0              // 指数退避倍数
	)

	g.Log().Infof(ctx, "Starting vectorization of %d chunks (BatchSize: %d, Concurrency: %d)",
		len(chunks), batchSize, concurrency)

	// 1. 分批处理
	batches := v.createBatches(chunks, batchSize)

	// 2. 并发处理批次
	resultChan := make(chan BatchResult, len(batches))
	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, batch := range batches {
		wg.Add(1)
		go func(b BatchInfo) {
			defer wg.Done()

			// 获取并发许可
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			vectors, err := v.embedTextsWithRetry(ctx, b.Texts, maxRetries, initialDelay, maxDelay, multiplier)
			if err != nil {
				resultChan <- BatchResult{
					BatchIndex: b.Index,
					Error:      errors.Newf(errors.ErrEmbeddingFailed, "batch %d failed: %v", b.Index, err),
				}
				return
			}

			// 存储到向量数据库
			chunkIds, err := v.vectorStore.InsertVectors(ctx, collectionName, b.Chunks, vectors)
			if err != nil {
				resultChan <- BatchResult{
					BatchIndex: b.Index,
					Error:      errors.Newf(errors.ErrVectorInsert, "batch %d storage failed: %v", b.Index, err),
				}
				return
			}

			resultChan <- BatchResult{
				BatchIndex: b.Index,
				ChunkIds:   chunkIds,
			}
		}(batch)
	}

	// 等待所有批次完成
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// 3. 收集结果
	batchResults := make([]BatchResult, len(batches))
	for result := range resultChan {
		if result.Error != nil {
			return nil, result.Error
		}
		batchResults[result.BatchIndex] = result
	}

	// 4. 按顺序组装结果
	allChunkIds := make([]string, 0, len(chunks))
	for _, batch := range batches {
		allChunkIds = append(allChunkIds, batchResults[batch.Index].ChunkIds...)
	}

	g.Log().Infof(ctx, "Vectorization completed, total chunks: %d", len(allChunkIds))
	return allChunkIds, nil
}

// createBatches 创建批次
func (v *VectorStoreEmbedder) createBatches(chunks []*schema.Document, batchSize int) []BatchInfo {
	var batches []BatchInfo
	batchCount := int(math.Ceil(float64(len(chunks)) / float64(batchSize)))

	for i := 0; i < batchCount; i++ {
		start := i * batchSize
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batchChunks := chunks[start:end]
		texts := make([]string, len(batchChunks))
		for j, chunk := range batchChunks {
			texts[j] = chunk.Content
		}

		batches = append(batches, BatchInfo{
			Index:  i,
			Start:  start,
			End:    end,
			Chunks: batchChunks,
			Texts:  texts,
		})
	}

	return batches
}

// embedTextsWithRetry 带重试的文本向量化
func (v *VectorStoreEmbedder) embedTextsWithRetry(ctx context.Context, texts []string, maxRetries int, initialDelay, maxDelay time.Duration, multiplier float64) ([][]float64, error) {
	var lastErr error
	delay := initialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			g.Log().Infof(ctx, "Retrying embedding attempt %d/%d after %v delay",
				attempt, maxRetries, delay)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
				// 指数退避
				delay = time.Duration(float64(delay) * multiplier)
				if delay > maxDelay {
					delay = maxDelay
				}
			}
		}

		vectors, err := v.embedder.EmbedStrings(ctx, texts)
		if err != nil {
			lastErr = err
			g.Log().Warningf(ctx, "Embedding attempt %d failed: %v", attempt+1, err)
			continue
		}

		return vectors, nil
	}

	return nil, errors.Newf(errors.ErrEmbeddingFailed, "embedding failed after %d retries, last error: %v", maxRetries, lastErr)
}
