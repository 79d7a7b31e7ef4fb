package vector_store

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/Malowking/ragpack/core/common"
	"github.com/Malowking/ragpack/core/errors"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
)

// MemoryStore 进程内向量存储
// 默认后端，适合 pack 这种一次性构建、随进程生命周期存活的语料
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	dim     int
	records map[string]*memoryRecord
}

type memoryRecord struct {
	doc    *schema.Document
	vector []float64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
	}
}

func (m *MemoryStore) CreateCollection(ctx context.Context, collectionName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.collections[collectionName]; !ok {
		m.collections[collectionName] = &memoryCollection{
			records: make(map[string]*memoryRecord),
		}
	}
	return nil
}

func (m *MemoryStore) CollectionExists(ctx context.Context, collectionName string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.collections[collectionName]
	return ok, nil
}

func (m *MemoryStore) DeleteCollection(ctx context.Context, collectionName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.collections, collectionName)
	return nil
}

func (m *MemoryStore) InsertVectors(ctx context.Context, collectionName string, chunks []*schema.Document, vectors [][]float64) ([]string, error) {
	if len(chunks) != len(vectors) {
		return nil, errors.Newf(errors.ErrVectorInsert,
			"chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	coll, ok := m.collections[collectionName]
	if !ok {
		coll = &memoryCollection{records: make(map[string]*memoryRecord)}
		m.collections[collectionName] = coll
	}

	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		if chunk.ID == "" {
			chunk.ID = uuid.New().String()
		}
		if coll.dim == 0 {
			coll.dim = len(vectors[i])
		} else if len(vectors[i]) != coll.dim {
			return nil, errors.Newf(errors.ErrVectorInsert,
				"vector dimension mismatch for chunk %s: got %d, want %d", chunk.ID, len(vectors[i]), coll.dim)
		}
		coll.records[chunk.ID] = &memoryRecord{doc: chunk, vector: vectors[i]}
		ids[i] = chunk.ID
	}
	return ids, nil
}

func (m *MemoryStore) Search(ctx context.Context, collectionName string, vector []float64, topK int) ([]*schema.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coll, ok := m.collections[collectionName]
	if !ok {
		return nil, errors.Newf(errors.ErrVectorStoreNotFound, "collection '%s' not found", collectionName)
	}

	type scoredRecord struct {
		doc   *schema.Document
		score float64
	}
	matches := make([]scoredRecord, 0, len(coll.records))
	for _, rec := range coll.records {
		sim, err := cosineSimilarity(vector, rec.vector)
		if err != nil {
			return nil, err
		}
		// 余弦相似度从 [-1,1] 归一化到 [0,1]
		matches = append(matches, scoredRecord{doc: rec.doc, score: (sim + 1) / 2})
	}

	// 分数降序，持平时按ID升序，保证同一查询的结果顺序稳定
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score == matches[j].score {
			return matches[i].doc.ID < matches[j].doc.ID
		}
		return matches[i].score > matches[j].score
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}

	// 返回副本，避免并发查询写分数时互相覆盖
	result := make([]*schema.Document, len(matches))
	for i, match := range matches {
		doc := common.CloneDocument(match.doc)
		doc.WithScore(match.score)
		result[i] = doc
	}
	return result, nil
}

func (m *MemoryStore) DeleteByChunkID(ctx context.Context, collectionName string, chunkID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	coll, ok := m.collections[collectionName]
	if !ok {
		return errors.Newf(errors.ErrVectorStoreNotFound, "collection '%s' not found", collectionName)
	}
	delete(coll.records, chunkID)
	return nil
}

func cosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.Newf(errors.ErrVectorSearch, "vector dimension mismatch: %d vs %d", len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
