package retriever

import (
	"context"

	"github.com/Malowking/ragpack/core/errors"
	"github.com/Malowking/ragpack/core/indexer"
	"github.com/Malowking/ragpack/core/vector_store"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
)

// defaultTopK 后端未配置时的默认返回数量
const defaultTopK = 5

// VectorBackendConfig 向量检索后端配置
type VectorBackendConfig struct {
	Store      vector_store.VectorStore
	Embedder   embedding.Embedder
	Collection string
	TopK       int
}

// VectorBackend 向量相似度检索后端
// Build 会重建集合，旧数据直接丢弃
type VectorBackend struct {
	store      vector_store.VectorStore
	embedder   embedding.Embedder
	indexer    *indexer.VectorStoreEmbedder
	collection string
	topK       int
}

// NewVectorBackend 创建向量检索后端
func NewVectorBackend(config *VectorBackendConfig) (*VectorBackend, error) {
	if config == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "vector backend config cannot be nil")
	}
	if config.Store == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "vector store cannot be nil")
	}
	if config.Embedder == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "embedder cannot be nil")
	}
	if config.Collection == "" {
		return nil, errors.New(errors.ErrInvalidParameter, "collection name cannot be empty")
	}

	storeEmbedder, err := indexer.NewVectorStoreEmbedder(config.Embedder, config.Store)
	if err != nil {
		return nil, err
	}

	topK := config.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	return &VectorBackend{
		store:      config.Store,
		embedder:   config.Embedder,
		indexer:    storeEmbedder,
		collection: config.Collection,
		topK:       topK,
	}, nil
}

// Build 重建集合并写入全部分片
func (b *VectorBackend) Build(ctx context.Context, chunks []*schema.Document) error {
	if len(chunks) == 0 {
		return errors.New(errors.ErrEmptyCorpus, "no chunks to index")
	}

	exists, err := b.store.CollectionExists(ctx, b.collection)
	if err != nil {
		return err
	}
	if exists {
		if err = b.store.DeleteCollection(ctx, b.collection); err != nil {
			return err
		}
	}
	if err = b.store.CreateCollection(ctx, b.collection); err != nil {
		return err
	}

	if _, err = b.indexer.EmbedAndStore(ctx, b.collection, chunks); err != nil {
		return err
	}

	g.Log().Infof(ctx, "vector backend built, collection: %s, chunks: %d", b.collection, len(chunks))
	return nil
}

// Retrieve 按后端默认参数检索
func (b *VectorBackend) Retrieve(ctx context.Context, query string) ([]*schema.Document, error) {
	return b.retrieveWithConfig(ctx, query, nil)
}

// AsRetriever 适配成 eino 检索器
func (b *VectorBackend) AsRetriever(config *RetrieverConfig) retriever.Retriever {
	return newBackendRetriever(b.retrieveWithConfig, config)
}

func (b *VectorBackend) retrieveWithConfig(ctx context.Context, query string, cfg *RetrieverConfig) ([]*schema.Document, error) {
	topK := b.topK
	if cfg != nil && cfg.TopK > 0 {
		topK = cfg.TopK
	}

	vectors, err := b.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, errors.Wrap(errors.ErrEmbeddingFailed, err, "embedding query failed")
	}
	if len(vectors) != 1 {
		return nil, errors.Newf(errors.ErrEmbeddingFailed, "invalid return length of vector, got=%d, expected=1", len(vectors))
	}

	docs, err := b.store.Search(ctx, b.collection, vectors[0], topK)
	if err != nil {
		return nil, err
	}

	if cfg != nil {
		docs = filterByScore(ctx, docs, cfg.ScoreThreshold)
	}
	return docs, nil
}
