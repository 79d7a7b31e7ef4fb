package vector_store

import (
	"context"
	"sync"

	"github.com/gogf/gf/v2/os/gctx"

	"github.com/Malowking/ragpack/core/errors"
	"github.com/gogf/gf/v2/frame/g"
)

var (
	once         sync.Once
	vectorClient VectorStore
	initError    error
)

// GetVectorStore returns the singleton vector database client
func GetVectorStore() (VectorStore, error) {
	once.Do(func() {
		ctx := gctx.New()
		vectorClient, initError = initializeVectorStore(ctx)
	})
	return vectorClient, initError
}

// initializeVectorStore determines which client to use based on configuration
func initializeVectorStore(ctx context.Context) (VectorStore, error) {
	// 默认用内存实现，pack 在没有外部组件的环境里也能直接跑
	dbType := g.Cfg().MustGet(ctx, "vectorStore.type", "memory").String()

	g.Log().Infof(ctx, "Initializing vector store with type: %s", dbType)

	switch dbType {
	case "memory":
		g.Log().Info(ctx, "Memory vector store initialized successfully")
		return NewMemoryStore(), nil
	case "milvus":
		store, err := InitializeMilvusStore(ctx)
		if err != nil {
			return nil, errors.Newf(errors.ErrVectorStoreInit, "failed to initialize Milvus vector store: %v", err)
		}
		g.Log().Info(ctx, "Milvus vector store initialized successfully")
		return store, nil
	default:
		return nil, errors.Newf(errors.ErrInvalidParameter, "unsupported vector database type: %s. Supported types: memory, milvus", dbType)
	}
}
