package vector_store

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// VectorStoreType 向量数据库类型
type VectorStoreType string

const (
	VectorStoreTypeMemory VectorStoreType = "memory"
	VectorStoreTypeMilvus VectorStoreType = "milvus"
	// 未来可以扩展其他类型
	// VectorStoreTypeChroma VectorStoreType = "chroma"
	// VectorStoreTypeWeaviate VectorStoreType = "weaviate"
)

// VectorStoreConfig 向量数据库配置
type VectorStoreConfig struct {
	Type       VectorStoreType // 向量数据库类型
	Client     interface{}     // 客户端实例（memory 类型不需要）
	Database   string          // 数据库名称
	Dimension  int             // 向量维度
	MetricType string          // 距离度量类型（如 COSINE, L2, IP）
}

// VectorStore 向量数据库接口
// Search 返回的分数统一归一化到 0-1 范围，1 表示最相似
type VectorStore interface {
	// CreateCollection 创建集合
	CreateCollection(ctx context.Context, collectionName string) error

	// CollectionExists 检查集合是否存在
	CollectionExists(ctx context.Context, collectionName string) (bool, error)

	// DeleteCollection 删除集合
	DeleteCollection(ctx context.Context, collectionName string) error

	// InsertVectors 插入向量数据
	InsertVectors(ctx context.Context, collectionName string, chunks []*schema.Document, vectors [][]float64) ([]string, error)

	// Search 向量相似度搜索
	Search(ctx context.Context, collectionName string, vector []float64, topK int) ([]*schema.Document, error)

	// DeleteByChunkID 根据chunkID删除单个chunk
	DeleteByChunkID(ctx context.Context, collectionName string, chunkID string) error
}
