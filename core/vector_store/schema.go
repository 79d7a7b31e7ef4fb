package vector_store

import (
	"fmt"

	"github.com/milvus-io/milvus/client/v2/entity"
)

// Milvus 集合字段名
const (
	FieldNameID         = "id"
	FieldNameText       = "text"
	FieldNameVector     = "vector"
	FieldNameDocumentID = "document_id"
	FieldNameMetadata   = "metadata"
)

// chunkCollectionFields 返回分片集合的标准字段定义
// 向量维度由 embedding 模型决定，通过配置传入
func chunkCollectionFields(dim int) []*entity.Field {
	return []*entity.Field{
		{
			Name:        FieldNameID,
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": "256"},
			PrimaryKey:  true,
			AutoID:      false,
			Description: "Chunk unique ID (primary key)",
		},
		{
			Name:        FieldNameText,
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": "65535"},
			Description: "Chunk text content",
		},
		{
			Name:        FieldNameVector,
			DataType:    entity.FieldTypeFloatVector,
			TypeParams:  map[string]string{"dim": fmt.Sprintf("%d", dim)},
			Description: "Embedding vector",
		},
		{
			Name:        FieldNameDocumentID,
			DataType:    entity.FieldTypeVarChar,
			TypeParams:  map[string]string{"max_length": "256"},
			Description: "Parent document ID",
		},
		{
			Name:        FieldNameMetadata,
			DataType:    entity.FieldTypeJSON,
			Description: "Chunk metadata (JSON)",
		},
	}
}
