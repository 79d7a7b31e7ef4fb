package vector_store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Malowking/ragpack/core/common"
	"github.com/Malowking/ragpack/core/errors"
	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/google/uuid"
	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
)

// MilvusStore Milvus向量数据库实现
type MilvusStore struct {
	client     *milvusclient.Client
	database   string
	dimension  int
	metricType entity.MetricType
}

// InitializeMilvusStore 从配置建立Milvus连接并确保数据库存在
func InitializeMilvusStore(ctx context.Context) (*MilvusStore, error) {
	address := g.Cfg().MustGet(ctx, "milvus.address", "").String()
	database := g.Cfg().MustGet(ctx, "milvus.database", "default").String()

	if address == "" {
		return nil, fmt.Errorf("milvus.address is required but not found in config file. Please check your config.yaml file and ensure milvus.address is properly set")
	}

	g.Log().Infof(ctx, "Connecting to Milvus at: %s, database: %s", address, database)

	client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address: address,
		DBName:  database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client (address: %s, database: %s): %w", address, database, err)
	}

	config := &VectorStoreConfig{
		Type:       VectorStoreTypeMilvus,
		Client:     client,
		Database:   database,
		Dimension:  g.Cfg().MustGet(ctx, "milvus.dim", 1024).Int(),
		MetricType: g.Cfg().MustGet(ctx, "milvus.metricType", "COSINE").String(),
	}

	store, err := NewMilvusStore(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus store: %w", err)
	}

	if err = store.CreateDatabaseIfNotExists(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure milvus database: %w", err)
	}

	return store, nil
}

// NewMilvusStore 创建Milvus向量存储实例
func NewMilvusStore(config *VectorStoreConfig) (*MilvusStore, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	client, ok := config.Client.(*milvusclient.Client)
	if !ok {
		return nil, fmt.Errorf("client must be *milvusclient.Client")
	}

	if config.Database == "" {
		return nil, fmt.Errorf("database name cannot be empty")
	}

	dim := config.Dimension
	if dim <= 0 {
		dim = 1024
	}

	return &MilvusStore{
		client:     client,
		database:   config.Database,
		dimension:  dim,
		metricType: parseMetricType(config.MetricType),
	}, nil
}

func parseMetricType(s string) entity.MetricType {
	switch strings.ToUpper(s) {
	case "L2":
		return entity.L2
	case "IP":
		return entity.IP
	default:
		return entity.COSINE
	}
}

// CreateDatabaseIfNotExists 创建数据库（如果不存在）
func (m *MilvusStore) CreateDatabaseIfNotExists(ctx context.Context) error {
	dbNames, err := m.client.ListDatabase(ctx, milvusclient.NewListDatabaseOption())
	if err != nil {
		return fmt.Errorf("failed to list databases: %w", err)
	}

	for _, name := range dbNames {
		if strings.EqualFold(name, m.database) {
			g.Log().Infof(ctx, "Database '%s' already exists, skipping creation", m.database)
			return nil
		}
	}

	// 数据库不存在，创建
	err = m.client.CreateDatabase(ctx, milvusclient.NewCreateDatabaseOption(m.database))
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	g.Log().Infof(ctx, "Database '%s' created successfully", m.database)
	return nil
}

// CreateCollection 创建集合
func (m *MilvusStore) CreateCollection(ctx context.Context, collectionName string) error {
	collSchema := &entity.Schema{
		CollectionName: collectionName,
		Description:    "存储文档分片及其向量",
		AutoID:         false,
		Fields:         chunkCollectionFields(m.dimension),
	}

	// 创建文档片段集合，并设置vector为索引
	err := m.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(collectionName, collSchema).WithIndexOptions(
		milvusclient.NewCreateIndexOption(collectionName, FieldNameVector, index.NewHNSWIndex(m.metricType, 64, 128))))
	if err != nil {
		return fmt.Errorf("failed to create Milvus collection: %w", err)
	}

	// Load collection into memory
	_, err = m.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(collectionName))
	if err != nil {
		return fmt.Errorf("failed to load Milvus collection: %w", err)
	}

	g.Log().Infof(ctx, "Collection '%s' created, index built and loaded", collectionName)
	return nil
}

// CollectionExists 检查集合是否存在
func (m *MilvusStore) CollectionExists(ctx context.Context, collectionName string) (bool, error) {
	has, err := m.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(collectionName))
	if err != nil {
		return false, fmt.Errorf("failed to check if collection exists: %w", err)
	}
	return has, nil
}

// DeleteCollection 删除集合
func (m *MilvusStore) DeleteCollection(ctx context.Context, collectionName string) error {
	err := m.client.DropCollection(ctx, milvusclient.NewDropCollectionOption(collectionName))
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	g.Log().Infof(ctx, "Collection '%s' deleted", collectionName)
	return nil
}

// InsertVectors 插入向量数据
// document_id 从分片元数据读取，没有就留空
func (m *MilvusStore) InsertVectors(ctx context.Context, collectionName string, chunks []*schema.Document, vectors [][]float64) ([]string, error) {
	if len(chunks) != len(vectors) {
		return nil, errors.Newf(errors.ErrVectorInsert,
			"chunks and vectors length mismatch: %d vs %d", len(chunks), len(vectors))
	}

	ids := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	vectorsFloat32 := make([][]float32, len(chunks))
	documentIds := make([]string, len(chunks))
	metadataList := make([][]byte, len(chunks))

	for idx, chunk := range chunks {
		// 生成chunk ID（如果不存在）
		if len(chunk.ID) == 0 {
			chunk.ID = uuid.New().String()
		}
		ids[idx] = chunk.ID

		// 截断文本（如果需要）
		texts[idx] = truncateString(chunk.Content, 65535)

		// 转换向量为float32
		vectorsFloat32[idx] = float64ToFloat32(vectors[idx])

		if docID, ok := chunk.MetaData[common.DocumentId].(string); ok {
			documentIds[idx] = docID
		}

		metaBytes, err := marshalMetadata(chunk.MetaData)
		if err != nil {
			return nil, errors.Wrap(errors.ErrVectorInsert, err, "failed to marshal metadata")
		}
		metadataList[idx] = metaBytes
	}

	// 创建列数据
	columns := []column.Column{
		column.NewColumnVarChar(FieldNameID, ids),
		column.NewColumnVarChar(FieldNameText, texts),
		column.NewColumnFloatVector(FieldNameVector, m.dimension, vectorsFloat32),
		column.NewColumnVarChar(FieldNameDocumentID, documentIds),
		column.NewColumnJSONBytes(FieldNameMetadata, metadataList),
	}

	// 插入数据
	insertOpt := milvusclient.NewColumnBasedInsertOption(collectionName, columns...)
	result, err := m.client.Insert(ctx, insertOpt)
	if err != nil {
		return nil, errors.Wrap(errors.ErrVectorInsert, err, "failed to insert vectors")
	}

	g.Log().Infof(ctx, "Successfully inserted %d vectors into collection '%s'", result.InsertCount, collectionName)
	return ids, nil
}

// Search 向量相似度搜索
func (m *MilvusStore) Search(ctx context.Context, collectionName string, vector []float64, topK int) ([]*schema.Document, error) {
	entityVectors := []entity.Vector{entity.FloatVector(float64ToFloat32(vector))}

	searchOpt := milvusclient.NewSearchOption(collectionName, topK, entityVectors).
		WithANNSField(FieldNameVector).
		WithOutputFields(FieldNameID, FieldNameText, FieldNameDocumentID, FieldNameMetadata).
		WithConsistencyLevel(entity.ClBounded)

	results, err := m.client.Search(ctx, searchOpt)
	if err != nil {
		return nil, errors.Wrap(errors.ErrVectorSearch, err, "search has error")
	}

	if len(results) == 0 {
		return []*schema.Document{}, nil
	}

	return m.convertResultsToDocuments(results[0].Fields, results[0].Scores)
}

// convertResultsToDocuments 转换搜索结果为文档
func (m *MilvusStore) convertResultsToDocuments(columns []column.Column, scores []float32) ([]*schema.Document, error) {
	if len(columns) == 0 {
		return nil, nil
	}

	numDocs := columns[0].Len()
	result := make([]*schema.Document, numDocs)
	for i := range result {
		result[i] = &schema.Document{
			MetaData: make(map[string]any),
		}
	}

	// 处理各列数据
	for _, col := range columns {
		switch col.Name() {
		case FieldNameID:
			for i := 0; i < col.Len(); i++ {
				val, err := col.Get(i)
				if err != nil {
					return nil, fmt.Errorf("failed to get id: %w", err)
				}
				if str, ok := val.(string); ok {
					result[i].ID = str
				}
			}
		case FieldNameText:
			for i := 0; i < col.Len(); i++ {
				val, err := col.Get(i)
				if err != nil {
					return nil, fmt.Errorf("failed to get text: %w", err)
				}
				if str, ok := val.(string); ok {
					result[i].Content = str
				}
			}
		case FieldNameMetadata:
			for i := 0; i < col.Len(); i++ {
				val, err := col.Get(i)
				if err != nil || val == nil {
					continue
				}

				// 处理JSON格式的metadata
				switch v := val.(type) {
				case string:
					var metadata map[string]any
					if err := sonic.Unmarshal([]byte(v), &metadata); err == nil {
						for k, mv := range metadata {
							result[i].MetaData[k] = mv
						}
					}
				case []byte:
					var metadata map[string]any
					if err := sonic.Unmarshal(v, &metadata); err == nil {
						for k, mv := range metadata {
							result[i].MetaData[k] = mv
						}
					}
				}
			}
		default:
			// 其他字段添加到metadata
			for i := 0; i < col.Len(); i++ {
				val, err := col.Get(i)
				if err != nil {
					continue
				}
				result[i].MetaData[col.Name()] = val
			}
		}
	}

	// 设置归一化分数
	for i := 0; i < numDocs && i < len(scores); i++ {
		result[i].WithScore(m.normalizeScore(scores[i]))
	}

	return result, nil
}

// normalizeScore 把Milvus返回的原始分数压到 0-1 范围
func (m *MilvusStore) normalizeScore(score float32) float64 {
	switch m.metricType {
	case entity.COSINE:
		s := (float64(score) + 1) / 2
		if s < 0 {
			s = 0
		} else if s > 1 {
			s = 1
		}
		return s
	case entity.IP:
		return float64(score)
	default:
		// L2 距离越小越相似
		return 1 / (1 + float64(score))
	}
}

// DeleteByChunkID 根据chunkID删除单个chunk
func (m *MilvusStore) DeleteByChunkID(ctx context.Context, collectionName string, chunkID string) error {
	filterExpr := fmt.Sprintf(`id == "%s"`, common.SanitizeMilvusString(chunkID))

	g.Log().Infof(ctx, "Deleting chunk %s from collection %s", chunkID, collectionName)

	deleteOpt := milvusclient.NewDeleteOption(collectionName).WithExpr(filterExpr)
	result, err := m.client.Delete(ctx, deleteOpt)
	if err != nil {
		return fmt.Errorf("failed to delete chunk %s: %w", chunkID, err)
	}

	g.Log().Infof(ctx, "Delete operation completed for chunk %s, affected rows: %d", chunkID, result.DeleteCount)

	if result.DeleteCount == 0 {
		g.Log().Infof(ctx, "Warning: No chunk was deleted for id=%s", chunkID)
	}

	return nil
}

// Helper functions

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

func float64ToFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if len(metadata) == 0 {
		return []byte("{}"), nil
	}
	return sonic.Marshal(metadata)
}
