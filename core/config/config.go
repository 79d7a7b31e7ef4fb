package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/gogf/gf/v2/frame/g"
)

// ValidateConfiguration validates all required configuration items
func ValidateConfiguration(ctx context.Context) error {
	var missingConfigs []string
	var warnings []string

	// 验证 Embedding 配置
	embeddingAPIKey := g.Cfg().MustGet(ctx, "embedding.apiKey", "").String()
	embeddingBaseURL := g.Cfg().MustGet(ctx, "embedding.baseURL", "").String()
	embeddingModel := g.Cfg().MustGet(ctx, "embedding.model", "").String()

	if embeddingAPIKey == "" {
		missingConfigs = append(missingConfigs, "embedding.apiKey")
	}
	if embeddingBaseURL == "" {
		missingConfigs = append(missingConfigs, "embedding.baseURL")
	}
	if embeddingModel == "" {
		missingConfigs = append(missingConfigs, "embedding.model")
	}

	// 验证 Chat 配置（缺失时仅影响 query/run 接口，给出警告）
	chatAPIKey := g.Cfg().MustGet(ctx, "chat.apiKey", "").String()
	chatBaseURL := g.Cfg().MustGet(ctx, "chat.baseURL", "").String()
	chatModel := g.Cfg().MustGet(ctx, "chat.model", "").String()

	if chatAPIKey == "" {
		warnings = append(warnings, "chat.apiKey is not set")
	}
	if chatBaseURL == "" {
		warnings = append(warnings, "chat.baseURL is not set")
	}
	if chatModel == "" {
		warnings = append(warnings, "chat.model is not set")
	}

	// 验证向量库配置
	storeType := g.Cfg().MustGet(ctx, "vectorStore.type", "memory").String()
	if storeType == "milvus" {
		milvusAddress := g.Cfg().MustGet(ctx, "milvus.address", "").String()
		if milvusAddress == "" {
			missingConfigs = append(missingConfigs, "milvus.address")
		}
	}

	// 验证对象存储配置
	storageType := g.Cfg().MustGet(ctx, "storage.type", "local").String()
	if storageType == "s3" {
		if g.Cfg().MustGet(ctx, "s3.endpoint", "").String() == "" {
			missingConfigs = append(missingConfigs, "s3.endpoint")
		}
	}

	// 输出警告信息
	if len(warnings) > 0 {
		g.Log().Warningf(ctx, "Configuration warnings:\n- %s", strings.Join(warnings, "\n- "))
	}

	// 检查是否有缺失的必需配置
	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configuration items:\n- %s\n\nPlease check your config.yaml file and ensure all required settings are properly configured", strings.Join(missingConfigs, "\n- "))
	}

	// 输出成功信息
	g.Log().Info(ctx, "✓ All required configuration items are present")

	return nil
}

// EmbeddingSettings embedding 服务配置
type EmbeddingSettings struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int // 向量维度，0表示使用服务端默认
}

// EmbeddingSettings 实现 embedding config 接口
func (c *EmbeddingSettings) GetAPIKey() string         { return c.APIKey }
func (c *EmbeddingSettings) GetBaseURL() string        { return c.BaseURL }
func (c *EmbeddingSettings) GetEmbeddingModel() string { return c.Model }
func (c *EmbeddingSettings) GetDimensions() int        { return c.Dimensions }

// LoadEmbeddingSettings 从配置文件读取 embedding 配置
func LoadEmbeddingSettings(ctx context.Context) *EmbeddingSettings {
	return &EmbeddingSettings{
		APIKey:     g.Cfg().MustGet(ctx, "embedding.apiKey", "").String(),
		BaseURL:    g.Cfg().MustGet(ctx, "embedding.baseURL", "").String(),
		Model:      g.Cfg().MustGet(ctx, "embedding.model", "").String(),
		Dimensions: g.Cfg().MustGet(ctx, "embedding.dimensions", 1024).Int(),
	}
}

// FusionDefaults hybrid fusion pack 的配置默认值，请求未显式指定时使用
type FusionDefaults struct {
	ChunkSize  int
	Mode       string
	VectorTopK int
	BM25TopK   int
	FusionTopK int
	NumQueries int
}

// LoadFusionDefaults 从配置文件读取 fusion pack 默认参数
func LoadFusionDefaults(ctx context.Context) *FusionDefaults {
	return &FusionDefaults{
		ChunkSize:  g.Cfg().MustGet(ctx, "packs.fusion.chunkSize", 256).Int(),
		Mode:       g.Cfg().MustGet(ctx, "packs.fusion.mode", "reciprocal_rerank").String(),
		VectorTopK: g.Cfg().MustGet(ctx, "packs.fusion.vectorTopK", 2).Int(),
		BM25TopK:   g.Cfg().MustGet(ctx, "packs.fusion.bm25TopK", 2).Int(),
		FusionTopK: g.Cfg().MustGet(ctx, "packs.fusion.fusionTopK", 2).Int(),
		NumQueries: g.Cfg().MustGet(ctx, "packs.fusion.numQueries", 4).Int(),
	}
}
