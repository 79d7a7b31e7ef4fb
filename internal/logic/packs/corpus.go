package packs

import (
	"context"
	"fmt"
	"strings"

	"github.com/Malowking/ragpack/core/common"
	"github.com/Malowking/ragpack/core/errors"
	"github.com/Malowking/ragpack/core/file_store"
	"github.com/Malowking/ragpack/core/indexer"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/minio/minio-go/v7"
)

// loadCorpus 加载语料。sources 走多来源 loader，texts 直接构造文档
func loadCorpus(ctx context.Context, sources []string, texts []string) ([]*schema.Document, error) {
	if len(sources) == 0 && len(texts) == 0 {
		return nil, errors.New(errors.ErrInvalidParameter, "either sources or texts must be provided")
	}

	var docs []*schema.Document

	if len(sources) > 0 {
		// 对象存储已配置时把客户端交给 loader，s3:// 来源才可用
		var client *minio.Client
		var bucket string
		if file_store.GetStorageType() == file_store.StorageTypeS3 {
			cfg := file_store.GetObjectStoreConfig()
			client = cfg.Client
			bucket = cfg.BucketName
		}

		loader, err := indexer.NewDocumentLoader(ctx, client, bucket)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInternalError, err, "create document loader failed")
		}

		for _, src := range sources {
			loaded, err := loader.Load(ctx, document.Source{URI: src})
			if err != nil {
				g.Log().Errorf(ctx, "load source '%s' failed: %v", src, err)
				return nil, errors.Wrap(errors.ErrDocumentParseFailed, err,
					fmt.Sprintf("failed to load source '%s'", src))
			}
			docs = append(docs, loaded...)
		}
	}

	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, &schema.Document{
			ID:       fmt.Sprintf("text-%d", i),
			Content:  text,
			MetaData: map[string]any{common.MetaSource: "inline"},
		})
	}

	// 入库前统一清洗：去掉零宽字符和控制字符，规范空白，避免脏文本进切分和向量化
	cleaned := docs[:0]
	for _, doc := range docs {
		content, err := common.CleanString(doc.Content, common.ProfileEmbedding)
		if err != nil {
			g.Log().Warningf(ctx, "document '%s' dropped, content is not valid text: %v", doc.ID, err)
			continue
		}
		if content == "" {
			continue
		}
		doc.Content = content
		cleaned = append(cleaned, doc)
	}
	docs = cleaned

	if len(docs) == 0 {
		return nil, errors.New(errors.ErrEmptyCorpus, "no documents loaded from the given sources")
	}

	g.Log().Infof(ctx, "corpus loaded, sources: %d, texts: %d, documents: %d",
		len(sources), len(texts), len(docs))
	return docs, nil
}
