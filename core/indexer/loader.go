package indexer

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/Malowking/ragpack/core/common"
	"github.com/Malowking/ragpack/core/file_store"
	"github.com/cloudwego/eino-ext/components/document/loader/file"
	document_url "github.com/cloudwego/eino-ext/components/document/loader/url"
	"github.com/cloudwego/eino-ext/components/document/parser/html"
	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	"github.com/cloudwego/eino-ext/components/document/parser/xlsx"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"github.com/minio/minio-go/v7"
)

// NewDocumentLoader 构建多来源文档加载器，按 URI 分派到本地文件、HTTP 或对象存储。
// client 为 nil 时对象存储来源不可用。
func NewDocumentLoader(ctx context.Context, client *minio.Client, bucketName string) (ldr document.Loader, err error) {
	mldr := &multiLoader{
		objectClient: client,
		bucketName:   bucketName,
	}

	parserInstance, err := newParser(ctx)
	if err != nil {
		return nil, err
	}

	fldr, err := file.NewFileLoader(ctx, &file.FileLoaderConfig{
		UseNameAsID: false,
		Parser:      parserInstance,
	})
	if err != nil {
		return nil, err
	}
	mldr.fileLoader = fldr

	uldr, err := document_url.NewLoader(ctx, &document_url.LoaderConfig{})
	if err != nil {
		return nil, err
	}
	mldr.urlLoader = uldr

	// 设置 parser
	mldr.parser = parserInstance

	return mldr, nil
}

// newParser 按扩展名分派解析器，未知类型按纯文本处理
func newParser(ctx context.Context) (parser.Parser, error) {
	htmlParser, err := html.NewParser(ctx, &html.Config{})
	if err != nil {
		return nil, err
	}

	pdfParser, err := pdf.NewPDFParser(ctx, &pdf.Config{})
	if err != nil {
		return nil, err
	}

	xlsxParser, err := xlsx.NewXlsxParser(ctx, &xlsx.Config{})
	if err != nil {
		return nil, err
	}

	return parser.NewExtParser(ctx, &parser.ExtParserConfig{
		Parsers: map[string]parser.Parser{
			".html": htmlParser,
			".htm":  htmlParser,
			".pdf":  pdfParser,
			".xlsx": xlsxParser,
		},
		FallbackParser: parser.TextParser{},
	})
}

type multiLoader struct {
	fileLoader   document.Loader
	urlLoader    document.Loader
	objectClient *minio.Client
	bucketName   string
	parser       parser.Parser
}

func (x *multiLoader) Load(ctx context.Context, src document.Source, opts ...document.LoaderOption) ([]*schema.Document, error) {
	if common.IsURL(src.URI) {
		// 检查是否是对象存储协议
		if isObjectStoreURI(src.URI) {
			return x.loadObject(ctx, src)
		}
		return x.urlLoader.Load(ctx, src, opts...)
	}
	return x.fileLoader.Load(ctx, src, opts...)
}

// isObjectStoreURI 检查 URI 是否是 s3 协议
func isObjectStoreURI(uri string) bool {
	return strings.HasPrefix(uri, "s3://")
}

// loadObject 从对象存储加载文档
func (x *multiLoader) loadObject(ctx context.Context, src document.Source) ([]*schema.Document, error) {
	if x.objectClient == nil {
		return nil, fmt.Errorf("object storage is not configured, cannot load %s", src.URI)
	}

	// 解析 s3 URL
	u, err := url.Parse(src.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse object URI: %w", err)
	}

	// s3://bucket/key 形式，host 为空时使用默认 bucket
	bucket := u.Host
	if bucket == "" {
		bucket = x.bucketName
	}

	// 获取对象名称（路径）
	objectName := strings.TrimPrefix(u.Path, "/")
	if objectName == "" {
		return nil, fmt.Errorf("empty object name in URI: %s", src.URI)
	}

	// 从对象存储读取对象内容
	content, err := file_store.ReadObject(ctx, x.objectClient, bucket, objectName)
	if err != nil {
		return nil, fmt.Errorf("failed to read object from storage: %w", err)
	}

	// 使用解析器解析内容，带上 URI 让解析器按扩展名分派
	reader := bytes.NewReader(content)
	docs, err := x.parser.Parse(ctx, reader, parser.WithURI(src.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document content: %w", err)
	}

	// 设置文档元数据，和 file loader 保持一致的键
	for _, doc := range docs {
		if doc.MetaData == nil {
			doc.MetaData = make(map[string]interface{})
		}
		doc.MetaData[common.MetaSource] = src.URI
		doc.MetaData["_extension"] = path.Ext(objectName)
		doc.MetaData["_file_name"] = path.Base(objectName)
	}

	return docs, nil
}
