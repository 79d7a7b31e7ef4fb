package chunk

import (
	"context"
	"strings"

	"github.com/Malowking/ragpack/core/common"
	"github.com/cloudwego/eino-ext/components/document/transformer/splitter/markdown"
	"github.com/cloudwego/eino-ext/components/document/transformer/splitter/recursive"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"
)

// NewTransformer 创建通用文档分割器
// md 文档按标题层级切，其余文档递归分割
func NewTransformer(ctx context.Context, chunkSize, overlapSize int) (document.Transformer, error) {
	recTrans, err := newSizeSplitter(ctx, chunkSize, overlapSize)
	if err != nil {
		return nil, err
	}
	// md 文档特殊处理
	mdTrans, err := markdown.NewHeaderSplitter(ctx, &markdown.HeaderConfig{
		Headers:     map[string]string{"#": common.Title1, "##": common.Title2, "###": common.Title3},
		TrimHeaders: false,
	})
	if err != nil {
		return nil, err
	}
	return &transformer{recursive: recTrans, markdown: mdTrans}, nil
}

// NewTransformerWithSeparator 创建基于指定分隔符的文档分割器
func NewTransformerWithSeparator(ctx context.Context, chunkSize, overlapSize int, separator string) (document.Transformer, error) {
	// 处理转义字符
	processedSeparator := strings.ReplaceAll(separator, "\\n", "\n")
	processedSeparator = strings.ReplaceAll(processedSeparator, "\\t", "\t")

	config := &recursive.Config{
		ChunkSize:   chunkSize,
		OverlapSize: overlapSize,
		Separators:  []string{processedSeparator},
	}
	return recursive.NewSplitter(ctx, config)
}

// newSizeSplitter 递归分割器，长度目标由调用方指定
func newSizeSplitter(ctx context.Context, chunkSize, overlapSize int) (document.Transformer, error) {
	config := &recursive.Config{
		ChunkSize:   chunkSize,
		OverlapSize: overlapSize,
		Separators:  []string{"\n", "。", "?", "？", "!", "！"},
	}
	return recursive.NewSplitter(ctx, config)
}

type transformer struct {
	markdown  document.Transformer
	recursive document.Transformer
}

func (x *transformer) Transform(ctx context.Context, docs []*schema.Document, opts ...document.TransformerOption) ([]*schema.Document, error) {
	isMd := false
	for _, doc := range docs {
		// 只需要判断第一个是不是.md
		if doc.MetaData["_extension"] == ".md" {
			isMd = true
			break
		}
	}
	if isMd {
		return x.markdown.Transform(ctx, docs, opts...)
	}
	return x.recursive.Transform(ctx, docs, opts...)
}
