package chunk

import (
	"context"
	"strings"
	"testing"

	"github.com/Malowking/ragpack/core/common"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestTransformerWithMarkdown(t *testing.T) {
	ctx := context.Background()

	// 创建一个包含Markdown内容的测试文档
	docs := []*schema.Document{
		{
			Content: "# 产品说明\n这是产品的整体介绍。\n## 安装步骤\n先下载安装包，再按提示完成安装。\n### 注意事项\n安装前请关闭杀毒软件。",
			MetaData: map[string]any{
				"_extension": ".md",
			},
		},
	}

	transformer, err := NewTransformer(ctx, 100, 20)
	assert.NoError(t, err)
	assert.NotNil(t, transformer)

	transformedDocs, err := transformer.Transform(ctx, docs)
	assert.NoError(t, err)
	assert.NotEmpty(t, transformedDocs)

	// md 文档走标题分割，至少有一个分片携带一级标题元数据
	foundTitle := false
	for _, doc := range transformedDocs {
		if doc.MetaData != nil && doc.MetaData[common.Title1] != nil {
			foundTitle = true
			break
		}
	}
	assert.True(t, foundTitle, "markdown chunks should carry header metadata")

	t.Logf("Transformed %d documents", len(transformedDocs))
	for i, doc := range transformedDocs {
		t.Logf("Document %d: %s", i, doc.Content)
	}
}

func TestTransformerWithPlainText(t *testing.T) {
	ctx := context.Background()

	// 普通文本走递归分割
	docs := []*schema.Document{
		{
			Content: "这是第一段内容。这是第二句话，用来测试分割效果。这是第三句话，看看是否会被正确分割。最后是第四句话。",
			MetaData: map[string]any{
				"_extension": ".txt",
			},
		},
	}

	transformer, err := NewTransformer(ctx, 30, 5)
	assert.NoError(t, err)
	assert.NotNil(t, transformer)

	transformedDocs, err := transformer.Transform(ctx, docs)
	assert.NoError(t, err)
	assert.NotEmpty(t, transformedDocs)

	t.Logf("Transformed %d documents", len(transformedDocs))
	for i, doc := range transformedDocs {
		t.Logf("Document %d: %s", i, doc.Content)
	}
}

func TestTransformerWithCustomSeparator(t *testing.T) {
	ctx := context.Background()

	docs := []*schema.Document{
		{
			Content: "第一部分|第二部分|第三部分|第四部分",
			MetaData: map[string]any{
				"_extension": ".txt",
			},
		},
	}

	// 使用自定义分隔符
	transformer, err := NewTransformerWithSeparator(ctx, 3, 1, "|")
	assert.NoError(t, err)
	assert.NotNil(t, transformer)

	transformedDocs, err := transformer.Transform(ctx, docs)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, len(transformedDocs), 3, "Should have at least 3 documents after splitting")

	t.Logf("Transformed %d documents", len(transformedDocs))
	for i, doc := range transformedDocs {
		t.Logf("Document %d: %s", i, doc.Content)
	}
}

func TestTransformerWithEmptyDocument(t *testing.T) {
	ctx := context.Background()

	docs := []*schema.Document{
		{
			Content: "",
			MetaData: map[string]any{
				"_extension": ".txt",
			},
		},
	}

	transformer, err := NewTransformer(ctx, 100, 20)
	assert.NoError(t, err)

	transformedDocs, err := transformer.Transform(ctx, docs)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(transformedDocs), "Empty documents should be filtered out")
}

func TestTransformerWithLargeDocument(t *testing.T) {
	ctx := context.Background()

	// 构造一个远超分片大小的长文档
	var builder strings.Builder
	for i := 0; i < 100; i++ {
		builder.WriteString("这一行是用来测试长文档切分效果的句子。")
	}

	docs := []*schema.Document{
		{
			Content: builder.String(),
			MetaData: map[string]any{
				"_extension": ".txt",
			},
		},
	}

	transformer, err := NewTransformer(ctx, 50, 10)
	assert.NoError(t, err)

	transformedDocs, err := transformer.Transform(ctx, docs)
	assert.NoError(t, err)
	assert.Greater(t, len(transformedDocs), 1, "Should have multiple documents after splitting large document")

	t.Logf("Transformed %d documents from large document", len(transformedDocs))
}
