package retriever

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

// mockChatModel 返回预设内容的对话模型，记录调用次数
type mockChatModel struct {
	content string
	err     error
	calls   int
}

func (m *mockChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &schema.Message{Role: schema.Assistant, Content: m.content}, nil
}

func (m *mockChatModel) Stream(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("streaming is not supported")
}

func TestGenerateQueriesWithoutExpansion(t *testing.T) {
	ctx := context.Background()
	chatModel := &mockChatModel{content: "无关内容"}
	rewriter := NewQueryRewriter(chatModel)

	// 总数小于等于1时不触发模型调用，检索保持确定性
	queries := rewriter.GenerateQueries(ctx, "如何提高训练速度", 1)
	assert.Equal(t, []string{"如何提高训练速度"}, queries)

	queries = rewriter.GenerateQueries(ctx, "如何提高训练速度", 0)
	assert.Equal(t, []string{"如何提高训练速度"}, queries)

	assert.Equal(t, 0, chatModel.calls)
}

func TestGenerateQueriesNilModel(t *testing.T) {
	ctx := context.Background()
	rewriter := NewQueryRewriter(nil)

	queries := rewriter.GenerateQueries(ctx, "如何提高训练速度", 3)
	assert.Equal(t, []string{"如何提高训练速度"}, queries)
}

func TestGenerateQueriesExpansion(t *testing.T) {
	ctx := context.Background()
	chatModel := &mockChatModel{
		content: "1. 深度学习训练加速的方法\n2) 神经网络训练提速技巧\n「模型训练优化」\n\n深度学习训练加速的方法",
	}
	rewriter := NewQueryRewriter(chatModel)

	queries := rewriter.GenerateQueries(ctx, "如何提高训练速度", 4)
	assert.Equal(t, []string{
		"如何提高训练速度",
		"深度学习训练加速的方法",
		"神经网络训练提速技巧",
		"模型训练优化",
	}, queries)
	assert.Equal(t, 1, chatModel.calls)
}

func TestGenerateQueriesLimit(t *testing.T) {
	ctx := context.Background()
	chatModel := &mockChatModel{
		content: "改写一\n改写二\n改写三",
	}
	rewriter := NewQueryRewriter(chatModel)

	// 总数2只能容纳1个改写
	queries := rewriter.GenerateQueries(ctx, "原始查询", 2)
	assert.Equal(t, []string{"原始查询", "改写一"}, queries)
}

func TestGenerateQueriesModelError(t *testing.T) {
	ctx := context.Background()
	chatModel := &mockChatModel{err: fmt.Errorf("rate limited")}
	rewriter := NewQueryRewriter(chatModel)

	// 扩展失败退回原始查询，不阻断检索
	queries := rewriter.GenerateQueries(ctx, "原始查询", 3)
	assert.Equal(t, []string{"原始查询"}, queries)
	assert.Equal(t, 1, chatModel.calls)
}

func TestGenerateQueriesCache(t *testing.T) {
	ctx := context.Background()
	chatModel := &mockChatModel{content: "改写一\n改写二"}
	rewriter := NewQueryRewriter(chatModel)

	first := rewriter.GenerateQueries(ctx, "原始查询", 3)
	second := rewriter.GenerateQueries(ctx, "原始查询", 3)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, chatModel.calls, "second call should hit the cache")
}

func TestParseGeneratedQueries(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		original string
		limit    int
		expected []string
	}{
		{
			name:     "编号和引号被清理",
			content:  "1. 第一个改写\n2、第二个改写\n\"第三个改写\"",
			original: "原始查询",
			limit:    5,
			expected: []string{"第一个改写", "第二个改写", "第三个改写"},
		},
		{
			name:     "重复行只保留一次",
			content:  "相同的改写\n相同的改写",
			original: "原始查询",
			limit:    5,
			expected: []string{"相同的改写"},
		},
		{
			name:     "模型复读原始查询时丢弃",
			content:  "原始查询\n真正的改写",
			original: "原始查询",
			limit:    5,
			expected: []string{"真正的改写"},
		},
		{
			name:     "空行和空白行被跳过",
			content:  "\n  \n有效改写\n",
			original: "原始查询",
			limit:    5,
			expected: []string{"有效改写"},
		},
		{
			name:     "超出数量限制截断",
			content:  "改写一\n改写二\n改写三",
			original: "原始查询",
			limit:    2,
			expected: []string{"改写一", "改写二"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseGeneratedQueries(tt.content, tt.original, tt.limit)
			assert.Equal(t, tt.expected, result)
		})
	}
}
