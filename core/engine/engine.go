package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/Malowking/ragpack/core/errors"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
)

// defaultSystemPrompt 默认系统提示词
const defaultSystemPrompt = "你是一个专业的AI助手，能够根据提供的参考信息准确回答用户问题。" +
	"回答时引用参考资料的编号，参考信息不足以回答时明确说明。"

// QueryEngineConfig 问答引擎配置
type QueryEngineConfig struct {
	Retriever    retriever.Retriever
	ChatModel    model.BaseChatModel
	SystemPrompt string // 自定义系统提示词，为空时用默认值
	TopK         int    // 检索数量，为0时沿用检索器默认值
}

// QueryEngine 检索增强问答引擎
// 先检索相关分片，再把分片作为参考资料交给模型生成答案
type QueryEngine struct {
	retriever    retriever.Retriever
	chatModel    model.BaseChatModel
	systemPrompt string
	topK         int
}

// QueryResult 问答结果
type QueryResult struct {
	Answer      string             // 生成的答案
	Reasoning   string             // 思考过程（模型支持时才有）
	SourceNodes []*schema.Document // 答案引用的检索结果
}

// NewQueryEngine 创建问答引擎
func NewQueryEngine(config *QueryEngineConfig) (*QueryEngine, error) {
	if config == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "query engine config cannot be nil")
	}
	if config.Retriever == nil {
		return nil, errors.New(errors.ErrInvalidParameter, "retriever cannot be nil")
	}

	systemPrompt := config.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	return &QueryEngine{
		retriever:    config.Retriever,
		chatModel:    config.ChatModel,
		systemPrompt: systemPrompt,
		topK:         config.TopK,
	}, nil
}

// Retrieve 只执行检索，不生成答案
func (e *QueryEngine) Retrieve(ctx context.Context, query string) ([]*schema.Document, error) {
	var opts []retriever.Option
	if e.topK > 0 {
		opts = append(opts, retriever.WithTopK(e.topK))
	}

	docs, err := e.retriever.Retrieve(ctx, query, opts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrRetrievalFailed, err, "retrieval failed")
	}
	return docs, nil
}

// Query 检索并生成答案
func (e *QueryEngine) Query(ctx context.Context, query string) (*QueryResult, error) {
	if e.chatModel == nil {
		return nil, errors.New(errors.ErrModelNotConfigured, "chat model is not configured, only retrieval is available")
	}

	docs, err := e.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	// 格式化文档为系统提示
	systemContent := e.systemPrompt
	if formattedDocs := formatDocumentsForAnswer(docs); formattedDocs != "" {
		systemContent += "\n\n" + formattedDocs
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: systemContent},
		{Role: schema.User, Content: query},
	}

	resp, err := e.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, errors.Wrap(errors.ErrLLMCallFailed, err, "generate answer failed")
	}

	g.Log().Debugf(ctx, "query answered, sources: %d, answer length: %d", len(docs), len(resp.Content))

	return &QueryResult{
		Answer:      resp.Content,
		Reasoning:   resp.ReasoningContent,
		SourceNodes: docs,
	}, nil
}

// formatDocumentsForAnswer 把检索结果编号后拼进提示词
func formatDocumentsForAnswer(docs []*schema.Document) string {
	if len(docs) == 0 {
		return ""
	}

	var builder strings.Builder
	builder.WriteString("参考资料:\n")
	for i, doc := range docs {
		builder.WriteString(fmt.Sprintf("[%d] %s\n", i+1, doc.Content))
	}
	return builder.String()
}
