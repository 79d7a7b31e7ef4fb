package retriever

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/os/gcache"
)

// QueryRewriter 查询扩展器
// 用 LLM 把原始查询改写成若干个表述角度不同的查询，提升混合召回的覆盖面
type QueryRewriter struct {
	model       model.BaseChatModel
	cache       *gcache.Cache
	cacheExpire time.Duration
}

// NewQueryRewriter 创建查询扩展器，chatModel 为 nil 时扩展直接退化为原始查询
func NewQueryRewriter(chatModel model.BaseChatModel) *QueryRewriter {
	return &QueryRewriter{
		model:       chatModel,
		cache:       gcache.New(),
		cacheExpire: time.Minute * 5, // 缓存5分钟
	}
}

const expandSystemPrompt = `你是一个检索查询扩展助手。你的任务是把用户的原始问题改写成若干个语义相同但表述角度不同的检索查询。

核心规则：
1. 每个查询独占一行，不要编号、不要引号、不要任何解释
2. 保持原始问题的语言，不要翻译
3. 不要引入原始问题没有提到的主题
4. 查询之间用词尽量不同，覆盖同义词和相关表述

示例：
原始问题: 如何提高深度学习模型的训练速度?
输出:
深度学习训练加速的方法有哪些
怎样缩短神经网络模型的训练时间
模型训练性能优化技巧`

// GenerateQueries 生成检索查询列表，首个元素恒为原始查询
// total 是包含原始查询在内的总数，小于等于1时不调用模型，检索结果保持确定性
func (r *QueryRewriter) GenerateQueries(ctx context.Context, query string, total int) []string {
	if total <= 1 {
		return []string{query}
	}
	if r == nil || r.model == nil {
		g.Log().Debugf(ctx, "no rewrite model configured, skip query expansion")
		return []string{query}
	}

	cacheKey := fmt.Sprintf("query_expand:%d:%s", total, query)
	if cached, err := r.cache.Get(ctx, cacheKey); err == nil && cached != nil && !cached.IsEmpty() {
		queries := strings.Split(cached.String(), "\n")
		if len(queries) > 0 {
			g.Log().Debugf(ctx, "query expansion cache hit: [%s] -> %d queries", query, len(queries))
			return queries
		}
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: expandSystemPrompt},
		{Role: schema.User, Content: fmt.Sprintf("请生成 %d 个查询。\n原始问题: %s\n输出:", total-1, query)},
	}

	resp, err := r.model.Generate(ctx, messages)
	if err != nil {
		// 扩展失败不阻断检索，退回只用原始查询
		g.Log().Warningf(ctx, "query expansion failed: %v, falling back to the original query", err)
		return []string{query}
	}

	queries := append([]string{query}, parseGeneratedQueries(resp.Content, query, total-1)...)
	r.cache.Set(ctx, cacheKey, strings.Join(queries, "\n"), r.cacheExpire)

	g.Log().Infof(ctx, "query expansion: [%s] -> %d queries", query, len(queries))
	return queries
}

// parseGeneratedQueries 按行解析模型输出，清理编号和引号，去重去空
func parseGeneratedQueries(content, original string, limit int) []string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, limit)
	seen := map[string]bool{original: true}

	for _, line := range lines {
		q := strings.TrimSpace(line)
		q = strings.TrimLeft(q, "0123456789.、)- ")
		q = strings.Trim(q, `"'「」『』【】""''`)
		q = strings.TrimSpace(q)
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
		if len(out) >= limit {
			break
		}
	}

	return out
}
