package retriever

import (
	"context"
	"sort"

	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
)

// sortByScore 按分数降序排序，持平时按ID升序，保证结果顺序稳定
func sortByScore(docs []*schema.Document) {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Score() == docs[j].Score() {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].Score() > docs[j].Score()
	})
}

// truncateTopK 截取前K个结果，topK小于等于0时不截取
func truncateTopK(docs []*schema.Document, topK int) []*schema.Document {
	if topK > 0 && len(docs) > topK {
		return docs[:topK]
	}
	return docs
}

// filterByScore 过滤低分文档
func filterByScore(ctx context.Context, docs []*schema.Document, threshold *float64) []*schema.Document {
	if threshold == nil {
		return docs
	}
	var related []*schema.Document
	for _, doc := range docs {
		if doc.Score() < *threshold {
			g.Log().Debugf(ctx, "score less: %v, related: %v", doc.Score(), doc.Content)
			continue
		}
		related = append(related, doc)
	}
	return related
}
