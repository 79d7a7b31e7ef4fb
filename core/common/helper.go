package common

import (
	"net/url"

	"github.com/cloudwego/eino/schema"
)

func IsURL(str string) bool {
	u, err := url.Parse(str)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// CloneDocument 深拷贝文档，元数据使用新map
// 检索链路给结果写分数时会修改 MetaData，共享底层文档的场景必须先拷贝
func CloneDocument(doc *schema.Document) *schema.Document {
	if doc == nil {
		return nil
	}
	clone := &schema.Document{
		ID:      doc.ID,
		Content: doc.Content,
	}
	if doc.MetaData != nil {
		clone.MetaData = make(map[string]any, len(doc.MetaData))
		for k, v := range doc.MetaData {
			clone.MetaData[k] = v
		}
	}
	return clone
}
