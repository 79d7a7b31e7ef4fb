package common

import (
	"regexp"
	"strings"
)

// SanitizeMilvusString 转义 Milvus 表达式中的特殊字符
// 防止通过特殊字符进行表达式注入
func SanitizeMilvusString(s string) string {
	// 转义反斜杠（必须先转义）
	s = strings.ReplaceAll(s, `\`, `\\`)
	// 转义双引号
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

var collectionNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// ValidateCollectionName 验证集合名称（只允许字母、数字、下划线）
// Milvus 集合名称规范: 1-255 字符，字母开头，只能包含字母、数字、下划线
func ValidateCollectionName(name string) bool {
	if len(name) == 0 || len(name) > 255 {
		return false
	}
	return collectionNamePattern.MatchString(name)
}
