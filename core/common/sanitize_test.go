package common

import (
	"strings"
	"testing"
)

func TestSanitizeMilvusString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "正常字符串",
			input:    "normal-string-123",
			expected: "normal-string-123",
		},
		{
			name:     "包含双引号",
			input:    `test"value`,
			expected: `test\"value`,
		},
		{
			name:     "包含反斜杠",
			input:    `test\value`,
			expected: `test\\value`,
		},
		{
			name:     "注入尝试 - 双引号",
			input:    `test" OR 1==1 OR "`,
			expected: `test\" OR 1==1 OR \"`,
		},
		{
			name:     "复杂注入尝试",
			input:    `test\"; DROP TABLE users; --`,
			expected: `test\\\"; DROP TABLE users; --`,
		},
		{
			name:     "空字符串",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeMilvusString(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeMilvusString(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidateCollectionName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{
			name:     "有效 - 字母开头",
			input:    "myCollection",
			expected: true,
		},
		{
			name:     "有效 - 包含下划线",
			input:    "my_collection_123",
			expected: true,
		},
		{
			name:     "有效 - 大写字母",
			input:    "MyCollection",
			expected: true,
		},
		{
			name:     "无效 - 数字开头",
			input:    "123collection",
			expected: false,
		},
		{
			name:     "无效 - 包含特殊字符",
			input:    "my-collection",
			expected: false,
		},
		{
			name:     "无效 - 包含空格",
			input:    "my collection",
			expected: false,
		},
		{
			name:     "无效 - 路径穿越",
			input:    "../corpus",
			expected: false,
		},
		{
			name:     "无效 - 空字符串",
			input:    "",
			expected: false,
		},
		{
			name:     "有效 - 边界情况（255字符）",
			input:    strings.Repeat("a", 255),
			expected: true,
		},
		{
			name:     "无效 - 太长（超过255字符）",
			input:    strings.Repeat("a", 256),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateCollectionName(tt.input)
			if result != tt.expected {
				t.Errorf("ValidateCollectionName(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

// Benchmark 性能测试
func BenchmarkSanitizeMilvusString(b *testing.B) {
	input := `test"value\with"special\chars`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SanitizeMilvusString(input)
	}
}
