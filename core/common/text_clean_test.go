package common

import (
	"strings"
	"testing"
)

func TestCleanStringEmbedding(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "零宽字符被移除",
			input:    "hello​world",
			expected: "helloworld",
		},
		{
			name:     "BOM被移除",
			input:    "﻿hello",
			expected: "hello",
		},
		{
			name:     "控制字符被移除",
			input:    "helloworld",
			expected: "helloworld",
		},
		{
			name:     "保留换行和制表符",
			input:    "a\tb\nc",
			expected: "a b\nc", // ProfileEmbedding 合并空白
		},
		{
			name:     "多个空格合并",
			input:    "hello    world",
			expected: "hello world",
		},
		{
			name:     "多个换行合并为段落分隔",
			input:    "para1\n\n\n\n\npara2",
			expected: "para1\n\npara2",
		},
		{
			name:     "全角空格转换",
			input:    "你好　世界",
			expected: "你好 世界",
		},
		{
			name:     "首尾空白被清理",
			input:    "  hello  ",
			expected: "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanString(tt.input, ProfileEmbedding)
			if err != nil {
				t.Fatalf("CleanString failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("CleanString(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanStringCommon(t *testing.T) {
	// ProfileCommon 不合并空白，只做基础清理
	got, err := CleanString("a  b​", ProfileCommon)
	if err != nil {
		t.Fatalf("CleanString failed: %v", err)
	}
	if got != "a  b" {
		t.Errorf("CleanString = %q, want %q", got, "a  b")
	}
}

func TestCleanTextInvalidUTF8(t *testing.T) {
	_, err := CleanText([]byte{0xff, 0xfe, 0xfd}, ProfileEmbedding)
	if err == nil {
		t.Error("Expected error for invalid UTF-8 input")
	}
}

func TestCleanTextNullBytes(t *testing.T) {
	got, err := CleanText([]byte("a b"), ProfileCommon)
	if err != nil {
		t.Fatalf("CleanText failed: %v", err)
	}
	if strings.Contains(got, " ") {
		t.Error("Expected NULL bytes to be removed")
	}
	if got != "ab" {
		t.Errorf("CleanText = %q, want %q", got, "ab")
	}
}
