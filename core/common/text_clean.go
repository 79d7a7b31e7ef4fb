package common

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// CleanProfile 文本清洗配置文件
type CleanProfile int

const (
	ProfileCommon    CleanProfile = iota // 通用安全集
	ProfileEmbedding                     // 向量化友好（标准化空格和换行）
)

var (
	// 多个空格/制表符合并为一个空格
	spaceRe = regexp.MustCompile(`[ \t\f\v]+`)
	// 多个换行符（3个或以上）合并为两个换行
	newlineRe = regexp.MustCompile(`\n{3,}`)
)

// 零宽字符集合
var zeroWidthRunes = map[rune]bool{
	'​': true, // Zero Width Space
	'‌': true, // Zero Width Non-Joiner
	'‍': true, // Zero Width Joiner
	'﻿': true, // Zero Width No-Break Space (BOM)
	'⁠': true, // Word Joiner
	'᠎': true, // Mongolian Vowel Separator
}

// 非标准空格字符映射（转换为普通空格）
var nonStandardSpaces = map[rune]bool{
	' ': true, // Non-breaking space
	' ': true, // Ogham Space Mark
	' ': true, // En Quad
	' ': true, // Em Quad
	' ': true, // En Space
	' ': true, // Em Space
	' ': true, // Three-Per-Em Space
	' ': true, // Four-Per-Em Space
	' ': true, // Six-Per-Em Space
	' ': true, // Figure Space
	' ': true, // Punctuation Space
	' ': true, // Thin Space
	' ': true, // Hair Space
	' ': true, // Narrow No-Break Space
	' ': true, // Medium Mathematical Space
	'　': true, // Ideographic Space (全角空格)
}

// CleanText 统一的文本清洗入口
// 参数：
//   - input: 待清洗的文本（byte数组）
//   - profile: 清洗配置文件
//
// 返回：
//   - 清洗后的文本
//   - 错误信息（如果有）
func CleanText(input []byte, profile CleanProfile) (string, error) {
	// 1. UTF-8 校验
	if !utf8.Valid(input) {
		return "", errors.New("invalid UTF-8 sequence")
	}

	s := string(input)

	// 2. NULL 字符清理
	s = strings.ReplaceAll(s, " ", "")

	// 3. 控制字符清理（保留 \n, \t, \r）
	s = removeControlChars(s)

	// 4. 零宽字符 & BOM 清理
	s = removeZeroWidthChars(s)

	// 5. Unicode 归一化（NFC标准）
	s = norm.NFC.String(s)

	// 6. 根据Profile进行定制清洗
	switch profile {
	case ProfileEmbedding:
		// 向量化友好：标准化空格和换行
		s = normalizeWhitespace(s)
		s = normalizeNonStandardSpaces(s)

	case ProfileCommon:
		// 通用模式：基础清理 + 非标准空格转换
		s = normalizeNonStandardSpaces(s)
	}

	return s, nil
}

// CleanString 便捷方法：直接接受string参数
func CleanString(input string, profile CleanProfile) (string, error) {
	return CleanText([]byte(input), profile)
}

// ==========================
// 辅助函数
// ==========================

// removeControlChars 清理控制字符（保留 \n, \t, \r）
func removeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		// 保留换行、制表符和回车
		if r == '\n' || r == '\t' || r == '\r' {
			b.WriteRune(r)
			continue
		}
		// 跳过其他控制字符（<0x20 或 0x7F）
		if r < 0x20 || r == 0x7F {
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// removeZeroWidthChars 清理零宽字符
func removeZeroWidthChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if zeroWidthRunes[r] {
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// normalizeNonStandardSpaces 将非标准空格转换为普通空格
func normalizeNonStandardSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if nonStandardSpaces[r] {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// normalizeWhitespace 标准化空格和换行符
func normalizeWhitespace(s string) string {
	// 统一换行符
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	// 合并多个空格为一个
	s = spaceRe.ReplaceAllString(s, " ")

	// 合并多个换行为两个（保留段落分隔）
	s = newlineRe.ReplaceAllString(s, "\n\n")

	// 清理首尾空白
	return strings.TrimSpace(s)
}
