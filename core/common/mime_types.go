package common

// MimeTypeMap 语料文件扩展名到MIME类型的映射表
// 标准库 mime.TypeByExtension 依赖系统的 /etc/mime.types，跨平台结果不一致，
// 这里维护一份语料场景常见格式的固定映射
var MimeTypeMap = map[string]string{
	// 文本和标记格式
	".txt":  "text/plain",
	".md":   "text/markdown",
	".html": "text/html",
	".htm":  "text/html",
	".xml":  "application/xml",
	".json": "application/json",
	".csv":  "text/csv",

	// 办公文档格式
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// GetMimeTypeOrDefault 根据文件扩展名获取MIME类型
func GetMimeTypeOrDefault(ext string, defaultType string) string {
	if mime, ok := MimeTypeMap[ext]; ok {
		return mime
	}
	return defaultType
}
