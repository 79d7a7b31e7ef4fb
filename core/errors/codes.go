package errors

// ErrCode 业务错误码类型
type ErrCode int

const (
	// 通用错误 1000-1999
	ErrInvalidParameter ErrCode = 1001 // 参数错误
	ErrInternalError    ErrCode = 1003 // 内部错误
	ErrNotFound         ErrCode = 1004 // 资源未找到

	// 模型相关 2000-2999
	ErrEmbeddingFailed    ErrCode = 2003 // Embedding失败
	ErrLLMCallFailed      ErrCode = 2004 // LLM调用失败
	ErrModelNotConfigured ErrCode = 2005 // 模型未配置

	// Pack 相关 3000-3999
	ErrPackNotBuilt    ErrCode = 3001 // Pack尚未构建
	ErrPackBuildFailed ErrCode = 3002 // Pack构建失败
	ErrEmptyCorpus     ErrCode = 3003 // 语料为空

	// 文档相关 4000-4999
	ErrDocumentParseFailed ErrCode = 4002 // 文档解析失败
	ErrFileSizeExceeded    ErrCode = 4004 // 文件大小超限
	ErrFileUploadFailed    ErrCode = 4005 // 文件上传失败
	ErrFileReadFailed      ErrCode = 4007 // 文件读取失败

	// 向量数据库 5000-5999
	ErrVectorStoreInit     ErrCode = 5001 // 向量库初始化失败
	ErrVectorSearch        ErrCode = 5002 // 向量搜索失败
	ErrVectorInsert        ErrCode = 5003 // 向量插入失败
	ErrVectorStoreNotFound ErrCode = 5005 // 向量库不存在

	// 检索相关 9000-9999
	ErrRetrievalFailed ErrCode = 9001 // 检索失败
	ErrRewriteFailed   ErrCode = 9002 // 查询重写失败
)

// HTTPStatusCode 返回错误码对应的HTTP状态码
func (e ErrCode) HTTPStatusCode() int {
	switch {
	case e >= 1001 && e <= 1999:
		// 通用错误
		switch e {
		case ErrInvalidParameter:
			return 400
		case ErrNotFound:
			return 404
		default:
			return 500
		}
	case e >= 3000 && e <= 3999:
		// Pack 相关错误
		switch e {
		case ErrPackNotBuilt:
			return 404
		case ErrEmptyCorpus:
			return 400
		default:
			return 500
		}
	case e >= 4000 && e <= 4999:
		// 文档相关错误
		if e == ErrFileSizeExceeded {
			return 413
		}
		return 500
	default:
		return 500
	}
}
