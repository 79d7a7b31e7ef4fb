package retriever

// FusionMode 融合检索的得分合并策略
type FusionMode string

const (
	// FusionModeReciprocalRerank 倒数排名融合，只看排名不看原始分数
	FusionModeReciprocalRerank FusionMode = "reciprocal_rerank"
	// FusionModeRelativeScore 相对得分融合，各路结果先做 min-max 归一再加权求和
	FusionModeRelativeScore FusionMode = "relative_score"
)

// Valid 是否是支持的融合模式
func (m FusionMode) Valid() bool {
	switch m {
	case FusionModeReciprocalRerank, FusionModeRelativeScore:
		return true
	}
	return false
}

// RetrieverConfig 后端适配成标准检索器时的运行参数
// TopK 为0表示沿用后端自己的默认值
type RetrieverConfig struct {
	TopK           int      // 检索结果数量
	ScoreThreshold *float64 // 分数阀值（可选，0-1范围）
}
