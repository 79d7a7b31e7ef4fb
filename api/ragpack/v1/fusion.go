package v1

import (
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
)

type FusionBuildReq struct {
	g.Meta      `path:"/v1/packs/fusion/build" method:"post" tags:"fusion"`
	Sources     []string `json:"sources" dc:"语料来源，本地路径/http(s) URL/s3://bucket/key"`
	Texts       []string `json:"texts" dc:"内联文档内容，与sources至少提供一个"`
	ChunkSize   int      `json:"chunk_size"`              // Default is 256
	OverlapSize int      `json:"overlap_size"`            // Default is 20
	Mode        string   `json:"mode"`                    // reciprocal_rerank / relative_score (default reciprocal_rerank)
	VectorTopK  int      `json:"vector_similarity_top_k"` // Default is 2
	BM25TopK    int      `json:"bm25_similarity_top_k"`   // Default is 2
	FusionTopK  int      `json:"fusion_similarity_top_k"` // Default is 2
	NumQueries  int      `json:"num_queries"`             // 查询总数，含原始查询，1表示关闭查询扩展 (default 4)
	Collection  string   `json:"collection"`              // 向量集合名
}

type FusionBuildRes struct {
	g.Meta    `mime:"application/json"`
	Documents int `json:"documents"` // 加载的文档数
	Chunks    int `json:"chunks"`    // 建索引的分片数
}

type FusionRetrieveReq struct {
	g.Meta   `path:"/v1/packs/fusion/retrieve" method:"post" tags:"fusion"`
	Question string  `json:"question" v:"required"`
	TopK     int     `json:"top_k"` // 为0时使用pack配置的fusion_similarity_top_k
	Score    float64 `json:"score"` // 分数下限，0-1范围，为0时不过滤
}

type FusionRetrieveRes struct {
	g.Meta   `mime:"application/json"`
	Document []*schema.Document `json:"document"`
}

type FusionQueryReq struct {
	g.Meta   `path:"/v1/packs/fusion/query" method:"post" tags:"fusion"`
	Question string `json:"question" v:"required"`
}

type FusionQueryRes struct {
	g.Meta      `mime:"application/json"`
	Answer      string             `json:"answer"`
	Reasoning   string             `json:"reasoning,omitempty"`
	SourceNodes []*schema.Document `json:"source_nodes"`
}

type FusionModulesReq struct {
	g.Meta `path:"/v1/packs/fusion/modules" method:"get" tags:"fusion"`
}

type FusionModulesRes struct {
	g.Meta  `mime:"application/json"`
	Modules []string `json:"modules"`
}
