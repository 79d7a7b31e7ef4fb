package v1

import (
	"github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
)

type SmallToBigBuildReq struct {
	g.Meta     `path:"/v1/packs/small2big/build" method:"post" tags:"small2big"`
	Sources    []string `json:"sources" dc:"语料来源，本地路径/http(s) URL/s3://bucket/key"`
	Texts      []string `json:"texts" dc:"内联文档内容，与sources至少提供一个"`
	TopK       int      `json:"similarity_top_k"` // Default is 2
	Collection string   `json:"collection"`       // 向量集合名
}

type SmallToBigBuildRes struct {
	g.Meta    `mime:"application/json"`
	Documents int `json:"documents"` // 加载的文档数
	Parents   int `json:"parents"`   // 父分片数
	Children  int `json:"children"`  // 子分片数
}

type SmallToBigRetrieveReq struct {
	g.Meta   `path:"/v1/packs/small2big/retrieve" method:"post" tags:"small2big"`
	Question string  `json:"question" v:"required"`
	TopK     int     `json:"top_k"` // 为0时使用pack配置的similarity_top_k
	Score    float64 `json:"score"` // 分数下限，0-1范围，为0时不过滤
}

type SmallToBigRetrieveRes struct {
	g.Meta   `mime:"application/json"`
	Document []*schema.Document `json:"document"`
}

type SmallToBigQueryReq struct {
	g.Meta   `path:"/v1/packs/small2big/query" method:"post" tags:"small2big"`
	Question string `json:"question" v:"required"`
}

type SmallToBigQueryRes struct {
	g.Meta      `mime:"application/json"`
	Answer      string             `json:"answer"`
	Reasoning   string             `json:"reasoning,omitempty"`
	SourceNodes []*schema.Document `json:"source_nodes"`
}

type SmallToBigModulesReq struct {
	g.Meta `path:"/v1/packs/small2big/modules" method:"get" tags:"small2big"`
}

type SmallToBigModulesRes struct {
	g.Meta  `mime:"application/json"`
	Modules []string `json:"modules"`
}
