package v1

import (
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/net/ghttp"
)

type DocumentUploadReq struct {
	g.Meta     `path:"/v1/documents/upload" method:"post" mime:"multipart/form-data" tags:"documents"`
	File       *ghttp.UploadFile `p:"file" type:"file" dc:"上传的语料文件" v:"required"`
	Collection string            `p:"collection" dc:"文件归属的集合目录" d:"default"`
}

type DocumentUploadRes struct {
	g.Meta   `mime:"application/json"`
	URI      string `json:"uri"` // 可直接用于 build 请求 sources 的地址
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
}

type DocumentFileInfo struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
	Size int64  `json:"size"`
}

type DocumentsListReq struct {
	g.Meta     `path:"/v1/documents" method:"get" tags:"documents"`
	Collection string `p:"collection" dc:"集合目录" d:"default"`
}

type DocumentsListRes struct {
	g.Meta `mime:"application/json"`
	Files  []DocumentFileInfo `json:"files"`
	Total  int                `json:"total"`
}
