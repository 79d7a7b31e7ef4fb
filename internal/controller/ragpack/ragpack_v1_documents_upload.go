package ragpack

import (
	"context"

	v1 "github.com/Malowking/ragpack/api/ragpack/v1"
	"github.com/Malowking/ragpack/internal/logic/documents"
	"github.com/gogf/gf/v2/frame/g"
)

func (c *ControllerV1) DocumentUpload(ctx context.Context, req *v1.DocumentUploadReq) (res *v1.DocumentUploadRes, err error) {
	g.Log().Infof(ctx, "document upload, collection: %s, file: %s", req.Collection, req.File.Filename)

	result, err := documents.Upload(ctx, req.Collection, req.File)
	if err != nil {
		return
	}
	return &v1.DocumentUploadRes{
		URI:      result.URI,
		FileName: result.FileName,
		Size:     result.Size,
	}, nil
}
