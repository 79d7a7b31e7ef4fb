package ragpack

import (
	"context"

	v1 "github.com/Malowking/ragpack/api/ragpack/v1"
	"github.com/Malowking/ragpack/internal/logic/documents"
)

func (c *ControllerV1) DocumentsList(ctx context.Context, req *v1.DocumentsListReq) (res *v1.DocumentsListRes, err error) {
	files, err := documents.List(ctx, req.Collection)
	if err != nil {
		return
	}

	infos := make([]v1.DocumentFileInfo, 0, len(files))
	for _, f := range files {
		infos = append(infos, v1.DocumentFileInfo{
			Name: f.Name,
			URI:  f.URI,
			Size: f.Size,
		})
	}
	return &v1.DocumentsListRes{
		Files: infos,
		Total: len(infos),
	}, nil
}
