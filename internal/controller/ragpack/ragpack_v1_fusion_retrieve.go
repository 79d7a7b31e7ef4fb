package ragpack

import (
	"context"

	v1 "github.com/Malowking/ragpack/api/ragpack/v1"
	"github.com/Malowking/ragpack/internal/logic/packs"
)

func (c *ControllerV1) FusionRetrieve(ctx context.Context, req *v1.FusionRetrieveReq) (res *v1.FusionRetrieveRes, err error) {
	docs, err := packs.RetrieveFusion(ctx, req.Question, req.TopK, req.Score)
	if err != nil {
		return
	}
	return &v1.FusionRetrieveRes{
		Document: docs,
	}, nil
}
