package ragpack

import (
	"context"

	v1 "github.com/Malowking/ragpack/api/ragpack/v1"
	"github.com/Malowking/ragpack/internal/logic/packs"
)

func (c *ControllerV1) SmallToBigRetrieve(ctx context.Context, req *v1.SmallToBigRetrieveReq) (res *v1.SmallToBigRetrieveRes, err error) {
	docs, err := packs.RetrieveSmallToBig(ctx, req.Question, req.TopK, req.Score)
	if err != nil {
		return
	}
	return &v1.SmallToBigRetrieveRes{
		Document: docs,
	}, nil
}
