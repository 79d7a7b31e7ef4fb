package ragpack

import (
	"context"

	v1 "github.com/Malowking/ragpack/api/ragpack/v1"
	"github.com/Malowking/ragpack/internal/logic/packs"
)

func (c *ControllerV1) FusionQuery(ctx context.Context, req *v1.FusionQueryReq) (res *v1.FusionQueryRes, err error) {
	result, err := packs.QueryFusion(ctx, req.Question)
	if err != nil {
		return
	}
	return &v1.FusionQueryRes{
		Answer:      result.Answer,
		Reasoning:   result.Reasoning,
		SourceNodes: result.SourceNodes,
	}, nil
}
