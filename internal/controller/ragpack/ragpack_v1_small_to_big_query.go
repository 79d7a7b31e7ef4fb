package ragpack

import (
	"context"

	v1 "github.com/Malowking/ragpack/api/ragpack/v1"
	"github.com/Malowking/ragpack/internal/logic/packs"
)

func (c *ControllerV1) SmallToBigQuery(ctx context.Context, req *v1.SmallToBigQueryReq) (res *v1.SmallToBigQueryRes, err error) {
	result, err := packs.QuerySmallToBig(ctx, req.Question)
	if err != nil {
		return
	}
	return &v1.SmallToBigQueryRes{
		Answer:      result.Answer,
		Reasoning:   result.Reasoning,
		SourceNodes: result.SourceNodes,
	}, nil
}
