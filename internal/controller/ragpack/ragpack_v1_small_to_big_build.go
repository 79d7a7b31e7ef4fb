package ragpack

import (
	"context"

	v1 "github.com/Malowking/ragpack/api/ragpack/v1"
	"github.com/Malowking/ragpack/internal/logic/packs"
	"github.com/gogf/gf/v2/frame/g"
)

func (c *ControllerV1) SmallToBigBuild(ctx context.Context, req *v1.SmallToBigBuildReq) (res *v1.SmallToBigBuildRes, err error) {
	g.Log().Infof(ctx, "small2big build request, sources: %d, texts: %d, top_k: %d",
		len(req.Sources), len(req.Texts), req.TopK)

	documents, parents, children, err := packs.BuildSmallToBig(ctx, &packs.BuildSmallToBigInput{
		Sources:    req.Sources,
		Texts:      req.Texts,
		TopK:       req.TopK,
		Collection: req.Collection,
	})
	if err != nil {
		return
	}

	return &v1.SmallToBigBuildRes{
		Documents: documents,
		Parents:   parents,
		Children:  children,
	}, nil
}
