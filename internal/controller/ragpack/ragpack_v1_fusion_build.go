package ragpack

import (
	"context"

	v1 "github.com/Malowking/ragpack/api/ragpack/v1"
	"github.com/Malowking/ragpack/internal/logic/packs"
	"github.com/gogf/gf/v2/frame/g"
)

func (c *ControllerV1) FusionBuild(ctx context.Context, req *v1.FusionBuildReq) (res *v1.FusionBuildRes, err error) {
	g.Log().Infof(ctx, "fusion build request, sources: %d, texts: %d, mode: %s, num_queries: %d",
		len(req.Sources), len(req.Texts), req.Mode, req.NumQueries)

	documents, chunks, err := packs.BuildFusion(ctx, &packs.BuildFusionInput{
		Sources:     req.Sources,
		Texts:       req.Texts,
		ChunkSize:   req.ChunkSize,
		OverlapSize: req.OverlapSize,
		Mode:        req.Mode,
		VectorTopK:  req.VectorTopK,
		BM25TopK:    req.BM25TopK,
		FusionTopK:  req.FusionTopK,
		NumQueries:  req.NumQueries,
		Collection:  req.Collection,
	})
	if err != nil {
		return
	}

	return &v1.FusionBuildRes{
		Documents: documents,
		Chunks:    chunks,
	}, nil
}
