package ragpack

import (
	"context"

	v1 "github.com/Malowking/ragpack/api/ragpack/v1"
	"github.com/Malowking/ragpack/internal/logic/packs"
)

func (c *ControllerV1) FusionModules(ctx context.Context, req *v1.FusionModulesReq) (res *v1.FusionModulesRes, err error) {
	modules, err := packs.FusionModules()
	if err != nil {
		return
	}
	return &v1.FusionModulesRes{
		Modules: modules,
	}, nil
}
