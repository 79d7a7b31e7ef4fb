package ragpack

import (
	"context"

	v1 "github.com/Malowking/ragpack/api/ragpack/v1"
	"github.com/Malowking/ragpack/internal/logic/packs"
)

func (c *ControllerV1) SmallToBigModules(ctx context.Context, req *v1.SmallToBigModulesReq) (res *v1.SmallToBigModulesRes, err error) {
	modules, err := packs.SmallToBigModules()
	if err != nil {
		return
	}
	return &v1.SmallToBigModulesRes{
		Modules: modules,
	}, nil
}
