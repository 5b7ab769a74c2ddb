package modules

import (
	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport"
	"github.com/VishnuMohan31/Worky-sub005/pkg/application"
)

var BuiltInModules = []application.Module{
	projectimport.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
