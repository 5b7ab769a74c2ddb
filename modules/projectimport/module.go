package projectimport

import (
	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/presentation/controllers"
	"github.com/VishnuMohan31/Worky-sub005/modules/projectimport/services"
	"github.com/VishnuMohan31/Worky-sub005/pkg/application"
	"github.com/VishnuMohan31/Worky-sub005/pkg/configuration"
)

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	app.RegisterServices(
		services.NewPgImportService(
			services.Options{
				MaxUploadSize: conf.Import.MaxUploadSize,
				Timeout:       conf.Import.Timeout,
				BatchSize:     conf.Import.BatchSize,
			},
			app.EventPublisher(),
			app.Logger(),
		),
	)

	app.RegisterControllers(
		controllers.NewImportAPIController(app),
	)

	return nil
}

func (m *Module) Name() string {
	return "projectimport"
}
