package container

import (
	app "railscan/internal/application"
	"railscan/internal/domain/port"
)

type Container struct {
	UserService    *app.UserService
	CatalogService *app.CatalogService
}

func New(userRepo port.UserRepository, inspRepo port.InspectionRepository, detector port.AnomalyDetector, images port.ImageStore) *Container {
	userService := app.NewUserService(userRepo)
	catalogService := app.NewCatalogService(inspRepo, detector, images)

	return &Container{
		UserService:    userService,
		CatalogService: catalogService,
	}
}
