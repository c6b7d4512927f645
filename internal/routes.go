package internal

import (
	"net/http"
	"pcsd/internal/controllers"
	"pcsd/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController, menuController *controllers.MenuController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/report", http.HandlerFunc(apiController.GetReport))
	routers.Get("/graph", http.HandlerFunc(apiController.GetGraph))
	routers.Get("/ranges", http.HandlerFunc(apiController.GetRanges))
	routers.Post("/snapshots", http.HandlerFunc(apiController.RecordSnapshot))
	routers.Get("/snapshots/latest", http.HandlerFunc(apiController.LatestSnapshot))
	routers.Get("/snapshots/at", http.HandlerFunc(apiController.SnapshotAt))
	routers.Get("/series", http.HandlerFunc(apiController.GetSeries))

	routers.Get("/menus", http.HandlerFunc(menuController.GetMenus))
	routers.Post("/menus", http.HandlerFunc(menuController.SaveMenu))
	routers.Delete("/menus", http.HandlerFunc(menuController.DeleteMenu))
	routers.Get("/menus/report", http.HandlerFunc(menuController.MenuReport))
	return routers
}
