//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"pcsd/internal"
	"pcsd/internal/archive"
	"pcsd/internal/controllers"
	"pcsd/internal/providers"
	"pcsd/internal/services"
	"pcsd/internal/storage"
	"pcsd/internal/structures"
)

var storageSet = wire.NewSet(
	providers.NewDatabaseProvider,
	storage.NewSnapshotStore,
	wire.Bind(new(storage.SnapshotStoreInterface), new(*storage.SnapshotStore)),
	storage.NewMenuStore,
	wire.Bind(new(storage.MenuStoreInterface), new(*storage.MenuStore)),
)

var serviceSet = wire.NewSet(
	services.NewAcquirer,
	services.NewSnapshotService,
	services.NewGraphService,
	services.NewReportService,
	services.NewMenuService,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		storageSet,
		serviceSet,

		archive.NewZstdCompressor,
		archive.NewFileManager,
		archive.NewScheduler,
		controllers.NewApiController,
		controllers.NewMenuController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil
}
