package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/travigo/gbfsmap/pkg/api/routes"
	"github.com/travigo/gbfsmap/pkg/mapsession"
	"github.com/travigo/gbfsmap/pkg/metrics"
)

func NewApp(session *mapsession.Session) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	webApp.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.ZonesRouter(group.Group("/zones"), session)
	routes.StationsRouter(group.Group("/stations"), session)
	routes.MapRouter(group.Group("/map"), session)
	routes.VehiclesRouter(group.Group("/vehicles"), session)

	group.Post("reload", routes.Reload(session))

	return webApp
}

func SetupServer(listen string, session *mapsession.Session) error {
	return NewApp(session).Listen(listen)
}
