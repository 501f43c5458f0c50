package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/gbfsmap/pkg/mapsession"
)

func VehiclesRouter(router fiber.Router, session *mapsession.Session) {
	router.Get("/", listVehicles(session))
}

func listVehicles(session *mapsession.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snapshot := session.Snapshot()
		if snapshot == nil {
			c.SendStatus(fiber.StatusServiceUnavailable)
			return c.JSON(fiber.Map{
				"error": mapsession.ErrNotLoaded.Error(),
			})
		}

		views := make([]vehicleView, 0, len(snapshot.Vehicles))
		for _, vehicle := range snapshot.Vehicles {
			view, err := newVehicleView(vehicle)
			if err != nil {
				c.SendStatus(fiber.StatusInternalServerError)
				return c.JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			views = append(views, view)
		}

		vehicles, err := sheriff.Marshal(&sheriff.Options{
			Groups: responseGroups(c),
		}, views)
		if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": "Sherrif could not reduce vehicles",
			})
		}

		return c.JSON(fiber.Map{
			"total":     len(snapshot.Vehicles),
			"available": snapshot.AvailableVehicles(),
			"vehicles":  vehicles,
		})
	}
}
