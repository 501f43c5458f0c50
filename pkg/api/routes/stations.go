package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/gbfsmap/pkg/mapsession"
)

func StationsRouter(router fiber.Router, session *mapsession.Session) {
	router.Get("/directives", stationDirectives(session))
}

func stationDirectives(session *mapsession.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		directives, err := sheriff.Marshal(&sheriff.Options{
			Groups: responseGroups(c),
		}, session.Directives())
		if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": "Sherrif could not reduce directives",
			})
		}

		return c.JSON(fiber.Map{
			"mode":       session.Mode().String(),
			"directives": directives,
		})
	}
}
