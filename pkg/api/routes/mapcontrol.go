package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/gbfsmap/pkg/mapsession"
)

type zoomRequest struct {
	Zoom  *float64 `json:"zoom"`
	Flush bool     `json:"flush"`
}

func MapRouter(router fiber.Router, session *mapsession.Session) {
	router.Post("/zoom", zoom(session))
}

func zoom(session *mapsession.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var request zoomRequest
		if err := c.BodyParser(&request); err != nil || request.Zoom == nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "zoom is required",
			})
		}

		session.Zoom(*request.Zoom)

		rendered := false
		if request.Flush {
			rendered = session.FlushZoom()
		}

		c.Status(fiber.StatusAccepted)
		return c.JSON(fiber.Map{
			"zoom":     *request.Zoom,
			"mode":     session.Mode().String(),
			"rendered": rendered,
		})
	}
}

func Reload(session *mapsession.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, err := session.Reload(c.UserContext())
		if err != nil {
			c.SendStatus(fiber.StatusBadGateway)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(report)
	}
}
