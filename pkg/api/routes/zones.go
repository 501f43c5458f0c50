package routes

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/gbfsmap/pkg/geometry"
	"github.com/travigo/gbfsmap/pkg/mapsession"
)

func ZonesRouter(router fiber.Router, session *mapsession.Session) {
	router.Get("/containing", containingZones(session))
	router.Get("/stats", zoneStats(session))
}

func responseGroups(c *fiber.Ctx) []string {
	if c.QueryBool("detailed", false) {
		return []string{"basic", "detailed"}
	}
	return []string{"basic"}
}

func queryCoordinate(c *fiber.Ctx, key string, limit float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, errors.New(key + " is required")
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(key + " must be a number")
	}
	if value < -limit || value > limit {
		return 0, errors.New(key + " is out of range")
	}
	return value, nil
}

func containingZones(session *mapsession.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat, err := queryCoordinate(c, "lat", 90)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		lng, err := queryCoordinate(c, "lng", 180)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		result, err := session.Click(geometry.GeoPoint{Lat: lat, Lng: lng}, c.Query("vehicle_type"))
		if err != nil {
			status := fiber.StatusInternalServerError
			if errors.Is(err, mapsession.ErrNotLoaded) {
				status = fiber.StatusServiceUnavailable
			}
			c.SendStatus(status)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		view, err := newContainingView(result, session.Language())
		if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": "Could not build zone response",
			})
		}

		reduced, err := sheriff.Marshal(&sheriff.Options{
			Groups: responseGroups(c),
		}, view)
		if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": "Sherrif could not reduce zones",
			})
		}

		return c.JSON(reduced)
	}
}

func zoneStats(session *mapsession.Session) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if session.Snapshot() == nil {
			c.SendStatus(fiber.StatusServiceUnavailable)
			return c.JSON(fiber.Map{
				"error": mapsession.ErrNotLoaded.Error(),
			})
		}

		return c.JSON(session.Stats())
	}
}
