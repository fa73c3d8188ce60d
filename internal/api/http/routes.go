package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/rainward/rainward/internal/timeline"
	"github.com/rainward/rainward/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, builder *timeline.Builder, forecast timeline.Source) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		coord, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		units, err := weather.ParseUnitSystem(c.Query("units"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		obs, err := service.Current(c.Context(), coord, units)
		if err != nil {
			return upstreamError(err)
		}
		return c.JSON(obs)
	})

	v1.Get("/weather/timeline", func(c *fiber.Ctx) error {
		coord, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		samples, err := forecast.Forecast(c.Context(), coord.Lat, coord.Lon)
		if err != nil {
			return upstreamError(err)
		}
		return c.JSON(builder.Build(samples))
	})
}

// upstreamError maps the provider failure taxonomy onto HTTP statuses.
// Credential and URL problems are configuration mistakes, not upstream
// weather.
func upstreamError(err error) error {
	switch {
	case errors.Is(err, weather.ErrInvalidCredentials), errors.Is(err, weather.ErrInvalidURL):
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	case errors.Is(err, weather.ErrNoData), errors.Is(err, weather.ErrNetwork), errors.Is(err, weather.ErrDecode):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}

// coordQuery holds and validates the lat/lon query parameters.
type coordQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func parseCoordQuery(c *fiber.Ctx) (weather.Coordinate, error) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return weather.Coordinate{}, errors.New("lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return weather.Coordinate{}, errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return weather.Coordinate{}, errors.New("lon must be a number")
	}

	q := coordQuery{Lat: lat, Lon: lon}
	if err := validate.Struct(q); err != nil {
		return weather.Coordinate{}, err
	}
	return weather.Coordinate{Lat: lat, Lon: lon}, nil
}
