package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/hive-thermal/internal/report"
	"github.com/i474232898/hive-thermal/internal/thermal"
	"github.com/i474232898/hive-thermal/internal/weather"
)

// target selects what is being solved: a catalog species or an inline
// profile, an optional hive layout and an optional model variant.
type target struct {
	Species string                 `json:"species" validate:"required_without=Profile"`
	Profile *thermal.ColonyProfile `json:"profile"`
	Hive    *thermal.Hive          `json:"hive"`
	Model   thermal.Variant        `json:"model"`
}

// environmentBody is the request form of thermal.EnvironmentSample. AmbientC
// is required for single solves and ignored by sweeps.
type environmentBody struct {
	AmbientC      *float64 `json:"ambientC" validate:"omitempty,gte=-60,lte=60"`
	AltitudeM     float64  `json:"altitudeM" validate:"gte=-1000,lte=10000"`
	Daytime       *bool    `json:"daytime"`
	RainIntensity float64  `json:"rainIntensity" validate:"gte=0,lte=1"`
}

// sample converts the body to the core input. Daytime defaults to true.
func (e environmentBody) sample() thermal.EnvironmentSample {
	env := thermal.EnvironmentSample{
		AltitudeM:     e.AltitudeM,
		Daytime:       true,
		RainIntensity: e.RainIntensity,
	}
	if e.AmbientC != nil {
		env.AmbientC = *e.AmbientC
	}
	if e.Daytime != nil {
		env.Daytime = *e.Daytime
	}
	return env
}

type solveRequest struct {
	target
	Environment *environmentBody `json:"environment" validate:"required"`
}

type locationSolveRequest struct {
	target
	Location locationQuery `json:"location"`
}

type sweepRequest struct {
	target
	Environment environmentBody `json:"environment"`
	Range       report.Range    `json:"range"`
}

// locationQuery identifies a location by coordinates or by city/country.
type locationQuery struct {
	City    string   `json:"city"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon     *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
}

func (l locationQuery) check() error {
	if (l.Lat == nil) != (l.Lon == nil) {
		return errors.New("lat and lon must be given together")
	}
	if l.Lat == nil && l.City == "" {
		return errors.New("either lat/lon or city is required")
	}
	return validate.Struct(l)
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
		Lat:     l.Lat,
		Lon:     l.Lon,
	}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	q.City = c.Query("city")
	q.Country = c.Query("country")
	for key, dst := range map[string]**float64{"lat": &q.Lat, "lon": &q.Lon} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, errors.New("invalid " + key + " value")
		}
		*dst = &v
	}

	if err := q.check(); err != nil {
		return q, err
	}

	return q, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location locationQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	h.Location = loc

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
