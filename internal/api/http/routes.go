package httpapi

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/hive-thermal/internal/catalog"
	"github.com/i474232898/hive-thermal/internal/report"
	"github.com/i474232898/hive-thermal/internal/scheduler"
	"github.com/i474232898/hive-thermal/internal/store"
	"github.com/i474232898/hive-thermal/internal/thermal"
	"github.com/i474232898/hive-thermal/internal/weather"
)

var validate = validator.New()

// Conditions is the part of weather.Service the API depends on.
type Conditions interface {
	Resolve(ctx context.Context, loc weather.Location) (weather.Conditions, error)
	GetRange(ctx context.Context, loc weather.Location, from, to time.Time) ([]weather.Snapshot, error)
}

// Monitor exposes the apiary monitor's latest results.
type Monitor interface {
	Latest() []scheduler.Result
}

// Deps are the collaborators the routes are served from. Monitor may be nil.
type Deps struct {
	Conditions Conditions
	Species    *catalog.Catalog
	Model      *thermal.Model
	Monitor    Monitor
	Logger     *zap.Logger
}

// ErrorHandler renders every error as {error, message} JSON, using the code
// of a *fiber.Error when there is one.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	h := &handlers{Deps: deps}
	if h.Logger == nil {
		h.Logger = zap.NewNop()
	}

	v1 := app.Group("/api/v1")

	v1.Get("/species", h.listSpecies)
	v1.Post("/solve", h.solve)
	v1.Post("/solve/location", h.solveLocation)
	v1.Post("/sweep", h.sweep)
	v1.Get("/conditions/current", h.currentConditions)
	v1.Get("/conditions/history", h.conditionsHistory)
	v1.Get("/apiaries", h.apiaries)
}

type handlers struct {
	Deps
}

func (h *handlers) listSpecies(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"species": h.Species.List()})
}

func (h *handlers) solve(c *fiber.Ctx) error {
	var req solveRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	if req.Environment.AmbientC == nil {
		return fiber.NewError(fiber.StatusBadRequest, "environment.ambientC is required")
	}

	profile, hive, model, err := h.resolveTarget(req.target)
	if err != nil {
		return err
	}
	res, err := model.Solve(profile, hive, req.Environment.sample())
	if err != nil {
		return solveError(err)
	}

	id := uuid.NewString()
	h.Logger.Debug("solved", zap.String("id", id), zap.String("species", profile.Name),
		zap.Float64("hiveTempC", res.HiveTempC))
	return c.JSON(fiber.Map{
		"id":      id,
		"species": profile.Name,
		"result":  res,
	})
}

func (h *handlers) solveLocation(c *fiber.Ctx) error {
	var req locationSolveRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	if err := req.Location.check(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	profile, hive, model, err := h.resolveTarget(req.target)
	if err != nil {
		return err
	}
	cond, err := h.Conditions.Resolve(c.UserContext(), req.Location.toLocation())
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "failed to resolve conditions")
	}
	res, err := model.Solve(profile, hive, cond.Environment)
	if err != nil {
		return solveError(err)
	}

	return c.JSON(fiber.Map{
		"id":         uuid.NewString(),
		"species":    profile.Name,
		"conditions": cond,
		"result":     res,
	})
}

func (h *handlers) sweep(c *fiber.Ctx) error {
	var req sweepRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	profile, hive, model, err := h.resolveTarget(req.target)
	if err != nil {
		return err
	}
	rows, err := report.Sweep(model, profile, hive, req.Environment.sample(), req.Range)
	if err != nil {
		return solveError(err)
	}

	id := uuid.NewString()
	if c.Accepts(fiber.MIMEApplicationJSON, "text/csv") == "text/csv" {
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf, rows); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to encode sweep")
		}
		c.Set(fiber.HeaderContentType, "text/csv")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="sweep-`+id+`.csv"`)
		return c.Send(buf.Bytes())
	}

	return c.JSON(fiber.Map{
		"id":      id,
		"species": profile.Name,
		"rows":    rows,
		"summary": report.Summarize(rows),
	})
}

func (h *handlers) currentConditions(c *fiber.Ctx) error {
	locReq, err := parseLocationQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	cond, err := h.Conditions.Resolve(c.UserContext(), locReq.toLocation())
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "failed to resolve conditions")
	}
	return c.JSON(cond)
}

func (h *handlers) conditionsHistory(c *fiber.Ctx) error {
	var req historyQuery
	if err := req.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	loc := req.Location.toLocation()
	snapshots, err := h.Conditions.GetRange(c.UserContext(), loc, req.From, req.To)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no conditions history for requested range")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch conditions history")
	}

	return c.JSON(fiber.Map{
		"location":  loc,
		"from":      req.From,
		"to":        req.To,
		"snapshots": snapshots,
	})
}

func (h *handlers) apiaries(c *fiber.Ctx) error {
	results := []scheduler.Result{}
	if h.Monitor != nil {
		results = h.Monitor.Latest()
	}
	return c.JSON(fiber.Map{"apiaries": results})
}

// bind decodes and validates a JSON body.
func (h *handlers) bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// resolveTarget picks the profile, hive and model for a request. Inline
// profiles win over species names; a missing hive means the default layout.
func (h *handlers) resolveTarget(t target) (thermal.ColonyProfile, thermal.Hive, *thermal.Model, error) {
	var profile thermal.ColonyProfile
	if t.Profile != nil {
		profile = *t.Profile
	} else {
		p, err := h.Species.Get(t.Species)
		if err != nil {
			return profile, thermal.Hive{}, nil, solveError(err)
		}
		profile = p
	}

	hive := catalog.DefaultHive()
	if t.Hive != nil {
		hive = *t.Hive
	}

	model := h.Model
	if t.Model != (thermal.Variant{}) {
		m, err := thermal.FromVariant(t.Model)
		if err != nil {
			return profile, hive, nil, solveError(err)
		}
		model = m
	}
	return profile, hive, model, nil
}

// solveError maps domain errors onto HTTP status codes.
func solveError(err error) error {
	switch {
	case errors.Is(err, catalog.ErrUnknownSpecies):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, thermal.ErrInvalidConfiguration), errors.Is(err, report.ErrInvalidRange):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, thermal.ErrNumericDegenerate):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
