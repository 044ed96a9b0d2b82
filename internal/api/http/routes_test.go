package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/hive-thermal/internal/catalog"
	"github.com/i474232898/hive-thermal/internal/store"
	"github.com/i474232898/hive-thermal/internal/thermal"
	"github.com/i474232898/hive-thermal/internal/weather"
)

type stubProvider struct{ temp float64 }

func (stubProvider) Name() string { return "stub" }

func (p stubProvider) Fetch(_ context.Context, _ weather.Location) (weather.ProviderReading, error) {
	day := true
	return weather.ProviderReading{
		ProviderName: "stub",
		Timestamp:    time.Now().UTC(),
		TemperatureC: p.temp,
		Condition:    weather.ConditionClear,
		IsDay:        &day,
	}, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	species, err := catalog.Load("")
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	model, err := thermal.New()
	if err != nil {
		t.Fatalf("thermal.New: %v", err)
	}
	svc := weather.NewService(store.NewMemoryStore(10, time.Hour), []weather.Provider{stubProvider{temp: 27}})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, Deps{Conditions: svc, Species: species, Model: model})
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func TestSolveStatusCodes(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "catalog species",
			body: `{"species":"apis-mellifera","environment":{"ambientC":20}}`,
			want: http.StatusOK,
		},
		{
			name: "unknown species",
			body: `{"species":"bumble","environment":{"ambientC":20}}`,
			want: http.StatusNotFound,
		},
		{
			name: "missing environment",
			body: `{"species":"apis-mellifera"}`,
			want: http.StatusBadRequest,
		},
		{
			name: "missing ambient",
			body: `{"species":"apis-mellifera","environment":{"altitudeM":100}}`,
			want: http.StatusBadRequest,
		},
		{
			name: "neither species nor profile",
			body: `{"environment":{"ambientC":20}}`,
			want: http.StatusBadRequest,
		},
		{
			name: "invalid inline profile",
			body: `{"profile":{"name":"x","metabolicRateW":0.01,"nominalColonySize":100,"idealMinC":35,"idealMaxC":30,"wallConductivity":0.2,"activity":"diurnal"},"environment":{"ambientC":20}}`,
			want: http.StatusBadRequest,
		},
		{
			name: "unknown solver",
			body: `{"species":"apis-mellifera","environment":{"ambientC":20},"model":{"solver":"newton"}}`,
			want: http.StatusBadRequest,
		},
		{
			name: "malformed json",
			body: `{"species":`,
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, http.MethodPost, "/api/v1/solve", tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("expected status %d, got %d: %s", tt.want, resp.StatusCode, body)
			}
		})
	}
}

func TestSolveResult(t *testing.T) {
	app := newTestApp(t)

	body := `{
		"profile": {"name":"test","metabolicRateW":0.002,"nominalColonySize":3000,"idealMinC":30,"idealMaxC":33,"wallConductivity":0.2,"maxCoolingC":4,"activity":"diurnal"},
		"hive": {"shape":"rectangular","colonyPct":50,"wallThicknessCm":1,"enclosures":[{"widthCm":23,"heightCm":6,"depthCm":23},{"widthCm":23,"heightCm":6,"depthCm":23}]},
		"environment": {"ambientC":28},
		"model": {"solver":"closed-form"}
	}`
	resp, data := do(t, app, http.MethodPost, "/api/v1/solve", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, data)
	}

	var out struct {
		ID     string              `json:"id"`
		Result thermal.SolveResult `json:"result"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.ID == "" || out.Result.AdjustedAmbientC != 29 || len(out.Result.CompartmentTempsC) != 2 {
		t.Fatalf("unexpected response: %s", data)
	}
	if out.Result.HiveTempC <= 29 || out.Result.HiveTempC >= 33 {
		t.Fatalf("hive temperature %v outside (29, 33)", out.Result.HiveTempC)
	}
}

func TestSolveLocation(t *testing.T) {
	app := newTestApp(t)

	resp, data := do(t, app, http.MethodPost, "/api/v1/solve/location",
		`{"species":"melipona-beecheii","location":{"lat":20.97,"lon":-89.62}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, data)
	}
	var out struct {
		Conditions weather.Conditions `json:"conditions"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Conditions.Environment.AmbientC != 27 || out.Conditions.Fallback {
		t.Fatalf("unexpected conditions: %s", data)
	}

	resp, _ = do(t, app, http.MethodPost, "/api/v1/solve/location", `{"species":"melipona-beecheii","location":{"lat":20.97}}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestSweep(t *testing.T) {
	app := newTestApp(t)
	body := `{"species":"apis-mellifera","range":{"fromC":0,"toC":40,"stepC":10}}`

	resp, data := do(t, app, http.MethodPost, "/api/v1/sweep", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, data)
	}
	var out struct {
		Rows    []json.RawMessage `json:"rows"`
		Summary struct {
			Points int `json:"points"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Rows) != 5 || out.Summary.Points != 5 {
		t.Fatalf("unexpected sweep: %s", data)
	}

	resp, data = do(t, app, http.MethodPost, "/api/v1/sweep", body, "Accept", "text/csv")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, data)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 6 || !strings.HasPrefix(lines[0], "ambient_c,") {
		t.Fatalf("unexpected csv:\n%s", data)
	}

	resp, _ = do(t, app, http.MethodPost, "/api/v1/sweep", `{"species":"apis-mellifera","range":{"fromC":10,"toC":0,"stepC":1}}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d for reversed range, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	resp, _ = do(t, app, http.MethodPost, "/api/v1/sweep", `{"species":"apis-mellifera","range":{"fromC":-10,"toC":40,"stepC":1e-300}}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d for tiny step, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestConditionsEndpoints(t *testing.T) {
	app := newTestApp(t)

	resp, data := do(t, app, http.MethodGet, "/api/v1/conditions/current?city=Merida&country=MX", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, data)
	}

	for _, target := range []string{
		"/api/v1/conditions/current",
		"/api/v1/conditions/current?lat=20",
		"/api/v1/conditions/current?lat=north&lon=1",
		"/api/v1/conditions/history?city=Merida&country=MX",
		"/api/v1/conditions/history?city=Merida&country=MX&from=yesterday&to=today",
	} {
		resp, _ := do(t, app, http.MethodGet, target, "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d, got %d", target, http.StatusBadRequest, resp.StatusCode)
		}
	}

	from := time.Now().Add(-time.Hour).Unix()
	to := time.Now().Add(time.Hour).Unix()
	resp, data = do(t, app, http.MethodGet, fmt.Sprintf("/api/v1/conditions/history?city=Merida&country=MX&from=%d&to=%d", from, to), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, data)
	}

	resp, _ = do(t, app, http.MethodGet, fmt.Sprintf("/api/v1/conditions/history?city=Lima&country=PE&from=%d&to=%d", from, to), "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestSpeciesAndApiaries(t *testing.T) {
	app := newTestApp(t)

	resp, data := do(t, app, http.MethodGet, "/api/v1/species", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), "apis-mellifera") {
		t.Fatalf("status %d: %s", resp.StatusCode, data)
	}

	resp, data = do(t, app, http.MethodGet, "/api/v1/apiaries", "")
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(string(data)) != `{"apiaries":[]}` {
		t.Fatalf("status %d: %s", resp.StatusCode, data)
	}
}

func TestSolveErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: zero area", thermal.ErrNumericDegenerate), fiber.StatusUnprocessableEntity},
		{fmt.Errorf("%w: bad", thermal.ErrInvalidConfiguration), fiber.StatusBadRequest},
		{fmt.Errorf("%w: x", catalog.ErrUnknownSpecies), fiber.StatusNotFound},
		{io.ErrUnexpectedEOF, fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		var fe *fiber.Error
		if err := solveError(tt.err); !errors.As(err, &fe) || fe.Code != tt.want {
			t.Errorf("solveError(%v) = %v, want code %d", tt.err, err, tt.want)
		}
	}
}
