// Package report runs ambient-temperature sweeps through the thermal model
// and exports them for plotting.
package report

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/i474232898/hive-thermal/internal/thermal"
)

// MaxSweepPoints bounds the number of rows a single sweep may produce.
const MaxSweepPoints = 2000

var ErrInvalidRange = errors.New("invalid sweep range")

// Range is an inclusive ambient-temperature range in °C.
type Range struct {
	FromC float64 `json:"fromC" validate:"gte=-60,lte=60"`
	ToC   float64 `json:"toC" validate:"gte=-60,lte=60"`
	StepC float64 `json:"stepC" validate:"gt=0"`
}

// Points expands the range into ambient temperatures, always including ToC.
func (r Range) Points() ([]float64, error) {
	for _, v := range []float64{r.FromC, r.ToC, r.StepC} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: bounds and step must be finite", ErrInvalidRange)
		}
	}
	if r.StepC <= 0 {
		return nil, fmt.Errorf("%w: step must be positive", ErrInvalidRange)
	}
	if r.ToC < r.FromC {
		return nil, fmt.Errorf("%w: from %.2f is above to %.2f", ErrInvalidRange, r.FromC, r.ToC)
	}
	// Checked as a float so tiny steps cannot overflow the conversion.
	count := math.Floor((r.ToC-r.FromC)/r.StepC+1e-9) + 1
	if math.IsInf(count, 0) || count > MaxSweepPoints {
		return nil, fmt.Errorf("%w: %.0f points exceeds limit of %d", ErrInvalidRange, count, MaxSweepPoints)
	}
	n := int(count)

	points := make([]float64, 0, n+1)
	for i := 0; i < n; i++ {
		points = append(points, r.FromC+float64(i)*r.StepC)
	}
	if last := points[len(points)-1]; r.ToC-last > 1e-9 {
		points = append(points, r.ToC)
	}
	return points, nil
}

// Row is one solved point of a sweep.
type Row struct {
	AmbientC         float64 `json:"ambientC" csv:"ambient_c"`
	AdjustedAmbientC float64 `json:"adjustedAmbientC" csv:"adjusted_ambient_c"`
	HiveTempC        float64 `json:"hiveTempC" csv:"hive_temp_c"`
	MetabolicHeatW   float64 `json:"metabolicHeatW" csv:"metabolic_heat_w"`
	HeatTransferW    float64 `json:"heatTransferW" csv:"heat_transfer_w"`
	OxygenFactor     float64 `json:"oxygenFactor" csv:"oxygen_factor"`
	WithinIdealBand  bool    `json:"withinIdealBand" csv:"within_ideal_band"`

	CompartmentTempsC []float64 `json:"compartmentTempsC" csv:"-"`
}

// Summary aggregates a sweep.
type Summary struct {
	Points        int     `json:"points"`
	MeanHiveTempC float64 `json:"meanHiveTempC"`
	MinHiveTempC  float64 `json:"minHiveTempC"`
	MaxHiveTempC  float64 `json:"maxHiveTempC"`
	StdDevC       float64 `json:"stdDevC"`
	InBandShare   float64 `json:"inBandShare"`

	// ViableFromC and ViableToC bound the ambient temperatures that kept the
	// hive in its ideal band; nil when none did.
	ViableFromC *float64 `json:"viableFromC,omitempty"`
	ViableToC   *float64 `json:"viableToC,omitempty"`
}

// Sweep solves the hive at every ambient temperature of the range, holding
// the rest of the environment fixed.
func Sweep(m *thermal.Model, profile thermal.ColonyProfile, hive thermal.Hive, env thermal.EnvironmentSample, r Range) ([]Row, error) {
	points, err := r.Points()
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(points))
	for _, ambient := range points {
		sample := env
		sample.AmbientC = ambient
		res, err := m.Solve(profile, hive, sample)
		if err != nil {
			return nil, fmt.Errorf("solve at %.2f°C: %w", ambient, err)
		}
		rows = append(rows, Row{
			AmbientC:          ambient,
			AdjustedAmbientC:  res.AdjustedAmbientC,
			HiveTempC:         res.HiveTempC,
			MetabolicHeatW:    res.MetabolicHeatW,
			HeatTransferW:     res.HeatTransferW,
			OxygenFactor:      res.OxygenFactor,
			WithinIdealBand:   res.WithinIdealBand,
			CompartmentTempsC: res.CompartmentTempsC,
		})
	}
	return rows, nil
}

// Summarize computes statistics over the hive temperatures of a sweep.
func Summarize(rows []Row) Summary {
	if len(rows) == 0 {
		return Summary{}
	}

	temps := make([]float64, len(rows))
	inBand := 0
	var from, to *float64
	for i, row := range rows {
		temps[i] = row.HiveTempC
		if !row.WithinIdealBand {
			continue
		}
		inBand++
		ambient := row.AmbientC
		if from == nil {
			from = &ambient
		}
		to = &ambient
	}

	mean, std := stat.MeanStdDev(temps, nil)
	if len(temps) < 2 {
		std = 0
	}
	return Summary{
		Points:        len(rows),
		MeanHiveTempC: mean,
		MinHiveTempC:  floats.Min(temps),
		MaxHiveTempC:  floats.Max(temps),
		StdDevC:       std,
		InBandShare:   float64(inBand) / float64(len(rows)),
		ViableFromC:   from,
		ViableToC:     to,
	}
}
