package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/i474232898/hive-thermal/internal/catalog"
	"github.com/i474232898/hive-thermal/internal/report"
	"github.com/i474232898/hive-thermal/internal/thermal"
)

// solveInput holds the flags shared by solve and sweep.
type solveInput struct {
	species     string
	speciesFile string
	hiveFile    string

	ambientC  float64
	altitudeM float64
	night     bool
	rain      float64

	variant thermal.Variant
	asJSON  bool
}

func (in *solveInput) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&in.species, "species", "s", "apis-mellifera", "catalog species name")
	f.StringVar(&in.speciesFile, "species-file", os.Getenv("SPECIES_FILE"), "species catalog overlay (YAML)")
	f.StringVar(&in.hiveFile, "hive", "", "hive layout file (YAML); default four-box hexagonal hive")
	f.Float64Var(&in.altitudeM, "altitude", 0, "altitude in metres")
	f.BoolVar(&in.night, "night", false, "solve for night time")
	f.Float64Var(&in.rain, "rain", 0, "rain intensity 0-1")

	f.StringVar(&in.variant.Oxygen, "oxygen", "linear", "oxygen model: linear or barometric")
	f.Float64Var(&in.variant.OxygenFloor, "oxygen-floor", 0, "minimum oxygen factor (0 for default)")
	f.StringVar(&in.variant.Solver, "solver", "bisection", "equilibrium solver: bisection or closed-form")
	f.BoolVar(&in.variant.LapseRate, "lapse-rate", false, "apply the altitude lapse-rate correction")
	f.StringVar(&in.variant.Clamp, "clamp", "species", "compartment clamp: species or basic")
}

func (in solveInput) load() (*thermal.Model, thermal.ColonyProfile, thermal.Hive, error) {
	species, err := catalog.Load(in.speciesFile)
	if err != nil {
		return nil, thermal.ColonyProfile{}, thermal.Hive{}, err
	}
	profile, err := species.Get(in.species)
	if err != nil {
		return nil, thermal.ColonyProfile{}, thermal.Hive{}, err
	}

	hive := catalog.DefaultHive()
	if in.hiveFile != "" {
		if hive, err = catalog.LoadHive(in.hiveFile); err != nil {
			return nil, thermal.ColonyProfile{}, thermal.Hive{}, err
		}
	}

	model, err := thermal.FromVariant(in.variant)
	if err != nil {
		return nil, thermal.ColonyProfile{}, thermal.Hive{}, err
	}
	return model, profile, hive, nil
}

func (in solveInput) environment() thermal.EnvironmentSample {
	return thermal.EnvironmentSample{
		AmbientC:      in.ambientC,
		AltitudeM:     in.altitudeM,
		Daytime:       !in.night,
		RainIntensity: in.rain,
	}
}

func runSolve(w io.Writer, in solveInput) error {
	model, profile, hive, err := in.load()
	if err != nil {
		return err
	}
	res, err := model.Solve(profile, hive, in.environment())
	if err != nil {
		return fmt.Errorf("solving: %w", err)
	}

	if in.asJSON {
		return writeJSON(w, res)
	}
	printSolveResult(w, profile, hive, res)
	return nil
}

func runSweep(w io.Writer, in solveInput, from, to, step float64, csvPath string) error {
	model, profile, hive, err := in.load()
	if err != nil {
		return err
	}
	rows, err := report.Sweep(model, profile, hive, in.environment(), report.Range{FromC: from, ToC: to, StepC: step})
	if err != nil {
		return err
	}

	switch csvPath {
	case "":
		printSweep(w, profile, rows, report.Summarize(rows))
		return nil
	case "-":
		return report.WriteCSV(w, rows)
	}

	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", csvPath, err)
	}
	if err := report.WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %d rows to %s\n", len(rows), csvPath)
	return nil
}

func runSpecies(w io.Writer, speciesFile string) error {
	species, err := catalog.Load(speciesFile)
	if err != nil {
		return err
	}
	printSpecies(w, species.List())
	return nil
}
