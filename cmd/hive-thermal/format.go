package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/i474232898/hive-thermal/internal/report"
	"github.com/i474232898/hive-thermal/internal/thermal"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSolveResult(w io.Writer, p thermal.ColonyProfile, hive thermal.Hive, r thermal.SolveResult) {
	fmt.Fprintf(w, "Species:          %s (ideal %.1f-%.1f °C)\n", p.Name, p.IdealMinC, p.IdealMaxC)
	fmt.Fprintf(w, "Colony:           %.0f bees, %.3f kW\n", r.ColonySize, r.MetabolicHeatKW())
	fmt.Fprintf(w, "Envelope:         %.3f m², %.4f m³, R=%.3f m²·K/W\n", r.SurfaceAreaM2, r.VolumeM3, r.ResistanceM2KW)
	fmt.Fprintf(w, "Adjusted ambient: %.2f °C (oxygen factor %.2f)\n", r.AdjustedAmbientC, r.OxygenFactor)
	fmt.Fprintf(w, "Hive:             %.2f °C, heat transfer %.3f kW\n", r.HiveTempC, r.HeatTransferKW())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nCOMPARTMENT\tTEMP °C")
	for i, t := range r.CompartmentTempsC {
		label := fmt.Sprintf("#%d", i+1)
		if i < len(hive.Enclosures) && hive.Enclosures[i].Label != "" {
			label = hive.Enclosures[i].Label
		}
		fmt.Fprintf(tw, "%s\t%.2f\n", label, t)
	}
	tw.Flush()

	if r.WithinIdealBand {
		fmt.Fprintln(w, "\nResult: WITHIN ideal band")
	} else {
		fmt.Fprintln(w, "\nResult: OUTSIDE ideal band")
	}
}

func printSweep(w io.Writer, p thermal.ColonyProfile, rows []report.Row, s report.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "AMBIENT °C\tHIVE °C\tHEAT W\tIN BAND")
	for _, r := range rows {
		fmt.Fprintf(tw, "%.1f\t%.2f\t%.1f\t%v\n", r.AmbientC, r.HiveTempC, r.MetabolicHeatW, r.WithinIdealBand)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%s: mean %.2f °C (sd %.2f), range %.2f-%.2f °C, %.0f%% in band\n",
		p.Name, s.MeanHiveTempC, s.StdDevC, s.MinHiveTempC, s.MaxHiveTempC, s.InBandShare*100)
	if s.ViableFromC != nil {
		fmt.Fprintf(w, "Viable ambient: %.1f-%.1f °C\n", *s.ViableFromC, *s.ViableToC)
	} else {
		fmt.Fprintln(w, "Viable ambient: none in range")
	}
}

func printSpecies(w io.Writer, profiles []thermal.ColonyProfile) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tW/BEE\tCOLONY\tIDEAL °C\tK W/m·K\tCOOLING °C\tACTIVITY")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s\t%.4f\t%d\t%.1f-%.1f\t%.2f\t%.1f\t%s\n",
			p.Name, p.MetabolicRateW, p.NominalColonySize, p.IdealMinC, p.IdealMaxC,
			p.WallConductivity, p.MaxCoolingC, p.Activity)
	}
	tw.Flush()
}
