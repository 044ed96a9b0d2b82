package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "hive-thermal",
		Short:        "Steady-state thermal model for beehives and stingless-bee nests",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(speciesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the apiary monitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "HTTP server port (overrides PORT)")
	return cmd
}

func solveCmd() *cobra.Command {
	var in solveInput

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve one hive for a given environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSolve(cmd.OutOrStdout(), in)
		},
	}

	in.register(cmd)
	cmd.Flags().Float64Var(&in.ambientC, "ambient", 20, "ambient temperature in °C")
	cmd.Flags().BoolVar(&in.asJSON, "json", false, "print the result as JSON")
	return cmd
}

func sweepCmd() *cobra.Command {
	var (
		in      solveInput
		from    float64
		to      float64
		step    float64
		csvPath string
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Solve a hive across a range of ambient temperatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSweep(cmd.OutOrStdout(), in, from, to, step, csvPath)
		},
	}

	in.register(cmd)
	cmd.Flags().Float64Var(&from, "from", 0, "first ambient temperature in °C")
	cmd.Flags().Float64Var(&to, "to", 40, "last ambient temperature in °C")
	cmd.Flags().Float64Var(&step, "step", 1, "ambient step in °C")
	cmd.Flags().StringVar(&csvPath, "csv", "", "write rows as CSV to this file (- for stdout)")
	return cmd
}

func speciesCmd() *cobra.Command {
	var speciesFile string

	cmd := &cobra.Command{
		Use:   "species",
		Short: "List the colony profiles in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSpecies(cmd.OutOrStdout(), speciesFile)
		},
	}

	cmd.Flags().StringVar(&speciesFile, "species-file", os.Getenv("SPECIES_FILE"), "species catalog overlay (YAML)")
	return cmd
}
