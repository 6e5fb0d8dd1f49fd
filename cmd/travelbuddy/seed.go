package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <pois.yaml>",
	Short: "Load places into the local catalog",
	Long: `Loads a YAML place file into the local catalog. The planner searches
this catalog when selecting places for itinerary blocks, so seeded
cities can be planned fully offline.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	n, err := a.pois.SeedFromYAML(cmd.Context(), data)
	if err != nil {
		return err
	}
	cmd.Printf("Loaded %d place(s)\n", n)
	return nil
}
