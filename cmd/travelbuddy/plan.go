package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

var planDayIndex int

var planCmd = &cobra.Command{
	Use:   "plan <trip-id>",
	Short: "Run the planning pipeline for a trip",
	Long: `Runs the full pipeline: macro planning, place selection, route and
time resolution, critique, and an atomic persist of the new plan. With
--day N, only that day (1-based) is re-planned in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().IntVar(&planDayIndex, "day", 0, "re-plan only this day (1-based)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := types.ParseID(args[0])
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("day") {
		result, err := a.service.PlanDay(cmd.Context(), id, planDayIndex-1)
		if err != nil {
			return err
		}
		cmd.Println("Re-planned day " + strconv.Itoa(planDayIndex))
		return printJSON(cmd, result)
	}

	result, err := a.service.Plan(cmd.Context(), id)
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}
