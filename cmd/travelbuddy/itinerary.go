package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

var itineraryJSON bool

var itineraryCmd = &cobra.Command{
	Use:   "itinerary <trip-id>",
	Short: "Show the committed itinerary and its critique",
	Args:  cobra.ExactArgs(1),
	RunE:  runItinerary,
}

func init() {
	itineraryCmd.Flags().BoolVar(&itineraryJSON, "json", false, "print raw JSON")
}

func runItinerary(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := types.ParseID(args[0])
	if err != nil {
		return err
	}
	result, err := a.service.GetItinerary(cmd.Context(), id)
	if err != nil {
		return err
	}
	if itineraryJSON {
		return printJSON(cmd, result)
	}

	if len(result.Days) == 0 {
		cmd.Println("No plan yet. Run 'travelbuddy plan " + id.String() + "' first.")
		return nil
	}

	for _, day := range result.Days {
		cmd.Printf("Day %d - %s - %s\n", day.DayIndex+1, day.Date.Format("Mon Jan 2"), day.Theme)
		for _, block := range day.Blocks {
			name := string(block.Type)
			if block.POI != nil {
				name = block.POI.Name
			} else if block.Notes != "" {
				name = name + " (" + block.Notes + ")"
			}
			travel := ""
			if block.Travel.DurationMin > 0 {
				travel = fmt.Sprintf("  (+%dm travel)", block.Travel.DurationMin)
			}
			cmd.Printf("  %s-%s  %s%s\n", block.Start, block.End, name, travel)
		}
		if day.Truncated {
			cmd.Println("  (day truncated at sleep time)")
		}
		cmd.Println()
	}

	if len(result.Issues) > 0 {
		cmd.Println("Critique:")
		for _, issue := range result.Issues {
			cmd.Printf("  [%s] %s\n", issue.Severity, issue.Message)
		}
	}
	return nil
}
