package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Denosadchiy/travel-buddy-ai/internal/trip"
	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

var tripCmd = &cobra.Command{
	Use:   "trip",
	Short: "Manage trips",
}

var tripCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a trip from a travel brief",
	RunE:  runTripCreate,
}

var tripShowCmd = &cobra.Command{
	Use:   "show <trip-id>",
	Short: "Show a trip's spec and plan state",
	Args:  cobra.ExactArgs(1),
	RunE:  runTripShow,
}

var tripListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all trips",
	RunE:  runTripList,
}

var tripUpdateCmd = &cobra.Command{
	Use:   "update <trip-id>",
	Short: "Update trip fields; unset flags are left unchanged",
	Args:  cobra.ExactArgs(1),
	RunE:  runTripUpdate,
}

var tripDeleteCmd = &cobra.Command{
	Use:   "delete <trip-id>",
	Short: "Delete a trip and its plan history",
	Args:  cobra.ExactArgs(1),
	RunE:  runTripDelete,
}

type tripFlags struct {
	city      string
	start     string
	end       string
	travelers int
	pace      string
	budget    string
	interests string
	hotelLat  float64
	hotelLng  float64
}

var createFlags, updateFlags tripFlags

func registerTripFlags(cmd *cobra.Command, f *tripFlags) {
	cmd.Flags().StringVar(&f.city, "city", "", "destination city")
	cmd.Flags().StringVar(&f.start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.travelers, "travelers", 0, "traveler count")
	cmd.Flags().StringVar(&f.pace, "pace", "", "pace: slow, medium, or fast")
	cmd.Flags().StringVar(&f.budget, "budget", "", "budget tier: low, medium, or high")
	cmd.Flags().StringVar(&f.interests, "interests", "", "comma-separated interest tags, in priority order")
	cmd.Flags().Float64Var(&f.hotelLat, "hotel-lat", 0, "hotel latitude")
	cmd.Flags().Float64Var(&f.hotelLng, "hotel-lng", 0, "hotel longitude")
}

func init() {
	registerTripFlags(tripCreateCmd, &createFlags)
	tripCreateCmd.MarkFlagRequired("city")
	tripCreateCmd.MarkFlagRequired("start")
	tripCreateCmd.MarkFlagRequired("end")

	registerTripFlags(tripUpdateCmd, &updateFlags)

	tripCmd.AddCommand(tripCreateCmd)
	tripCmd.AddCommand(tripShowCmd)
	tripCmd.AddCommand(tripListCmd)
	tripCmd.AddCommand(tripUpdateCmd)
	tripCmd.AddCommand(tripDeleteCmd)
}

func runTripCreate(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	start, err := parseDate(createFlags.start)
	if err != nil {
		return err
	}
	end, err := parseDate(createFlags.end)
	if err != nil {
		return err
	}

	spec := &trip.TripSpec{
		City:      createFlags.city,
		StartDate: start,
		EndDate:   end,
		Travelers: createFlags.travelers,
		Pace:      trip.Pace(createFlags.pace),
		Budget:    trip.BudgetTier(createFlags.budget),
		Interests: splitInterests(createFlags.interests),
	}
	if cmd.Flags().Changed("hotel-lat") || cmd.Flags().Changed("hotel-lng") {
		spec.HotelLocation = &trip.Coordinate{Lat: createFlags.hotelLat, Lng: createFlags.hotelLng}
	}

	created, err := a.service.CreateTrip(cmd.Context(), spec)
	if err != nil {
		return err
	}
	return printJSON(cmd, created)
}

func runTripShow(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := types.ParseID(args[0])
	if err != nil {
		return err
	}
	record, err := a.service.GetTrip(cmd.Context(), id)
	if err != nil {
		return err
	}
	return printJSON(cmd, record)
}

func runTripList(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.service.ListTrips(cmd.Context())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		cmd.Println("No trips yet. Create one with 'travelbuddy trip create'.")
		return nil
	}
	for _, r := range records {
		status := string(r.PlanStatus)
		if status == "" {
			status = "unplanned"
		}
		cmd.Printf("%s  %-20s %s to %s  [%s]\n",
			r.ID, r.City,
			r.Spec.StartDate.Format("2006-01-02"),
			r.Spec.EndDate.Format("2006-01-02"),
			status)
	}
	return nil
}

func runTripUpdate(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := types.ParseID(args[0])
	if err != nil {
		return err
	}

	patch := &trip.SpecPatch{}
	if cmd.Flags().Changed("city") {
		patch.City = &updateFlags.city
	}
	if cmd.Flags().Changed("start") {
		start, err := parseDate(updateFlags.start)
		if err != nil {
			return err
		}
		patch.StartDate = &start
	}
	if cmd.Flags().Changed("end") {
		end, err := parseDate(updateFlags.end)
		if err != nil {
			return err
		}
		patch.EndDate = &end
	}
	if cmd.Flags().Changed("travelers") {
		patch.Travelers = &updateFlags.travelers
	}
	if cmd.Flags().Changed("pace") {
		pace := trip.Pace(updateFlags.pace)
		patch.Pace = &pace
	}
	if cmd.Flags().Changed("budget") {
		budget := trip.BudgetTier(updateFlags.budget)
		patch.Budget = &budget
	}
	if cmd.Flags().Changed("interests") {
		patch.Interests = splitInterests(updateFlags.interests)
	}
	if cmd.Flags().Changed("hotel-lat") || cmd.Flags().Changed("hotel-lng") {
		patch.HotelLocation = &trip.Coordinate{Lat: updateFlags.hotelLat, Lng: updateFlags.hotelLng}
	}

	updated, err := a.service.UpdateSpec(cmd.Context(), id, patch)
	if err != nil {
		return err
	}
	return printJSON(cmd, updated)
}

func runTripDelete(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := types.ParseID(args[0])
	if err != nil {
		return err
	}
	if err := a.service.DeleteTrip(cmd.Context(), id); err != nil {
		return err
	}
	cmd.Printf("Deleted trip %s\n", id)
	return nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

func splitInterests(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}
