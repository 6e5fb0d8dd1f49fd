package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Denosadchiy/travel-buddy-ai/pkg/version"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "travelbuddy",
	Short: "Travel Buddy - AI-assisted trip planning",
	Long: `Travel Buddy turns a travel brief into a validated multi-day
itinerary: a generative planner proposes each day's shape, and a
deterministic pipeline picks places, commits times, and critiques
the result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with signal handling, so an in-flight
// planning run stops cleanly at the next stage boundary on Ctrl-C.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "travelbuddy.yaml",
		"path to the config file (defaults apply when missing)")

	rootCmd.AddCommand(tripCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(itineraryCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.String())
	},
}
