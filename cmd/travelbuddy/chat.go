package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Denosadchiy/travel-buddy-ai/internal/types"
)

var chatCmd = &cobra.Command{
	Use:   "chat <trip-id> <message...>",
	Short: "Send a free-text message about the trip",
	Long: `Interprets a free-text message against the trip spec. Changes the
assistant extracts (dates, pace, interests, meal times) are merged into
the spec; the reply is printed either way.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := types.ParseID(args[0])
	if err != nil {
		return err
	}
	message := strings.Join(args[1:], " ")

	reply, err := a.service.Chat(cmd.Context(), id, message)
	if err != nil {
		return err
	}

	cmd.Println(reply.Text)
	if !reply.Patch.IsEmpty() {
		cmd.Println("\nSpec updated:")
		return printJSON(cmd, reply.Patch)
	}
	return nil
}
