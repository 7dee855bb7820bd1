package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Event browsing commands",
	}

	cmd.AddCommand(newEventsListCmd())
	cmd.AddCommand(newEventsGetCmd())
	cmd.AddCommand(newEventsRankingCmd())

	return cmd
}

func newEventsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all events",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Event

			if err := client.Get("/api/v1/events", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newEventsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <event-id>",
		Short: "Show an event with its phases and enigmas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result EventDetail

			if err := client.Get(fmt.Sprintf("/api/v1/events/%s", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newEventsRankingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ranking <event-id>",
		Short: "Show an event's ranking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []RankingEntry

			if err := client.Get(fmt.Sprintf("/api/v1/events/%s/ranking", args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
