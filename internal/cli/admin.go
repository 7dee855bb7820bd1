package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Event authoring and dashboard commands",
	}

	cmd.AddCommand(newAdminDashboardCmd())
	cmd.AddCommand(newAdminCreateEventCmd())
	cmd.AddCommand(newAdminSetStatusCmd())
	cmd.AddCommand(newAdminAddPhaseCmd())
	cmd.AddCommand(newAdminAddEnigmaCmd())

	return cmd
}

func newAdminDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show every event with participation and top players",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []EventSummary

			if err := client.Get("/api/v1/admin/dashboard", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newAdminCreateEventCmd() *cobra.Command {
	var id, name string

	cmd := &cobra.Command{
		Use:   "create-event",
		Short: "Create an event in dev status",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"id": id, "name": name}
			var result Event

			if err := client.Post("/api/v1/admin/events", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Event id (generated when omitted)")
	cmd.Flags().StringVar(&name, "name", "", "Event name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newAdminSetStatusCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "set-status <event-id>",
		Short: "Change an event's status (open, closed, dev)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"status": status}
			var result Event

			if err := client.Patch(fmt.Sprintf("/api/v1/admin/events/%s/status", args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "New status: open, closed, dev (required)")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}

func newAdminAddPhaseCmd() *cobra.Command {
	var order int

	cmd := &cobra.Command{
		Use:   "add-phase <event-id>",
		Short: "Add a phase to an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]int{"order": order}
			var result Phase

			if err := client.Post(fmt.Sprintf("/api/v1/admin/events/%s/phases", args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Phase %s added (order %d)", result.ID, result.Order))
			return nil
		},
	}

	cmd.Flags().IntVar(&order, "order", 0, "Phase order, 1-based (required)")
	_ = cmd.MarkFlagRequired("order")

	return cmd
}

func newAdminAddEnigmaCmd() *cobra.Command {
	var phase int
	var id, code, hintType, hintData string

	cmd := &cobra.Command{
		Use:   "add-enigma <event-id>",
		Short: "Add an enigma to an event phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"id":        id,
				"code":      code,
				"hint_type": hintType,
				"hint_data": hintData,
			}
			var result Enigma

			path := fmt.Sprintf("/api/v1/admin/events/%s/phases/%d/enigmas", args[0], phase)
			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Enigma %s added", result.ID))
			return nil
		},
	}

	cmd.Flags().IntVar(&phase, "phase", 0, "Phase order (required)")
	cmd.Flags().StringVar(&id, "id", "", "Enigma id (generated when omitted)")
	cmd.Flags().StringVar(&code, "code", "", "Answer code (required)")
	cmd.Flags().StringVar(&hintType, "hint-type", "", "Hint type, e.g. text or image")
	cmd.Flags().StringVar(&hintData, "hint-data", "", "Hint payload")
	_ = cmd.MarkFlagRequired("phase")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}
