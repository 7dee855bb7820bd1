package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEnigmaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enigma",
		Short: "Gameplay commands for the current enigma",
	}

	cmd.AddCommand(newEnigmaStatusCmd())
	cmd.AddCommand(newEnigmaHintCmd())
	cmd.AddCommand(newEnigmaSubmitCmd())

	return cmd
}

func enigmaActionPath(eventID string) string {
	return fmt.Sprintf("/api/v1/events/%s/enigma", eventID)
}

func newEnigmaStatusCmd() *cobra.Command {
	var phase int
	var enigma string

	cmd := &cobra.Command{
		Use:   "status <event-id>",
		Short: "Show hint and cooldown status for an enigma",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"action": "getStatus",
				"phase":  phase,
				"enigma": enigma,
			}
			var result EnigmaStatus

			if err := client.Post(enigmaActionPath(args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&phase, "phase", 0, "Phase order (required)")
	cmd.Flags().StringVar(&enigma, "enigma", "", "Enigma id (required)")
	_ = cmd.MarkFlagRequired("phase")
	_ = cmd.MarkFlagRequired("enigma")

	return cmd
}

func newEnigmaHintCmd() *cobra.Command {
	var phase int
	var enigma string

	cmd := &cobra.Command{
		Use:   "hint <event-id>",
		Short: "Buy the hint for an enigma's phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"action": "purchaseHint",
				"phase":  phase,
				"enigma": enigma,
			}
			var result Hint

			if err := client.Post(enigmaActionPath(args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&phase, "phase", 0, "Phase order (required)")
	cmd.Flags().StringVar(&enigma, "enigma", "", "Enigma id (required)")
	_ = cmd.MarkFlagRequired("phase")
	_ = cmd.MarkFlagRequired("enigma")

	return cmd
}

func newEnigmaSubmitCmd() *cobra.Command {
	var phase int
	var enigma, code string

	cmd := &cobra.Command{
		Use:   "submit <event-id>",
		Short: "Submit an answer code for an enigma",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"action": "validateCode",
				"phase":  phase,
				"enigma": enigma,
				"code":   code,
			}
			var result SubmitResult

			if err := client.Post(enigmaActionPath(args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&phase, "phase", 0, "Phase order (required)")
	cmd.Flags().StringVar(&enigma, "enigma", "", "Enigma id (required)")
	cmd.Flags().StringVar(&code, "code", "", "Answer code (required)")
	_ = cmd.MarkFlagRequired("phase")
	_ = cmd.MarkFlagRequired("enigma")
	_ = cmd.MarkFlagRequired("code")

	return cmd
}
