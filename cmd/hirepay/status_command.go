package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hirepay/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status api.Status
			if err := ctx.client().getJSON("/api/status", &status); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, status)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Running:    %t\n", status.Running)
			fmt.Fprintf(cmd.OutOrStdout(), "PID:        %d\n", status.PID)
			fmt.Fprintf(cmd.OutOrStdout(), "API:        %s\n", status.APIBind)
			fmt.Fprintf(cmd.OutOrStdout(), "Procedures: %d\n", status.Procedures)
			return nil
		},
	}
}
