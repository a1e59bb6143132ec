package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hirepay/internal/api"
)

func newProcedureCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "procedure",
		Short: "Manage hiring procedures",
	}

	cmd.AddCommand(newProcedureCreateCommand(ctx))
	cmd.AddCommand(newProcedureListCommand(ctx))
	cmd.AddCommand(newProcedureShowCommand(ctx))
	cmd.AddCommand(newProcedureTransitionCommand(ctx, "agreement-signed", "agreement/signed",
		"Mark the umbrella agreement as signed and submitted"))
	cmd.AddCommand(newProcedureTransitionCommand(ctx, "submit-payment-tax", "payment-tax/submit",
		"Submit payment and tax paperwork for review"))
	cmd.AddCommand(newProcedureReviewCommand(ctx))
	cmd.AddCommand(newProcedureGenerateCommand(ctx))
	cmd.AddCommand(newProcedureTransitionCommand(ctx, "task-order-generated", "task-order/generated",
		"Mark the task order as generated without producing one"))
	cmd.AddCommand(newProcedureAcceptCommand(ctx))
	cmd.AddCommand(newProcedureTransitionCommand(ctx, "task-order-signed", "task-order/signed",
		"Mark the task order as signed"))
	cmd.AddCommand(newProcedureTransitionCommand(ctx, "archive", "archive",
		"Complete and archive a submitted procedure"))

	return cmd
}

func newProcedureCreateCommand(ctx *commandContext) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create <consultant-email>",
		Short: "Open a new hiring procedure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var proc api.Procedure
			err := ctx.client().postJSON("/api/procedures", api.CreateProcedureRequest{
				ConsultantEmail: args[0],
				ConsultantName:  name,
			}, &proc)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, proc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created procedure %s (%s)\n", proc.UUID, proc.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Consultant full name")
	return cmd
}

func newProcedureListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List procedures",
		RunE: func(cmd *cobra.Command, args []string) error {
			var procs []api.Procedure
			if err := ctx.client().getJSON("/api/procedures", &procs); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, procs)
			}
			rows := make([][]string, 0, len(procs))
			for _, p := range procs {
				rows = append(rows, []string{
					p.UUID,
					p.ConsultantEmail,
					p.Status,
					p.CreatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				renderTable([]string{"UUID", "Consultant", "Status", "Created"}, rows, nil))
			return nil
		},
	}
}

func newProcedureShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <uuid>",
		Short: "Show one procedure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var proc api.Procedure
			if err := ctx.client().getJSON("/api/procedures/"+args[0], &proc); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, proc)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "UUID:       %s\n", proc.UUID)
			fmt.Fprintf(out, "Product:    %s\n", proc.Product)
			fmt.Fprintf(out, "Status:     %s\n", proc.Status)
			fmt.Fprintf(out, "Consultant: %s", proc.ConsultantEmail)
			if proc.ConsultantName != "" {
				fmt.Fprintf(out, " (%s)", proc.ConsultantName)
			}
			fmt.Fprintln(out)
			if proc.TaskOrderAcceptedBy != "" {
				fmt.Fprintf(out, "Accepted:   by %s from %s at %s\n",
					proc.TaskOrderAcceptedBy, proc.TaskOrderAcceptedFrom,
					proc.TaskOrderAcceptedAt.Local().Format(time.DateTime))
			}
			fmt.Fprintf(out, "Created:    %s\n", proc.CreatedAt.Local().Format(time.DateTime))
			fmt.Fprintf(out, "Updated:    %s\n", proc.UpdatedAt.Local().Format(time.DateTime))
			return nil
		},
	}
}

// newProcedureTransitionCommand builds a command posting to a bodyless
// transition endpoint.
func newProcedureTransitionCommand(ctx *commandContext, use, path, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <uuid>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var proc api.Procedure
			if err := ctx.client().postJSON("/api/procedures/"+args[0]+"/"+path, nil, &proc); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, proc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Procedure %s is now %s\n", proc.UUID, proc.Status)
			return nil
		},
	}
}

func newProcedureReviewCommand(ctx *commandContext) *cobra.Command {
	var reject bool
	var notes string

	cmd := &cobra.Command{
		Use:   "review <uuid>",
		Short: "Resolve the payment and tax review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var proc api.Procedure
			err := ctx.client().postJSON("/api/procedures/"+args[0]+"/payment-tax/review", api.ReviewRequest{
				Approved: !reject,
				Notes:    notes,
			}, &proc)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, proc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Procedure %s is now %s\n", proc.UUID, proc.Status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reject, "reject", false, "Reject instead of approve")
	cmd.Flags().StringVar(&notes, "notes", "", "Review notes")
	return cmd
}

func newProcedureGenerateCommand(ctx *commandContext) *cobra.Command {
	var requestedBy string

	cmd := &cobra.Command{
		Use:   "generate-task-order <uuid>",
		Short: "Generate and dispatch the task order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result api.DocumentResult
			err := ctx.client().postJSON("/api/procedures/"+args[0]+"/task-order/generate", api.GenerateTaskOrderRequest{
				RequestedBy: requestedBy,
			}, &result)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task order v%d generated; procedure is now %s\n",
				result.Document.Version, result.Procedure.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&requestedBy, "by", "", "Email of the requesting back office user")
	return cmd
}

func newProcedureAcceptCommand(ctx *commandContext) *cobra.Command {
	var acceptedBy string

	cmd := &cobra.Command{
		Use:   "accept <uuid>",
		Short: "Record the consultant's task order acceptance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var proc api.Procedure
			err := ctx.client().postJSON("/api/procedures/"+args[0]+"/task-order/accept", api.AcceptTaskOrderRequest{
				AcceptedBy: acceptedBy,
			}, &proc)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, proc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task order accepted; procedure %s is now %s\n", proc.UUID, proc.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&acceptedBy, "by", "", "Email of the accepting consultant")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}
