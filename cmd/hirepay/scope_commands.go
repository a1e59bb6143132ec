package main

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"hirepay/internal/api"
)

func newScopeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scope",
		Short: "Manage scopes of work",
	}

	cmd.AddCommand(newScopeCreateCommand(ctx))
	cmd.AddCommand(newScopeListCommand(ctx))
	cmd.AddCommand(newScopeShowCommand(ctx))
	cmd.AddCommand(newScopeSubmitCommand(ctx))
	cmd.AddCommand(newScopeReviewCommand(ctx))
	cmd.AddCommand(newScopeCompleteCommand(ctx))
	cmd.AddCommand(newScopeDashboardCommand(ctx))

	return cmd
}

func newScopeCreateCommand(ctx *commandContext) *cobra.Command {
	var req api.CreateScopeRequest

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Open a new scope of work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Title = args[0]
			var sc api.Scope
			if err := ctx.client().postJSON("/api/scopes", req, &sc); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, sc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created scope %s (%s)\n", sc.UUID, sc.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.AssigneeEmail, "assignee", "", "Email of the front office assignee")
	cmd.Flags().StringVar(&req.CreatorEmail, "creator", "", "Email of the creating back office user")
	cmd.Flags().StringVar(&req.Description, "description", "", "Scope description")
	cmd.Flags().StringVar(&req.Objectives, "objectives", "", "Scope objectives")
	cmd.Flags().StringVar(&req.Deliverables, "deliverables", "", "Expected deliverables")
	cmd.Flags().StringVar(&req.Timeline, "timeline", "", "Expected timeline")
	_ = cmd.MarkFlagRequired("assignee")
	return cmd
}

func newScopeListCommand(ctx *commandContext) *cobra.Command {
	var assignee string
	var pending bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scopes of work",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/scopes"
			switch {
			case pending:
				path = "/api/scopes/pending"
			case assignee != "":
				path = "/api/scopes?assignee=" + url.QueryEscape(assignee)
			}
			var scopes []api.Scope
			if err := ctx.client().getJSON(path, &scopes); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, scopes)
			}
			rows := make([][]string, 0, len(scopes))
			for _, s := range scopes {
				rows = append(rows, []string{
					s.UUID,
					s.Title,
					s.Status,
					s.AssigneeEmail,
					s.CreatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				renderTable([]string{"UUID", "Title", "Status", "Assignee", "Created"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().StringVar(&assignee, "assignee", "", "Only scopes assigned to this email")
	cmd.Flags().BoolVar(&pending, "pending", false, "Only scopes awaiting review")
	return cmd
}

func newScopeShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <uuid>",
		Short: "Show one scope of work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sc api.Scope
			if err := ctx.client().getJSON("/api/scopes/"+args[0], &sc); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, sc)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "UUID:     %s\n", sc.UUID)
			fmt.Fprintf(out, "Title:    %s\n", sc.Title)
			fmt.Fprintf(out, "Status:   %s\n", sc.Status)
			fmt.Fprintf(out, "Assignee: %s\n", sc.AssigneeEmail)
			fmt.Fprintf(out, "Creator:  %s\n", sc.CreatorEmail)
			if sc.Timeline != "" {
				fmt.Fprintf(out, "Timeline: %s\n", sc.Timeline)
			}
			if sc.DueDate != nil {
				fmt.Fprintf(out, "Due:      %s\n", sc.DueDate.Local().Format(time.DateOnly))
			}
			if sc.ReviewerEmail != "" {
				fmt.Fprintf(out, "Reviewed: by %s", sc.ReviewerEmail)
				if sc.ReviewedAt != nil {
					fmt.Fprintf(out, " at %s", sc.ReviewedAt.Local().Format(time.DateTime))
				}
				fmt.Fprintln(out)
				if sc.ReviewNotes != "" {
					fmt.Fprintf(out, "Notes:    %s\n", sc.ReviewNotes)
				}
			}
			return nil
		},
	}
}

func newScopeSubmitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <uuid>",
		Short: "Submit a scope for review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sc api.Scope
			if err := ctx.client().postJSON("/api/scopes/"+args[0]+"/submit", nil, &sc); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, sc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scope %s is now %s\n", sc.UUID, sc.Status)
			return nil
		},
	}
}

func newScopeReviewCommand(ctx *commandContext) *cobra.Command {
	var outcome string
	var reviewer string
	var notes string

	cmd := &cobra.Command{
		Use:   "review <uuid>",
		Short: "Resolve a scope under review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sc api.Scope
			err := ctx.client().postJSON("/api/scopes/"+args[0]+"/review", api.ReviewScopeRequest{
				Outcome:       outcome,
				ReviewerEmail: reviewer,
				Notes:         notes,
			}, &sc)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, sc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scope %s is now %s\n", sc.UUID, sc.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&outcome, "outcome", "APPROVED", "Review outcome: APPROVED, REJECTED, or CHANGES_REQUESTED")
	cmd.Flags().StringVar(&reviewer, "by", "", "Email of the reviewing back office user")
	cmd.Flags().StringVar(&notes, "notes", "", "Review notes")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func newScopeCompleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <uuid>",
		Short: "Mark an approved scope as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sc api.Scope
			if err := ctx.client().postJSON("/api/scopes/"+args[0]+"/complete", nil, &sc); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, sc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scope %s is now %s\n", sc.UUID, sc.Status)
			return nil
		},
	}
}

func newScopeDashboardCommand(ctx *commandContext) *cobra.Command {
	var creator string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the back office scope overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/scopes/dashboard"
			if creator != "" {
				path += "?creator=" + url.QueryEscape(creator)
			}
			var dashboard api.ScopeDashboard
			if err := ctx.client().getJSON(path, &dashboard); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, dashboard)
			}
			out := cmd.OutOrStdout()
			stats := dashboard.Stats
			fmt.Fprintf(out, "Total: %d  Draft: %d  In progress: %d  Under review: %d\n",
				stats.Total, stats.Draft, stats.InProgress, stats.UnderReview)
			fmt.Fprintf(out, "Approved: %d  Rejected: %d  Changes requested: %d  Completed: %d\n",
				stats.Approved, stats.Rejected, stats.ChangesRequested, stats.Completed)
			if len(dashboard.PendingReviews) > 0 {
				fmt.Fprintln(out, "\nPending reviews:")
				rows := make([][]string, 0, len(dashboard.PendingReviews))
				for _, s := range dashboard.PendingReviews {
					rows = append(rows, []string{s.UUID, s.Title, s.AssigneeEmail})
				}
				fmt.Fprintln(out, renderTable([]string{"UUID", "Title", "Assignee"}, rows, nil))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&creator, "creator", "", "Include scopes created by this email")
	return cmd
}
