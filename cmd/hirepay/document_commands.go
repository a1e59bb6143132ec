package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"hirepay/internal/api"
)

func newDocumentCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "document",
		Short: "Manage procedure documents",
	}

	cmd.AddCommand(newDocumentListCommand(ctx))
	cmd.AddCommand(newDocumentSendCommand(ctx))
	cmd.AddCommand(newDocumentReceiveCommand(ctx))
	cmd.AddCommand(newDocumentStatusCommand(ctx))
	cmd.AddCommand(newDocumentDownloadCommand(ctx))

	return cmd
}

func newDocumentListCommand(ctx *commandContext) *cobra.Command {
	var docType string

	cmd := &cobra.Command{
		Use:   "list <procedure-uuid>",
		Short: "List document versions for a procedure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/procedures/" + args[0] + "/documents"
			if docType != "" {
				path += "/" + docType
			}
			var docs []api.Document
			if err := ctx.client().getJSON(path, &docs); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, docs)
			}
			rows := make([][]string, 0, len(docs))
			for _, d := range docs {
				rows = append(rows, []string{
					strconv.FormatInt(d.ID, 10),
					d.DocumentType,
					"v" + strconv.Itoa(d.Version),
					d.Status,
					d.ActorEmail,
					d.CreatedAt.Local().Format(time.DateTime),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(),
				renderTable([]string{"ID", "Type", "Version", "Status", "Actor", "Created"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().StringVar(&docType, "type", "", "Restrict to one document type")
	return cmd
}

func newDocumentSendCommand(ctx *commandContext) *cobra.Command {
	var sentBy string
	var notes string

	cmd := &cobra.Command{
		Use:   "send <procedure-uuid> <document-type>",
		Short: "Generate and dispatch a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result api.DocumentResult
			err := ctx.client().postJSON("/api/procedures/"+args[0]+"/documents/send", api.SendDocumentRequest{
				DocumentType: args[1],
				SentBy:       sentBy,
				Notes:        notes,
			}, &result)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %s v%d; procedure is now %s\n",
				result.Document.DocumentType, result.Document.Version, result.Procedure.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&sentBy, "by", "", "Email of the sending back office user")
	cmd.Flags().StringVar(&notes, "notes", "", "Document notes")
	return cmd
}

func newDocumentReceiveCommand(ctx *commandContext) *cobra.Command {
	var uploadedBy string
	var notes string
	var contentType string

	cmd := &cobra.Command{
		Use:   "receive <procedure-uuid> <document-type> <file>",
		Short: "Upload a received document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := ctx.client().uploadFile(
				"/api/procedures/"+args[0]+"/documents/receive",
				args[2], args[1], uploadedBy, notes, contentType)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Received %s v%d (%s); procedure is now %s\n",
				result.Document.DocumentType, result.Document.Version,
				result.Document.Status, result.Procedure.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&uploadedBy, "by", "", "Email of the uploading user")
	cmd.Flags().StringVar(&notes, "notes", "", "Document notes")
	cmd.Flags().StringVar(&contentType, "content-type", "application/pdf", "Upload content type")
	_ = cmd.MarkFlagRequired("by")
	return cmd
}

func newDocumentStatusCommand(ctx *commandContext) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "status <document-id> <status>",
		Short: "Move a document to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.UpdateDocumentStatusRequest{Status: args[1]}
			if notes != "" {
				req.Notes = &notes
			}
			var doc api.Document
			if err := ctx.client().postJSON("/api/documents/"+args[0]+"/status", req, &doc); err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, doc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Document %d (%s v%d) is now %s\n",
				doc.ID, doc.DocumentType, doc.Version, doc.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "Status change notes")
	return cmd
}

func newDocumentDownloadCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <document-id>",
		Short: "Download a document's stored bytes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return ctx.client().download("/api/documents/"+args[0]+"/content", cmd.OutOrStdout())
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := ctx.client().download("/api/documents/"+args[0]+"/content", f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved document %s to %s\n", args[0], output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to stdout)")
	return cmd
}
