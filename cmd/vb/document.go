package main

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/sotuphap-angiang/vbtrack/internal/document"
	"github.com/sotuphap-angiang/vbtrack/internal/models"
	"github.com/spf13/cobra"
)

func newDocumentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "document",
		Aliases: []string{"doc", "docs"},
		Short:   "List, add and delete documents",
	}

	cmd.AddCommand(newDocumentListCmd())
	cmd.AddCommand(newDocumentAddCmd())
	cmd.AddCommand(newDocumentDeleteCmd())
	return cmd
}

func newDocumentListCmd() *cobra.Command {
	var q document.Query

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents of a partition",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			page, err := document.List(a.db, q)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatDocuments(page))
			return nil
		},
	}

	cmd.Flags().StringVar(&q.DocType, "type", "", "doc type ("+strings.Join(models.ValidDocTypes, ", ")+")")
	cmd.Flags().StringVar(&q.Status, "status", "", "status ("+strings.Join(models.ValidStatuses, ", ")+")")
	cmd.Flags().StringVarP(&q.Search, "search", "q", "", "fuzzy match on name")
	cmd.Flags().StringVar(&q.Handler, "handler", "", "filter by handler name")
	cmd.Flags().UintVar(&q.AgencyID, "agency", 0, "filter by agency ID")
	cmd.Flags().StringVar(&q.Sort, "sort", "", "sort field ("+strings.Join(document.SortFields(), ", ")+")")
	cmd.Flags().BoolVar(&q.Desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&q.Page, "page", 0, "page number, starting at 0")
	cmd.Flags().IntVar(&q.PageSize, "page-size", document.DefaultPageSize, "documents per page")
	return cmd
}

func formatDocuments(p *document.Page) string {
	var buf bytes.Buffer
	if len(p.Documents) == 0 {
		fmt.Fprintf(&buf, "No documents (total %d).\n", p.Total)
		return buf.String()
	}
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tSTATUS\tSTT\tNAME\tAGENCY\tHANDLER\tREVIEW\tID")
	for _, d := range p.Documents {
		review := ""
		if d.NeedsReview {
			review = "!"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			d.DocType, d.Status, d.STT, truncate(d.Name, 50), truncate(d.AgencyName(), 30),
			d.HandlerName, review, d.ID)
	}
	w.Flush()

	pages := (p.Total + p.PageSize - 1) / p.PageSize
	fmt.Fprintf(&buf, "\nPage %d of %d, %d documents\n", p.Page+1, pages, p.Total)
	return buf.String()
}

func newDocumentAddCmd() *cobra.Command {
	var (
		in       document.CreateInput
		agencyID uint
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a document at the end of its partition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			in.Name = args[0]
			if agencyID != 0 {
				in.AgencyID = &agencyID
			}
			if in.Year == 0 {
				in.Year = a.cfg.Year
			}
			d, err := document.Create(a.db, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s/%s #%d: %s (%s)\n", d.DocType, d.Status, d.STT, d.Name, d.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.DocType, "type", "", "doc type (required)")
	cmd.Flags().StringVar(&in.Status, "status", models.StatusPending, "status")
	cmd.Flags().IntVar(&in.Year, "year", 0, "reporting year (default from config)")
	cmd.Flags().UintVar(&agencyID, "agency", 0, "agency ID")
	cmd.Flags().StringVar(&in.HandlerName, "handler", "", "handler name")
	cmd.Flags().StringVar(&in.DocCategory, "category", "", "document category")
	cmd.MarkFlagRequired("type")
	return cmd
}

func newDocumentDeleteCmd() *cobra.Command {
	var (
		docType string
		status  string
	)

	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete documents and renumber their partition",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			n, err := document.Delete(a.db, args, docType, status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d documents from %s/%s\n", n, docType, status)
			return nil
		},
	}

	cmd.Flags().StringVar(&docType, "type", "", "doc type of the documents (required)")
	cmd.Flags().StringVar(&status, "status", "", "status of the documents (required)")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("status")
	return cmd
}
