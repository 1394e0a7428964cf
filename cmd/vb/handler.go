package main

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/sotuphap-angiang/vbtrack/internal/handler"
	"github.com/sotuphap-angiang/vbtrack/internal/models"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newHandlerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "handler",
		Aliases: []string{"handlers"},
		Short:   "Manage the people documents are assigned to",
	}

	cmd.AddCommand(newHandlerListCmd())
	cmd.AddCommand(newHandlerAddCmd())
	cmd.AddCommand(newHandlerRenameCmd())
	cmd.AddCommand(newHandlerSetActiveCmd("deactivate", false))
	cmd.AddCommand(newHandlerSetActiveCmd("activate", true))
	cmd.AddCommand(newHandlerRemoveCmd())
	return cmd
}

func newHandlerListCmd() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List handlers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			hs, err := handler.List(a.db, activeOnly)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatHandlers(hs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "only show active handlers")
	return cmd
}

func formatHandlers(hs []models.Handler) string {
	if len(hs) == 0 {
		return "No handlers.\n"
	}
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tACTIVE")
	for _, h := range hs {
		active := "yes"
		if !h.Active {
			active = "no"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", h.ID, h.Name, active)
	}
	w.Flush()
	return buf.String()
}

func newHandlerAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a handler",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			h, err := handler.Create(a.db, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added handler %d: %s\n", h.ID, h.Name)
			return nil
		},
	}
}

func newHandlerRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id|name> <new-name>",
		Short: "Rename a handler",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			h, err := lookupHandler(a.db, args[0])
			if err != nil {
				return err
			}
			active := h.Active
			updated, err := handler.Update(a.db, h.ID, handler.Input{Name: args[1], Active: &active})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed handler %d: %s -> %s\n", h.ID, h.Name, updated.Name)
			return nil
		},
	}
}

func newHandlerSetActiveCmd(use string, active bool) *cobra.Command {
	short := "Hide a handler from assignment lists"
	if active {
		short = "Make a handler assignable again"
	}
	return &cobra.Command{
		Use:   use + " <id|name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			h, err := lookupHandler(a.db, args[0])
			if err != nil {
				return err
			}
			if _, err := handler.Update(a.db, h.ID, handler.Input{Name: h.Name, Active: &active}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Handler %s is now %s\n", h.Name, map[bool]string{true: "active", false: "inactive"}[active])
			return nil
		},
	}
}

func newHandlerRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id|name>",
		Short: "Delete a handler",
		Long:  "Deletes the handler record. Documents keep the handler name they were assigned.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			h, err := lookupHandler(a.db, args[0])
			if err != nil {
				return err
			}
			if err := handler.Delete(a.db, h.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed handler %s\n", h.Name)
			return nil
		},
	}
}

// lookupHandler resolves a numeric ID first, then an exact name.
func lookupHandler(db *gorm.DB, ref string) (*models.Handler, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return handler.Get(db, uint(id))
	}
	return handler.GetByName(db, ref)
}
