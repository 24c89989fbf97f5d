package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nest-egg/internal/cli"
	"github.com/Veraticus/nest-egg/internal/importer"
)

func (a *app) mappingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mappings",
		Short: "Manage saved CSV column layouts",
	}

	save := &cobra.Command{
		Use:   "save NAME",
		Short: "Save a CSV column layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var columns importer.ColumnMapping
			columns.Date, _ = cmd.Flags().GetString("date")
			columns.Value, _ = cmd.Flags().GetString("value")
			columns.Description, _ = cmd.Flags().GetString("description")

			return a.withImporter(cmd.Context(), func(svc *importer.Service) error {
				m, err := svc.SaveMapping(cmd.Context(), a.settings.OwnerID, args[0], columns)
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Saved mapping %q (%s)", m.Name, m.ID)))
				return nil
			})
		},
	}
	save.Flags().String("date", "", "date column (required)")
	save.Flags().String("value", "", "value column (required)")
	save.Flags().String("description", "", "description column (required)")
	_ = save.MarkFlagRequired("date")
	_ = save.MarkFlagRequired("value")
	_ = save.MarkFlagRequired("description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved CSV layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withImporter(cmd.Context(), func(svc *importer.Service) error {
				mappings, err := svc.ListMappings(cmd.Context(), a.settings.OwnerID)
				if err != nil {
					return err
				}
				if len(mappings) == 0 {
					fmt.Fprintln(out(cmd), cli.InfoStyle.Render("No saved mappings."))
					return nil
				}
				rows := make([][]string, 0, len(mappings))
				for _, m := range mappings {
					rows = append(rows, []string{m.ID, m.Name, m.DateColumn, m.ValueColumn, m.DescriptionColumn})
				}
				fmt.Fprintln(out(cmd), cli.RenderTable([]string{"ID", "NAME", "DATE", "VALUE", "DESCRIPTION"}, rows))
				return nil
			})
		},
	}

	cmd.AddCommand(save, list)
	return cmd
}
