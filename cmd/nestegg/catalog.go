package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nest-egg/internal/cli"
	"github.com/Veraticus/nest-egg/internal/inbox"
	"github.com/Veraticus/nest-egg/internal/model"
)

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage transaction categories",
	}

	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("kind")
			kind, err := model.ParseTransactionKind(raw)
			if err != nil {
				return err
			}

			return a.withInbox(cmd.Context(), func(svc *inbox.Service) error {
				c, err := svc.AddCategory(cmd.Context(), a.settings.OwnerID, args[0], kind)
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Created %s category %q (%s)", c.Kind, c.Name, c.ID)))
				return nil
			})
		},
	}
	add.Flags().String("kind", string(model.KindExpense), "INCOME or EXPENSE")

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var kind model.TransactionKind
			if raw, _ := cmd.Flags().GetString("kind"); raw != "" {
				parsed, err := model.ParseTransactionKind(raw)
				if err != nil {
					return err
				}
				kind = parsed
			}

			return a.withInbox(cmd.Context(), func(svc *inbox.Service) error {
				categories, err := svc.ListCategories(cmd.Context(), a.settings.OwnerID, kind)
				if err != nil {
					return err
				}
				if len(categories) == 0 {
					fmt.Fprintln(out(cmd), cli.InfoStyle.Render("No categories found. Use 'nestegg categories add' to create one."))
					return nil
				}
				rows := make([][]string, 0, len(categories))
				for _, c := range categories {
					rows = append(rows, []string{c.ID, c.Name, string(c.Kind)})
				}
				fmt.Fprintln(out(cmd), cli.RenderTable([]string{"ID", "NAME", "KIND"}, rows))
				return nil
			})
		},
	}
	list.Flags().String("kind", "", "only INCOME or EXPENSE categories")

	cmd.AddCommand(add, list)
	return cmd
}

func (a *app) profilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage profiles",
	}

	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withInbox(cmd.Context(), func(svc *inbox.Service) error {
				p, err := svc.AddProfile(cmd.Context(), a.settings.OwnerID, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Created profile %q (%s)", p.Name, p.ID)))
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withInbox(cmd.Context(), func(svc *inbox.Service) error {
				profiles, err := svc.ListProfiles(cmd.Context(), a.settings.OwnerID)
				if err != nil {
					return err
				}
				if len(profiles) == 0 {
					fmt.Fprintln(out(cmd), cli.InfoStyle.Render("No profiles found. Use 'nestegg profiles add' to create one."))
					return nil
				}
				rows := make([][]string, 0, len(profiles))
				for _, p := range profiles {
					rows = append(rows, []string{p.ID, p.Name})
				}
				fmt.Fprintln(out(cmd), cli.RenderTable([]string{"ID", "NAME"}, rows))
				return nil
			})
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
