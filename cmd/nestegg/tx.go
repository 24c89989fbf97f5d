package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nest-egg/internal/cli"
	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/goals"
	"github.com/Veraticus/nest-egg/internal/importer"
	"github.com/Veraticus/nest-egg/internal/inbox"
	"github.com/Veraticus/nest-egg/internal/model"
)

func (a *app) txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record, triage and search transactions",
		Long: `Record transactions and work through the inbox.

A transaction stays PENDING until it has both a category and a profile.`,
	}

	cmd.AddCommand(a.txAddCmd())
	cmd.AddCommand(a.txListCmd())
	cmd.AddCommand(a.txPendingCmd())
	cmd.AddCommand(a.txUpdateCmd())
	cmd.AddCommand(a.txDeleteCmd())
	cmd.AddCommand(a.txCategorizeCmd())
	cmd.AddCommand(a.txStatsCmd())

	return cmd
}

func (a *app) txAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rawValue, _ := cmd.Flags().GetString("value")
			rawKind, _ := cmd.Flags().GetString("kind")
			rawDate, _ := cmd.Flags().GetString("date")
			description, _ := cmd.Flags().GetString("description")
			category, _ := cmd.Flags().GetString("category")
			profile, _ := cmd.Flags().GetString("profile")

			value, err := goals.ParseValue(rawValue)
			if err != nil {
				return err
			}
			kind, err := model.ParseTransactionKind(rawKind)
			if err != nil {
				return err
			}
			date := time.Now().UTC().Truncate(24 * time.Hour)
			if rawDate != "" {
				if date, err = importer.ParseDate(rawDate); err != nil {
					return err
				}
			}

			return a.withInbox(cmd.Context(), func(svc *inbox.Service) error {
				txn, err := svc.Launch(cmd.Context(), a.settings.OwnerID, inbox.LaunchInput{
					Date:        date,
					Description: description,
					CategoryID:  category,
					ProfileID:   profile,
					Kind:        kind,
					Value:       value,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Recorded %s %s (%s)", strings.ToLower(string(txn.Kind)), cli.FormatMoney(txn.Value), txn.Status)))
				fmt.Fprintln(out(cmd), cli.MutedStyle.Render(txn.ID))
				return nil
			})
		},
	}

	cmd.Flags().String("value", "", "value, always positive (required)")
	cmd.Flags().String("kind", "", "INCOME or EXPENSE (required)")
	cmd.Flags().String("date", "", "date (default: today)")
	cmd.Flags().String("description", "", "description")
	cmd.Flags().String("category", "", "category id")
	cmd.Flags().String("profile", "", "profile id")
	_ = cmd.MarkFlagRequired("value")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func (a *app) txListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := filterFromFlags(cmd)
			if err != nil {
				return err
			}

			return a.withInbox(cmd.Context(), func(svc *inbox.Service) error {
				list, err := svc.Filter(cmd.Context(), a.settings.OwnerID, filter)
				if err != nil {
					return err
				}
				printTransactions(cmd, list, "No transactions match.")
				return nil
			})
		},
	}

	cmd.Flags().String("from", "", "earliest date")
	cmd.Flags().String("to", "", "latest date")
	cmd.Flags().String("min", "", "smallest value")
	cmd.Flags().String("max", "", "largest value")
	cmd.Flags().String("status", "", "PENDING or PROCESSED")
	cmd.Flags().String("search", "", "text contained in the description")
	cmd.Flags().String("category", "", "category id")
	cmd.Flags().String("profile", "", "profile id")
	cmd.Flags().Bool("without-category", false, "only transactions with no category")
	cmd.Flags().Bool("without-profile", false, "only transactions with no profile")

	return cmd
}

func filterFromFlags(cmd *cobra.Command) (model.TransactionFilter, error) {
	flags := cmd.Flags()
	var filter model.TransactionFilter

	filter.Description, _ = flags.GetString("search")
	filter.CategoryID, _ = flags.GetString("category")
	filter.ProfileID, _ = flags.GetString("profile")
	filter.WithoutCategory, _ = flags.GetBool("without-category")
	filter.WithoutProfile, _ = flags.GetBool("without-profile")

	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw, _ := flags.GetString(name)
		if raw == "" {
			continue
		}
		t, err := importer.ParseDate(raw)
		if err != nil {
			return filter, err
		}
		*dst = &t
	}

	for name, dst := range map[string]**float64{"min": &filter.MinValue, "max": &filter.MaxValue} {
		raw, _ := flags.GetString(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, common.NewValidationError("invalid --%s value %q", name, raw)
		}
		*dst = &v
	}

	status, _ := flags.GetString("status")
	switch s := model.TransactionStatus(strings.ToUpper(status)); s {
	case "", model.StatusPending, model.StatusProcessed:
		filter.Status = s
	default:
		return filter, common.NewValidationError("status must be PENDING or PROCESSED, got %q", status)
	}

	return filter, nil
}

func printTransactions(cmd *cobra.Command, list []model.Transaction, empty string) {
	w := out(cmd)
	if len(list) == 0 {
		fmt.Fprintln(w, cli.InfoStyle.Render(empty))
		return
	}
	fmt.Fprintln(w, cli.RenderTable(cli.TransactionHeader, cli.TransactionRows(list)))
}

func (a *app) txPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List the inbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withInbox(cmd.Context(), func(svc *inbox.Service) error {
				list, err := svc.ListPending(cmd.Context(), a.settings.OwnerID)
				if err != nil {
					return err
				}
				if len(list) > 0 {
					fmt.Fprintln(out(cmd), cli.FormatTitle(fmt.Sprintf("%s %d pending", cli.InboxIcon, len(list))))
				}
				printTransactions(cmd, list, "Inbox is empty.")
				return nil
			})
		},
	}
}

func (a *app) txUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update TRANSACTION_ID",
		Short: "Edit a pending transaction",
		Long:  `Edit a pending transaction. Setting both a category and a profile moves it out of the inbox.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changes := inbox.Changes{
				Description: stringFlag(cmd, "description"),
				CategoryID:  stringFlag(cmd, "category"),
				ProfileID:   stringFlag(cmd, "profile"),
			}

			return a.withInbox(cmd.Context(), func(svc *inbox.Service) error {
				txn, err := svc.Update(cmd.Context(), a.settings.OwnerID, args[0], changes)
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Updated transaction (%s)", txn.Status)))
				return nil
			})
		},
	}

	cmd.Flags().String("description", "", "new description")
	cmd.Flags().String("category", "", "category id")
	cmd.Flags().String("profile", "", "profile id")

	return cmd
}

func (a *app) txDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete TRANSACTION_ID",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withInbox(cmd.Context(), func(svc *inbox.Service) error {
				if err := svc.Delete(cmd.Context(), a.settings.OwnerID, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess("Deleted transaction"))
				return nil
			})
		},
	}
}

func (a *app) txCategorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize TRANSACTION_ID...",
		Short: "Assign a category and profile to several pending transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, _ := cmd.Flags().GetString("category")
			profile, _ := cmd.Flags().GetString("profile")

			return a.withInbox(cmd.Context(), func(svc *inbox.Service) error {
				n, err := svc.CategorizeBatch(cmd.Context(), a.settings.OwnerID, args, category, profile)
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Categorized %d of %d transaction(s)", n, len(args))))
				return nil
			})
		},
	}

	cmd.Flags().String("category", "", "category id (required)")
	cmd.Flags().String("profile", "", "profile id (required)")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("profile")

	return cmd
}

func (a *app) txStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show balance and this month's totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withInbox(cmd.Context(), func(svc *inbox.Service) error {
				stats, err := svc.DashboardStats(cmd.Context(), a.settings.OwnerID)
				if err != nil {
					return err
				}
				content := fmt.Sprintf("Balance:        %s\nMonth income:   %s\nMonth expenses: %s",
					cli.FormatMoney(stats.Balance),
					cli.FormatMoney(stats.MonthIncome),
					cli.FormatMoney(stats.MonthExpenses))
				fmt.Fprintln(out(cmd), cli.RenderBox("Dashboard", content))
				return nil
			})
		},
	}
}
