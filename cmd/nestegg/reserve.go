package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nest-egg/internal/cli"
	"github.com/Veraticus/nest-egg/internal/goals"
)

func (a *app) reserveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reserve",
		Short: "Earmark funds for goals",
	}

	cmd.AddCommand(a.reserveAddCmd())
	cmd.AddCommand(a.reserveUpdateCmd())
	cmd.AddCommand(a.reserveDeleteCmd())
	cmd.AddCommand(a.reserveAvailableCmd())

	return cmd
}

func (a *app) reserveAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add GOAL_ID VALUE",
		Short:   "Reserve a value for a goal",
		Example: `  nestegg reserve add 5c1e... 250,00 --note "March bonus"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := goals.ParseValue(args[1])
			if err != nil {
				return err
			}
			note, _ := cmd.Flags().GetString("note")
			txnID, _ := cmd.Flags().GetString("transaction")

			return a.withGoals(cmd.Context(), func(svc *goals.Service) error {
				result, err := svc.CreateReservation(cmd.Context(), goals.ReservationInput{
					OwnerID:       a.settings.OwnerID,
					GoalID:        args[0],
					TransactionID: txnID,
					Note:          note,
					Value:         value,
				})
				if err != nil {
					return err
				}
				printReservation(cmd, result)
				return nil
			})
		},
	}

	cmd.Flags().String("note", "", "free-form note")
	cmd.Flags().String("transaction", "", "transaction the funds came from")

	return cmd
}

func (a *app) reserveUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update RESERVATION_ID VALUE",
		Short: "Change a reservation's value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := goals.ParseValue(args[1])
			if err != nil {
				return err
			}

			return a.withGoals(cmd.Context(), func(svc *goals.Service) error {
				result, err := svc.UpdateReservation(cmd.Context(), a.settings.OwnerID, args[0], value, stringFlag(cmd, "note"))
				if err != nil {
					return err
				}
				printReservation(cmd, result)
				return nil
			})
		},
	}

	cmd.Flags().String("note", "", "replace the note")

	return cmd
}

func printReservation(cmd *cobra.Command, result *goals.ReservationResult) {
	w := out(cmd)
	fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Reserved %s for %q (%s)",
		cli.FormatMoney(result.Reservation.Value), result.Goal.Name, result.Reservation.ID)))
	fmt.Fprintln(w, cli.ProgressBar(result.Goal.Progress()))
	if result.JustConcluded {
		fmt.Fprintln(w, cli.SuccessStyle.Render(cli.TrophyIcon+" "+result.Message))
	}
}

func (a *app) reserveDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete RESERVATION_ID",
		Short: "Delete a reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGoals(cmd.Context(), func(svc *goals.Service) error {
				goal, err := svc.DeleteReservation(cmd.Context(), a.settings.OwnerID, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Deleted reservation, %q now holds %s",
					goal.Name, cli.FormatMoney(goal.CurrentValue))))
				return nil
			})
		},
	}
}

func (a *app) reserveAvailableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "available",
		Short: "List goals that can still receive reservations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withGoals(cmd.Context(), func(svc *goals.Service) error {
				available, err := svc.ListAvailableGoals(cmd.Context(), a.settings.OwnerID)
				if err != nil {
					return err
				}

				w := out(cmd)
				if len(available.Goals) == 0 {
					fmt.Fprintln(w, cli.FormatInfo(available.EmptyMessage))
					return nil
				}
				fmt.Fprintln(w, cli.RenderTable(cli.GoalHeader, cli.GoalRows(available.Goals)))
				return nil
			})
		},
	}
}
