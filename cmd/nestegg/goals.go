package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nest-egg/internal/cli"
	"github.com/Veraticus/nest-egg/internal/goals"
	"github.com/Veraticus/nest-egg/internal/model"
)

func (a *app) goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Manage savings goals",
		Long: `Create savings goals and move them through their lifecycle.

A goal concludes on its own when its reservations reach the target. Once
concluded, its funds can be drawn with 'use' and closed with 'release'.`,
	}

	cmd.AddCommand(a.goalsCreateCmd())
	cmd.AddCommand(a.goalsListCmd())
	cmd.AddCommand(a.goalsShowCmd())
	cmd.AddCommand(a.goalsEditCmd())
	cmd.AddCommand(a.goalsTransitionCmd("pause", "Pause an active goal", (*goals.Service).PauseGoal))
	cmd.AddCommand(a.goalsTransitionCmd("resume", "Resume a paused goal", (*goals.Service).ResumeGoal))
	cmd.AddCommand(a.goalsTransitionCmd("conclude", "Conclude a goal regardless of its saved value", (*goals.Service).ConcludeGoal))
	cmd.AddCommand(a.goalsCancelCmd())
	cmd.AddCommand(a.goalsUseCmd())
	cmd.AddCommand(a.goalsReleaseCmd())

	return cmd
}

func (a *app) goalsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a savings goal",
		Example: `  nestegg goals create "Trip to Lisbon" --target 4500 --deadline 2027-03-01
  nestegg goals create Laptop --target 7.999,90 --deadline 2026-12-20T18:00:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetString("target")
			deadline, _ := cmd.Flags().GetString("deadline")
			profile, _ := cmd.Flags().GetString("profile")

			return a.withGoals(cmd.Context(), func(svc *goals.Service) error {
				result, err := svc.CreateGoal(cmd.Context(), a.settings.OwnerID, goals.GoalInput{
					Name:        args[0],
					TargetValue: target,
					Deadline:    deadline,
					ProfileID:   profile,
				})
				if err != nil {
					return err
				}

				w := out(cmd)
				fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Created goal %q (%s)", result.Goal.Name, result.Goal.ID)))
				fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("Save %s a week or %s a month to reach %s by %s",
					cli.FormatMoney(result.Suggestions.Weekly),
					cli.FormatMoney(result.Suggestions.Monthly),
					cli.FormatMoney(result.Goal.TargetValue),
					result.Goal.Deadline.Format("2006-01-02"))))
				return nil
			})
		},
	}

	cmd.Flags().StringP("target", "t", "", "target value (required)")
	cmd.Flags().StringP("deadline", "d", "", "deadline as YYYY-MM-DD or an ISO datetime (required)")
	cmd.Flags().StringP("profile", "p", "", "profile the goal belongs to")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("deadline")

	return cmd
}

func (a *app) goalsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List goals by deadline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withGoals(cmd.Context(), func(svc *goals.Service) error {
				list, err := svc.ListGoals(cmd.Context(), a.settings.OwnerID)
				if err != nil {
					return err
				}

				w := out(cmd)
				if len(list) == 0 {
					fmt.Fprintln(w, cli.InfoStyle.Render("No goals yet. Use 'nestegg goals create' to start one."))
					return nil
				}
				fmt.Fprintln(w, cli.FormatTitle("Savings Goals"))
				fmt.Fprintln(w, cli.RenderTable(cli.GoalHeader, cli.GoalRows(list)))
				return nil
			})
		},
	}
}

func (a *app) goalsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show GOAL_ID",
		Short: "Show a goal with its reservations and usage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGoals(cmd.Context(), func(svc *goals.Service) error {
				detail, err := svc.GetGoal(cmd.Context(), a.settings.OwnerID, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), renderGoalDetail(detail))
				return nil
			})
		},
	}
}

func renderGoalDetail(d *goals.GoalDetail) string {
	g := d.Goal
	var b strings.Builder
	fmt.Fprintf(&b, "Status:   %s\n", cli.FormatStatus(g.Status))
	fmt.Fprintf(&b, "Saved:    %s of %s\n", cli.FormatMoney(g.CurrentValue), cli.FormatMoney(g.TargetValue))
	fmt.Fprintf(&b, "Progress: %s\n", cli.ProgressBar(d.Progress))
	fmt.Fprintf(&b, "Deadline: %s\n", g.Deadline.Format("2006-01-02"))
	if g.ConcludedAt != nil {
		fmt.Fprintf(&b, "Concluded %s (%s)\n", g.ConcludedAt.Format("2006-01-02"), strings.ToLower(string(g.ConclusionOrigin)))
	}
	if g.FinalizedAt != nil {
		fmt.Fprintf(&b, "Released %s\n", g.FinalizedAt.Format("2006-01-02"))
	}

	if len(d.Reservations) > 0 {
		rows := make([][]string, 0, len(d.Reservations))
		for _, r := range d.Reservations {
			rows = append(rows, []string{r.ID, r.CreatedAt.Format("2006-01-02"), cli.FormatMoney(r.Value), r.Note})
		}
		b.WriteString("\n")
		b.WriteString(cli.RenderTable([]string{"RESERVATION", "DATE", "VALUE", "NOTE"}, rows))
		b.WriteString("\n")
	}
	if len(d.Usages) > 0 {
		fmt.Fprintf(&b, "\nUsed %s across %d transaction(s)\n", cli.FormatMoney(d.TotalUsed), len(d.Usages))
	}

	return cli.RenderBox(fmt.Sprintf("%s %s", cli.TrophyIcon, g.Name), strings.TrimRight(b.String(), "\n"))
}

func (a *app) goalsEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit GOAL_ID",
		Short: "Change a goal's name, target or deadline",
		Long:  `Change a goal's name, target or deadline. Flags left out keep their current value.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGoals(cmd.Context(), func(svc *goals.Service) error {
				detail, err := svc.GetGoal(cmd.Context(), a.settings.OwnerID, args[0])
				if err != nil {
					return err
				}

				in := currentInput(detail.Goal)
				if v := stringFlag(cmd, "name"); v != nil {
					in.Name = *v
				}
				if v := stringFlag(cmd, "target"); v != nil {
					in.TargetValue = *v
				}
				if v := stringFlag(cmd, "deadline"); v != nil {
					in.Deadline = *v
				}

				goal, err := svc.EditGoal(cmd.Context(), a.settings.OwnerID, args[0], in)
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Updated goal %q", goal.Name)))
				return nil
			})
		},
	}

	cmd.Flags().String("name", "", "new name")
	cmd.Flags().String("target", "", "new target value")
	cmd.Flags().String("deadline", "", "new deadline")

	return cmd
}

func currentInput(g *model.Goal) goals.GoalInput {
	return goals.GoalInput{
		Name:        g.Name,
		TargetValue: strconv.FormatFloat(g.TargetValue, 'f', -1, 64),
		Deadline:    g.Deadline.Format("2006-01-02"),
		ProfileID:   g.ProfileID,
	}
}

type goalTransition func(*goals.Service, context.Context, string, string) (*model.Goal, error)

func (a *app) goalsTransitionCmd(use, short string, apply goalTransition) *cobra.Command {
	return &cobra.Command{
		Use:   use + " GOAL_ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGoals(cmd.Context(), func(svc *goals.Service) error {
				goal, err := apply(svc, cmd.Context(), a.settings.OwnerID, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Goal %q is now %s", goal.Name, goal.Status)))
				return nil
			})
		},
	}
}

func (a *app) goalsCancelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel GOAL_ID",
		Short: "Cancel a goal and decide what happens to its funds",
		Long: `Cancel a goal that has not concluded.

--funds keep        leaves the reservations in place (default)
--funds release     deletes the reservations
--funds reallocate  moves the saved value to the goal given by --to`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			funds, _ := cmd.Flags().GetString("funds")
			dest, _ := cmd.Flags().GetString("to")

			disposition, err := goals.ParseFundDisposition(funds)
			if err != nil {
				return err
			}

			return a.withGoals(cmd.Context(), func(svc *goals.Service) error {
				result, err := svc.CancelGoal(cmd.Context(), a.settings.OwnerID, args[0], disposition, dest)
				if err != nil {
					return err
				}

				w := out(cmd)
				fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("Cancelled goal %q", result.Goal.Name)))
				if result.Destination != nil && result.Transferred > 0 {
					fmt.Fprintln(w, cli.FormatInfo(fmt.Sprintf("Moved %s to %q", cli.FormatMoney(result.Transferred), result.Destination.Name)))
				}
				if result.Message != "" {
					fmt.Fprintln(w, cli.SuccessStyle.Render(cli.TrophyIcon+" "+result.Message))
				}
				return nil
			})
		},
	}

	cmd.Flags().String("funds", string(goals.FundsKeep), "what to do with the saved funds (keep, release, reallocate)")
	cmd.Flags().String("to", "", "destination goal for --funds reallocate")

	return cmd
}

func (a *app) goalsUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use GOAL_ID TRANSACTION_ID",
		Short: "Record that a transaction was paid from a concluded goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGoals(cmd.Context(), func(svc *goals.Service) error {
				result, err := svc.RegisterUsage(cmd.Context(), a.settings.OwnerID, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), cli.FormatSuccess(fmt.Sprintf("Used %s from %q", cli.FormatMoney(result.AmountUsed), result.Goal.Name)))
				return nil
			})
		},
	}
}

func (a *app) goalsReleaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release GOAL_ID",
		Short: "Close a concluded goal's balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGoals(cmd.Context(), func(svc *goals.Service) error {
				result, err := svc.ReleaseBalance(cmd.Context(), a.settings.OwnerID, args[0])
				if err != nil {
					return err
				}
				content := fmt.Sprintf("Saved:     %s\nUsed:      %s\nRemaining: %s",
					cli.FormatMoney(result.TotalValue),
					cli.FormatMoney(result.TotalUsed),
					cli.FormatMoney(result.Remaining))
				fmt.Fprintln(out(cmd), cli.RenderBox("Released "+result.Goal.Name, content))
				return nil
			})
		},
	}
}
