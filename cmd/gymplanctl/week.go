package main

import (
	"fmt"

	"github.com/2beens/gymplan/internal/progression"

	"github.com/spf13/cobra"
)

var (
	weekNumber int
	weekNow    string
	weekFactor float64
)

var weekCmd = &cobra.Command{
	Use:   "week <plan-file>",
	Short: "Print a full materialized week of the plan",
	Long:  "Print all 7 days of a plan week. Without --week the week containing --now (default: now) is used.",
	Args:  cobra.ExactArgs(1),
	RunE:  runWeek,
}

func init() {
	weekCmd.Flags().IntVar(&weekNumber, "week", 0, "Week number, 1 based (default: current week)")
	weekCmd.Flags().StringVar(&weekNow, "now", "", "Point in time the current week is computed for, RFC3339 (default: now)")
	weekCmd.Flags().Float64Var(&weekFactor, "factor", progression.NeutralAdaptiveFactor, "Adaptive factor to apply")
}

func runWeek(cmd *cobra.Command, args []string) error {
	p, err := loadPlanFile(args[0])
	if err != nil {
		return err
	}

	week := weekNumber
	if week == 0 {
		now, err := parseNow(weekNow)
		if err != nil {
			return err
		}
		week = p.CurrentWeek(now)
	}
	if week < 1 || week > p.DurationWeeks {
		return fmt.Errorf("week %d out of plan, it has %d weeks", week, p.DurationWeeks)
	}

	days := p.MaterializeWeek(week, weekFactor)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{
			"planName":   p.PlanName,
			"weekNumber": week,
			"days":       days,
		})
	}

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s, week %d of %d", p.PlanName, week, p.DurationWeeks)))
	for _, day := range days {
		fmt.Fprint(out, renderDay(day))
	}
	return nil
}
