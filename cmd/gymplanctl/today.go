package main

import (
	"fmt"

	"github.com/2beens/gymplan/internal/progression"

	"github.com/spf13/cobra"
)

var (
	todayNow    string
	todayFactor float64
)

var todayCmd = &cobra.Command{
	Use:   "today <plan-file>",
	Short: "Print the workout scheduled for today (or --now)",
	Args:  cobra.ExactArgs(1),
	RunE:  runToday,
}

func init() {
	todayCmd.Flags().StringVar(&todayNow, "now", "", "Point in time to materialize for, RFC3339 (default: now)")
	todayCmd.Flags().Float64Var(&todayFactor, "factor", progression.NeutralAdaptiveFactor, "Adaptive factor to apply")
}

func runToday(cmd *cobra.Command, args []string) error {
	p, err := loadPlanFile(args[0])
	if err != nil {
		return err
	}
	now, err := parseNow(todayNow)
	if err != nil {
		return err
	}

	week := p.CurrentWeek(now)
	today := progression.TodayName(now)
	day := p.MaterializeDay(today, week, todayFactor)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{
			"planName":   p.PlanName,
			"weekNumber": week,
			"today":      today,
			"day":        day,
		})
	}

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s, week %d of %d", p.PlanName, week, p.DurationWeeks)))
	fmt.Fprint(out, renderDay(day))
	return nil
}
