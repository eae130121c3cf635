package main

import (
	"fmt"
	"time"

	"github.com/2beens/gymplan/internal/plan"

	"github.com/spf13/cobra"
)

var previewWeeks int

var previewCmd = &cobra.Command{
	Use:   "preview <plan-file>",
	Short: "Print weeks 1..n as they progress when every session is done",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().IntVar(&previewWeeks, "weeks", 4, "Number of weeks to preview, capped at the plan duration")
}

func runPreview(cmd *cobra.Command, args []string) error {
	if previewWeeks < 1 {
		return fmt.Errorf("--weeks must be at least 1")
	}
	p, err := loadPlanFile(args[0])
	if err != nil {
		return err
	}

	views := plan.PreviewWeeks(p, p.CurrentWeek(time.Now()), previewWeeks)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, views)
	}

	for _, v := range views {
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Week %d of %d", v.WeekNumber, v.DurationWeeks)))
		for _, day := range v.Days {
			if day.IsRestDay() {
				continue
			}
			fmt.Fprint(out, renderDay(day))
		}
	}
	return nil
}
