package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <plan-file>",
	Short: "Check that a plan file loads and is well formed",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	p, err := loadPlanFile(args[0])
	if err != nil {
		return err
	}

	trainingDays := 0
	for _, d := range p.BaseWeek.Days {
		if !d.IsRestDay() {
			trainingDays++
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, map[string]any{
			"valid":         true,
			"planName":      p.PlanName,
			"durationWeeks": p.DurationWeeks,
			"trainingDays":  trainingDays,
			"strategy":      p.ProgressionSettings.Strategy,
		})
	}

	fmt.Fprintln(out, okStyle.Render("valid"))
	fmt.Fprintf(out, "Plan:          %s\n", p.PlanName)
	fmt.Fprintf(out, "Duration:      %d weeks\n", p.DurationWeeks)
	fmt.Fprintf(out, "Training days: %d / 7\n", trainingDays)
	fmt.Fprintf(out, "Strategy:      %s x%.2f\n", p.ProgressionSettings.Strategy, p.ProgressionSettings.UserMultiplier)
	return nil
}
