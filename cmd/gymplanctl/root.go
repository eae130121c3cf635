package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/2beens/gymplan/internal/plan"

	"github.com/spf13/cobra"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "gymplanctl",
	Short: "Inspect and materialize training plan files offline",
	Long: "gymplanctl reads a plan file (JSON or YAML) and validates it or prints the workouts " +
		"it prescribes for a given week, without the gymplan service or its database.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(hashTokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadPlanFile decodes and validates the plan at path, YAML for .yaml/.yml files, JSON otherwise.
func loadPlanFile(path string) (*plan.Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan file: %w", err)
	}
	defer f.Close()

	var p *plan.Plan
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		p, err = plan.DecodeYAML(f)
	default:
		p, err = plan.Decode(f)
	}
	if err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// parseNow parses an RFC3339 --now flag, the current time when empty.
func parseNow(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	now, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now, use RFC3339 (2006-01-02T15:04:05Z07:00): %w", err)
	}
	return now, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
