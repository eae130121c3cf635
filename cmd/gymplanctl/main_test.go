package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/2beens/gymplan/internal/plan"
	"github.com/2beens/gymplan/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlanYAML = `
planName: Strength Block
sport: gym
durationWeeks: 12
createdAt: 2026-01-05T00:00:00Z
baseWeek:
  days:
    - day: Monday
      focus: Push
      exercises:
        - name: Bench Press
          type: repsSetsWeight
          baselineDetails: {sets: 3, reps: 8, weight: 80kg, rest: 90}
        - name: Plank
          type: timer
          baselineDetails: {duration: 60, description: hold it}
    - {day: Tuesday, focus: Rest, exercises: []}
    - day: Wednesday
      focus: Pull
      exercises:
        - name: Pull-up
          type: repsSetsWeight
          baselineDetails: {sets: 4, reps: 6, weight: Bodyweight}
    - {day: Thursday, focus: Rest, exercises: []}
    - {day: Friday, focus: Rest, exercises: []}
    - {day: Saturday, focus: Rest, exercises: []}
    - {day: Sunday, focus: Rest, exercises: []}
progressionSettings:
  strategy: linear
  increments: {reps: 1, weight: 2.5, duration: 5}
  userMultiplier: 1
  adaptiveEnabled: true
`

func writePlanFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// executeCmd runs gymplanctl with the given args and captured output.
// Package level flag variables are reset first, cobra parses into them.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	jsonOutput = false
	todayNow = ""
	todayFactor = 1
	weekNumber = 0
	weekNow = ""
	weekFactor = 1
	previewWeeks = 4

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	rootCmd.SetArgs(nil)

	return out.String(), err
}

func TestValidate(t *testing.T) {
	path := writePlanFile(t, "plan.yaml", testPlanYAML)

	out, err := executeCmd(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "valid")
	assert.Contains(t, out, "Strength Block")
	assert.Contains(t, out, "12 weeks")
	assert.Contains(t, out, "Training days: 2 / 7")
}

func TestValidate_Invalid(t *testing.T) {
	path := writePlanFile(t, "plan.json", `{"planName": "broken", "durationWeeks": 0, "baseWeek": []}`)

	_, err := executeCmd(t, "validate", path)
	require.ErrorIs(t, err, plan.ErrInvalidPlan)

	_, err = executeCmd(t, "validate", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestToday(t *testing.T) {
	path := writePlanFile(t, "plan.yml", testPlanYAML)

	// monday of week 3
	out, err := executeCmd(t, "today", path, "--now", "2026-01-19T10:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "Strength Block, week 3 of 12")
	assert.Contains(t, out, "Monday - Push")
	assert.Contains(t, out, "sets=3 reps=10 weight=85.0kg rest=90")
	assert.Contains(t, out, "duration=70 description=hold it")

	out, err = executeCmd(t, "today", path, "--now", "2026-01-20T10:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "Tuesday - Rest")
	assert.Contains(t, out, "rest")

	_, err = executeCmd(t, "today", path, "--now", "yesterday")
	require.Error(t, err)
}

func TestToday_JSON(t *testing.T) {
	path := writePlanFile(t, "plan.yaml", testPlanYAML)

	out, err := executeCmd(t, "today", path, "--now", "2026-01-19T10:00:00Z", "--factor", "1.1", "--json")
	require.NoError(t, err)

	var resp struct {
		WeekNumber int    `json:"weekNumber"`
		Today      string `json:"today"`
		Day        struct {
			Exercises []struct {
				Name    string         `json:"name"`
				Details map[string]any `json:"details"`
			} `json:"exercises"`
		} `json:"day"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 3, resp.WeekNumber)
	assert.Equal(t, "Monday", resp.Today)
	require.Len(t, resp.Day.Exercises, 2)
	assert.Equal(t, "85.5kg", resp.Day.Exercises[0].Details["weight"])
	assert.Equal(t, float64(10), resp.Day.Exercises[0].Details["reps"])
}

func TestWeek(t *testing.T) {
	path := writePlanFile(t, "plan.yaml", testPlanYAML)

	out, err := executeCmd(t, "week", path, "--week", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "week 5 of 12")
	assert.Contains(t, out, "weight=90.0kg")
	assert.Contains(t, out, "Pull-up")
	assert.Contains(t, out, "weight=Bodyweight")
	assert.Contains(t, out, "Sunday - Rest")

	out, err = executeCmd(t, "week", path, "--now", "2026-01-05T08:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "week 1 of 12")
	assert.Contains(t, out, "weight=80kg")

	_, err = executeCmd(t, "week", path, "--week", "13")
	require.Error(t, err)
}

func TestPreview(t *testing.T) {
	path := writePlanFile(t, "plan.yaml", testPlanYAML)

	out, err := executeCmd(t, "preview", path, "--weeks", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Week 1 of 12")
	assert.Contains(t, out, "Week 2 of 12")
	assert.NotContains(t, out, "Week 3 of 12")
	assert.Contains(t, out, "weight=82.5kg")
	assert.NotContains(t, out, "Tuesday")

	out, err = executeCmd(t, "preview", path, "--weeks", "40", "--json")
	require.NoError(t, err)
	var views []plan.WeekView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	assert.Len(t, views, 12)

	_, err = executeCmd(t, "preview", path, "--weeks", "0")
	require.Error(t, err)
}

func TestHashToken(t *testing.T) {
	out, err := executeCmd(t, "hash-token", "s3cr3t")
	require.NoError(t, err)

	hash := string(bytes.TrimSpace([]byte(out)))
	assert.True(t, pkg.TokenMatchesHash("s3cr3t", hash))
	assert.False(t, pkg.TokenMatchesHash("other", hash))
}
