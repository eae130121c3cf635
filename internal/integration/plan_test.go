package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/2beens/gymplan/internal/history"
	"github.com/2beens/gymplan/internal/middleware"
	"github.com/2beens/gymplan/internal/plan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// every day trains, so "today" is never a rest day
const everyDayPlanJSON = `{
  "planName": "Every Day",
  "sport": "gym",
  "durationWeeks": 8,
  "baseWeek": [
    {"day": "Monday", "focus": "Push", "exercises": [{"name": "Bench Press", "type": "repsSetsWeight", "baselineDetails": {"sets": 3, "reps": 8, "weight": "80kg"}}]},
    {"day": "Tuesday", "focus": "Pull", "exercises": [{"name": "Row", "type": "repsSetsWeight", "baselineDetails": {"sets": 3, "reps": 10, "weight": "60kg"}}]},
    {"day": "Wednesday", "focus": "Legs", "exercises": [{"name": "Squat", "type": "repsSetsWeight", "baselineDetails": {"sets": 5, "reps": 5, "weight": "100kg"}}]},
    {"day": "Thursday", "focus": "Core", "exercises": [{"name": "Plank", "type": "timer", "baselineDetails": {"duration": 60}}]},
    {"day": "Friday", "focus": "Fingers", "exercises": [{"name": "Max Hang", "type": "hangboard", "baselineDetails": {"duration": 10}}]},
    {"day": "Saturday", "focus": "Mobility", "exercises": [{"name": "Flow", "type": "timer", "baselineDetails": {"duration": 300}}]},
    {"day": "Sunday", "focus": "Walk", "exercises": [{"name": "Walk", "type": "timer", "details": {"duration": 1800}}]}
  ]
}`

const testOwner = "integration-owner"

func (s *IntegrationTestSuite) do(method, path, contentType, body string, withToken bool) (int, []byte) {
	t := s.T()

	req, err := http.NewRequest(method, serverEndpoint+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set(middleware.OwnerHeader, testOwner)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if withToken {
		req.Header.Set(middleware.AuthTokenHeader, testToken)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) TestPlanLifecycle() {
	t := s.T()

	status, _ := s.do(http.MethodGet, "/plan", "", "", false)
	require.Equal(t, http.StatusNotFound, status)

	// mutating routes need the token
	status, _ = s.do(http.MethodPut, "/plan", "application/json", everyDayPlanJSON, false)
	require.Equal(t, http.StatusUnauthorized, status)

	status, body := s.do(http.MethodPut, "/plan", "application/json", everyDayPlanJSON, true)
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = s.do(http.MethodGet, "/plan/today", "", "", false)
	require.Equal(t, http.StatusOK, status, string(body))
	var today plan.DayView
	require.NoError(t, json.Unmarshal(body, &today))
	assert.Equal(t, "Every Day", today.PlanName)
	assert.Equal(t, 1, today.WeekNumber)
	assert.False(t, today.RestDay)
	assert.Equal(t, 1.0, today.AdaptiveFactor)

	status, body = s.do(http.MethodPost, "/plan/today/complete", "", "", true)
	require.Equal(t, http.StatusCreated, status, string(body))
	var entry history.Entry
	require.NoError(t, json.Unmarshal(body, &entry))
	assert.Equal(t, testOwner, entry.Owner)
	assert.Equal(t, today.Today, entry.Day)
	require.NotNil(t, entry.WeekNumber)
	assert.Equal(t, 1, *entry.WeekNumber)

	status, body = s.do(http.MethodGet, "/history/list/page/1/size/10", "", "", false)
	require.Equal(t, http.StatusOK, status, string(body))
	var list history.ListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 1, list.Total)

	var stored int
	require.NoError(t, s.DB.QueryRow(
		"SELECT count(*) FROM gymplan_history WHERE owner = $1", testOwner,
	).Scan(&stored))
	assert.Equal(t, 1, stored)

	status, body = s.do(http.MethodGet, "/plan/week/8", "", "", false)
	require.Equal(t, http.StatusOK, status, string(body))
	var week plan.WeekView
	require.NoError(t, json.Unmarshal(body, &week))
	// 80 + 2.5 * 7
	assert.Equal(t, "97.5kg", week.Days[0].Exercises[0].Details["weight"].Render())
	// legacy details key folded into the baseline, 1800 + 5 * 7
	assert.Equal(t, "1835", week.Days[6].Exercises[0].Details["duration"].Render())

	status, body = s.do(http.MethodPut, "/plan/settings", "application/json", `{"userMultiplier": 2}`, true)
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = s.do(http.MethodGet, "/plan/week/2", "", "", false)
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &week))
	assert.Equal(t, "85.0kg", week.Days[0].Exercises[0].Details["weight"].Render())

	status, _ = s.do(http.MethodDelete, "/plan", "", "", true)
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(http.MethodGet, "/plan/status", "", "", false)
	require.Equal(t, http.StatusNotFound, status)

	// history outlives the plan
	require.NoError(t, s.DB.QueryRow(
		"SELECT count(*) FROM gymplan_history WHERE owner = $1", testOwner,
	).Scan(&stored))
	assert.Equal(t, 1, stored)
}

func (s *IntegrationTestSuite) TestHealth() {
	status, body := s.do(http.MethodGet, "/health", "", "", false)
	require.Equal(s.T(), http.StatusOK, status)
	assert.Contains(s.T(), string(body), fmt.Sprintf(`"version":"%s"`, "test-version-info"))
}
