package mcp

import (
	"github.com/2beens/gymplan/internal/plan"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server exposing the active plan: today's workout, a full week,
// a progression preview and the plan status. Tool calls without an owner act on defaultOwner.
// Mounted by the main backend at /mcp (internal/server.go) and served over stdio by cmd/gymplan_mcp.
func NewServer(service *plan.Service, defaultOwner string) *mcp.Server {
	h := NewHandler(service, defaultOwner)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "gymplan",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_today_workout",
		Description: "Returns today's workout of the active training plan with every exercise projected to the current week (reps, weight, duration already progressed). Rest days come back with no exercises.",
	}, h.GetTodayWorkoutTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_week_workout",
		Description: "Returns all 7 days of the given plan week with projected exercise details. Arg: week (1..plan duration); 0 or missing means the current week.",
	}, h.GetWeekWorkoutTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "preview_plan",
		Description: "Returns weeks 1..n of the plan as they progress when every session is done, capped at the plan duration. Arg: weeks. Use to see where the plan is heading.",
	}, h.PreviewPlanTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_plan_status",
		Description: "Returns the plan summary: current week out of the plan duration, today's focus, progression strategy and multiplier, adherence over the last weeks and the resulting adaptive factor.",
	}, h.GetPlanStatusTool())

	return s
}
