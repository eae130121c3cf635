package mcp

import (
	"context"
	"encoding/json"

	"github.com/2beens/gymplan/internal/plan"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// planService is the part of plan.Service the tools read from.
type planService interface {
	Today(ctx context.Context, owner string) (*plan.DayView, error)
	Week(ctx context.Context, owner string, week int) (*plan.WeekView, error)
	Preview(ctx context.Context, owner string, weeks int) ([]plan.WeekView, error)
	Status(ctx context.Context, owner string) (*plan.StatusView, error)
}

// Handler parses tool input, calls the plan service and formats the MCP result.
type Handler struct {
	service      planService
	defaultOwner string
}

func NewHandler(service planService, defaultOwner string) *Handler {
	return &Handler{
		service:      service,
		defaultOwner: defaultOwner,
	}
}

// OwnerInput is the input shared by tools that only need to know whose plan to read.
type OwnerInput struct {
	Owner string `json:"owner,omitempty" jsonschema:"Plan owner; the server's default owner when empty"`
}

type WeekInput struct {
	Owner string `json:"owner,omitempty" jsonschema:"Plan owner; the server's default owner when empty"`
	Week  int    `json:"week,omitempty" jsonschema:"Plan week number (1 based); 0 means the current week"`
}

type PreviewInput struct {
	Owner string `json:"owner,omitempty" jsonschema:"Plan owner; the server's default owner when empty"`
	Weeks int    `json:"weeks" jsonschema:"Number of weeks to preview, starting from week 1"`
}

func (h *Handler) GetTodayWorkoutTool() func(context.Context, *mcp.CallToolRequest, OwnerInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in OwnerInput) (*mcp.CallToolResult, any, error) {
		view, err := h.service.Today(ctx, h.owner(in.Owner))
		if err != nil {
			return errorResult("Error materializing today's workout: " + err.Error()), nil, nil
		}
		return jsonResult(view), nil, nil
	}
}

func (h *Handler) GetWeekWorkoutTool() func(context.Context, *mcp.CallToolRequest, WeekInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in WeekInput) (*mcp.CallToolResult, any, error) {
		if in.Week < 0 {
			return errorResult("Invalid week: must be 0 (current) or a positive week number"), nil, nil
		}
		view, err := h.service.Week(ctx, h.owner(in.Owner), in.Week)
		if err != nil {
			return errorResult("Error materializing week: " + err.Error()), nil, nil
		}
		return jsonResult(view), nil, nil
	}
}

func (h *Handler) PreviewPlanTool() func(context.Context, *mcp.CallToolRequest, PreviewInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in PreviewInput) (*mcp.CallToolResult, any, error) {
		if in.Weeks < 1 {
			return errorResult("Invalid weeks: must be at least 1"), nil, nil
		}
		views, err := h.service.Preview(ctx, h.owner(in.Owner), in.Weeks)
		if err != nil {
			return errorResult("Error previewing plan: " + err.Error()), nil, nil
		}
		return jsonResult(views), nil, nil
	}
}

func (h *Handler) GetPlanStatusTool() func(context.Context, *mcp.CallToolRequest, OwnerInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in OwnerInput) (*mcp.CallToolResult, any, error) {
		status, err := h.service.Status(ctx, h.owner(in.Owner))
		if err != nil {
			return errorResult("Error fetching plan status: " + err.Error()), nil, nil
		}
		return jsonResult(status), nil, nil
	}
}

func (h *Handler) owner(owner string) string {
	if owner == "" {
		return h.defaultOwner
	}
	return owner
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
