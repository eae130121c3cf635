package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/2beens/gymplan/internal/progression"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	dayStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	restStyle     = lipgloss.NewStyle().Faint(true).Italic(true)
	exerciseStyle = lipgloss.NewStyle().PaddingLeft(2)
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

// details printed first, in this order; the rest follow alphabetically
var detailOrder = []string{
	progression.FieldSets,
	progression.FieldReps,
	progression.FieldWeight,
	progression.FieldDuration,
	progression.FieldRest,
}

func renderDay(day progression.MaterializedDay) string {
	var sb strings.Builder

	header := day.Day
	if day.Focus != "" {
		header += " - " + day.Focus
	}
	sb.WriteString(dayStyle.Render(header))
	sb.WriteString("\n")

	if day.IsRestDay() {
		sb.WriteString(exerciseStyle.Render(restStyle.Render("rest")))
		sb.WriteString("\n")
		return sb.String()
	}

	for _, ex := range day.Exercises {
		line := fmt.Sprintf("%s  %s", ex.Name, detailStyle.Render(renderDetails(ex.Details)))
		sb.WriteString(exerciseStyle.Render(line))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderDetails(details progression.Details) string {
	parts := make([]string, 0, len(details))
	for _, name := range detailOrder {
		if f, ok := details.Get(name); ok {
			parts = append(parts, name+"="+f.Render())
		}
	}
	for _, name := range slices.Sorted(maps.Keys(details)) {
		if slices.Contains(detailOrder, name) {
			continue
		}
		parts = append(parts, name+"="+details[name].Render())
	}
	return strings.Join(parts, " ")
}
