package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/argo-steps/internal/engine"
	"github.com/rxtech-lab/argo-steps/internal/step"
	"github.com/rxtech-lab/argo-steps/internal/strategy"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for secondary text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		}).
		Headers(headers...)
}

func formatValue(v any) string {
	switch value := v.(type) {
	case float64:
		return strconv.FormatFloat(value, 'f', 4, 64)
	case nil:
		return "-"
	default:
		return fmt.Sprint(value)
	}
}

// formatOutputs renders name=value pairs sorted by name.
func formatOutputs(outputs map[string]any) string {
	if len(outputs) == 0 {
		return "-"
	}

	pairs := make([]string, 0, len(outputs))
	for _, name := range slices.Sorted(maps.Keys(outputs)) {
		pairs = append(pairs, name+"="+formatValue(outputs[name]))
	}

	return strings.Join(pairs, " ")
}

func renderRuns(strategyName string, runs []engine.SymbolRun) string {
	t := newTable("Symbol", "Run ID", "Bars", "Halts", "Attempts", "Latest outputs")

	for _, run := range runs {
		t.Row(
			run.Symbol,
			run.RunID,
			strconv.Itoa(run.Bars),
			strconv.Itoa(run.Halts),
			strconv.Itoa(run.Context.Len()),
			formatOutputs(run.Context.Snapshot()),
		)
	}

	return TitleStyle.Render("Strategy "+strategyName) + "\n" + t.String()
}

func formatInputs(def *step.Definition) string {
	inputs := def.Inputs()
	if len(inputs) == 0 {
		return "-"
	}

	parts := make([]string, 0, len(inputs))
	for _, param := range slices.Sorted(maps.Keys(inputs)) {
		binding := inputs[param]
		parts = append(parts, fmt.Sprintf("%s<-%s:%s", param, binding.Source, binding.Key))
	}

	return strings.Join(parts, " ")
}

func formatOutputBindings(def *step.Definition) string {
	outputs := def.Outputs()
	if len(outputs) == 0 {
		return "(raw result)"
	}

	parts := make([]string, 0, len(outputs))
	for _, key := range slices.Sorted(maps.Keys(outputs)) {
		parts = append(parts, fmt.Sprintf("%s->%s", key, outputs[key].Name(key)))
	}

	return strings.Join(parts, " ")
}

func renderSteps(defs []*step.Definition) string {
	t := newTable("Step", "Function", "Inputs", "Outputs")

	for _, def := range defs {
		t.Row(def.ID(), def.Reference(), formatInputs(def), formatOutputBindings(def))
	}

	return t.String()
}

func renderStrategy(cfg *strategy.StrategyConfig) string {
	t := newTable("Step", "Definition", "Config", "Reevaluates")

	for _, inst := range cfg.Steps() {
		reevaluates := make([]string, 0, len(inst.Reevaluates()))
		for _, target := range inst.Reevaluates() {
			reevaluates = append(reevaluates, target.ID())
		}

		t.Row(inst.ID(), inst.Definition().ID(), formatOutputs(inst.ConfigBindings()), strings.Join(reevaluates, ", "))
	}

	title := TitleStyle.Render(cfg.Name())
	if cfg.Description() != "" {
		title += " " + HelpStyle.Render(cfg.Description())
	}

	return title + "\n" + t.String()
}
