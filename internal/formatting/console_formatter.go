package formatting

import (
	"fmt"
	"strings"
)

// ConsoleFormatter provides simple console output formatting
type ConsoleFormatter struct {
	options Options
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(options Options) Formatter {
	return &ConsoleFormatter{
		options: options,
	}
}

// FormatPlan lists the distributions in build order.
func (f *ConsoleFormatter) FormatPlan(plan PlanView) (string, error) {
	if len(plan.Entries) == 0 {
		return "No distributions to build.", nil
	}

	var output []string
	if !f.options.Quiet {
		output = append(output, fmt.Sprintf("Resolved %d distributions from %d recipes, %d to build, in the following order:",
			len(plan.Entries), plan.Recipes, plan.ToBuild()))
	}
	for _, e := range plan.Entries {
		output = append(output, fmt.Sprintf("\t%s (will be built: %t)", e.Dist, e.Build))
	}
	return strings.Join(output, "\n"), nil
}

// FormatOrder lists recipes in build order.
func (f *ConsoleFormatter) FormatOrder(order []OrderEntry) (string, error) {
	if len(order) == 0 {
		return "No recipes found.", nil
	}

	var output []string
	for _, e := range order {
		output = append(output, fmt.Sprintf("  %d. %-30s %s", e.Position, e.Name, e.Recipe))
	}
	return strings.Join(output, "\n"), nil
}

// SetOptions updates the formatter options
func (f *ConsoleFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *ConsoleFormatter) GetOptions() Options {
	return f.options
}
