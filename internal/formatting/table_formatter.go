package formatting

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	pkgstrings "buildall/pkg/strings"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{
		options: options,
	}
}

// FormatPlan renders one row per distribution.
func (f *TableFormatter) FormatPlan(plan PlanView) (string, error) {
	if len(plan.Entries) == 0 {
		return f.formatEmptyMessage("📋", "No distributions to build"), nil
	}

	t := f.createTable()
	t.AppendHeader(table.Row{
		f.header("#"), f.header("DISTRIBUTION"), f.header("CASE"), f.header("STATUS"), f.header("LOCATION"),
	})
	for i, e := range plan.Entries {
		status := f.color(text.FgGreen, "exists")
		if e.Build {
			status = f.color(text.FgYellow, "build")
		}
		t.AppendRow(table.Row{i + 1, e.Dist, caseString(e.Case), status, pkgstrings.TruncateLeft(e.Location, pkgstrings.DefaultLocationMaxLen)})
	}
	if !f.options.Quiet {
		t.AppendFooter(table.Row{"", fmt.Sprintf("%d distributions", len(plan.Entries)), plan.Platform, fmt.Sprintf("%d to build", plan.ToBuild()), ""})
	}
	return t.Render(), nil
}

// FormatOrder renders the recipes in build order.
func (f *TableFormatter) FormatOrder(order []OrderEntry) (string, error) {
	if len(order) == 0 {
		return f.formatEmptyMessage("📋", "No recipes found"), nil
	}

	t := f.createTable()
	t.AppendHeader(table.Row{f.header("#"), f.header("PACKAGE"), f.header("RECIPE")})
	for _, e := range order {
		t.AppendRow(table.Row{e.Position, f.color(text.FgHiCyan, e.Name), pkgstrings.TruncateLeft(e.Recipe, pkgstrings.DefaultLocationMaxLen)})
	}
	return t.Render(), nil
}

// SetOptions updates the formatter options
func (f *TableFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *TableFormatter) GetOptions() Options {
	return f.options
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) header(s string) string {
	return f.color(text.FgHiCyan, s)
}

func (f *TableFormatter) color(c text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}

// formatEmptyMessage formats empty result messages
func (f *TableFormatter) formatEmptyMessage(icon, message string) string {
	return fmt.Sprintf("%s %s", f.color(text.FgYellow, icon), f.color(text.FgYellow, message))
}
