package formatting

import (
	"encoding/json"
	"fmt"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{
		options: options,
	}
}

// FormatPlan formats a plan as JSON
func (f *JSONFormatter) FormatPlan(plan PlanView) (string, error) {
	return f.marshal(plan)
}

// FormatOrder formats a build order as JSON
func (f *JSONFormatter) FormatOrder(order []OrderEntry) (string, error) {
	if order == nil {
		order = []OrderEntry{}
	}
	return f.marshal(order)
}

// SetOptions updates the formatter options
func (f *JSONFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *JSONFormatter) GetOptions() Options {
	return f.options
}

// marshal is compact in quiet mode and indented otherwise.
func (f *JSONFormatter) marshal(data interface{}) (string, error) {
	if !f.options.Quiet {
		return PrettyJSON(data), nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to format JSON: %w", err)
	}
	return string(b), nil
}
