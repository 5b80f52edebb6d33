package formatting

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{
		options: options,
	}
}

// FormatPlan formats a plan as YAML
func (f *YAMLFormatter) FormatPlan(plan PlanView) (string, error) {
	return f.marshal(plan)
}

// FormatOrder formats a build order as YAML
func (f *YAMLFormatter) FormatOrder(order []OrderEntry) (string, error) {
	if order == nil {
		order = []OrderEntry{}
	}
	return f.marshal(order)
}

// SetOptions updates the formatter options
func (f *YAMLFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *YAMLFormatter) GetOptions() Options {
	return f.options
}

func (f *YAMLFormatter) marshal(data interface{}) (string, error) {
	b, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to format YAML: %w", err)
	}
	return string(b), nil
}
