package recipe

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"
)

// Metadata is a recipe rendered for one Context.
type Metadata struct {
	Package      Package      `yaml:"package" json:"package"`
	Build        Build        `yaml:"build" json:"build"`
	Requirements Requirements `yaml:"requirements" json:"requirements"`
	About        About        `yaml:"about,omitempty" json:"about,omitempty"`
}

type Package struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

type Build struct {
	Number int    `yaml:"number" json:"number"`
	String string `yaml:"string,omitempty" json:"string,omitempty"`
	Skip   bool   `yaml:"skip,omitempty" json:"skip,omitempty"`
}

type Requirements struct {
	Build []string `yaml:"build,omitempty" json:"build,omitempty"`
	Run   []string `yaml:"run,omitempty" json:"run,omitempty"`
}

type About struct {
	Home    string `yaml:"home,omitempty" json:"home,omitempty"`
	License string `yaml:"license,omitempty" json:"license,omitempty"`
	Summary string `yaml:"summary,omitempty" json:"summary,omitempty"`
}

// RenderError wraps a failure to render a recipe.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Render expands the template, applies line selectors and decodes the result.
func (r *Recipe) Render(ctx Context) (*Metadata, error) {
	text, err := r.expandTemplate(ctx)
	if err != nil {
		return nil, &RenderError{Path: r.Path, Err: err}
	}
	text, err = SelectLines(text, ctx.SelectorVariables())
	if err != nil {
		return nil, &RenderError{Path: r.Path, Err: err}
	}

	var meta Metadata
	if err := yaml.Unmarshal([]byte(text), &meta); err != nil {
		return nil, &RenderError{Path: r.Path, Err: err}
	}
	if meta.Package.Name == "" {
		return nil, &RenderError{Path: r.Path, Err: fmt.Errorf("package/name is missing")}
	}
	if meta.Package.Version == "" {
		return nil, &RenderError{Path: r.Path, Err: fmt.Errorf("package/version is missing")}
	}
	return &meta, nil
}

// expandTemplate runs meta.yaml through text/template. Variables are available
// both as fields ({{ .PY_VER }}) and as functions ({{ PY_VER }}).
func (r *Recipe) expandTemplate(ctx Context) (string, error) {
	data := ctx.TemplateData()
	funcs := sprig.TxtFuncMap()
	for name, value := range data {
		value := value
		funcs[name] = func() string { return value }
	}

	tmpl, err := template.New(r.Path).Funcs(funcs).Option("missingkey=zero").Parse(r.Source)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Dist returns "name-version-build" for the given build id.
func (m *Metadata) Dist(buildID string) string {
	return fmt.Sprintf("%s-%s-%s", m.Package.Name, m.Package.Version, buildID)
}
