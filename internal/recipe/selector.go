package recipe

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

var (
	selectorLine = regexp.MustCompile(`^(.*?)\s*#\s*\[(.+)\]\s*$`)
	wordOperator = regexp.MustCompile(`\b(and|or|not)\b`)
)

// SelectorError reports a selector that cannot be evaluated.
type SelectorError struct {
	Line     int
	Selector string
	Detail   string
}

func (e *SelectorError) Error() string {
	return fmt.Sprintf("line %d: invalid selector [%s]: %s", e.Line, e.Selector, e.Detail)
}

// EvalSelector evaluates a selector expression such as "py3k and not win".
// Python style and/or/not and single quoted strings are accepted.
func EvalSelector(selector string, vars map[string]cty.Value) (bool, error) {
	src := wordOperator.ReplaceAllStringFunc(selector, func(op string) string {
		switch op {
		case "and":
			return "&&"
		case "or":
			return "||"
		}
		return "!"
	})
	src = strings.ReplaceAll(src, "'", `"`)

	expr, diags := hclsyntax.ParseExpression([]byte(src), "selector", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return false, fmt.Errorf("%s", diags.Error())
	}
	val, diags := expr.Value(&hcl.EvalContext{Variables: vars})
	if diags.HasErrors() {
		return false, fmt.Errorf("%s", diags.Error())
	}
	if val.IsNull() || !val.IsKnown() || !val.Type().Equals(cty.Bool) {
		return false, fmt.Errorf("selector does not evaluate to a boolean")
	}
	return val.True(), nil
}

// SelectLines drops every line whose selector is false and strips the
// selector comment from the lines that are kept.
func SelectLines(text string, vars map[string]cty.Value) (string, error) {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		m := selectorLine.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}
		keep, err := EvalSelector(m[2], vars)
		if err != nil {
			return "", &SelectorError{Line: i + 1, Selector: m[2], Detail: err.Error()}
		}
		if keep {
			out = append(out, m[1])
		}
	}
	return strings.Join(out, "\n"), nil
}
