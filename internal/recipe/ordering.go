package recipe

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"buildall/internal/spec"
)

// OrderingRequirements returns the package name and the names (without
// version constraints) of every build and run requirement. Selectors are
// ignored: every line is kept whatever its selector says, so the result does
// not depend on the version case. Repeated keys are merged.
func (r *Recipe) OrderingRequirements() (string, []string, error) {
	text, err := r.expandTemplate(Context{Platform: HostPlatform()})
	if err != nil {
		return "", nil, &RenderError{Path: r.Path, Err: err}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return "", nil, &RenderError{Path: r.Path, Err: err}
	}
	if len(doc.Content) == 0 {
		return "", nil, &RenderError{Path: r.Path, Err: fmt.Errorf("empty recipe")}
	}
	root := doc.Content[0]

	var name string
	for _, pkg := range mappingValues(root, "package") {
		for _, n := range mappingValues(pkg, "name") {
			if n.Kind == yaml.ScalarNode {
				name = n.Value
			}
		}
	}
	if name == "" {
		return "", nil, &RenderError{Path: r.Path, Err: fmt.Errorf("package/name is missing")}
	}

	var deps []string
	seen := make(map[string]bool)
	for _, reqs := range mappingValues(root, "requirements") {
		for _, section := range []string{"run", "build"} {
			for _, list := range mappingValues(reqs, section) {
				if list.Kind != yaml.SequenceNode {
					continue
				}
				for _, item := range list.Content {
					if item.Kind != yaml.ScalarNode {
						continue
					}
					dep := requirementName(item.Value)
					if dep == "" || seen[dep] {
						continue
					}
					seen[dep] = true
					deps = append(deps, dep)
				}
			}
		}
	}
	return name, deps, nil
}

func requirementName(raw string) string {
	if ms, err := spec.ParseMatchSpec(raw); err == nil {
		return ms.Name
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// mappingValues returns the values of every occurrence of key in a mapping
// node.
func mappingValues(node *yaml.Node, key string) []*yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	var out []*yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			out = append(out, node.Content[i+1])
		}
	}
	return out
}
