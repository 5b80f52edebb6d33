package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"buildall/internal/dependency"
	"buildall/internal/recipe"
	"buildall/pkg/logging"
)

// FetchAllRecipes lists the recipes under root and returns them in build
// order.
func FetchAllRecipes(root string, maxDepth int) ([]*recipe.Recipe, error) {
	dir, err := expandPath(root)
	if err != nil {
		return nil, err
	}
	recipes, err := recipe.List(dir, maxDepth)
	if err != nil {
		return nil, err
	}
	return SortDependencyOrder(recipes)
}

// SortDependencyOrder orders recipes so that each comes after the recipes it
// depends on at build or run time. Selectors are ignored for ordering, so a
// dependency behind any selector still counts. Recipes sharing a name keep
// their relative order.
func SortDependencyOrder(recipes []*recipe.Recipe) ([]*recipe.Recipe, error) {
	byName := make(map[string][]*recipe.Recipe)
	deps := make(map[string][]dependency.NodeID)
	var names []string

	for _, r := range recipes {
		name, requirements, err := r.OrderingRequirements()
		if err != nil {
			return nil, err
		}
		if _, seen := byName[name]; !seen {
			names = append(names, name)
		}
		byName[name] = append(byName[name], r)
		for _, req := range requirements {
			deps[name] = append(deps[name], dependency.NodeID(req))
		}
	}

	graph := dependency.New()
	for _, name := range names {
		graph.AddNode(dependency.Node{
			ID:           dependency.NodeID(name),
			FriendlyName: name,
			DependsOn:    deps[name],
		})
	}
	order, err := graph.TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("failed to order recipes: %w", err)
	}

	sorted := make([]*recipe.Recipe, 0, len(recipes))
	for _, id := range order {
		sorted = append(sorted, byName[string(id)]...)
	}
	logging.Debug("Builder", "Build order of %d packages: %v", graph.Len(), order)
	return sorted, nil
}

func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand %s: %w", path, err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
