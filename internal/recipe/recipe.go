package recipe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"buildall/pkg/logging"
)

// MetaFilename is the file that marks a directory as a recipe.
const MetaFilename = "meta.yaml"

// Recipe is a recipe directory and the unrendered text of its meta.yaml.
type Recipe struct {
	Dir    string
	Path   string
	Source string
}

// Load reads the recipe in dir.
func Load(dir string) (*Recipe, error) {
	path := filepath.Join(dir, MetaFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe %s: %w", path, err)
	}
	return &Recipe{Dir: dir, Path: path, Source: string(data)}, nil
}

// Parse builds a recipe from meta.yaml text. dir is informational.
func Parse(dir, source string) *Recipe {
	return &Recipe{Dir: dir, Path: filepath.Join(dir, MetaFilename), Source: source}
}

// List finds every recipe under root. maxDepth <= 0 recurses without limit, 1
// only looks at root itself and 2 also looks at its immediate children.
// Recipes are returned sorted by directory.
func List(root string, maxDepth int) ([]*Recipe, error) {
	root = filepath.Clean(root)
	var recipes []*Recipe
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		if _, statErr := os.Stat(filepath.Join(path, MetaFilename)); statErr == nil {
			r, loadErr := Load(path)
			if loadErr != nil {
				return loadErr
			}
			recipes = append(recipes, r)
		} else if !errors.Is(statErr, fs.ErrNotExist) {
			return statErr
		}

		if maxDepth > 0 && depth(root, path) >= maxDepth {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes in %s: %w", root, err)
	}

	sort.Slice(recipes, func(i, j int) bool { return recipes[i].Dir < recipes[j].Dir })
	logging.Debug("Recipe", "Found %d recipes under %s", len(recipes), root)
	return recipes, nil
}

// depth is 1 for root, 2 for its children and so on.
func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 1
	}
	return strings.Count(rel, string(filepath.Separator)) + 2
}
