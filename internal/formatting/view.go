package formatting

import (
	"path/filepath"

	"buildall/internal/builder"
	"buildall/internal/matrix"
	"buildall/internal/recipe"
)

// PlanEntry is one distribution of a plan.
type PlanEntry struct {
	Dist     string        `json:"dist" yaml:"dist"`
	Recipe   string        `json:"recipe" yaml:"recipe"`
	Case     []matrix.Pair `json:"case" yaml:"case"`
	Build    bool          `json:"build" yaml:"build"`
	Location string        `json:"location,omitempty" yaml:"location,omitempty"`
}

// PlanView is the printable form of a builder.Plan.
type PlanView struct {
	RunID    string      `json:"runId" yaml:"runId"`
	Platform string      `json:"platform" yaml:"platform"`
	Recipes  int         `json:"recipes" yaml:"recipes"`
	Entries  []PlanEntry `json:"distributions" yaml:"distributions"`
}

// ToBuild counts the entries that need a build.
func (p PlanView) ToBuild() int {
	n := 0
	for _, e := range p.Entries {
		if e.Build {
			n++
		}
	}
	return n
}

// NewPlanView converts a plan.
func NewPlanView(plan *builder.Plan, platform recipe.Platform) PlanView {
	view := PlanView{
		RunID:    plan.RunID,
		Platform: platform.Subdir(),
		Recipes:  len(plan.Recipes),
		Entries:  make([]PlanEntry, 0, len(plan.Jobs)),
	}
	for _, j := range plan.Jobs {
		view.Entries = append(view.Entries, PlanEntry{
			Dist:     j.Dist.Dist(),
			Recipe:   j.Dist.Recipe.Dir,
			Case:     j.Dist.Case.Pairs(),
			Build:    j.NeedsBuild(),
			Location: j.Location,
		})
	}
	return view
}

// OrderEntry is one recipe of a build order.
type OrderEntry struct {
	Position int    `json:"position" yaml:"position"`
	Name     string `json:"name" yaml:"name"`
	Recipe   string `json:"recipe" yaml:"recipe"`
}

// NewOrder numbers recipes from 1. root, when set, shortens recipe paths.
func NewOrder(recipes []*recipe.Recipe, root string) ([]OrderEntry, error) {
	order := make([]OrderEntry, len(recipes))
	for i, r := range recipes {
		name, _, err := r.OrderingRequirements()
		if err != nil {
			return nil, err
		}
		dir := r.Dir
		if root != "" {
			if rel, err := filepath.Rel(root, dir); err == nil {
				dir = rel
			}
		}
		order[i] = OrderEntry{Position: i + 1, Name: name, Recipe: dir}
	}
	return order, nil
}

func caseString(pairs []matrix.Pair) string {
	c, err := matrix.NewCase(pairs...)
	if err != nil || c.IsEmpty() {
		return "-"
	}
	s := c.String()
	return s[1 : len(s)-1]
}
