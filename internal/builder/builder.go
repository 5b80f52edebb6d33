package builder

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"buildall/internal/destination"
	"buildall/internal/distribution"
	"buildall/internal/index"
	"buildall/internal/matrix"
	"buildall/internal/recipe"
	"buildall/pkg/logging"
)

// Options configures a Builder.
type Options struct {
	RecipesDir         string
	MaxDepth           int
	InspectChannels    []string
	InspectDirectories []string
	Destinations       []destination.Destination
	Conditions         []string
	MaxMajorVersions   int
	MaxMinorVersions   int
	Platform           recipe.Platform

	BuildTool BuildTool
	Indexer   ChannelIndexer

	// RunID identifies the run; a random one is generated when empty.
	RunID string
}

// Builder builds a directory of recipes.
type Builder struct {
	opts  Options
	RunID string
}

// New returns a Builder. A zero Platform means the host platform.
func New(opts Options) *Builder {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Platform == (recipe.Platform{}) {
		opts.Platform = recipe.HostPlatform()
	}
	return &Builder{opts: opts, RunID: opts.RunID}
}

// Platform returns the platform distributions are resolved for.
func (b *Builder) Platform() recipe.Platform {
	return b.opts.Platform
}

// ComputeBuildDistros resolves every recipe, in order, into the
// distributions of its pruned build matrix. idx is not modified: a copy
// collects the index records of the computed distributions so that later
// recipes can depend on them.
func (b *Builder) ComputeBuildDistros(idx *index.Index, recipes []*recipe.Recipe) ([]*distribution.Distribution, error) {
	working := idx.Clone()
	subdir := b.opts.Platform.Subdir()

	var all []*distribution.Distribution
	for _, r := range recipes {
		dists, err := distribution.ResolveAll(r, working, b.opts.Conditions, b.opts.Platform)
		if err != nil {
			return nil, err
		}

		cases := make([]matrix.Case, len(dists))
		for i, d := range dists {
			cases[i] = d.Case
		}
		kept := matrix.NewCaseSet(matrix.Prune(cases, b.opts.MaxMajorVersions, b.opts.MaxMinorVersions)...)

		for _, d := range dists {
			if !kept.Contains(d.Case) {
				logging.Debug("Builder", "Pruned %s %s", d, d.Case)
				continue
			}
			if !working.Contains(d.PkgFilename()) {
				working.Add(d.IndexRecord(subdir))
			}
			all = append(all, d)
		}
	}
	return all, nil
}

// Job is a distribution and where it already exists. An empty Location
// means the distribution has to be built.
type Job struct {
	Dist     *distribution.Distribution
	Location string
}

// NeedsBuild reports whether the distribution was found nowhere.
func (j Job) NeedsBuild() bool {
	return j.Location == ""
}

// Plan is the outcome of resolving a recipe directory.
type Plan struct {
	RunID   string
	Recipes []*recipe.Recipe
	Jobs    []Job
}

// ToBuild counts the jobs that need a build.
func (p *Plan) ToBuild() int {
	n := 0
	for _, j := range p.Jobs {
		if j.NeedsBuild() {
			n++
		}
	}
	return n
}

// Plan finds, orders and resolves the recipes and checks which of the
// distributions already exist.
func (b *Builder) Plan(ctx context.Context, idx *index.Index) (*Plan, error) {
	recipes, err := FetchAllRecipes(b.opts.RecipesDir, b.opts.MaxDepth)
	if err != nil {
		return nil, err
	}
	logging.Info("Builder", "Resolving distributions from %d recipes", len(recipes))

	dists, err := b.ComputeBuildDistros(idx, recipes)
	if err != nil {
		return nil, err
	}
	logging.Info("Builder", "Computed that there are %d distributions from the %d recipes", len(dists), len(recipes))

	jobs, err := b.FindExistingBuiltDists(ctx, dists)
	if err != nil {
		return nil, err
	}
	return &Plan{RunID: b.RunID, Recipes: recipes, Jobs: jobs}, nil
}

// Run builds every planned distribution that does not exist yet and passes
// all of them to the destinations, in build order.
func (b *Builder) Run(ctx context.Context, plan *Plan) error {
	if b.opts.BuildTool == nil && plan.ToBuild() > 0 {
		return fmt.Errorf("no build tool configured")
	}
	for _, job := range plan.Jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		location, justBuilt := job.Location, job.NeedsBuild()
		if justBuilt {
			built, err := b.opts.BuildTool.Build(ctx, job.Dist)
			if err != nil {
				return err
			}
			location = built
		}
		if err := b.PostBuild(ctx, job.Dist, location, justBuilt); err != nil {
			return err
		}
	}
	logging.Info("Builder", "Run %s finished: %d distributions, %d built", b.RunID, len(plan.Jobs), plan.ToBuild())
	return nil
}

// PostBuild hands a distribution to every destination. It runs whether or
// not the distribution was just built.
func (b *Builder) PostBuild(ctx context.Context, dist *distribution.Distribution, location string, justBuilt bool) error {
	for _, dest := range b.opts.Destinations {
		if err := dest.MakeAvailable(ctx, dist, location, justBuilt); err != nil {
			return &DestinationError{Dist: dist.Dist(), Destination: dest.String(), Err: err}
		}
	}
	return nil
}
