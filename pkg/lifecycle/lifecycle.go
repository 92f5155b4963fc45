package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

var (
	ErrUnknownTask   = errors.New("unknown task")
	ErrDuplicateTask = errors.New("duplicate task")
	ErrCycle         = errors.New("finalizer cycle")
	ErrTaskFailed    = errors.New("task failed")
)

// Action is the work performed by a task.
type Action func(ctx context.Context) error

// Graph holds tasks and their finalizers. The zero value is ready to use.
type Graph struct {
	tasks      map[string]Action
	finalizers map[string][]string
	order      []string
}

// NewGraph creates a new [Graph].
func NewGraph() *Graph {
	return &Graph{}
}

// Register adds a task.
func (g *Graph) Register(name string, action Action) error {
	if g.tasks == nil {
		g.tasks = make(map[string]Action)
		g.finalizers = make(map[string][]string)
	}

	if _, ok := g.tasks[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTask, name)
	}

	g.tasks[name] = action
	g.order = append(g.order, name)

	return nil
}

// FinalizedBy makes each finalizer run after task succeeds. Both the task and
// the finalizers must already be registered.
func (g *Graph) FinalizedBy(task string, finalizers ...string) error {
	for _, name := range append([]string{task}, finalizers...) {
		if _, ok := g.tasks[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTask, name)
		}
	}

	for _, f := range finalizers {
		if slices.Contains(g.finalizers[task], f) {
			continue
		}

		g.finalizers[task] = append(g.finalizers[task], f)
	}

	err := g.checkCycles()
	if err != nil {
		for _, f := range finalizers {
			g.finalizers[task] = slices.DeleteFunc(g.finalizers[task], func(s string) bool { return s == f })
		}

		return err
	}

	return nil
}

// Tasks returns the registered task names in registration order.
func (g *Graph) Tasks() []string {
	return slices.Clone(g.order)
}

// Finalizers returns the finalizers of task.
func (g *Graph) Finalizers(task string) []string {
	return slices.Clone(g.finalizers[task])
}

// Run runs the task called name followed by its finalizers, recursively.
// Every task runs at most once per call. Run stops at the first failure.
func (g *Graph) Run(ctx context.Context, name string) error {
	if _, ok := g.tasks[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}

	return g.run(ctx, name, make(map[string]bool))
}

func (g *Graph) run(ctx context.Context, name string, done map[string]bool) error {
	if done[name] {
		return nil
	}

	err := ctx.Err()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTaskFailed, name, err)
	}

	done[name] = true

	logger := slog.With(slog.String("task", name))
	logger.Info("running task")

	start := time.Now()

	err = g.tasks[name](ctx)
	if err != nil {
		logger.Debug("task failed, skipping finalizers",
			slog.Any("finalizers", g.finalizers[name]),
			slog.Duration("duration", time.Since(start)),
		)

		return fmt.Errorf("%w: %s: %w", ErrTaskFailed, name, err)
	}

	logger.Debug("task succeeded", slog.Duration("duration", time.Since(start)))

	for _, f := range g.finalizers[name] {
		err := g.run(ctx, f, done)
		if err != nil {
			return err
		}
	}

	return nil
}

func (g *Graph) checkCycles() error {
	const (
		unvisited = iota
		visiting
		visited
	)

	state := make(map[string]int, len(g.tasks))

	var visit func(name string, path []string) error

	visit = func(name string, path []string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("%w: %v", ErrCycle, append(slices.Clone(path), name))
		case visited:
			return nil
		}

		state[name] = visiting

		for _, f := range g.finalizers[name] {
			err := visit(f, append(slices.Clone(path), name))
			if err != nil {
				return err
			}
		}

		state[name] = visited

		return nil
	}

	for _, name := range g.order {
		err := visit(name, nil)
		if err != nil {
			return err
		}
	}

	return nil
}
