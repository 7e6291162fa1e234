package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/codefreeze/pkg/domain/types"
)

// Task is one unit of release work. Run may read and update the shared
// ReleaseContext; any error stops the run.
type Task interface {
	Name() string
	Run(ctx context.Context, rctx *ReleaseContext) error
}

// Registry holds the known tasks in registration order, which is also the
// default execution order.
type Registry struct {
	tasks map[string]Task
	order []string
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{tasks: map[string]Task{}}
}

// Register adds a task under name. The task must report the same name it is
// registered under.
func (r *Registry) Register(name string, task Task) error {
	if name == "" {
		return goerr.Wrap(types.ErrConfiguration, "task name is required")
	}
	if task == nil {
		return goerr.Wrap(types.ErrConfiguration, "malformed task: "+name, goerr.V("reason", "nil task"))
	}
	if task.Name() != name {
		return goerr.Wrap(types.ErrConfiguration, "malformed task: "+name,
			goerr.V("reason", "name mismatch"),
			goerr.V("reported_name", task.Name()),
		)
	}
	if _, exists := r.tasks[name]; exists {
		return goerr.Wrap(types.ErrConfiguration, "task already registered", goerr.V("task", name))
	}

	r.tasks[name] = task
	r.order = append(r.order, name)
	return nil
}

// MustRegister panics if registration fails
func (r *Registry) MustRegister(name string, task Task) {
	if err := r.Register(name, task); err != nil {
		panic(err)
	}
}

// Names returns the registered task names in default order
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Select resolves the tasks to run. With no names every task is returned in
// registration order; otherwise exactly the named tasks in the given order.
func (r *Registry) Select(names []string) ([]Task, error) {
	if len(names) == 0 {
		names = r.order
	}

	selected := make([]Task, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		task, ok := r.tasks[name]
		if !ok {
			return nil, goerr.Wrap(types.ErrConfiguration, "unknown task: "+name,
				goerr.V("task", name),
				goerr.V("available", r.order),
			)
		}
		if _, dup := seen[name]; dup {
			return nil, goerr.Wrap(types.ErrConfiguration, "task selected more than once: "+name)
		}
		seen[name] = struct{}{}
		selected = append(selected, task)
	}

	return selected, nil
}
