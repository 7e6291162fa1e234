package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/codefreeze/pkg/domain/interfaces"
	"github.com/m-mizutani/codefreeze/pkg/domain/model"
	"github.com/m-mizutani/codefreeze/pkg/domain/types"
)

// TaskResult records the outcome of one task
type TaskResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// RunResult is the outcome of a run. Failed is nil when every selected task
// completed.
type RunResult struct {
	RunID     string
	Completed []TaskResult
	Failed    *TaskResult
}

// Succeeded reports whether every selected task completed
func (r *RunResult) Succeeded() bool {
	return r.Failed == nil
}

// Orchestrator builds the release context and runs tasks against it
type Orchestrator struct {
	registry *Registry
	remote   interfaces.Repository
	settings Settings
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(registry *Registry, remote interfaces.Repository, settings Settings) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		remote:   remote,
		settings: settings,
	}
}

// Run selects the named tasks (all when names is empty), prepares the release
// context and executes the tasks in order.
func (o *Orchestrator) Run(ctx context.Context, names []string) (*RunResult, error) {
	runID := uuid.NewString()
	logger := ctxlog.From(ctx).With("run_id", runID)
	ctx = ctxlog.With(ctx, logger)

	tasks, err := o.registry.Select(names)
	if err != nil {
		return nil, err
	}

	rctx, err := o.Prepare(ctx)
	if err != nil {
		return nil, err
	}

	result, err := o.Execute(ctx, tasks, rctx)
	if result != nil {
		result.RunID = runID
	}
	return result, err
}

// Prepare reads the versions file and the version descriptor from the
// working tree and resolves the current, previous and next releases.
func (o *Orchestrator) Prepare(ctx context.Context) (*ReleaseContext, error) {
	logger := ctxlog.From(ctx)

	logger.Debug("parsing available releases", "path", o.settings.LocalPath(o.settings.VersionsFile))
	raw, err := o.settings.ReadLocal(o.settings.VersionsFile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read versions file")
	}
	catalog, err := model.ParseCatalog(ctx, bytes.NewReader(raw))
	if err != nil {
		return nil, goerr.Wrap(types.ErrData, "failed to parse versions file", goerr.V("error", err.Error()))
	}
	catalog.CheckOrder(ctx)

	logger.Debug("parsing current release", "path", o.settings.LocalPath(o.settings.DescriptorFile))
	raw, err = o.settings.ReadLocal(o.settings.DescriptorFile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read version descriptor")
	}
	descriptor, err := model.ParseDescriptor(raw)
	if err != nil {
		return nil, err
	}

	current, err := catalog.ResolveCurrent(descriptor.Version)
	if err != nil {
		return nil, err
	}
	if descriptor.Name != "" && descriptor.Name != current.Name {
		logger.Warn("current version appears in the release catalog with a different name",
			"version", current.Version,
			"descriptor_name", descriptor.Name,
			"catalog_name", current.Name,
		)
	}

	previous, err := catalog.ResolvePrevious(current)
	if err != nil {
		return nil, err
	}

	rctx := &ReleaseContext{
		Catalog:  catalog,
		Current:  current,
		Previous: previous,
		Remote:   o.remote,
		Settings: o.settings,
	}
	if next, err := catalog.ResolveNext(current); err == nil {
		rctx.Next = &next
	} else {
		logger.Warn("no next release in catalog", "current", current.String())
	}

	attrs := []any{
		"releases", catalog.Len(),
		"current", current.String(),
	}
	if previous != nil {
		attrs = append(attrs, "previous", previous.String())
	}
	if rctx.Next != nil {
		attrs = append(attrs, "next", rctx.Next.String())
	}
	logger.Info("release context prepared", attrs...)

	return rctx, nil
}

// TaskError is returned by Execute when a task fails. Execute has already
// logged it with the task name and error kind.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string { return fmt.Sprintf("task %s failed: %v", e.Task, e.Err) }

func (e *TaskError) Unwrap() error { return e.Err }

// Execute runs tasks one after another against rctx. The first failing task
// stops the run; changes already made by earlier tasks are left in place.
func (o *Orchestrator) Execute(ctx context.Context, tasks []Task, rctx *ReleaseContext) (*RunResult, error) {
	logger := ctxlog.From(ctx)
	result := &RunResult{}

	for i, task := range tasks {
		name := task.Name()
		taskLogger := logger.With("task", name)
		taskCtx := ctxlog.With(ctx, taskLogger)

		taskLogger.Info("running task", "index", i+1, "total", len(tasks))
		started := time.Now()
		err := task.Run(taskCtx, rctx)
		tr := TaskResult{Name: name, Duration: time.Since(started), Err: err}

		if err != nil {
			taskLogger.Error("task failed",
				"kind", types.ErrorKind(err),
				"error", err,
				slog.Int("skipped", len(tasks)-i-1),
			)
			result.Failed = &tr
			return result, &TaskError{Task: name, Err: err}
		}

		result.Completed = append(result.Completed, tr)
		taskLogger.Info("successfully completed task", "duration", tr.Duration.String())
	}

	logger.Info("all tasks completed", "count", len(result.Completed))
	return result, nil
}
