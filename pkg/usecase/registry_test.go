package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/codefreeze/pkg/domain/types"
	"github.com/m-mizutani/codefreeze/pkg/usecase"
)

type stubTask struct {
	name string
	run  func(ctx context.Context, rctx *usecase.ReleaseContext) error
}

func (s *stubTask) Name() string { return s.name }

func (s *stubTask) Run(ctx context.Context, rctx *usecase.ReleaseContext) error {
	if s.run != nil {
		return s.run(ctx, rctx)
	}
	return nil
}

func taskNames(tasks []usecase.Task) []string {
	names := make([]string, len(tasks))
	for i, task := range tasks {
		names[i] = task.Name()
	}
	return names
}

func TestDefaultRegistry_Order(t *testing.T) {
	r := usecase.NewDefaultRegistry(nil, nil)

	gt.Value(t, r.Names()).Equal([]string{
		"create_release_branch",
		"increment_version",
		"generate_feature_report",
		"notify_feature_report",
	})

	tasks, err := r.Select(nil)
	gt.NoError(t, err)
	gt.Value(t, taskNames(tasks)).Equal(r.Names())
}

func TestRegistry_SelectSubsetKeepsGivenOrder(t *testing.T) {
	r := usecase.NewDefaultRegistry(nil, nil)

	tasks, err := r.Select([]string{"generate_feature_report", "create_release_branch"})
	gt.NoError(t, err)
	gt.Value(t, taskNames(tasks)).Equal([]string{"generate_feature_report", "create_release_branch"})
}

func TestRegistry_SelectErrors(t *testing.T) {
	r := usecase.NewDefaultRegistry(nil, nil)

	tests := []struct {
		name  string
		names []string
	}{
		{name: "unknown task", names: []string{"deploy"}},
		{name: "duplicate selection", names: []string{"increment_version", "increment_version"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := r.Select(tt.names)
			gt.Error(t, err)
			gt.True(t, errors.Is(err, types.ErrConfiguration))
			gt.True(t, tasks == nil)
		})
	}
}

func TestRegistry_RegisterValidation(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		err := usecase.NewRegistry().Register("", &stubTask{name: ""})
		gt.True(t, errors.Is(err, types.ErrConfiguration))
	})

	t.Run("nil task", func(t *testing.T) {
		err := usecase.NewRegistry().Register("broken", nil)
		gt.True(t, errors.Is(err, types.ErrConfiguration))
		gt.String(t, err.Error()).Contains("malformed task: broken")
	})

	t.Run("name mismatch", func(t *testing.T) {
		err := usecase.NewRegistry().Register("alpha", &stubTask{name: "beta"})
		gt.True(t, errors.Is(err, types.ErrConfiguration))
		gt.String(t, err.Error()).Contains("malformed task: alpha")
	})

	t.Run("duplicate", func(t *testing.T) {
		r := usecase.NewRegistry()
		gt.NoError(t, r.Register("alpha", &stubTask{name: "alpha"}))
		err := r.Register("alpha", &stubTask{name: "alpha"})
		gt.True(t, errors.Is(err, types.ErrConfiguration))
		gt.Value(t, r.Names()).Equal([]string{"alpha"})
	})
}
