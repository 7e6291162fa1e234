package usecase

import (
	"io"

	"github.com/m-mizutani/codefreeze/pkg/domain/interfaces"
)

// NewDefaultRegistry registers the built-in tasks in their default order
func NewDefaultRegistry(reportOut io.Writer, notifier interfaces.Notifier) *Registry {
	r := NewRegistry()
	r.MustRegister(TaskCreateReleaseBranch, NewCreateReleaseBranch())
	r.MustRegister(TaskIncrementVersion, NewIncrementVersion())
	r.MustRegister(TaskGenerateFeatureReport, NewGenerateFeatureReport(reportOut))
	r.MustRegister(TaskNotifyFeatureReport, NewNotifyFeatureReport(notifier))
	return r
}
