package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/codefreeze/pkg/domain/interfaces"
	"github.com/m-mizutani/codefreeze/pkg/domain/model"
	"github.com/m-mizutani/codefreeze/pkg/domain/types"
)

// TaskNotifyFeatureReport is the name of the report notification task
const TaskNotifyFeatureReport = "notify_feature_report"

type notifyFeatureReport struct {
	notifier interfaces.Notifier
}

// NewNotifyFeatureReport returns the task that posts the feature flag report
// produced earlier in the same run. A nil notifier makes the task a no-op.
func NewNotifyFeatureReport(notifier interfaces.Notifier) Task {
	return &notifyFeatureReport{notifier: notifier}
}

func (t *notifyFeatureReport) Name() string { return TaskNotifyFeatureReport }

func (t *notifyFeatureReport) Run(ctx context.Context, rctx *ReleaseContext) error {
	logger := ctxlog.From(ctx)

	if t.notifier == nil {
		logger.Info("no notifier configured, skipping")
		return nil
	}
	if rctx.Outputs.FlagReport == nil {
		return goerr.Wrap(types.ErrData, "no feature flag report in this run",
			goerr.V("hint", "select "+TaskGenerateFeatureReport+" before "+TaskNotifyFeatureReport))
	}

	if err := t.notifier.Notify(ctx, FormatReportMessage(rctx)); err != nil {
		return goerr.Wrap(err, "failed to post feature flag report")
	}

	logger.Info("feature flag report has been posted", "flags", len(rctx.Outputs.FlagReport))
	return nil
}

// FormatReportMessage builds the chat message for the report in rctx.
// Unchanged flags are only counted.
func FormatReportMessage(rctx *ReleaseContext) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Feature flag report for %s*", rctx.Current.String())
	if rctx.Previous != nil {
		fmt.Fprintf(&sb, " (compared with %s)", rctx.Previous.String())
	}
	sb.WriteString("\n")

	summary := rctx.Outputs.FlagReport.Summary()
	fmt.Fprintf(&sb, "added: %d, removed: %d, changed: %d, unchanged: %d\n",
		summary[model.FlagAdded],
		summary[model.FlagRemoved],
		summary[model.FlagChanged],
		summary[model.FlagUnchanged],
	)

	for _, row := range rctx.Outputs.FlagReport {
		if row.Status == model.FlagUnchanged {
			continue
		}
		fmt.Fprintf(&sb, "• `%s` %s: %s → %s\n", row.Name, row.Status, row.Old, row.New)
	}

	return sb.String()
}
