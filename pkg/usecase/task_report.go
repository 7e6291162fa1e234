package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/codefreeze/pkg/domain/model"
	"github.com/m-mizutani/codefreeze/pkg/domain/types"
)

// TaskGenerateFeatureReport is the name of the feature flag report task
const TaskGenerateFeatureReport = "generate_feature_report"

type generateFeatureReport struct {
	out io.Writer
}

// NewGenerateFeatureReport returns the task that diffs the working tree
// feature flags against the previous release branch. The rendered table is
// written to out; pass nil to skip it.
func NewGenerateFeatureReport(out io.Writer) Task {
	return &generateFeatureReport{out: out}
}

func (t *generateFeatureReport) Name() string { return TaskGenerateFeatureReport }

func (t *generateFeatureReport) Run(ctx context.Context, rctx *ReleaseContext) error {
	logger := ctxlog.From(ctx)
	path := rctx.Settings.FlagsFile

	logger.Info("generating a feature flag change report", "current", rctx.Current.String())

	raw, err := rctx.Settings.ReadLocal(path)
	if err != nil {
		return err
	}
	current, err := model.ParseFlags(ctx, bytes.NewReader(raw))
	if err != nil {
		return err
	}

	previous, err := t.previousFlags(ctx, rctx)
	if err != nil {
		return err
	}

	report := model.DiffFlags(current, previous)

	content, err := EncodeFlagReport(report)
	if err != nil {
		return err
	}
	reportPath := rctx.Settings.LocalPath(rctx.Settings.ReportFile)
	if err := os.WriteFile(reportPath, content, 0644); err != nil {
		return goerr.Wrap(fmt.Errorf("%w: %w", types.ErrData, err), "failed to write feature flag report",
			goerr.V("path", reportPath))
	}

	if t.out != nil {
		if _, err := fmt.Fprintln(t.out, RenderFlagReport(report)); err != nil {
			logger.Warn("failed to print feature flag report", "error", err)
		}
	}

	summary := report.Summary()
	rctx.Outputs.FlagReport = report
	rctx.Outputs.ReportPath = reportPath

	logger.Info("feature flag report has been generated",
		"path", reportPath,
		"flags", len(report),
		"added", summary[model.FlagAdded],
		"removed", summary[model.FlagRemoved],
		"changed", summary[model.FlagChanged],
	)
	return nil
}

// previousFlags returns nil when there is no previous release, or its branch
// or flag file does not exist upstream.
func (t *generateFeatureReport) previousFlags(ctx context.Context, rctx *ReleaseContext) (model.FlagSnapshot, error) {
	logger := ctxlog.From(ctx)

	if rctx.Previous == nil {
		logger.Warn("no previous release in catalog, listing current flags only")
		return nil, nil
	}

	ref := rctx.Previous.BranchName()
	logger.Info("reading previous feature flags", "previous", rctx.Previous.String(), "ref", ref)

	raw, found, err := rctx.Remote.ReadFileAtRef(ctx, rctx.Settings.FlagsFile, ref)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read previous feature flags", goerr.V("ref", ref))
	}
	if !found {
		logger.Warn("no previous feature flag data could be read", "ref", ref, "path", rctx.Settings.FlagsFile)
		return nil, nil
	}

	return model.ParseFlags(ctx, bytes.NewReader(raw))
}
