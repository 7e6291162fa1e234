package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/codefreeze/pkg/cli/config"
	"github.com/m-mizutani/codefreeze/pkg/domain/types"
	"github.com/m-mizutani/codefreeze/pkg/usecase"
)

const lockFileName = ".codefreeze.lock"

type pipelineConfig struct {
	release   *config.Release
	github    *config.GitHub
	slack     *config.Slack
	sentry    *config.Sentry
	taskNames []string
}

func runPipeline(ctx context.Context, cfg pipelineConfig) error {
	logger := ctxlog.From(ctx)

	reporting, err := cfg.sentry.Configure()
	if err != nil {
		return err
	}

	err = execute(ctx, cfg)
	if err != nil && reporting {
		cfg.sentry.Report(err, map[string]string{"kind": types.ErrorKind(err)})
		logger.Debug("reported failure to sentry")
	}
	return err
}

func execute(ctx context.Context, cfg pipelineConfig) error {
	logger := ctxlog.From(ctx)
	settings := cfg.release.Settings()

	logger.Debug("configuration",
		"settings", settings,
		"github", cfg.github,
		"slack", cfg.slack,
	)

	remote, err := cfg.github.NewRepository()
	if err != nil {
		return err
	}
	notifier, err := cfg.slack.NewNotifier()
	if err != nil {
		return err
	}

	lock := flock.New(filepath.Join(settings.WorkDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return goerr.Wrap(types.ErrConfiguration, "failed to acquire run lock",
			goerr.V("path", lock.Path()),
			goerr.V("error", err.Error()),
		)
	}
	if !locked {
		return goerr.Wrap(types.ErrConfiguration, "another codefreeze run is in progress", goerr.V("path", lock.Path()))
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release run lock", "path", lock.Path(), "error", err)
		}
	}()

	registry := usecase.NewDefaultRegistry(os.Stdout, notifier)
	orchestrator := usecase.NewOrchestrator(registry, remote, settings)

	result, err := orchestrator.Run(ctx, cfg.taskNames)
	if err != nil {
		return err
	}

	logger.Info("code freeze completed",
		"run_id", result.RunID,
		"tasks", len(result.Completed),
	)
	return nil
}
