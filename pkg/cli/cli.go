package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/codefreeze/pkg/cli/config"
	"github.com/m-mizutani/codefreeze/pkg/domain/types"
	"github.com/m-mizutani/codefreeze/pkg/usecase"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var (
		loggerCfg  config.Logger
		releaseCfg config.Release
		githubCfg  config.GitHub
		slackCfg   config.Slack
		sentryCfg  config.Sentry
		taskNames  []string
		logger     *slog.Logger
	)

	flags := loggerCfg.Flags()
	flags = append(flags, releaseCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, &cli.StringSliceFlag{
		Name:        "task",
		Aliases:     []string{"t"},
		Usage:       "Task to run, repeatable or comma separated (default: all tasks in order)",
		Destination: &taskNames,
		Sources:     cli.EnvVars("CODEFREEZE_TASKS"),
	})

	app := &cli.Command{
		Name:    "codefreeze",
		Usage:   "Weekly code freeze release automation",
		Version: types.Version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)

			if err := config.ApplyFile(&releaseCfg, &githubCfg, &slackCfg); err != nil {
				return nil, err
			}
			return ctx, nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runPipeline(ctx, pipelineConfig{
				release:   &releaseCfg,
				github:    &githubCfg,
				slack:     &slackCfg,
				sentry:    &sentryCfg,
				taskNames: taskNames,
			})
		},
		Commands: []*cli.Command{
			cmdTasks(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		// task failures are logged by the orchestrator
		var taskErr *usecase.TaskError
		if errors.As(err, &taskErr) {
			return err
		}

		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed",
			slog.String("kind", types.ErrorKind(err)),
			slog.Any("error", err),
		)
		return err
	}

	return nil
}
