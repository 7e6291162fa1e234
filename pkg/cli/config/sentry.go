package config

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/codefreeze/pkg/domain/types"
)

// Sentry holds error reporting configuration
type Sentry struct {
	DSN string `masq:"secret"`
	Env string
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for reporting failed runs",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("CODEFREEZE_SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Value:       "production",
			Destination: &c.Env,
			Sources:     cli.EnvVars("CODEFREEZE_SENTRY_ENV"),
		},
	}
}

// Configure initializes the Sentry client. It reports false when no DSN is set.
func (c *Sentry) Configure() (bool, error) {
	if c.DSN == "" {
		return false, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Env,
		Release:     "codefreeze@" + types.Version,
	}); err != nil {
		return false, goerr.Wrap(types.ErrConfiguration, "failed to initialize sentry", goerr.V("error", err.Error()))
	}
	return true, nil
}

// Report sends err to Sentry and waits for delivery
func (c *Sentry) Report(err error, tags map[string]string) {
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
	})
	hub.CaptureException(err)
	hub.Flush(2 * time.Second)
}
