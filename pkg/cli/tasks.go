package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/codefreeze/pkg/usecase"
)

func cmdTasks() *cli.Command {
	return &cli.Command{
		Name:    "tasks",
		Aliases: []string{"ls"},
		Usage:   "List available tasks in default order",
		Action: func(ctx context.Context, c *cli.Command) error {
			for _, name := range usecase.NewDefaultRegistry(nil, nil).Names() {
				if _, err := fmt.Fprintln(c.Root().Writer, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
