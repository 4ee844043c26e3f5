package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/arrange/runner"
)

func newWatchCmd() *cobra.Command {
	var (
		configPath string
		debounce   time.Duration
		exclude    []string
	)

	cmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Arrange files whenever they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			stderr := cmd.ErrOrStderr()
			return runner.Watch(ctx, runner.Options{Path: args[0], Config: cfg, Exclude: exclude}, debounce, func(r runner.Result) {
				switch {
				case r.Err != nil:
					fmt.Fprintf(stderr, "[ERROR] %v\n", r.Err)
				case r.Changed:
					fmt.Fprintf(stderr, "[OK] %s\n", r.Path)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file (.kdl or .toml)")
	cmd.Flags().DurationVar(&debounce, "debounce", runner.DefaultDebounce, "wait this long for changes to settle")
	cmd.Flags().StringArrayVarP(&exclude, "exclude", "x", nil, "skip paths matching this glob (repeatable)")

	return cmd
}

