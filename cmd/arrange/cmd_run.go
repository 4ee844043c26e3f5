package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/arrange/runner"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		backupDir  string
		restore    bool
		dryRun     bool
		jobs       int
		verify     bool
		exclude    []string
	)

	cmd := &cobra.Command{
		Use:   "run <path>",
		Short: "Arrange a source file, directory, project or solution",
		Long: `Arrange every source file the path stands for.

The path may be a single .cs file, a directory (walked recursively,
honoring .gitignore), a .csproj or a .sln.

With -n nothing is written; for a single file the arranged text is
printed instead. With -b the original files are saved to a zip archive
in the given directory first, and -r puts back the latest such archive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			opts := runner.Options{
				Path:      args[0],
				Config:    cfg,
				Exclude:   exclude,
				BackupDir: backupDir,
				DryRun:    dryRun,
				Stdout:    cmd.OutOrStdout(),
				Jobs:      jobs,
				Verify:    verify,
			}

			if restore {
				files, err := runner.Restore(opts)
				if err != nil {
					return fmt.Errorf("restore: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "restored %d files\n", len(files))
				return nil
			}

			report, err := runner.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			for _, f := range report.Failed() {
				fmt.Fprintf(cmd.ErrOrStderr(), "[ERROR] %v\n", f.Err)
			}
			if !dryRun || len(report.Files) > 1 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d files, %d changed, %d failed\n",
					len(report.Files), report.Changed(), len(report.Failed()))
			}
			if len(report.Failed()) > 0 {
				return fmt.Errorf("%d files could not be arranged", len(report.Failed()))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file (.kdl or .toml)")
	cmd.Flags().StringVarP(&backupDir, "backup", "b", "", "back up files to this directory before writing")
	cmd.Flags().BoolVarP(&restore, "restore", "r", false, "restore the latest backup from the --backup directory")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "do not write files")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "files to process in parallel (default: number of CPUs)")
	cmd.Flags().BoolVar(&verify, "verify", false, "check that arranged output still parses")
	cmd.Flags().StringArrayVarP(&exclude, "exclude", "x", nil, "skip paths matching this glob (repeatable)")

	return cmd
}
