package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/arrange/arrange"
	"github.com/dhamidi/arrange/code"
	"github.com/dhamidi/arrange/format"
	"github.com/dhamidi/arrange/lang"
)

func newParseCmd() *cobra.Command {
	var (
		outputFormat string
		configPath   string
		arranged     bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a source file and dump its element tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			l, err := lang.ForFile(cfg, filename)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read source file: %w", err)
			}
			elems, err := l.Parse(data, filename, cfg.Formatting)
			if err != nil {
				return err
			}
			if arranged {
				a, err := arrange.New(cfg)
				if err != nil {
					return err
				}
				if elems, err = a.Arrange(elems); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if outputFormat == "text" {
				_, err := fmt.Fprint(out, code.Dump(elems))
				return err
			}
			enc, err := format.NewEncoder(outputFormat, out, cfg.Formatting)
			if err != nil {
				return err
			}
			if err := enc.Encode(elems); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format (json, text, lines, csharp)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file (.kdl or .toml)")
	cmd.Flags().BoolVarP(&arranged, "arranged", "a", false, "dump the tree after arrangement")

	return cmd
}
