package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/arrange/config"
)

func newConfigCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the built-in configuration, or the effective one with -c",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				_, err := cmd.OutOrStdout().Write(config.DefaultKDL())
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return config.WriteKDL(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file (.kdl or .toml) to load and print as KDL")

	return cmd
}
