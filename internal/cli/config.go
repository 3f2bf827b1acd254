package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scanoutliers/pkg/config"
)

// defaultConfigPath is where 'config init' writes when no path is given
const defaultConfigPath = "scanoutliers.yaml"

// newConfigCommand creates the 'config' command group
func newConfigCommand(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with the default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := config.CreateDefaultConfigFile(path); err != nil {
				return err
			}
			a.log.Debug("wrote default configuration", "path", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Default configuration written to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	configCmd.AddCommand(initCmd)
	return configCmd
}
