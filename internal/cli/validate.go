package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"scanoutliers/pkg/manifest"
)

// newValidateCommand creates the 'validate' command, which checks data files
// against the hash manifest of a directory
func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <data-dir>",
		Short: "Check data files against the directory's SHA1 manifest",
		Long: `Find the single *.txt manifest in the data directory and check that every
file it lists has the recorded SHA1 hash. The command fails when the directory
holds no manifest or more than one candidate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			path, err := manifest.Find(dir)
			if err != nil {
				return err
			}
			a.log.Debug("using manifest", "path", path)

			entries, err := manifest.ValidateManifest(path)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(
				fmt.Sprintf("All %d files listed in %s match their hashes", len(entries), path)))
			return nil
		},
	}
}
