package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"scanoutliers/internal/models"
	"scanoutliers/pkg/metrics"
	"scanoutliers/pkg/nifti"
	"scanoutliers/pkg/pipeline"
)

// newDetectCommand creates the 'detect' command, which screens one image
func newDetectCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <image.nii[.gz]>",
		Short: "Flag outlier frames in a 4D NIfTI image",
		Long: `Compute a per-frame metric for a 4D NIfTI image and flag the measures
outside [Q1 - p*IQR, Q3 + p*IQR], where p is the IQR proportion.

Metrics:
  dvars       root mean square voxel change between consecutive frames
  spm-global  mean intensity of voxels above one eighth of the frame mean`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDetect(cmd, args[0])
		},
	}

	cmd.Flags().String("metric", "", "metric to compute: dvars or spm-global")
	cmd.Flags().Float64("proportion", 0, "IQR multiplier for the outlier thresholds")
	cmd.Flags().Int("cores", 0, "number of frames processed in parallel")
	a.v.BindPFlag("detection.metric", cmd.Flags().Lookup("metric"))
	a.v.BindPFlag("detection.proportion", cmd.Flags().Lookup("proportion"))
	a.v.BindPFlag("processing.numCores", cmd.Flags().Lookup("cores"))

	return cmd
}

func (a *app) runDetect(cmd *cobra.Command, path string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	kind, err := metrics.ParseKind(cfg.Detection.Metric)
	if err != nil {
		return err
	}

	p := pipeline.NewPipeline(pipeline.Params{
		Metric:     kind,
		Proportion: cfg.Detection.Proportion,
		NumCores:   cfg.Processing.NumCores,
	})

	a.log.Debug("screening image", "path", path, "metric", kind)
	start := time.Now()
	result, err := p.RunFile(pipeline.LoaderFunc(nifti.Load), path)
	if err != nil {
		return fmt.Errorf("screening %s: %w", path, err)
	}
	a.log.Info("screening complete",
		"path", path,
		"metric", kind,
		"measures", len(result.Measures),
		"outliers", len(result.Outliers()),
		"elapsed", time.Since(start).Round(time.Millisecond))

	report := models.NewReport(path, cfg.Detection.Proportion, result)
	renderReport(cmd.OutOrStdout(), report)
	return nil
}
