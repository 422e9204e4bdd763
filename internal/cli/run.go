package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-watermark/internal/batch"
)

// errFilesFailed reports that a batch finished with per-file failures. The
// failures themselves have already been printed.
type errFilesFailed struct {
	failed, total int
}

func (e errFilesFailed) Error() string {
	return fmt.Sprintf("%d of %d images failed", e.failed, e.total)
}

func newRunCmd() *cobra.Command {
	var (
		core coreFlags
		out  outputFlags
	)

	cmd := &cobra.Command{
		Use:   "run <input> <watermark>",
		Short: "Apply a watermark to an image or a directory of images",
		Long: `Apply a watermark to an image or to every .png, .jpg and .jpeg file directly
inside a directory. Results are written to the output directory as
<name>_watermarked.png (or .jpg with --format jpg).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSettings(cmd, &core, &out)
			if err != nil {
				return err
			}
			return runWatermark(cmd.Context(), args[0], args[1], s)
		},
	}

	core.register(cmd)
	out.register(cmd)
	return cmd
}

// runWatermark checks every path before touching any pixel, then hands the
// discovered files to a batch runner.
func runWatermark(ctx context.Context, input, markPath string, s *settings) error {
	logger := loggerFromContext(ctx)
	for _, w := range s.warnings {
		printWarning("%s", w)
	}

	if err := batch.CheckMark(markPath); err != nil {
		return err
	}
	inputs, err := batch.Discover(input)
	if err != nil {
		return err
	}
	mark, err := batch.LoadMark(markPath)
	if err != nil {
		return err
	}

	runner, err := batch.NewRunner(mark, batch.Options{
		Config:    s.core,
		OutputDir: s.outputDir,
		Format:    s.format,
		Encode:    s.encode,
		Workers:   s.workers,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	printInfo("Output directory: %s", StyleValue.Render(s.outputDir))

	if len(inputs) == 0 {
		printWarning("No valid image found in %s", input)
		return nil
	}

	logger.Debug("starting batch", "files", len(inputs), "workers", runner.Workers(),
		"mode", s.core.Placement, "scaling", s.core.Scaling)
	prog := newProgress(logger)
	summary := runner.Run(ctx, inputs)
	prog.done(fmt.Sprintf("Processed %d images", len(inputs)))

	printSummary(summary)
	if summary.Failed > 0 {
		return errFilesFailed{failed: summary.Failed, total: len(inputs)}
	}
	return nil
}
