package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-watermark/internal/batch"
	"github.com/ironsheep/image-watermark/internal/errs"
	"github.com/ironsheep/image-watermark/internal/imaging"
	"github.com/ironsheep/image-watermark/internal/watermark"
)

// maxListedPlacements caps the offsets printed in text mode.
const maxListedPlacements = 8

func newPlanCmd() *cobra.Command {
	var (
		core   coreFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "plan <image> <watermark>",
		Short: "Show how a watermark would be scaled and placed, without writing anything",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveSettings(cmd, &core, nil)
			if err != nil {
				return err
			}
			return runPlan(cmd.Context(), args[0], args[1], s, asJSON)
		},
	}

	core.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	return cmd
}

func runPlan(ctx context.Context, input, markPath string, s *settings, asJSON bool) error {
	logger := loggerFromContext(ctx)
	for _, w := range s.warnings {
		// stdout carries the JSON document in --json mode.
		if asJSON {
			logger.Warn(w)
		} else {
			printWarning("%s", w)
		}
	}

	if err := batch.CheckMark(markPath); err != nil {
		return err
	}
	files, err := batch.Discover(input)
	if err != nil {
		return err
	}
	if len(files) != 1 || files[0] != input {
		return errs.New(errs.CodeInvalidPath, "plan takes a single image file, not a directory").WithPath(input)
	}
	canvas, err := imaging.Load(input)
	if err != nil {
		return err
	}
	mark, err := batch.LoadMark(markPath)
	if err != nil {
		return err
	}

	plan, err := watermark.NewEngine(logger).Plan(watermark.Size(canvas), watermark.Size(mark), s.core)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}
	printPlan(plan, s.core)
	return nil
}

func printPlan(p *watermark.Plan, cfg watermark.Config) {
	fmt.Fprintln(stdout, StyleTitle.Render("Watermark plan"))
	printKeyValue("image", formatSize(p.CanvasSize.X, p.CanvasSize.Y))
	printKeyValue("watermark", formatSize(p.OriginalMarkSize.X, p.OriginalMarkSize.Y))
	printKeyValue("scaling", fmt.Sprintf("%s, factor %s", cfg.Scaling, StyleNumber.Render(fmt.Sprintf("%.4g", p.Scale))))

	size := formatSize(p.MarkSize.X, p.MarkSize.Y)
	if !p.Resized {
		size += StyleDim.Render(" (original size kept)")
	}
	printKeyValue("stamp size", size)
	printKeyValue("opacity", fmt.Sprintf("%g", cfg.Opacity))

	switch cfg.Placement {
	case watermark.PlaceTile:
		printKeyValue("mode", fmt.Sprintf("TILE, padding %d", cfg.TilePadding))
		if p.Grid != nil {
			printKeyValue("grid", fmt.Sprintf("%d rows × %d cols, step %dx%d",
				p.Grid.Rows(), p.Grid.Cols(), p.Grid.StepX, p.Grid.StepY))
		}
	default:
		printKeyValue("mode", fmt.Sprintf("SINGLE at %s, margin %d", cfg.Position, cfg.Margin))
	}

	printKeyValue("stamps", StyleNumber.Render(fmt.Sprintf("%d", len(p.Placements))))
	if len(p.Placements) > 0 {
		shown := p.Placements
		if len(shown) > maxListedPlacements {
			shown = shown[:maxListedPlacements]
		}
		parts := make([]string, len(shown))
		for i, pt := range shown {
			parts[i] = fmt.Sprintf("(%d,%d)", pt.X, pt.Y)
		}
		list := strings.Join(parts, " ")
		if rest := len(p.Placements) - len(shown); rest > 0 {
			list += StyleDim.Render(fmt.Sprintf(" … %d more", rest))
		}
		printKeyValue("offsets", list)
	}

	for _, w := range p.Warnings {
		printWarning("%s", w)
	}
}

func formatSize(w, h int) string {
	return StyleNumber.Render(fmt.Sprintf("%dx%d", w, h))
}
