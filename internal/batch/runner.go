package batch

import (
	"context"
	"errors"
	"image"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-watermark/internal/errs"
	"github.com/ironsheep/image-watermark/internal/imaging"
	"github.com/ironsheep/image-watermark/internal/watermark"
)

// Options configures a Runner.
type Options struct {
	// Config is the compositing configuration applied to every canvas.
	Config watermark.Config

	// OutputDir receives the watermarked files. It is created if missing.
	OutputDir string

	// Format selects the output encoding and extension.
	Format imaging.Format

	// Encode holds JPEG quality and the flattening background.
	Encode imaging.EncodeOptions

	// Workers bounds the number of canvases processed at once.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int

	// Logger receives per-file progress. Nil discards it.
	Logger *log.Logger
}

// FileResult is the outcome for one canvas.
type FileResult struct {
	Input    string        `json:"input"`
	Output   string        `json:"output,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
	Err      error         `json:"-"`
}

// OK reports whether the file was written.
func (r FileResult) OK() bool {
	return r.Err == nil
}

// Summary tallies a batch run. Results are in input order.
type Summary struct {
	Results   []FileResult `json:"results"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// Err joins the errors of every failed file, or returns nil.
func (s Summary) Err() error {
	var failures []error
	for _, r := range s.Results {
		if r.Err != nil {
			failures = append(failures, r.Err)
		}
	}
	return errors.Join(failures...)
}

// Runner composites one shared mark onto many canvases.
type Runner struct {
	opts   Options
	mark   *image.NRGBA
	logger *log.Logger
}

// LoadMark checks and decodes the mark file. A mark that cannot be used
// fails the whole batch, so callers should treat any error as fatal.
func LoadMark(path string) (image.Image, error) {
	if err := CheckMark(path); err != nil {
		return nil, err
	}
	return imaging.Load(path)
}

// NewRunner validates opts, prepares the output directory and converts mark
// to the raster form the engine works on. The mark is never modified
// afterwards, so every worker reads the same buffer.
func NewRunner(mark image.Image, opts Options) (*Runner, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if mark == nil {
		return nil, errs.New(errs.CodeInvalidConfig, "no watermark image given")
	}
	switch opts.Format {
	case imaging.FormatPNG, imaging.FormatJPEG:
	case "":
		opts.Format = imaging.FormatPNG
	default:
		return nil, errs.New(errs.CodeInvalidConfig, "output format must be png or jpg, got %q", opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, errs.Wrap(errs.CodeInvalidPath, err, "failed to create output directory").WithPath(opts.OutputDir)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Runner{
		opts:   opts,
		mark:   watermark.ToRaster(mark),
		logger: logger,
	}, nil
}

// Workers returns the effective concurrency limit.
func (r *Runner) Workers() int {
	return r.opts.Workers
}

// Run processes inputs and returns once every file has finished or been
// skipped. A failure is recorded against its file only; siblings already
// running or still queued are unaffected. Cancelling ctx stops queued files
// and interrupts those in flight between stamps, each reported as
// errs.CodeCancelled.
func (r *Runner) Run(ctx context.Context, inputs []string) Summary {
	results := make([]FileResult, len(inputs))

	// Two inputs differing only by extension would write the same file.
	claimed := make(map[string]string, len(inputs))
	outputs := make([]string, len(inputs))
	for i, in := range inputs {
		out := imaging.OutputPath(r.opts.OutputDir, in, r.opts.Format)
		if first, ok := claimed[out]; ok {
			results[i] = FileResult{
				Input: in,
				Err:   errs.New(errs.CodeInvalidPath, "output %s is already produced by %s", out, first).WithPath(in),
			}
			r.logger.Error("skipped", "file", in, "err", results[i].Err)
			continue
		}
		claimed[out] = in
		outputs[i] = out
	}

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for i, in := range inputs {
		if results[i].Err != nil {
			continue
		}
		g.Go(func() error {
			results[i] = r.process(ctx, in, outputs[i])
			return nil
		})
	}
	_ = g.Wait()

	s := Summary{Results: results}
	for _, res := range results {
		if res.OK() {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

func (r *Runner) process(ctx context.Context, input, output string) FileResult {
	start := time.Now()
	res := FileResult{Input: input}
	logger := r.logger.With("file", input)

	fail := func(err error) FileResult {
		res.Err = withPath(err, input)
		res.Elapsed = time.Since(start)
		logger.Error("failed", "err", res.Err)
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(errs.Wrap(errs.CodeCancelled, err, "not started"))
	}

	canvas, err := imaging.Load(input)
	if err != nil {
		return fail(err)
	}

	// With several workers the pool already fills the CPUs; row-splitting
	// inside each operation would only add goroutines.
	engine := watermark.NewEngine(logger)
	engine.Serial = r.opts.Workers > 1

	out, err := engine.Apply(ctx, canvas, r.mark, r.opts.Config)
	if err != nil {
		return fail(err)
	}
	for _, w := range out.Warnings {
		logger.Warn("degenerate geometry", "detail", w)
	}

	if err := imaging.Save(out.Image, output, r.opts.Encode); err != nil {
		return fail(err)
	}

	res.Output = output
	res.Warnings = out.Warnings
	res.Elapsed = time.Since(start)
	logger.Info("watermarked", "output", output, "elapsed", res.Elapsed.Round(time.Millisecond))
	return res
}

// withPath attaches path to a structured error that does not name a file yet.
func withPath(err error, path string) error {
	var e *errs.Error
	if errors.As(err, &e) && e.Path == "" {
		return e.WithPath(path)
	}
	return err
}
