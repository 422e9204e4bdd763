package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // Register GIF format decoder
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/image-watermark/internal/errs"
)

// Format is an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpg"
)

// ParseFormat parses an output format name ("png", "jpg" or "jpeg").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	}
	return "", errs.New(errs.CodeInvalidConfig, "output format must be png or jpg, got %q", s)
}

// inputExtensions lists the file extensions accepted as canvas or mark.
var inputExtensions = []string{".png", ".jpg", ".jpeg"}

// IsImagePath reports whether path has a supported image extension,
// case-insensitively.
func IsImagePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range inputExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Load decodes the image at path, applying any EXIF orientation.
//
// Every failure is an errs.CodeDecode error naming path: a missing or
// unreadable file, an undecodable payload, or an image with zero width or
// height.
func Load(path string) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errs.Wrap(errs.CodeDecode, err, "failed to open image").WithPath(path)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errs.Wrap(errs.CodeDecode, err, "failed to decode image").WithPath(path)
	}

	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, errs.New(errs.CodeDecode, "image has zero size %dx%d", b.Dx(), b.Dy()).WithPath(path)
	}

	return img, nil
}

// Decode reads an image from r, applying any EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errs.Wrap(errs.CodeDecode, err, "failed to decode image")
	}
	return img, nil
}

// EncodeOptions controls output encoding.
type EncodeOptions struct {
	// JPEGQuality is the JPEG quality, 1-100.
	JPEGQuality int

	// Background is the opaque colour transparent pixels are flattened onto
	// when the output format has no alpha channel.
	Background color.NRGBA
}

// DefaultEncodeOptions returns quality 95 on a white background.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		JPEGQuality: 95,
		Background:  color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// ParseBackground parses a hex colour such as "#ffffff" or "#fff" into an
// opaque background colour.
func ParseBackground(hex string) (color.NRGBA, error) {
	norm := normalizeHex(hex)
	// colorful.Hex scans with Sscanf and accepts short or trailing digits.
	if len(norm) != 4 && len(norm) != 7 {
		return color.NRGBA{}, errs.New(errs.CodeInvalidConfig,
			"invalid background colour %q: want #rgb or #rrggbb", hex)
	}
	c, err := colorful.Hex(norm)
	if err != nil {
		return color.NRGBA{}, errs.Wrap(errs.CodeInvalidConfig, err, "invalid background colour %q", hex)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

func normalizeHex(hex string) string {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	return strings.ToLower(hex)
}

// Flatten composites img over an opaque background of colour bg.
func Flatten(img image.Image, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	base := imaging.New(b.Dx(), b.Dy(), bg)
	return imaging.Overlay(base, img, image.Point{}, 1.0)
}

// Encode writes img to w in the given format. PNG keeps the alpha channel;
// JPEG flattens the image onto opts.Background first.
func Encode(w io.Writer, img image.Image, format Format, opts EncodeOptions) error {
	switch format {
	case FormatPNG:
		return imaging.Encode(w, img, imaging.PNG)
	case FormatJPEG:
		q := opts.JPEGQuality
		if q <= 0 || q > 100 {
			q = DefaultEncodeOptions().JPEGQuality
		}
		return imaging.Encode(w, Flatten(img, opts.Background), imaging.JPEG, imaging.JPEGQuality(q))
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// FormatFromPath picks the output format from the extension of path.
func FormatFromPath(path string) (Format, error) {
	f, err := imaging.FormatFromFilename(path)
	if err != nil {
		return "", errs.Wrap(errs.CodeInvalidPath, err, "unsupported output extension").WithPath(path)
	}
	switch f {
	case imaging.PNG:
		return FormatPNG, nil
	case imaging.JPEG:
		return FormatJPEG, nil
	}
	return "", errs.New(errs.CodeInvalidPath, "output must be .png, .jpg or .jpeg").WithPath(path)
}

// Save encodes img to path, choosing PNG or JPEG by the path's extension.
//
// The image is written to a temporary file in the destination directory and
// renamed into place only once encoding succeeded, so a failed save never
// leaves a truncated file at path. The directory is created if needed.
func Save(img image.Image, path string, opts EncodeOptions) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.CodeEncode, err, "failed to create output directory").WithPath(path)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errs.Wrap(errs.CodeEncode, err, "failed to create output file").WithPath(path)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = Encode(tmp, img, format, opts); err != nil {
		return errs.Wrap(errs.CodeEncode, err, "failed to encode image").WithPath(path)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return errs.Wrap(errs.CodeEncode, err, "failed to set output permissions").WithPath(path)
	}
	if err = tmp.Close(); err != nil {
		return errs.Wrap(errs.CodeEncode, err, "failed to write image").WithPath(path)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errs.Wrap(errs.CodeEncode, err, "failed to move image into place").WithPath(path)
	}
	return nil
}

// OutputPath returns dir/<input-stem>_watermarked.<format>.
func OutputPath(dir, input string, format Format) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+"_watermarked."+string(format))
}
