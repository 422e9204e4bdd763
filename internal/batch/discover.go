package batch

import (
	"os"
	"path/filepath"

	"github.com/ironsheep/image-watermark/internal/errs"
	"github.com/ironsheep/image-watermark/internal/imaging"
)

// Discover resolves input to the canvas files it names.
//
// A directory yields every .png, .jpg and .jpeg file directly inside it,
// sorted by name; subdirectories are not descended into. An empty result
// is not an error. A regular file must itself carry a supported extension.
// A missing path or an unsupported file is an errs.CodeInvalidPath error.
func Discover(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInvalidPath, err, "input not found").WithPath(input)
	}

	if !info.IsDir() {
		if !imaging.IsImagePath(input) {
			return nil, errs.New(errs.CodeInvalidPath, "input must be a .png, .jpg or .jpeg file").WithPath(input)
		}
		return []string{input}, nil
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInvalidPath, err, "failed to read input directory").WithPath(input)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !imaging.IsImagePath(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(input, e.Name()))
	}
	return files, nil
}

// CheckMark verifies that the mark path exists, is a regular file and has a
// supported extension, without decoding it.
func CheckMark(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errs.Wrap(errs.CodeInvalidPath, err, "watermark not found").WithPath(path)
	}
	if info.IsDir() {
		return errs.New(errs.CodeInvalidPath, "watermark must be a file, not a directory").WithPath(path)
	}
	if !imaging.IsImagePath(path) {
		return errs.New(errs.CodeInvalidPath, "watermark must be a .png, .jpg or .jpeg file").WithPath(path)
	}
	return nil
}
