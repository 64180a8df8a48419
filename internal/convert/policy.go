// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/cwp/image-converter/pkg/types"
)

// Validation and conversion errors. Validate wraps these so callers can
// match them with errors.Is.
var (
	ErrNoFileSelected          = errors.New("no input file selected")
	ErrFileNotFound            = errors.New("input file not found, please select it again")
	ErrUnsupportedInputFormat  = errors.New("unsupported input format")
	ErrNoOutputFormatSelected  = errors.New("no output format selected")
	ErrUnsupportedOutputFormat = errors.New("unsupported output format")
	ErrConversionFailed        = errors.New("conversion failed, please retry")
	ErrNoOutputDirectory       = errors.New("no output directory")
	ErrInvalidFileName         = errors.New("input file name has no extension")
)

// allowedOutputs is the fixed source-to-target compatibility table. bmp is
// never a source, and no source lists itself as a target.
var allowedOutputs = map[types.ImageFormat][]types.ImageFormat{
	types.FormatJPG: {types.FormatICO, types.FormatPNG, types.FormatBMP},
	types.FormatPNG: {types.FormatICO, types.FormatJPG, types.FormatBMP},
	types.FormatICO: {types.FormatJPG, types.FormatPNG, types.FormatBMP},
}

// sourceFormats lists the formats accepted as input, in display order.
var sourceFormats = []types.ImageFormat{types.FormatJPG, types.FormatPNG, types.FormatICO}

// SourceFormats returns the formats accepted as conversion input.
func SourceFormats() []types.ImageFormat {
	return append([]types.ImageFormat(nil), sourceFormats...)
}

// AllowedOutputFormats returns the targets offered for the given source
// format, in table order. Unknown sources yield an empty slice.
func AllowedOutputFormats(in types.ImageFormat) []types.ImageFormat {
	outs := allowedOutputs[types.ImageFormat(strings.ToLower(string(in)))]
	return append([]types.ImageFormat{}, outs...)
}

// IsAllowed reports whether out is an allowed target for in.
func IsAllowed(in, out types.ImageFormat) bool {
	for _, f := range AllowedOutputFormats(in) {
		if f == out {
			return true
		}
	}
	return false
}

// Policy validates conversion requests and derives output paths. File
// existence checks go through fs.
type Policy struct {
	fs afero.Fs
}

// NewPolicy returns a Policy that checks files on fs.
func NewPolicy(fs afero.Fs) *Policy {
	return &Policy{fs: fs}
}

// Validate checks req in order and returns the first failure: input file,
// input format, then output format. It has no side effects.
func (p *Policy) Validate(req types.ConversionRequest) error {
	if req.InputPath == "" {
		return ErrNoFileSelected
	}
	info, err := p.fs.Stat(req.InputPath)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrFileNotFound, req.InputPath)
	}

	in := types.ImageFormat(strings.ToLower(string(req.InputFormat)))
	if _, ok := allowedOutputs[in]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedInputFormat, req.InputFormat)
	}

	if req.OutputFormat == "" {
		return ErrNoOutputFormatSelected
	}
	if !IsAllowed(in, req.OutputFormat) {
		return fmt.Errorf("%w: %s cannot be converted to %q", ErrUnsupportedOutputFormat, in, req.OutputFormat)
	}
	return nil
}

// ResolveOutputPath derives where the converted file goes: outputDir (or
// defaultDir when outputDir is empty) joined with the input's stem and the
// target extension. The stem is everything before the last dot of the base
// name; a name without one is rejected. An existing file at the returned
// path is overwritten by the converter.
func ResolveOutputPath(inputFileName, outputDir, defaultDir string, format types.ImageFormat) (string, error) {
	dir := outputDir
	if dir == "" {
		dir = defaultDir
	}
	if dir == "" {
		return "", ErrNoOutputDirectory
	}

	name := filepath.Base(inputFileName)
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}

	return filepath.Join(dir, name[:dot]+"."+string(format)), nil
}
