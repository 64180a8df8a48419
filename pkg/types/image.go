// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"strings"
	"time"
)

// ImageFormat identifies an image file format by its lowercase extension.
type ImageFormat string

const (
	FormatJPG ImageFormat = "jpg"
	FormatPNG ImageFormat = "png"
	FormatICO ImageFormat = "ico"
	FormatBMP ImageFormat = "bmp"
)

// knownFormats lists every format the converter can name, as source or target.
var knownFormats = []ImageFormat{FormatJPG, FormatPNG, FormatICO, FormatBMP}

// ParseFormat maps a user-supplied name or extension (e.g. "PNG", ".ico")
// to an ImageFormat. It reports false for anything outside the known set.
func ParseFormat(s string) (ImageFormat, bool) {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	for _, f := range knownFormats {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// FormatFromPath returns the lowercased final extension of path without the
// dot. The result may name a format outside the known set; callers decide
// whether it is acceptable.
func FormatFromPath(path string) ImageFormat {
	ext := filepath.Ext(path)
	return ImageFormat(strings.ToLower(strings.TrimPrefix(ext, ".")))
}

// ConversionRequest captures one user action: which file to convert, into
// what, and where. It is built fresh per invocation and consumed once.
type ConversionRequest struct {
	// InputPath is the source image path. Empty means nothing was selected.
	InputPath string `json:"input_path" yaml:"input_path"`

	// InputFormat is derived from InputPath's extension, lowercased.
	InputFormat ImageFormat `json:"input_format" yaml:"input_format"`

	// OutputFormat is the requested target format.
	OutputFormat ImageFormat `json:"output_format" yaml:"output_format"`

	// OutputDirectory overrides the default output directory when non-empty.
	OutputDirectory string `json:"output_directory,omitempty" yaml:"output_directory,omitempty"`
}

// NewRequest builds a ConversionRequest, deriving InputFormat from inputPath.
// outputFormat is parsed case-insensitively; an unrecognized name is kept
// verbatim so validation can report it.
func NewRequest(inputPath, outputFormat, outputDir string) ConversionRequest {
	out, ok := ParseFormat(outputFormat)
	if !ok {
		out = ImageFormat(strings.TrimSpace(outputFormat))
	}
	req := ConversionRequest{
		InputPath:       inputPath,
		OutputFormat:    out,
		OutputDirectory: outputDir,
	}
	if inputPath != "" {
		req.InputFormat = FormatFromPath(inputPath)
	}
	return req
}

// ConversionResult is the outcome of a conversion attempt. Failures carry
// no detail beyond the flag.
type ConversionResult struct {
	Success    bool   `json:"success" yaml:"success"`
	OutputPath string `json:"output_path" yaml:"output_path"`
}

// ConversionStatus classifies a recorded conversion attempt.
type ConversionStatus string

const (
	ConversionDone    ConversionStatus = "converted"
	ConversionFailed  ConversionStatus = "failed"
	ConversionInvalid ConversionStatus = "invalid"
)

// HistoryEntry is one row of the conversion journal.
type HistoryEntry struct {
	ID           int64            `json:"id" yaml:"id"`
	InputPath    string           `json:"input_path" yaml:"input_path"`
	OutputPath   string           `json:"output_path,omitempty" yaml:"output_path,omitempty"`
	InputFormat  ImageFormat      `json:"input_format" yaml:"input_format"`
	OutputFormat ImageFormat      `json:"output_format" yaml:"output_format"`
	Status       ConversionStatus `json:"status" yaml:"status"`

	// Reason holds the validation error text for invalid requests. It is
	// always empty for converted and failed entries.
	Reason    string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
