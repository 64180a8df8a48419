// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements image conversion: the format compatibility
// policy, output path resolution, and pluggable converter backends.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/cwp/image-converter/pkg/types"
)

// Converter transcodes the image at sourcePath into destinationPath. The
// target codec is inferred from the destination extension. Different
// backends (native, imagemagick) implement this interface.
type Converter interface {
	Convert(sourcePath, destinationPath string) error
}

// Recorder receives one entry per conversion attempt.
type Recorder interface {
	Record(ctx context.Context, entry types.HistoryEntry) error
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Failed    int
	Invalid   int

	// Skipped counts requests never attempted because the context was
	// cancelled.
	Skipped int
}

// Total returns the total number of requests in the batch.
func (r BatchResult) Total() int {
	return r.Converted + r.Failed + r.Invalid + r.Skipped
}

// HasFailures reports whether any request was not converted.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0 || r.Invalid > 0 || r.Skipped > 0
}

// Service ties the policy to a converter backend.
type Service struct {
	policy     *Policy
	converter  Converter
	fs         afero.Fs
	defaultDir string
	recorder   Recorder
	out        io.Writer
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder journals every attempt to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithOutput sets where per-request status lines are written.
func WithOutput(w io.Writer) Option {
	return func(s *Service) { s.out = w }
}

// NewService creates a Service. defaultDir is used for requests without an
// output directory and must be non-empty.
func NewService(fs afero.Fs, c Converter, defaultDir string, opts ...Option) *Service {
	s := &Service{
		policy:     NewPolicy(fs),
		converter:  c,
		fs:         fs,
		defaultDir: defaultDir,
		out:        io.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the policy used for validation.
func (s *Service) Policy() *Policy {
	return s.policy
}

// Convert resolves the output path for req and hands both paths to the
// converter. Any converter error collapses to Success=false; the cause is
// not inspected. Validation is the caller's job.
func (s *Service) Convert(req types.ConversionRequest) types.ConversionResult {
	outPath, err := s.outputPath(req)
	if err != nil {
		return types.ConversionResult{}
	}
	return s.convertTo(req, outPath)
}

func (s *Service) outputPath(req types.ConversionRequest) (string, error) {
	return ResolveOutputPath(req.InputPath, req.OutputDirectory, s.defaultDir, req.OutputFormat)
}

func (s *Service) convertTo(req types.ConversionRequest, outPath string) types.ConversionResult {
	result := types.ConversionResult{OutputPath: outPath}

	if err := s.fs.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return result
	}
	if err := s.converter.Convert(req.InputPath, outPath); err != nil {
		return result
	}

	result.Success = true
	return result
}

// Run validates req, resolves its output path, converts it, writes one
// status line, and journals the attempt. It returns the validation or path
// error, ErrConversionFailed, or nil.
func (s *Service) Run(ctx context.Context, req types.ConversionRequest) (types.ConversionResult, error) {
	entry := types.HistoryEntry{
		InputPath:    req.InputPath,
		InputFormat:  req.InputFormat,
		OutputFormat: req.OutputFormat,
		CreatedAt:    time.Now().UTC(),
	}

	err := s.policy.Validate(req)
	var outPath string
	if err == nil {
		outPath, err = s.outputPath(req)
	}
	if err != nil {
		fmt.Fprintf(s.out, "invalid: %s (%v)\n", displayName(req.InputPath), err)
		entry.Status = types.ConversionInvalid
		entry.Reason = err.Error()
		s.record(ctx, entry)
		return types.ConversionResult{}, err
	}

	result := s.convertTo(req, outPath)
	entry.OutputPath = result.OutputPath

	if !result.Success {
		fmt.Fprintf(s.out, "failed:  %s (%v)\n", displayName(req.InputPath), ErrConversionFailed)
		entry.Status = types.ConversionFailed
		s.record(ctx, entry)
		return result, ErrConversionFailed
	}

	fmt.Fprintf(s.out, "converted: %s -> %s\n", displayName(req.InputPath), result.OutputPath)
	entry.Status = types.ConversionDone
	s.record(ctx, entry)
	return result, nil
}

// RunBatch processes requests sequentially and prints a summary. Once ctx
// is cancelled the remaining requests are counted as skipped.
func (s *Service) RunBatch(ctx context.Context, reqs []types.ConversionRequest) BatchResult {
	var result BatchResult
	for i, req := range reqs {
		if ctx.Err() != nil {
			result.Skipped = len(reqs) - i
			fmt.Fprintf(s.out, "cancelled: %d remaining image(s) skipped\n", result.Skipped)
			break
		}

		_, err := s.Run(ctx, req)
		switch {
		case err == nil:
			result.Converted++
		case errors.Is(err, ErrConversionFailed):
			result.Failed++
		default:
			result.Invalid++
		}
	}
	if len(reqs) > 1 {
		fmt.Fprintf(s.out, "\nBatch summary: %d converted, %d failed, %d invalid, %d skipped (total: %d)\n",
			result.Converted, result.Failed, result.Invalid, result.Skipped, result.Total())
	}
	return result
}

// record journals entry. A journal failure never changes the conversion
// outcome; it is reported as a warning.
func (s *Service) record(ctx context.Context, entry types.HistoryEntry) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		fmt.Fprintf(s.out, "warning: could not record history: %v\n", err)
	}
}

func displayName(path string) string {
	if path == "" {
		return "<none>"
	}
	return filepath.Base(path)
}
