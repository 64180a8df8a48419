// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cwp/image-converter/internal/convert"
	"github.com/cwp/image-converter/internal/history"
	"github.com/cwp/image-converter/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [images...] --to FORMAT",
	Short: "Convert jpg, png or ico images to another format",
	Long: `Convert validates each input image, derives its output path from the
output directory and the target format, and transcodes it with the selected
backend (native, or imagemagick running in docker/podman).

A failed conversion is reported without detail; rerun it to retry.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("to", "t", "", "output format: ico, png, jpg or bmp")
	convertCmd.Flags().StringP("output-dir", "o", "", "output directory (default: home directory)")
	convertCmd.Flags().String("backend", "", "conversion backend: native or imagemagick (default native)")
	convertCmd.Flags().Int("quality", 0, "jpg quality 1-100 (default 90)")
	convertCmd.Flags().String("runtime", "", "container runtime for imagemagick: docker or podman")
	convertCmd.Flags().Bool("no-history", false, "do not record this run in the history")

	_ = viper.BindPFlag("output_dir", convertCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("backend", convertCmd.Flags().Lookup("backend"))
	_ = viper.BindPFlag("jpeg_quality", convertCmd.Flags().Lookup("quality"))
	_ = viper.BindPFlag("container_runtime", convertCmd.Flags().Lookup("runtime"))
	_ = viper.BindPFlag("no_history", convertCmd.Flags().Lookup("no-history"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: provide one or more jpg, png or ico files", convert.ErrNoFileSelected)
	}
	to, _ := cmd.Flags().GetString("to")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defaultDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("locating home directory: %w", err)
	}

	fs := afero.NewOsFs()
	conv, err := convert.NewConverter(cfg, fs)
	if err != nil {
		return err
	}

	opts := []convert.Option{convert.WithOutput(cmd.OutOrStdout())}
	if !cfg.NoHistory {
		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
		} else {
			defer store.Close()
			opts = append(opts, convert.WithRecorder(store))
		}
	}

	svc := convert.NewService(fs, conv, defaultDir, opts...)
	result := svc.RunBatch(cmd.Context(), buildRequests(args, to, cfg.OutputDir))
	if result.Skipped > 0 {
		return fmt.Errorf("%d of %d image(s) not converted: %w", result.Total()-result.Converted, result.Total(), cmd.Context().Err())
	}
	if result.HasFailures() {
		return fmt.Errorf("%d of %d image(s) not converted", result.Total()-result.Converted, result.Total())
	}
	return nil
}

// buildRequests turns CLI arguments into one request per input. Paths are
// made absolute so the journal records where the file actually was.
func buildRequests(inputs []string, to, outputDir string) []types.ConversionRequest {
	reqs := make([]types.ConversionRequest, 0, len(inputs))
	for _, in := range inputs {
		if abs, err := filepath.Abs(in); err == nil && in != "" {
			in = abs
		}
		reqs = append(reqs, types.NewRequest(in, to, outputDir))
	}
	return reqs
}
