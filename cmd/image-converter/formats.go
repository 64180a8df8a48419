// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwp/image-converter/internal/convert"
	"github.com/cwp/image-converter/pkg/types"
)

var formatsCmd = &cobra.Command{
	Use:   "formats [image-or-extension]",
	Short: "List the output formats offered for a source image",
	Long: `Formats prints the output formats a source can be converted to. Pass a
file name (photo.JPG) or a bare extension (png, .ico); with no argument the
whole compatibility table is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			printFormatTable(cmd.OutOrStdout())
			return nil
		}
		return printAllowed(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

// sourceFormat accepts either a file name or a bare extension.
func sourceFormat(arg string) types.ImageFormat {
	if f := types.FormatFromPath(arg); f != "" {
		return f
	}
	return types.ImageFormat(strings.ToLower(strings.TrimSpace(arg)))
}

func printAllowed(w io.Writer, arg string) error {
	in := sourceFormat(arg)
	outs := convert.AllowedOutputFormats(in)
	if len(outs) == 0 {
		return fmt.Errorf("%w: %q (supported: %s)", convert.ErrUnsupportedInputFormat, in, joinFormats(convert.SourceFormats()))
	}
	fmt.Fprintln(w, joinFormats(outs))
	return nil
}

func printFormatTable(w io.Writer) {
	fmt.Fprintf(w, "%-6s  %s\n", "Source", "Targets")
	fmt.Fprintln(w, strings.Repeat("-", 24))
	for _, in := range convert.SourceFormats() {
		fmt.Fprintf(w, "%-6s  %s\n", in, joinFormats(convert.AllowedOutputFormats(in)))
	}
}

func joinFormats(fs []types.ImageFormat) string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
