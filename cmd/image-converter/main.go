// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the image-converter CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cwp/image-converter/internal/convert"
	"github.com/cwp/image-converter/internal/history"
	"github.com/cwp/image-converter/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the image-converter CLI.
var rootCmd = &cobra.Command{
	Use:   "image-converter",
	Short: "Convert images between jpg, png, ico and bmp",
	Long: `image-converter turns a local jpg, png or ico image into another format.

Each source format offers a fixed set of targets:

  jpg -> ico, png, bmp
  png -> ico, jpg, bmp
  ico -> jpg, png, bmp

Converted files go to the output directory (--output-dir, or your home
directory when unset), named after the input with the new extension.
Existing files are overwritten.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./image-converter.yaml or ~/.config/image-converter/image-converter.yaml)")
	rootCmd.PersistentFlags().String("history-path", "", "conversion history database (default: ~/.local/share/image-converter/history.db)")
	_ = viper.BindPFlag("history_path", rootCmd.PersistentFlags().Lookup("history-path"))

	viper.SetDefault("backend", string(types.BackendNative))
	viper.SetDefault("jpeg_quality", convert.DefaultJPEGQuality)
	viper.SetDefault("magick_image", convert.DefaultMagickImage)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("image-converter")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "image-converter"))
		}
	}

	viper.SetEnvPrefix("IMAGE_CONVERTER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig materializes the merged flag, env, and file settings.
func loadConfig() (types.ConverterConfig, error) {
	var cfg types.ConverterConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	if cfg.HistoryPath == "" {
		p, err := history.DefaultPath()
		if err != nil {
			return cfg, err
		}
		cfg.HistoryPath = p
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
