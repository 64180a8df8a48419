// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConversionBackend identifies the tool that performs pixel transcoding.
type ConversionBackend string

const (
	BackendNative      ConversionBackend = "native"
	BackendImageMagick ConversionBackend = "imagemagick"
)

// ConverterConfig holds settings for the conversion commands.
type ConverterConfig struct {
	// OutputDir is the directory used when a request names none. Empty means
	// the user's home directory.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Backend selects the converter: native or imagemagick.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// JPEGQuality is the encoder quality for jpg output, 1-100 (default 90).
	JPEGQuality int `json:"jpeg_quality" yaml:"jpeg_quality" mapstructure:"jpeg_quality"`

	// MagickImage is the container image used by the imagemagick backend.
	MagickImage string `json:"magick_image" yaml:"magick_image" mapstructure:"magick_image"`

	// ContainerRuntime pins the imagemagick backend to docker or podman.
	// Empty tries docker, then podman.
	ContainerRuntime string `json:"container_runtime,omitempty" yaml:"container_runtime,omitempty" mapstructure:"container_runtime"`

	// HistoryPath is the SQLite journal location.
	HistoryPath string `json:"history_path" yaml:"history_path" mapstructure:"history_path"`

	// NoHistory disables the journal.
	NoHistory bool `json:"no_history" yaml:"no_history" mapstructure:"no_history"`
}
