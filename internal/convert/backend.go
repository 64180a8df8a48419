// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/cwp/image-converter/internal/container"
	"github.com/cwp/image-converter/pkg/types"
)

// detectRuntime is swapped in tests.
var detectRuntime = container.DetectRuntime

// NewConverter builds the converter selected by cfg.Backend. An empty
// backend means native.
func NewConverter(cfg types.ConverterConfig, fs afero.Fs) (Converter, error) {
	switch cfg.Backend {
	case "", types.BackendNative:
		return NewNativeConverter(fs, cfg.JPEGQuality), nil
	case types.BackendImageMagick:
		rt, err := detectRuntime(cfg.ContainerRuntime)
		if err != nil {
			return nil, err
		}
		mc, err := NewMagickConverter(rt, cfg.MagickImage, fs, cfg.JPEGQuality)
		if err != nil {
			return nil, err
		}
		return mc, nil
	default:
		return nil, fmt.Errorf("unknown backend %q: use %s or %s", cfg.Backend, types.BackendNative, types.BackendImageMagick)
	}
}
