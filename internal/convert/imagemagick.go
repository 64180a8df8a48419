// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/spf13/afero"

	"github.com/cwp/image-converter/internal/container"
	"github.com/cwp/image-converter/pkg/types"
)

// DefaultMagickImage is an ImageMagick image whose entrypoint is magick.
const DefaultMagickImage = "dpokidov/imagemagick:latest"

// MagickConverter converts images by piping them through an ImageMagick
// container. It depends on a container.Runtime (docker or podman) injected
// at construction time.
type MagickConverter struct {
	runtime     container.Runtime
	image       string
	fs          afero.Fs
	jpegQuality int
}

// NewMagickConverter creates a converter that runs image on rt. It verifies
// that the image exists locally before returning.
func NewMagickConverter(rt container.Runtime, image string, fs afero.Fs, jpegQuality int) (*MagickConverter, error) {
	if image == "" {
		image = DefaultMagickImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("imagemagick image not available in %s: %w", rt.Name(), err)
	}
	if jpegQuality < 1 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	return &MagickConverter{runtime: rt, image: image, fs: fs, jpegQuality: jpegQuality}, nil
}

// Convert streams sourcePath through the container and writes the result
// to destinationPath.
func (m *MagickConverter) Convert(sourcePath, destinationPath string) error {
	f, err := m.fs.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", sourcePath, err)
	}
	defer f.Close()

	args := m.args(types.FormatFromPath(sourcePath), types.FormatFromPath(destinationPath))

	var out bytes.Buffer
	if err := m.runtime.Run(m.image, args, f, &out); err != nil {
		return fmt.Errorf("converting %s with imagemagick: %w", sourcePath, err)
	}
	if out.Len() == 0 {
		return fmt.Errorf("imagemagick produced empty output for %s", sourcePath)
	}

	if err := afero.WriteFile(m.fs, destinationPath, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", destinationPath, err)
	}
	return nil
}

// args builds the magick command line. Input and output are stdin and
// stdout with explicit format prefixes, since neither stream has a name.
func (m *MagickConverter) args(in, out types.ImageFormat) []string {
	args := []string{string(in) + ":-"}
	switch out {
	case types.FormatICO:
		args = append(args, "-resize", strconv.Itoa(maxIconSize)+"x"+strconv.Itoa(maxIconSize)+">")
	case types.FormatJPG:
		args = append(args, "-background", "white", "-flatten", "-quality", strconv.Itoa(m.jpegQuality))
	}
	return append(args, string(out)+":-")
}
