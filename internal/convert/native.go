// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	ico "github.com/sergeymakinen/go-ico"
	"github.com/spf13/afero"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/cwp/image-converter/pkg/types"
)

const (
	// DefaultJPEGQuality is used when no quality is configured.
	DefaultJPEGQuality = 90

	// maxIconSize is the largest edge an ICO directory entry can describe.
	maxIconSize = 256
)

// NativeConverter transcodes images in-process.
type NativeConverter struct {
	fs          afero.Fs
	jpegQuality int
}

// NewNativeConverter creates a converter reading and writing through fs.
// A quality outside 1-100 falls back to DefaultJPEGQuality.
func NewNativeConverter(fs afero.Fs, jpegQuality int) *NativeConverter {
	if jpegQuality < 1 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	return &NativeConverter{fs: fs, jpegQuality: jpegQuality}
}

// Convert decodes sourcePath and writes it to destinationPath in the format
// named by the destination extension. Nothing is written on failure.
func (n *NativeConverter) Convert(sourcePath, destinationPath string) error {
	img, err := n.decode(sourcePath)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := n.encode(&buf, img, types.FormatFromPath(destinationPath)); err != nil {
		return fmt.Errorf("encoding %s: %w", destinationPath, err)
	}

	if err := afero.WriteFile(n.fs, destinationPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", destinationPath, err)
	}
	return nil
}

func (n *NativeConverter) decode(path string) (image.Image, error) {
	f, err := n.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var img image.Image
	switch types.FormatFromPath(path) {
	case types.FormatICO:
		// image.Decode sniffs the header before handing over the stream,
		// which some icon files do not survive.
		img, err = ico.Decode(f)
	case types.FormatJPG:
		img, err = jpeg.Decode(f)
	case types.FormatPNG:
		img, err = png.Decode(f)
	default:
		img, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

func (n *NativeConverter) encode(w io.Writer, img image.Image, format types.ImageFormat) error {
	switch format {
	case types.FormatPNG:
		return png.Encode(w, img)
	case types.FormatJPG:
		return jpeg.Encode(w, flatten(img), &jpeg.Options{Quality: n.jpegQuality})
	case types.FormatBMP:
		return bmp.Encode(w, img)
	case types.FormatICO:
		return ico.Encode(w, fitIcon(img))
	default:
		return fmt.Errorf("no encoder for %q", format)
	}
}

// flatten composites img onto an opaque white canvas. JPEG has no alpha
// channel, and transparent pixels would otherwise come out black.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.White, image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}

// fitIcon scales img down so neither edge exceeds maxIconSize, keeping the
// aspect ratio. Smaller images are returned unchanged.
func fitIcon(img image.Image) image.Image {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= maxIconSize && height <= maxIconSize {
		return img
	}

	if width >= height {
		height = max(1, height*maxIconSize/width)
		width = maxIconSize
	} else {
		width = max(1, width*maxIconSize/height)
		height = maxIconSize
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
