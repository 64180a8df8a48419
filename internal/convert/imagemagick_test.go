// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwp/image-converter/internal/container"
	"github.com/cwp/image-converter/pkg/types"
)

// fakeRuntime implements container.Runtime without starting containers.
type fakeRuntime struct {
	images  map[string]bool
	output  string
	runErr  error
	gotArgs []string
	gotIn   string
}

func (f *fakeRuntime) Name() string    { return "docker" }
func (f *fakeRuntime) Available() bool { return true }

func (f *fakeRuntime) ImageExists(image string) error {
	if f.images[image] {
		return nil
	}
	return errors.New("no such image")
}

func (f *fakeRuntime) Run(image string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.gotArgs = args
	data, _ := io.ReadAll(stdin)
	f.gotIn = string(data)
	if f.runErr != nil {
		return f.runErr
	}
	_, err := io.WriteString(stdout, f.output)
	return err
}

func TestNewMagickConverter_RequiresImage(t *testing.T) {
	rt := &fakeRuntime{}
	_, err := NewMagickConverter(rt, "", afero.NewMemMapFs(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "imagemagick image not available in docker")
}

func TestMagickConverter_Convert(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		dst      string
		wantArgs string
	}{
		{name: "png to ico resizes", src: "/in/a.png", dst: "/out/a.ico", wantArgs: "png:- -resize 256x256> ico:-"},
		{name: "ico to jpg flattens", src: "/in/a.ico", dst: "/out/a.jpg", wantArgs: "ico:- -background white -flatten -quality 80 jpg:-"},
		{name: "jpg to bmp", src: "/in/a.jpg", dst: "/out/a.bmp", wantArgs: "jpg:- bmp:-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, tt.src, []byte("source bytes"), 0o644))
			rt := &fakeRuntime{images: map[string]bool{DefaultMagickImage: true}, output: "converted bytes"}

			conv, err := NewMagickConverter(rt, "", fs, 80)
			require.NoError(t, err)
			require.NoError(t, conv.Convert(tt.src, tt.dst))

			assert.Equal(t, tt.wantArgs, strings.Join(rt.gotArgs, " "))
			assert.Equal(t, "source bytes", rt.gotIn)
			data, err := afero.ReadFile(fs, tt.dst)
			require.NoError(t, err)
			assert.Equal(t, "converted bytes", string(data))
		})
	}
}

func TestMagickConverter_Failures(t *testing.T) {
	tests := []struct {
		name    string
		rt      *fakeRuntime
		wantErr string
	}{
		{
			name:    "container error",
			rt:      &fakeRuntime{runErr: errors.New("exit status 1")},
			wantErr: "converting /in/a.png with imagemagick",
		},
		{
			name:    "empty output",
			rt:      &fakeRuntime{},
			wantErr: "empty output",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/in/a.png", []byte("png"), 0o644))
			tt.rt.images = map[string]bool{"custom/magick:7": true}

			conv, err := NewMagickConverter(tt.rt, "custom/magick:7", fs, 0)
			require.NoError(t, err)

			err = conv.Convert("/in/a.png", "/out/a.bmp")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			exists, _ := afero.Exists(fs, "/out/a.bmp")
			assert.False(t, exists)
		})
	}
}

func TestNewConverter(t *testing.T) {
	orig := detectRuntime
	t.Cleanup(func() { detectRuntime = orig })

	var gotPreferred string
	detectRuntime = func(preferred string) (container.Runtime, error) {
		gotPreferred = preferred
		return &fakeRuntime{images: map[string]bool{DefaultMagickImage: true}}, nil
	}

	fs := afero.NewMemMapFs()

	c, err := NewConverter(types.ConverterConfig{}, fs)
	require.NoError(t, err)
	assert.IsType(t, &NativeConverter{}, c)

	c, err = NewConverter(types.ConverterConfig{Backend: types.BackendImageMagick, ContainerRuntime: "podman"}, fs)
	require.NoError(t, err)
	assert.IsType(t, &MagickConverter{}, c)
	assert.Equal(t, "podman", gotPreferred)

	_, err = NewConverter(types.ConverterConfig{Backend: "gimp"}, fs)
	assert.ErrorContains(t, err, `unknown backend "gimp"`)
}
