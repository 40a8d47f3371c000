package softblit

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
)

// LoadBMP loads a BMP file into a new surface.
func LoadBMP(path string) (*Surface, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, setError(fmt.Errorf("softblit: open file: %w", err))
	}
	defer func() { _ = f.Close() }()

	return DecodeBMP(f)
}

// DecodeBMP decodes a BMP image into a new surface.
func DecodeBMP(r io.Reader) (*Surface, error) {
	img, err := bmp.Decode(r)
	if err != nil {
		return nil, setError(fmt.Errorf("softblit: decode BMP: %w", err))
	}
	return NewSurfaceFromImage(img)
}

// SaveBMP writes s to a BMP file.
func (s *Surface) SaveBMP(path string) error {
	return saveFile(path, s.EncodeBMP)
}

// EncodeBMP writes s as BMP.
func (s *Surface) EncodeBMP(w io.Writer) error {
	if err := bmp.Encode(w, s.ToImage()); err != nil {
		return setError(fmt.Errorf("softblit: encode BMP: %w", err))
	}
	return nil
}

// LoadPNG loads a PNG file into a new surface.
func LoadPNG(path string) (*Surface, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, setError(fmt.Errorf("softblit: open file: %w", err))
	}
	defer func() { _ = f.Close() }()

	return DecodePNG(f)
}

// DecodePNG decodes a PNG image into a new surface.
func DecodePNG(r io.Reader) (*Surface, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, setError(fmt.Errorf("softblit: decode PNG: %w", err))
	}
	return NewSurfaceFromImage(img)
}

// SavePNG writes s to a PNG file.
func (s *Surface) SavePNG(path string) error {
	return saveFile(path, s.EncodePNG)
}

// EncodePNG writes s as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, s.ToImage()); err != nil {
		return setError(fmt.Errorf("softblit: encode PNG: %w", err))
	}
	return nil
}

func saveFile(path string, encode func(io.Writer) error) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return setError(fmt.Errorf("softblit: create file: %w", err))
	}
	if err := encode(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
