// Package capture saves rendered tickets as PNG files.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Capture writes timestamped snapshots into a directory.
type Capture struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// New creates a capture handler. An empty dir writes into the working directory.
func New(outputDir, prefix string) *Capture {
	return &Capture{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// FromGL converts bottom-up RGBA rows read from the default framebuffer into a top-down image.
func FromGL(pixels []byte, width, height int) (*image.RGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}

// Filename returns the path the next snapshot would be written to.
func (c *Capture) Filename() string {
	name := fmt.Sprintf("%s_%s.png", c.prefix, c.now().Format("2006-01-02_15-04-05"))
	if c.outputDir != "" {
		name = filepath.Join(c.outputDir, name)
	}
	return name
}

// Save writes img to a timestamped file and returns its path.
func (c *Capture) Save(img image.Image) (string, error) {
	if c.outputDir != "" {
		if err := os.MkdirAll(c.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	path := c.Filename()
	if err := WritePNG(path, img); err != nil {
		return "", err
	}
	return path, nil
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}
