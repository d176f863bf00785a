package qrcode

import (
	"fmt"
	"os"

	qr "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge in pixels.
const DefaultSize = 256

// Generator renders BR Codes as QR images at the highest recovery level.
type Generator struct {
	size int
}

func NewGenerator(size int) *Generator {
	if size <= 0 {
		size = DefaultSize
	}
	return &Generator{size: size}
}

// PNG encodes content as a PNG image.
func (g *Generator) PNG(content string) ([]byte, error) {
	png, err := qr.Encode(content, qr.Highest, g.size)
	if err != nil {
		return nil, fmt.Errorf("encoding qr code: %w", err)
	}
	return png, nil
}

// Terminal renders content with half-block characters for a text console.
func (g *Generator) Terminal(content string) (string, error) {
	code, err := qr.New(content, qr.Highest)
	if err != nil {
		return "", fmt.Errorf("encoding qr code: %w", err)
	}
	return code.ToSmallString(false), nil
}

// WriteFile stores the PNG rendering of content at path.
func (g *Generator) WriteFile(content, path string) error {
	png, err := g.PNG(content)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
