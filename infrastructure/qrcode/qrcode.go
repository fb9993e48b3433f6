package qrcode

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/skip2/go-qrcode"
)

// Generator turns card codes into redemption QR symbols.
type Generator struct {
	baseURL    string
	moduleSize int
}

// NewGenerator creates a generator that appends codes to baseURL and draws
// each module as a moduleSize x moduleSize square.
func NewGenerator(baseURL string, moduleSize int) *Generator {
	if moduleSize < 1 {
		moduleSize = 1
	}
	return &Generator{
		baseURL:    baseURL,
		moduleSize: moduleSize,
	}
}

// Payload returns the redemption URL for code. The code is inserted verbatim,
// without URL escaping.
func (g *Generator) Payload(code string) string {
	return g.baseURL + code
}

// Image encodes the payload for code at error correction level M with the
// smallest version that fits and a 4-module quiet zone. Modules are black on
// a transparent background.
func (g *Generator) Image(code string) (image.Image, error) {
	q, err := qrcode.New(g.Payload(code), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode QR for %q: %w", code, err)
	}
	q.ForegroundColor = color.Black
	q.BackgroundColor = color.Transparent

	// A negative size asks for a fixed number of pixels per module.
	return q.Image(-g.moduleSize), nil
}

// PNG returns the QR symbol for code as PNG bytes.
func (g *Generator) PNG(code string) ([]byte, error) {
	img, err := g.Image(code)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode QR png: %w", err)
	}
	return buf.Bytes(), nil
}
