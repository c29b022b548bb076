package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	// Decoders registered with image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	xdraw "golang.org/x/image/draw"
)

// DefaultMaxPixels caps decoded raster documents at 50 megapixels.
const DefaultMaxPixels = 50_000_000

// ErrTooLarge is returned for images whose header declares more pixels than
// the provider accepts.
var ErrTooLarge = errors.New("image too large")

// RasterProvider decodes single-page raster images (PNG, JPEG, GIF, BMP,
// TIFF, WebP). MaxPixels bounds width*height; zero means DefaultMaxPixels.
type RasterProvider struct {
	MaxPixels int
}

func (p RasterProvider) Open(ctx context.Context, src Source, page int) (Page, error) {
	if page != 0 {
		return nil, fmt.Errorf("raster images have a single page, got page %d", page)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(src.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src.Ref.Name, err)
	}
	limit := p.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(limit) {
		return nil, fmt.Errorf("%w: %s is %dx%d, limit is %d pixels",
			ErrTooLarge, src.Ref.Name, cfg.Width, cfg.Height, limit)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src.Ref.Name, err)
	}
	return &RasterPage{img: img, format: format}, nil
}

// RasterPage is a decoded image.
type RasterPage struct {
	img    image.Image
	format string
}

// Format returns the decoder name, e.g. "png".
func (p *RasterPage) Format() string {
	return p.format
}

func (p *RasterPage) Size(scale float64) (int, int) {
	b := p.img.Bounds()
	return int(math.Round(float64(b.Dx()) * scale)), int(math.Round(float64(b.Dy()) * scale))
}

func (p *RasterPage) RenderOnto(dst draw.Image, scale float64) error {
	w, h := p.Size(scale)
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid scale %g", scale)
	}
	rect := image.Rect(0, 0, w, h).Add(dst.Bounds().Min)
	xdraw.CatmullRom.Scale(dst, rect, p.img, p.img.Bounds(), xdraw.Over, nil)
	return nil
}
