// Package overlay paints item labels and drag handles onto a transparent
// layer that sits above the rendered document.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"floorlink/internal/domain"
	"floorlink/internal/geometry"
)

// Options configures label and handle appearance.
type Options struct {
	HandleSize  float64
	FontSize    float64
	LabelColor  color.Color
	HandleColor color.Color
}

// DefaultOptions returns 20px labels and 20px translucent grey handles.
func DefaultOptions() Options {
	return Options{
		HandleSize:  geometry.DefaultHandleSize,
		FontSize:    20,
		LabelColor:  color.Black,
		HandleColor: color.NRGBA{R: 200, G: 200, B: 200, A: 128},
	}
}

// Frame is everything a paint needs: items in rendering order (with any
// in-flight drag applied), the scale and the surface size in pixels.
type Frame struct {
	Items  []domain.Item
	Scale  float64
	Width  int
	Height int
}

// Renderer draws frames. A Renderer is stateless between paints, so painting
// the same frame twice produces identical pixels.
type Renderer struct {
	opts Options
	face font.Face
}

// NewRenderer parses the embedded Go Regular face at the configured size.
func NewRenderer(opts Options) (*Renderer, error) {
	def := DefaultOptions()
	if opts.HandleSize <= 0 {
		opts.HandleSize = def.HandleSize
	}
	if opts.FontSize <= 0 {
		opts.FontSize = def.FontSize
	}
	if opts.LabelColor == nil {
		opts.LabelColor = def.LabelColor
	}
	if opts.HandleColor == nil {
		opts.HandleColor = def.HandleColor
	}

	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    opts.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	return &Renderer{opts: opts, face: face}, nil
}

// Options returns the effective options.
func (r *Renderer) Options() Options {
	return r.opts
}

// Paint clears a fresh transparent surface and draws every item: the label
// at its scaled document position and the handle square above it.
func (r *Renderer) Paint(f Frame) *image.RGBA {
	w, h := f.Width, f.Height
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	scale := f.Scale
	if scale <= 0 {
		scale = 1
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(color.Transparent)
	dc.Clear()
	dc.SetFontFace(r.face)

	size := r.opts.HandleSize
	for _, item := range f.Items {
		x := item.DocumentPosition.X * scale
		y := item.DocumentPosition.Y * scale

		dc.SetColor(r.opts.LabelColor)
		dc.DrawString(item.Label, x, y)

		dc.SetColor(r.opts.HandleColor)
		dc.DrawRectangle(x, y-size, size, size)
		dc.Fill()
	}

	if img, ok := dc.Image().(*image.RGBA); ok {
		return img
	}
	src := dc.Image()
	img := image.NewRGBA(src.Bounds())
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)
	return img
}
