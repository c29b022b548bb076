package diagram

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// PNGExporter rasterises a laid-out graph.
type PNGExporter struct {
	NodeRadius float64
	Padding    float64
	FontSize   float64
}

// NewPNGExporter returns an exporter with default sizes.
func NewPNGExporter() *PNGExporter {
	return &PNGExporter{NodeRadius: 18, Padding: 60, FontSize: 12}
}

func (x *PNGExporter) Format() string {
	return "png"
}

var (
	nodeFill     = colorful.Color{R: 0x42 / 255.0, G: 0x99 / 255.0, B: 0xe1 / 255.0}
	selectedFill = colorful.Color{R: 0xf6 / 255.0, G: 0xad / 255.0, B: 0x55 / 255.0}
	labelColor   = color.RGBA{51, 51, 51, 255}
)

func (x *PNGExporter) Export(g *Graph, w io.Writer) error {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return ErrEmptyGraph
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxX = math.Max(maxX, n.Position.X)
		maxY = math.Max(maxY, n.Position.Y)
	}
	pad := x.Padding
	width := int(maxX-minX+2*pad) + 1
	height := int(maxY-minY+2*pad) + 1
	at := func(n Node) (float64, float64) {
		return n.Position.X - minX + pad, n.Position.Y - minY + pad
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    x.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	// Edges first so nodes sit on top.
	dc.SetLineWidth(2)
	for _, e := range g.Edges() {
		from, ok1 := byID[e.From]
		to, ok2 := byID[e.To]
		if !ok1 || !ok2 {
			continue
		}
		c, err := colorful.Hex(e.Color)
		if err != nil {
			c = KeyColor(e.Key)
		}
		fx, fy := at(from)
		tx, ty := at(to)
		dc.SetColor(c)
		dc.DrawLine(fx, fy, tx, ty)
		dc.Stroke()
		x.drawArrow(dc, fx, fy, tx, ty)
	}

	selected := g.Highlighted()
	for _, n := range nodes {
		cx, cy := at(n)
		fill := nodeFill
		if n.ID == selected {
			fill = selectedFill
		}
		dc.SetColor(fill)
		dc.DrawCircle(cx, cy, x.NodeRadius)
		dc.Fill()

		dc.SetColor(labelColor)
		dc.DrawStringAnchored(n.Label, cx, cy+x.NodeRadius+x.FontSize, 0.5, 0.5)
	}

	return dc.EncodePNG(w)
}

// drawArrow puts an arrowhead where the edge meets the target circle.
func (x *PNGExporter) drawArrow(dc *gg.Context, fx, fy, tx, ty float64) {
	dx, dy := tx-fx, ty-fy
	length := math.Sqrt(dx*dx + dy*dy)
	if length < x.NodeRadius {
		return
	}
	dx /= length
	dy /= length

	tipX := tx - dx*x.NodeRadius
	tipY := ty - dy*x.NodeRadius
	size, spread := 8.0, 0.5

	dc.MoveTo(tipX, tipY)
	dc.LineTo(tipX-size*dx+size*dy*spread, tipY-size*dy-size*dx*spread)
	dc.LineTo(tipX-size*dx-size*dy*spread, tipY-size*dy+size*dx*spread)
	dc.ClosePath()
	dc.Fill()
}
