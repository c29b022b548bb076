package catalog

import "floorlink/internal/domain"

// Grid spreads bulk-created items over the document row by row so that
// imported or discovered items do not all land on the same point.
type Grid struct {
	Origin  domain.Point
	Spacing float64
	Columns int
}

// DefaultGrid starts at (50,50) with 120 unit spacing and 8 columns.
func DefaultGrid() Grid {
	return Grid{Origin: domain.Pt(50, 50), Spacing: 120, Columns: 8}
}

// At returns the i-th cell.
func (g Grid) At(i int) domain.Point {
	cols := g.Columns
	if cols <= 0 {
		cols = 1
	}
	return domain.Point{
		X: g.Origin.X + float64(i%cols)*g.Spacing,
		Y: g.Origin.Y + float64(i/cols)*g.Spacing,
	}
}
