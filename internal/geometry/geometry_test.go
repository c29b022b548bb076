package geometry

import (
	"testing"

	"floorlink/internal/domain"
)

func TestToDocumentSpace(t *testing.T) {
	tests := []struct {
		name   string
		screen domain.Point
		origin domain.Point
		scale  float64
		want   domain.Point
	}{
		{"identity", domain.Pt(50, 60), domain.Pt(0, 0), 1, domain.Pt(50, 60)},
		{"offset origin", domain.Pt(150, 160), domain.Pt(100, 100), 1, domain.Pt(50, 60)},
		{"zoomed in", domain.Pt(100, 120), domain.Pt(0, 0), 2, domain.Pt(50, 60)},
		{"zoomed out", domain.Pt(25, 30), domain.Pt(0, 0), 0.5, domain.Pt(50, 60)},
		{"zero scale treated as one", domain.Pt(10, 10), domain.Pt(0, 0), 0, domain.Pt(10, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDocumentSpace(tt.screen, tt.origin, tt.scale)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if back := ToScreenSpace(got, tt.origin, tt.scale); tt.scale > 0 && back != tt.screen {
				t.Errorf("round trip got %v, want %v", back, tt.screen)
			}
		})
	}
}

func TestHitTest(t *testing.T) {
	items := []domain.Item{
		{ID: "a", DocumentPosition: domain.Pt(100, 100)},
	}

	tests := []struct {
		name string
		p    domain.Point
		hit  bool
	}{
		{"anchor corner", domain.Pt(100, 100), true},
		{"top left corner", domain.Pt(100, 80), true},
		{"top right corner", domain.Pt(120, 80), true},
		{"bottom right corner", domain.Pt(120, 100), true},
		{"centre", domain.Pt(110, 90), true},
		{"just right", domain.Pt(120.01, 90), false},
		{"just below", domain.Pt(110, 100.01), false},
		{"just above", domain.Pt(110, 79.99), false},
		{"just left", domain.Pt(99.99, 90), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := HitTest(tt.p, items, DefaultHandleSize)
			if ok != tt.hit {
				t.Fatalf("HitTest(%v) hit=%v, want %v", tt.p, ok, tt.hit)
			}
			if ok && id != "a" {
				t.Errorf("expected a, got %s", id)
			}
		})
	}

	t.Run("topmost wins on overlap", func(t *testing.T) {
		overlapping := []domain.Item{
			{ID: "bottom", DocumentPosition: domain.Pt(100, 100)},
			{ID: "top", DocumentPosition: domain.Pt(105, 105)},
		}
		id, ok := HitTest(domain.Pt(110, 95), overlapping, DefaultHandleSize)
		if !ok || id != "top" {
			t.Errorf("expected top, got %q (%v)", id, ok)
		}
	})

	t.Run("empty registry", func(t *testing.T) {
		if _, ok := HitTest(domain.Pt(0, 0), nil, DefaultHandleSize); ok {
			t.Error("expected no hit")
		}
	})
}
