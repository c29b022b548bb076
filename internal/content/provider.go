// Package content loads the background document that items are placed on.
//
// A Provider turns a source into a Page that reports its size at a scale
// and renders onto a surface. Decoding happens off the event loop; the
// Viewer tracks the single in-flight load and discards any result that was
// superseded or whose viewer was closed before it arrived.
package content

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"image/draw"

	"golang.org/x/crypto/blake2b"

	"floorlink/internal/domain"
)

var (
	// ErrLoadFailed wraps any provider error surfaced by a Viewer.
	ErrLoadFailed = errors.New("failed to load content")
	// ErrUnsupportedKind is returned when no provider handles a kind.
	ErrUnsupportedKind = errors.New("unsupported content kind")
)

// Source is a content reference plus the bytes it points at.
type Source struct {
	Ref  domain.ContentRef
	Data []byte
}

// Page is one renderable page of content.
type Page interface {
	// Size returns the pixel dimensions at scale.
	Size(scale float64) (width, height int)
	// RenderOnto draws the page scaled onto dst starting at its origin.
	RenderOnto(dst draw.Image, scale float64) error
}

// Provider decodes a source into a page.
type Provider interface {
	Open(ctx context.Context, src Source, page int) (Page, error)
}

// Mux dispatches to a provider per content kind.
type Mux struct {
	providers map[domain.ContentKind]Provider
}

// NewMux creates an empty dispatcher.
func NewMux() *Mux {
	return &Mux{providers: make(map[domain.ContentKind]Provider)}
}

// Handle registers p for kind.
func (m *Mux) Handle(kind domain.ContentKind, p Provider) {
	m.providers[kind] = p
}

// Open implements Provider.
func (m *Mux) Open(ctx context.Context, src Source, page int) (Page, error) {
	p, ok := m.providers[src.Ref.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, src.Ref.Kind)
	}
	return p.Open(ctx, src, page)
}

// Fingerprint is the content address of a document: "blake2b-" followed by
// the hex BLAKE2b-256 digest.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return "blake2b-" + hex.EncodeToString(sum[:])
}
