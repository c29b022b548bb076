package service

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"golang.org/x/crypto/blake2b"

	"floorlink/internal/catalog"
	"floorlink/internal/content"
	"floorlink/internal/diagram"
	"floorlink/internal/domain"
	"floorlink/internal/editor"
	"floorlink/internal/interact"
	"floorlink/internal/overlay"
	"floorlink/internal/registry"
	"floorlink/internal/repository"
)

// ErrStopped is returned by Do once the event loop has exited.
var ErrStopped = errors.New("session is not running")

// Options configures a Session.
type Options struct {
	Registry registry.Options
	Overlay  overlay.Options
	// Layout positions diagram nodes; nil selects the layered layout.
	Layout diagram.Layout
	// FrameInterval is the drag repaint throttle.
	FrameInterval time.Duration
	// CanvasWidth and CanvasHeight size the overlay (at scale 1) while no
	// content is loaded.
	CanvasWidth  int
	CanvasHeight int
	// MaxDocumentPixels bounds raster documents accepted by the default
	// provider.
	MaxDocumentPixels int
	// MaxSurfacePixels bounds the overlay and render surface. Larger
	// surfaces are cropped from the top-left corner; the scale is kept so
	// painted items stay aligned with hit testing.
	MaxSurfacePixels int
}

// DefaultMaxSurfacePixels is 64 megapixels, 256 MB of RGBA.
const DefaultMaxSurfacePixels = 64_000_000

// DefaultOptions returns 60 fps frames on a 1200x800 canvas.
func DefaultOptions() Options {
	return Options{
		Registry:      registry.DefaultOptions(),
		Overlay:       overlay.DefaultOptions(),
		FrameInterval: interact.DefaultFrameInterval,
		CanvasWidth:   1200,
		CanvasHeight:  800,

		MaxDocumentPixels: content.DefaultMaxPixels,
		MaxSurfacePixels:  DefaultMaxSurfacePixels,
	}
}

type command struct {
	fn   func() error
	done chan error
}

// Session is the single-threaded editing session. Construct it with New,
// start Run on its own goroutine and submit work through Do.
type Session struct {
	opts Options

	cmds        chan command
	contentWake chan struct{}
	stopped     chan struct{}
	runCtx      context.Context

	store   *registry.Store
	catalog *catalog.Catalog
	graph   *diagram.Graph
	recon   *diagram.Reconciler
	view    *diagram.View
	dragger *interact.Dragger
	layer   *overlay.Layer
	editor  *editor.Session
	viewer  *content.Viewer
	repo    repository.Repository
	bus     *EventBus

	origin      domain.Point
	document    []byte
	contentSt   content.Status
	fingerprint string
	dirty       bool
	unsubscribe func()
}

// New wires a session. provider may be nil, in which case only raster
// images can be loaded as content.
func New(cat *catalog.Catalog, provider content.Provider, bus *EventBus, opts Options) (*Session, error) {
	def := DefaultOptions()
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = def.FrameInterval
	}
	if opts.CanvasWidth <= 0 || opts.CanvasHeight <= 0 {
		opts.CanvasWidth, opts.CanvasHeight = def.CanvasWidth, def.CanvasHeight
	}
	if opts.MaxDocumentPixels <= 0 {
		opts.MaxDocumentPixels = def.MaxDocumentPixels
	}
	if opts.MaxSurfacePixels <= 0 {
		opts.MaxSurfacePixels = def.MaxSurfacePixels
	}
	if opts.Layout == nil {
		opts.Layout = diagram.NewLayeredLayout()
	}
	if provider == nil {
		mux := content.NewMux()
		mux.Handle(domain.ContentImage, content.RasterProvider{MaxPixels: opts.MaxDocumentPixels})
		provider = mux
	}
	if bus == nil {
		bus = NewEventBus()
	}

	renderer, err := overlay.NewRenderer(opts.Overlay)
	if err != nil {
		return nil, fmt.Errorf("overlay renderer: %w", err)
	}

	s := &Session{
		opts:        opts,
		cmds:        make(chan command),
		contentWake: make(chan struct{}, 1),
		stopped:     make(chan struct{}),
		store:       registry.New(opts.Registry),
		catalog:     cat,
		graph:       diagram.NewGraph(),
		bus:         bus,
	}
	s.recon = diagram.NewReconciler(s.graph, opts.Layout)
	s.view = diagram.NewView(s.graph, s.store)
	s.layer = overlay.NewLayer(renderer, s.frame)
	s.dragger = interact.NewDragger(s.store, s.layer, renderer.Options().HandleSize)
	s.editor = editor.NewSession(s.store)
	s.viewer = content.NewViewer(provider, s.wakeContent)
	s.unsubscribe = s.store.Subscribe(s.onRegistryEvent)
	return s, nil
}

// SetRepository attaches the project store used by SaveProject and
// LoadProject.
func (s *Session) SetRepository(repo repository.Repository) {
	s.repo = repo
}

// Events returns the session's event bus.
func (s *Session) Events() *EventBus {
	return s.bus
}

// Catalog returns the item-type catalog.
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// Run is the event loop. It must be called exactly once and returns when
// ctx is cancelled, after tearing down the content viewer.
func (s *Session) Run(ctx context.Context) error {
	s.runCtx = ctx
	ticker := time.NewTicker(s.opts.FrameInterval)
	defer ticker.Stop()
	defer s.shutdown()

	log.Printf("Session: event loop started (frame interval %s)", s.opts.FrameInterval)
	s.settle()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Session: event loop stopping")
			return nil

		case cmd := <-s.cmds:
			err := cmd.fn()
			s.settle()
			cmd.done <- err

		case <-s.contentWake:
			s.applyContentStatus()
			s.settle()

		case <-ticker.C:
			s.tick()
		}
	}
}

// tick paints a pending drag frame and tells subscribers the dragged item
// moved. The registry itself only changes when the drag commits.
func (s *Session) tick() bool {
	if !s.layer.Tick() {
		return false
	}
	if id, ok := s.dragger.Target(); ok {
		s.bus.Publish(Event{Type: EventDragMoved, Payload: map[string]interface{}{
			"item_id": id,
			"moves":   s.dragger.Moves(),
		}})
	}
	return true
}

// Do runs fn on the event loop and waits for it. State the loop owns may
// only be touched from inside fn.
func (s *Session) Do(ctx context.Context, fn func() error) error {
	cmd := command{fn: fn, done: make(chan error, 1)}
	select {
	case s.cmds <- cmd:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) shutdown() {
	close(s.stopped)
	s.viewer.Close()
	s.unsubscribe()
}

// onRegistryEvent runs synchronously inside registry mutations.
func (s *Session) onRegistryEvent(ev registry.Event) {
	// Layout write-back does not affect the overlay.
	if !(ev.Type == registry.EventItemUpdated && ev.Changed == domain.MaskPosition) {
		s.dirty = true
	}
	s.bus.Publish(Event{Type: eventTypeFor(ev.Type), Payload: ev})
}

func eventTypeFor(t registry.EventType) EventType {
	switch t {
	case registry.EventItemAdded:
		return EventItemAdded
	case registry.EventItemRemoved:
		return EventItemRemoved
	case registry.EventSelectionChanged:
		return EventSelectionChanged
	case registry.EventZoomChanged:
		return EventZoomChanged
	case registry.EventContentChanged:
		return EventContentChanged
	case registry.EventReplaced:
		return EventProjectReplaced
	}
	return EventItemUpdated
}

// settle brings the derived views in line with the registry after a
// command: diagram, editor binding and overlay, in that order.
func (s *Session) settle() {
	snap := s.store.Get()

	if fp := diagramFingerprint(snap.Items); fp != s.fingerprint {
		s.fingerprint = fp
		res := s.recon.Reconcile(snap.Items)
		s.writeBack(snap.Items, res.Positions)
		if res.Structural() {
			s.bus.Publish(Event{Type: EventDiagramUpdated, Payload: map[string]int{
				"nodes": len(s.graph.Nodes()),
				"edges": len(s.graph.Edges()),
			}})
		}
	}

	if snap.Selected != s.editor.Target() {
		s.editor.Bind(snap.Selected)
		s.graph.Highlight(snap.Selected)
	}

	if s.dirty {
		s.dirty = false
		s.layer.Invalidate()
	}
}

// writeBack copies laid-out diagram positions into the registry.
func (s *Session) writeBack(items []domain.Item, pos map[string]domain.Point) {
	for _, item := range items {
		p, ok := pos[item.ID]
		if !ok || p == item.Position {
			continue
		}
		s.store.Update(domain.ItemPatch{ID: item.ID, Position: &p})
	}
}

// diagramFingerprint hashes what the diagram displays: ids, labels, types
// and properties. Both positions are left out so drags and layout
// write-back never trigger a pass.
func diagramFingerprint(items []domain.Item) string {
	h, _ := blake2b.New256(nil)
	var n [8]byte
	write := func(s string) {
		binary.LittleEndian.PutUint64(n[:], uint64(len(s)))
		h.Write(n[:])
		h.Write([]byte(s))
	}
	for _, item := range items {
		write(item.ID)
		write(item.Label)
		write(item.Type)
		binary.LittleEndian.PutUint64(n[:], uint64(len(item.Properties)))
		h.Write(n[:])
		for _, p := range item.Properties {
			write(p.Key)
			write(p.Value)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// frame is the overlay source. It runs on the event loop.
func (s *Session) frame() overlay.Frame {
	snap := s.store.Get()
	w, h := s.canvasSize()
	width, height := fitSurface(float64(w)*snap.Zoom, float64(h)*snap.Zoom, s.opts.MaxSurfacePixels)
	return overlay.Frame{
		Items:  s.dragger.Overlay(snap.Items),
		Scale:  snap.Zoom,
		Width:  width,
		Height: height,
	}
}

// fitSurface shrinks a w x h surface, keeping its aspect ratio, until it
// holds at most limit pixels.
func fitSurface(w, h float64, limit int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if limit > 0 && w*h > float64(limit) {
		k := math.Sqrt(float64(limit) / (w * h))
		w, h = math.Floor(w*k), math.Floor(h*k)
	}
	return int(w), int(h)
}

// canvasSize is the document size at scale 1, or the configured canvas
// while no content is ready.
func (s *Session) canvasSize() (int, int) {
	if s.contentSt.State == content.Ready && s.contentSt.Width > 0 && s.contentSt.Height > 0 {
		return s.contentSt.Width, s.contentSt.Height
	}
	return s.opts.CanvasWidth, s.opts.CanvasHeight
}

func (s *Session) viewport() interact.Viewport {
	return interact.Viewport{Origin: s.origin, Scale: s.store.Zoom()}
}

// wakeContent is the viewer callback. It runs on loader goroutines and
// only nudges the loop, which then reads the viewer's current status.
func (s *Session) wakeContent(content.Status) {
	select {
	case s.contentWake <- struct{}{}:
	default:
	}
}

func (s *Session) applyContentStatus() {
	st := s.viewer.Status()
	ref := s.store.Get().Content
	if st.State != content.Idle && (ref == nil || ref.Handle != st.Ref.Handle) {
		// The registry moved on to other content.
		return
	}
	if st.State == s.contentSt.State && st.Ref == s.contentSt.Ref {
		return
	}
	s.contentSt = st
	s.dirty = true

	payload := map[string]interface{}{
		"state":  st.State.String(),
		"handle": st.Ref.Handle,
		"width":  st.Width,
		"height": st.Height,
	}
	if st.Err != nil {
		payload["error"] = st.Err.Error()
		log.Printf("Session: content %s failed: %v", st.Ref.Name, st.Err)
	} else {
		log.Printf("Session: content %s %s", st.Ref.Name, st.State)
	}
	s.bus.Publish(Event{Type: EventContentState, Payload: payload})
}
