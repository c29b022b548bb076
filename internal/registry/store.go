package registry

import (
	"errors"
	"math"

	"floorlink/internal/domain"
)

// ErrNotFound is returned when an item id does not resolve.
var ErrNotFound = errors.New("item not found")

// Options configures a Store.
type Options struct {
	MinZoom     float64
	MaxZoom     float64
	InitialZoom float64
	Step        float64
}

// DefaultOptions returns the zoom range [0.5, 4] starting at 1.
func DefaultOptions() Options {
	return Options{MinZoom: DefaultMinZoom, MaxZoom: DefaultMaxZoom, InitialZoom: 1, Step: DefaultZoomStep}
}

type subscription struct {
	id int
	fn Listener
}

// Store is the in-memory Registry. It is not safe for concurrent use; the
// owning session confines it to a single goroutine.
type Store struct {
	opts      Options
	items     map[string]domain.Item
	order     []string
	selected  string
	zoom      float64
	content   *domain.ContentRef
	listeners []subscription
	nextSub   int
}

var _ Registry = (*Store)(nil)

// New creates an empty store.
func New(opts Options) *Store {
	if opts.MinZoom <= 0 {
		opts.MinZoom = DefaultMinZoom
	}
	if opts.MaxZoom < opts.MinZoom {
		opts.MaxZoom = math.Max(DefaultMaxZoom, opts.MinZoom)
	}
	if opts.InitialZoom == 0 {
		opts.InitialZoom = 1
	}
	if opts.Step <= 0 {
		opts.Step = DefaultZoomStep
	}
	s := &Store{
		opts:  opts,
		items: make(map[string]domain.Item),
	}
	s.zoom = s.clamp(opts.InitialZoom)
	return s
}

// Get returns a deep copy of the current state with items in insertion
// (rendering) order.
func (s *Store) Get() domain.Snapshot {
	snap := domain.Snapshot{
		Items:    make([]domain.Item, 0, len(s.order)),
		Selected: s.selected,
		Zoom:     s.zoom,
	}
	for _, id := range s.order {
		snap.Items = append(snap.Items, s.items[id].Clone())
	}
	if s.content != nil {
		ref := *s.content
		snap.Content = &ref
	}
	return snap
}

// Item returns a copy of a single item.
func (s *Store) Item(id string) (domain.Item, error) {
	item, ok := s.items[id]
	if !ok {
		return domain.Item{}, ErrNotFound
	}
	return item.Clone(), nil
}

// Len returns the number of items.
func (s *Store) Len() int {
	return len(s.order)
}

func (s *Store) Add(item domain.Item) bool {
	if item.ID == "" {
		return false
	}
	if _, exists := s.items[item.ID]; exists {
		return false
	}
	s.items[item.ID] = item.Clone()
	s.order = append(s.order, item.ID)
	s.notify(Event{Type: EventItemAdded, ItemID: item.ID})
	return true
}

func (s *Store) Update(patch domain.ItemPatch) bool {
	current, ok := s.items[patch.ID]
	if !ok {
		return false
	}
	s.items[patch.ID] = patch.Apply(current)
	s.notify(Event{Type: EventItemUpdated, ItemID: patch.ID, Changed: patch.Mask()})
	return true
}

func (s *Store) Remove(id string) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	deselect := s.selected == id
	if deselect {
		s.selected = ""
	}
	s.notify(Event{Type: EventItemRemoved, ItemID: id})
	if deselect {
		s.notify(Event{Type: EventSelectionChanged})
	}
	return true
}

func (s *Store) Select(id string) {
	if s.selected == id {
		return
	}
	s.selected = id
	s.notify(Event{Type: EventSelectionChanged, ItemID: id})
}

// Selected returns the selected id, or "".
func (s *Store) Selected() string {
	return s.selected
}

func (s *Store) SetZoom(zoom float64) float64 {
	z := s.clamp(zoom)
	if z != s.zoom {
		s.zoom = z
		s.notify(Event{Type: EventZoomChanged})
	}
	return s.zoom
}

// Zoom returns the current zoom factor.
func (s *Store) Zoom() float64 {
	return s.zoom
}

// ZoomIn raises the zoom by one step.
func (s *Store) ZoomIn() float64 {
	return s.SetZoom(roundStep(s.zoom + s.opts.Step))
}

// ZoomOut lowers the zoom by one step.
func (s *Store) ZoomOut() float64 {
	return s.SetZoom(roundStep(s.zoom - s.opts.Step))
}

func (s *Store) SetContent(ref *domain.ContentRef) {
	if ref != nil {
		cp := *ref
		ref = &cp
	}
	s.content = ref
	s.notify(Event{Type: EventContentChanged})
}

func (s *Store) Replace(items []domain.Item, ref *domain.ContentRef) error {
	p := domain.Project{Items: items}
	if err := p.Validate(); err != nil {
		return err
	}

	s.items = make(map[string]domain.Item, len(items))
	s.order = make([]string, 0, len(items))
	for _, item := range items {
		s.items[item.ID] = item.Clone()
		s.order = append(s.order, item.ID)
	}
	if ref != nil {
		cp := *ref
		ref = &cp
	}
	s.content = ref
	s.selected = ""
	s.notify(Event{Type: EventReplaced})
	return nil
}

func (s *Store) Subscribe(l Listener) func() {
	s.nextSub++
	id := s.nextSub
	s.listeners = append(s.listeners, subscription{id: id, fn: l})
	return func() {
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify(ev Event) {
	// Listeners may subscribe or unsubscribe while being notified.
	subs := make([]subscription, len(s.listeners))
	copy(subs, s.listeners)
	for _, sub := range subs {
		sub.fn(ev)
	}
}

func (s *Store) clamp(z float64) float64 {
	if math.IsNaN(z) {
		return s.zoom
	}
	return math.Min(s.opts.MaxZoom, math.Max(s.opts.MinZoom, z))
}

// roundStep trims float drift so repeated steps land on exact decimals.
func roundStep(z float64) float64 {
	return math.Round(z*1e6) / 1e6
}
