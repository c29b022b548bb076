package content

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"floorlink/internal/domain"
)

// State is the viewer's load state.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "idle"
}

// Status is a snapshot of the viewer. Width and Height are at scale 1.
type Status struct {
	State  State
	Ref    domain.ContentRef
	Width  int
	Height int
	Err    error
}

// Viewer owns at most one in-flight load. Each Load bumps a generation; a
// completing load applies its result only if its generation is still
// current and the viewer is open.
type Viewer struct {
	provider Provider
	onChange func(Status)

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
	status Status
	page   Page
}

// NewViewer creates an idle viewer. onChange, if set, is called after every
// applied state change, outside the viewer's lock.
func NewViewer(p Provider, onChange func(Status)) *Viewer {
	return &Viewer{provider: p, onChange: onChange}
}

// Load starts decoding src, superseding any load in progress. The page
// index comes from src.Ref.Page.
func (v *Viewer) Load(ctx context.Context, src Source) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	if v.cancel != nil {
		v.cancel()
	}
	v.gen++
	gen := v.gen
	loadCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	done := make(chan struct{})
	v.done = done
	old := v.page
	v.page = nil
	v.status = Status{State: Loading, Ref: src.Ref}
	st := v.status
	v.mu.Unlock()

	release(old)
	v.emit(st)
	go v.run(loadCtx, gen, src, done)
}

func (v *Viewer) run(ctx context.Context, gen uint64, src Source, done chan struct{}) {
	defer close(done)

	page, err := v.provider.Open(ctx, src, src.Ref.Page)

	v.mu.Lock()
	if v.closed || v.gen != gen {
		v.mu.Unlock()
		release(page)
		log.Printf("content: discarded superseded load of %s", src.Ref.Handle)
		return
	}
	v.cancel = nil
	if err != nil {
		v.status = Status{State: Failed, Ref: src.Ref, Err: fmt.Errorf("%w: %w", ErrLoadFailed, err)}
	} else {
		w, h := page.Size(1)
		v.page = page
		v.status = Status{State: Ready, Ref: src.Ref, Width: w, Height: h}
	}
	st := v.status
	v.mu.Unlock()

	if st.Err != nil {
		log.Printf("content: load of %s failed: %v", src.Ref.Handle, st.Err)
	}
	v.emit(st)
}

// Status returns the current status.
func (v *Viewer) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// Page returns the loaded page when Ready.
func (v *Viewer) Page() (Page, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page, v.page != nil && v.status.State == Ready
}

// Wait blocks until the current load settles or ctx ends.
func (v *Viewer) Wait(ctx context.Context) (Status, error) {
	for {
		v.mu.Lock()
		done, st := v.done, v.status
		v.mu.Unlock()
		if st.State != Loading || done == nil {
			return st, nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
}

// Close tears the viewer down. Loads still running are cancelled and their
// results dropped.
func (v *Viewer) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.gen++
	if v.cancel != nil {
		v.cancel()
	}
	page := v.page
	v.page = nil
	v.status = Status{}
	v.mu.Unlock()
	release(page)
}

func (v *Viewer) emit(st Status) {
	if v.onChange != nil {
		v.onChange(st)
	}
}

func release(p Page) {
	if c, ok := p.(io.Closer); ok {
		_ = c.Close()
	}
}
