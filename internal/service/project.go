package service

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"log"
	"time"

	"floorlink/internal/codec"
	"floorlink/internal/content"
	"floorlink/internal/domain"
	"floorlink/internal/repository"
)

// LoadContent makes data the active document and starts decoding it. The
// handle is the data's content fingerprint. Progress is reported through
// ContentStatus and EventContentState.
func (s *Session) LoadContent(ctx context.Context, kind domain.ContentKind, name string, page int, data []byte) (domain.ContentRef, error) {
	ref := domain.ContentRef{
		Handle: content.Fingerprint(data),
		Kind:   kind,
		Name:   name,
		Page:   page,
	}
	err := s.Do(ctx, func() error {
		s.store.SetContent(&ref)
		s.document = data
		s.startLoad()
		return nil
	})
	return ref, err
}

// startLoad hands the active document to the viewer. Loop only.
func (s *Session) startLoad() {
	ref := s.store.Get().Content
	if ref == nil || len(s.document) == 0 {
		s.contentSt = content.Status{}
		return
	}
	s.viewer.Load(s.runCtx, content.Source{Ref: *ref, Data: s.document})
	s.applyContentStatus()
}

// ContentStatus returns the content state the session last applied.
func (s *Session) ContentStatus(ctx context.Context) (content.Status, error) {
	var st content.Status
	err := s.Do(ctx, func() error {
		st = s.contentSt
		return nil
	})
	return st, err
}

// WaitContent blocks until the active document has finished loading and
// returns its final status. With no document it returns the idle status.
func (s *Session) WaitContent(ctx context.Context) (content.Status, error) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		st, err := s.ContentStatus(ctx)
		if err != nil || st.State != content.Loading {
			return st, err
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Export returns the whole project: content reference, document bytes and
// items.
func (s *Session) Export(ctx context.Context) (*domain.Project, error) {
	var p *domain.Project
	err := s.Do(ctx, func() error {
		snap := s.store.Get()
		p = &domain.Project{
			Version:  domain.ProjectVersion,
			Content:  snap.Content,
			Document: s.document,
			Items:    snap.Items,
		}
		return nil
	})
	return p, err
}

// Import replaces every item and the content reference at once. An
// invalid project leaves the session untouched.
func (s *Session) Import(ctx context.Context, p *domain.Project) error {
	if p == nil {
		return fmt.Errorf("no project to import")
	}
	return s.Do(ctx, func() error {
		if err := s.store.Replace(p.Items, p.Content); err != nil {
			return fmt.Errorf("import: %w", err)
		}
		s.dragger.Reset()
		s.document = p.Document
		s.startLoad()
		log.Printf("Session: imported %d items", len(p.Items))
		return nil
	})
}

// ImportFrom parses r with the codec for format and imports the result.
func (s *Session) ImportFrom(ctx context.Context, format string, r io.Reader) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	p, err := c.Parse(r)
	if err != nil {
		return fmt.Errorf("parse %s: %w", c.Format(), err)
	}
	return s.Import(ctx, p)
}

// ExportTo writes the project with the codec for format.
func (s *Session) ExportTo(ctx context.Context, format string, w io.Writer) error {
	c, err := codec.ForFormat(format)
	if err != nil {
		return err
	}
	p, err := s.Export(ctx)
	if err != nil {
		return err
	}
	return c.Export(p, w)
}

// ============================================================================
// Repository
// ============================================================================

func (s *Session) repository() (repository.Repository, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("no project repository configured")
	}
	return s.repo, nil
}

// SaveProject stores the current project under name.
func (s *Session) SaveProject(ctx context.Context, name string) error {
	repo, err := s.repository()
	if err != nil {
		return err
	}
	p, err := s.Export(ctx)
	if err != nil {
		return err
	}
	if err := repo.SaveProject(ctx, name, p); err != nil {
		return fmt.Errorf("save project %s: %w", name, err)
	}
	log.Printf("Session: saved project %s (%d items)", name, len(p.Items))
	return nil
}

// LoadProject replaces the session with a stored project.
func (s *Session) LoadProject(ctx context.Context, name string) error {
	repo, err := s.repository()
	if err != nil {
		return err
	}
	p, err := repo.LoadProject(ctx, name)
	if err != nil {
		return fmt.Errorf("load project %s: %w", name, err)
	}
	return s.Import(ctx, p)
}

// ListProjects lists stored projects.
func (s *Session) ListProjects(ctx context.Context) ([]repository.ProjectSummary, error) {
	repo, err := s.repository()
	if err != nil {
		return nil, err
	}
	return repo.ListProjects(ctx)
}

// DeleteProject removes a stored project.
func (s *Session) DeleteProject(ctx context.Context, name string) error {
	repo, err := s.repository()
	if err != nil {
		return err
	}
	return repo.DeleteProject(ctx, name)
}

// ============================================================================
// Rendering
// ============================================================================

// OverlayImage returns the last painted overlay layer.
func (s *Session) OverlayImage() image.Image {
	if img := s.layer.Image(); img != nil {
		return img
	}
	return image.NewRGBA(image.Rect(0, 0, 0, 0))
}

// Render composes the document page (when loaded) and the overlay at the
// current zoom and writes it as PNG.
func (s *Session) Render(ctx context.Context, w io.Writer) error {
	var out *image.RGBA
	err := s.Do(ctx, func() error {
		f := s.frame()
		out = image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
		if page, ok := s.viewer.Page(); ok && s.contentSt.State == content.Ready {
			if err := page.RenderOnto(out, f.Scale); err != nil {
				return fmt.Errorf("render content: %w", err)
			}
		}
		if ov := s.layer.Image(); ov != nil {
			draw.Draw(out, out.Bounds(), ov, image.Point{}, draw.Over)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return png.Encode(w, out)
}
