package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"floorlink/internal/catalog"
	"floorlink/internal/codec"
	"floorlink/internal/config"
	"floorlink/internal/diagram"
	"floorlink/internal/discovery"
	"floorlink/internal/registry"
	"floorlink/internal/repository/sqlite"
	"floorlink/internal/service"
	"floorlink/internal/watcher"
)

func sessionOptions(c *config.Config) service.Options {
	opts := service.DefaultOptions()
	opts.Registry = registry.Options{
		MinZoom:     c.Zoom.Min,
		MaxZoom:     c.Zoom.Max,
		InitialZoom: c.Zoom.Initial,
		Step:        c.Zoom.Step,
	}
	opts.Overlay.HandleSize = c.Overlay.HandleSize
	opts.Overlay.FontSize = c.Overlay.FontSize
	opts.FrameInterval = c.FrameInterval()
	opts.CanvasWidth, opts.CanvasHeight = c.Canvas.Width, c.Canvas.Height
	opts.MaxSurfacePixels = config.Pixels(c.Overlay.MaxMegapixels)
	opts.MaxDocumentPixels = config.Pixels(c.Content.MaxMegapixels)
	opts.Layout = layoutFor(c.Layout)
	return opts
}

func layoutFor(l config.LayoutConfig) diagram.Layout {
	return diagram.LayoutByName(l.Name, l.NodeSpacing, l.RankSpacing)
}

func scanOptions(c *config.Config) []discovery.Option {
	return []discovery.Option{
		discovery.WithPortRange(c.Discovery.Ports),
		discovery.WithServiceDetection(c.Discovery.ServiceDetection),
		discovery.WithTimeout(c.Discovery.Timeout.Duration()),
	}
}

func newSession(c *config.Config, bus *service.EventBus) (*service.Session, error) {
	cat, err := catalog.LoadAll(c.Catalog.Dir)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return service.New(cat, nil, bus, sessionOptions(c))
}

// withSession runs fn against a live session and stops the session when
// fn returns.
func withSession(ctx context.Context, fn func(context.Context, *service.Session) error) error {
	s, err := newSession(cfg, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Run(gctx) })
	g.Go(func() error {
		defer cancel()
		return fn(gctx, s)
	})
	return g.Wait()
}

// withRepository is withSession with the configured project database
// attached.
func withRepository(ctx context.Context, fn func(context.Context, *service.Session) error) error {
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()

	return withSession(ctx, func(ctx context.Context, s *service.Session) error {
		s.SetRepository(repo)
		return fn(ctx, s)
	})
}

// openProjectFile imports path into s. A missing file leaves the session
// empty so commands can create new projects.
func openProjectFile(ctx context.Context, s *service.Session, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := watcher.Reload(ctx, s, path); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := s.WaitContent(ctx); err != nil {
		return err
	}
	return nil
}

// saveProjectFile writes the session to path through a temp file so a
// watching server never reads a half-written project.
func saveProjectFile(ctx context.Context, s *service.Session, path string) error {
	p, err := s.Export(ctx)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".floorlink-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := codec.ForPath(path).Export(p, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
