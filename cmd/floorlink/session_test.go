package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"floorlink/internal/config"
	"floorlink/internal/diagram"
	"floorlink/internal/domain"
	"floorlink/internal/service"
)

func TestSessionOptions(t *testing.T) {
	c := config.DefaultConfig()
	c.Zoom.Max = 8
	c.Overlay.FrameRate = 30
	c.Layout.Name = "grid"
	c.Layout.NodeSpacing = 90
	c.Content.MaxMegapixels = 2.5

	opts := sessionOptions(c)
	if opts.Registry.MaxZoom != 8 || opts.Registry.Step != 0.1 {
		t.Errorf("unexpected registry options %+v", opts.Registry)
	}
	if opts.MaxDocumentPixels != 2_500_000 || opts.MaxSurfacePixels != 64_000_000 {
		t.Errorf("pixel caps = %d/%d", opts.MaxDocumentPixels, opts.MaxSurfacePixels)
	}
	if opts.FrameInterval != time.Second/30 {
		t.Errorf("FrameInterval = %s, want 1/30s", opts.FrameInterval)
	}
	grid, ok := opts.Layout.(*diagram.GridLayout)
	if !ok || grid.Spacing != 90 {
		t.Errorf("expected 90 unit grid layout, got %#v", opts.Layout)
	}

	c.Layout.Name = "layered"
	if _, ok := sessionOptions(c).Layout.(*diagram.LayeredLayout); !ok {
		t.Error("expected layered layout")
	}
}

func TestProjectFileRoundTrip(t *testing.T) {
	cfg = config.DefaultConfig()
	cfg.Overlay.FrameRate = 1
	path := filepath.Join(t.TempDir(), "office.yaml")
	ctx := context.Background()

	err := withSession(ctx, func(ctx context.Context, s *service.Session) error {
		if err := openProjectFile(ctx, s, path); err != nil {
			return err
		}
		if _, err := s.Place(ctx, "router", domain.Pt(10, 20)); err != nil {
			return err
		}
		return saveProjectFile(ctx, s, path)
	})
	if err != nil {
		t.Fatalf("first session: %v", err)
	}

	err = withSession(ctx, func(ctx context.Context, s *service.Session) error {
		if err := openProjectFile(ctx, s, path); err != nil {
			return err
		}
		snap, err := s.Snapshot(ctx)
		if err != nil {
			return err
		}
		item, ok := snap.Lookup("router-1")
		if !ok || item.DocumentPosition != domain.Pt(10, 20) {
			t.Errorf("expected router-1 at (10,20), got %+v", snap.Items)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("second session: %v", err)
	}
}

func TestProjectName(t *testing.T) {
	tests := map[string]string{
		"office.yaml":          "office",
		"/srv/plans/site.json": "site",
		"backup.project.yaml":  "backup",
		"-":                    "imported",
		"noext":                "noext",
	}
	for in, want := range tests {
		if got := projectName(in); got != want {
			t.Errorf("projectName(%q) = %q, want %q", in, got, want)
		}
	}
}
