package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"floorlink/internal/handler"
	"floorlink/internal/hub"
	"floorlink/internal/repository/sqlite"
	"floorlink/internal/service"
	"floorlink/internal/ui"
	"floorlink/internal/watcher"
)

//go:embed web/*
var webFS embed.FS

var (
	serveAddr    string
	serveDB      string
	serveWatch   string
	serveProject string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interactive editor",
	Long: `Serve the editor UI and its HTTP API. Registry changes stream to browsers
over Server-Sent Events on /events; pointer drags use the /ws/pointer socket.
With --watch the given project file is loaded and re-imported whenever it
changes on disk.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "SQLite database path (overrides config)")
	serveCmd.Flags().StringVar(&serveWatch, "watch", "", "project file to load and reload on change")
	serveCmd.Flags().StringVar(&serveProject, "project", "", "stored project to load at startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveDB != "" {
		cfg.Database.Path = serveDB
	}

	ui.Banner("editor server")
	fmt.Println(ui.Subtle.Sprint(cfg.Summary()))
	fmt.Println()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	bus := service.NewEventBus()
	session, err := newSession(cfg, bus)
	if err != nil {
		return err
	}
	session.SetRepository(repo)

	sseHub := hub.New()
	events := make(chan service.Event, 100)
	unsubscribe := bus.Subscribe(events)
	defer unsubscribe()

	api := handler.New(session, sseHub)
	api.SetScanDefaults(scanOptions(cfg)...)
	mux := api.Routes()

	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		return fmt.Errorf("embedded web content: %w", err)
	}
	mux.Handle("/", http.FileServer(http.FS(webContent)))

	// No write timeout: SSE streams and discovery scans are long-lived.
	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     handler.Chain(mux, handler.Recover, handler.CORS, handler.Logger),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return session.Run(gctx) })
	g.Go(func() error {
		sseHub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-events:
				sseHub.Broadcast(string(ev.Type), ev.Payload)
			}
		}
	})

	if serveProject != "" {
		g.Go(func() error {
			if err := session.LoadProject(gctx, serveProject); err != nil {
				return err
			}
			ui.Success("Loaded project %s", serveProject)
			return nil
		})
	}
	if serveWatch != "" {
		g.Go(func() error {
			err := watcher.WatchProject(gctx, session, serveWatch, cfg.Watch.Debounce.Duration())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Println("Server stopped")
	return err
}
