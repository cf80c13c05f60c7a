package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trailview/internal/api"
	"trailview/pkg/config"
	"trailview/pkg/core"
	"trailview/pkg/display"
	"trailview/pkg/logging"
	"trailview/pkg/model"
	"trailview/pkg/playback"
	"trailview/pkg/probe"
	"trailview/pkg/scene"
	"trailview/pkg/store"
	"trailview/pkg/tracker"
	"trailview/pkg/version"
)

const defaultConfigPath = "configs/trailview.yaml"

var (
	configPath = flag.String("config", defaultConfigPath, "Path to the config file")
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	console    = flag.Bool("console", false, "Show playback in the terminal in addition to the web UI")
)

func main() {
	flag.Parse()

	// A missing .env file is normal; it only supplies optional overrides.
	_ = godotenv.Load()

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated:", *configPath)
		return
	}

	if err := run(context.Background(), *configPath, *console); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, useConsole bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	useConsole = useConsole || appCfg.Console.Enabled

	cleanupLogs, err := logging.Init(&appCfg.Log, useConsole)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("Trailview Started", "version", version.Version)

	// Startup Verification
	results := probe.Run(ctx, startupProbes(appCfg))
	if err := probe.AnalyzeResults(results); err != nil {
		return fmt.Errorf("startup checks failed: %w", err)
	}

	samples, closeSource, err := loadSamples(ctx, &appCfg.Source)
	if err != nil {
		return err
	}
	defer closeSource()

	tr := tracker.New()
	tr.TrackAccepted(tracker.ComponentSource, len(samples))

	// Scene and stream are per-session state, cleared on every activation.
	sc := scene.New()
	hub := api.NewStreamHub(api.DefaultStreamBuffer, tr)
	defer hub.Close()

	viewer := core.NewViewer(samples, playback.WithInterval(appCfg.Playback.Interval.Std()))
	viewer.AddSink(sc)
	viewer.AddSink(hub)
	viewer.AddSink(playback.SinkFunc(func(playback.Snapshot) {
		tr.TrackAccepted(tracker.ComponentPlayback, 1)
	}))
	viewer.AddResettable(core.ResetFunc(func(context.Context) {
		sc.Reset()
		tr.Reset(tracker.ComponentPlayback)
	}))
	viewer.AddResettable(hub)

	var con *display.Console
	if useConsole {
		screen, err := display.NewTerminalScreen()
		if err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}
		defer screen.Fini()

		con = display.NewConsole(screen)
		con.Restart = func() {
			if _, err := viewer.Activate(ctx); err != nil {
				slog.Error("Failed to restart playback", "error", err)
			}
		}
		viewer.AddSink(con)
	}

	if _, err := viewer.Activate(ctx); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	defer viewer.Deactivate()

	if con != nil {
		go func() {
			if err := con.Run(ctx); err != nil {
				slog.Error("Console failed", "error", err)
			}
			// Leaving the console ends the application.
			cancel()
		}()
	}

	return runServer(ctx, appCfg, viewer, sc, hub, tr)
}

func startupProbes(cfg *config.Config) []probe.Probe {
	return []probe.Probe{
		{
			Name:     "Server Address",
			Check:    probe.PortAvailable(cfg.Server.Address),
			Critical: true,
		},
		{
			Name:     "Log Directory",
			Check:    probe.DirWritable(cfg.Log.Server.Path),
			Critical: true,
		},
		{
			// An unreadable recording plays back as an empty store.
			Name:     "Sample Source",
			Check:    probe.FileReadable(cfg.Source.Path),
			Critical: false,
		},
	}
}

func loadSamples(ctx context.Context, cfg *config.SourceConfig) ([]model.Sample, func(), error) {
	src, closeSource, err := store.FromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to configure sample source: %w", err)
	}
	return store.Load(ctx, src, slog.Default()), closeSource, nil
}

func runServer(ctx context.Context, cfg *config.Config, viewer *core.Viewer, sc *scene.Scene, hub *api.StreamHub, tr *tracker.Tracker) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server.Address,
		api.NewTelemetryHandler(viewer),
		api.NewSceneHandler(sc),
		hub,
		api.NewPlaybackHandler(ctx, viewer),
		api.NewStatsHandler(tr, hub, viewer),
		shutdownFunc,
	)

	srv.Handler = loggingMiddleware(srv.Handler)
	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
