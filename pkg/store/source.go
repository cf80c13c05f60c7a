// Package store builds the immutable sample store a playback session replays.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"trailview/pkg/config"
	"trailview/pkg/db"
	"trailview/pkg/model"
)

// Source produces the ordered samples of one recording.
type Source interface {
	// Name describes the source for logs and probes.
	Name() string
	// Load returns the samples in recording order.
	Load(ctx context.Context) ([]model.Sample, error)
}

// Load builds the sample store from src.
// A missing or unreadable source is not an error: the store is simply empty, and the
// failure is reported only to the logger.
func Load(ctx context.Context, src Source, logger *slog.Logger) []model.Sample {
	if logger == nil {
		logger = slog.Default()
	}
	if src == nil {
		logger.Warn("No sample source configured, playback will be empty")
		return []model.Sample{}
	}

	samples, err := src.Load(ctx)
	if err != nil {
		logger.Warn("Sample source unavailable, playback will be empty", "source", src.Name(), "error", err)
		return []model.Sample{}
	}
	if samples == nil {
		samples = []model.Sample{}
	}

	logger.Info("Sample store loaded", "source", src.Name(), "samples", len(samples))
	return samples
}

// FromConfig builds the configured source. The returned close function releases any
// database handle and is never nil.
func FromConfig(cfg *config.SourceConfig) (Source, func(), error) {
	noop := func() {}

	switch cfg.Kind {
	case "", config.SourceCSV:
		return CSVSource{Path: cfg.Path}, noop, nil
	case config.SourceSQLite:
		d, err := db.Open(cfg.Path)
		if err != nil {
			// Unreadable database degrades to an empty store, like a missing CSV file.
			return failedSource{name: "sqlite:" + cfg.Path, err: err}, noop, nil
		}
		src, err := NewSQLiteSource(d, cfg.Table)
		if err != nil {
			d.Close()
			return nil, noop, err
		}
		return src, func() { d.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

// failedSource reports an error captured while opening the underlying resource.
type failedSource struct {
	name string
	err  error
}

func (f failedSource) Name() string { return f.name }

func (f failedSource) Load(context.Context) ([]model.Sample, error) { return nil, f.err }
