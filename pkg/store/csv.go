package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"trailview/pkg/model"
)

// fieldsPerRow is the number of comma separated values in a recording row (time, x, y, z).
const fieldsPerRow = 4

// Parse reads a recording from r. See ParseString for the row policy.
// A read error ends parsing; whatever was read before it is still parsed.
func Parse(r io.Reader) []model.Sample {
	data, _ := io.ReadAll(r)
	return ParseString(string(data))
}

// ParseString parses recording text into samples.
//
// Blank lines are ignored and the first remaining line is always discarded as a header.
// Every other line must hold exactly four comma separated finite numbers, otherwise it is
// dropped. The result is never nil.
func ParseString(text string) []model.Sample {
	samples, _ := parse(text)
	return samples
}

// parse returns the accepted samples and the number of dropped rows.
func parse(text string) ([]model.Sample, int) {
	samples := make([]model.Sample, 0)
	dropped := 0
	headerSeen := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		if !headerSeen {
			headerSeen = true
			continue
		}

		s, ok := parseRow(line)
		if !ok {
			dropped++
			continue
		}
		samples = append(samples, s)
	}

	return samples, dropped
}

func parseRow(line string) (model.Sample, bool) {
	parts := strings.Split(line, ",")
	if len(parts) != fieldsPerRow {
		return model.Sample{}, false
	}

	var vals [fieldsPerRow]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || !isFinite(v) {
			return model.Sample{}, false
		}
		vals[i] = v
	}

	return model.NewSample(vals[0], vals[1], vals[2], vals[3]), true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CSVSource loads a recording from a text file.
type CSVSource struct {
	Path string
}

// Name implements Source.
func (c CSVSource) Name() string {
	return "csv:" + c.Path
}

// Load implements Source.
func (c CSVSource) Load(ctx context.Context) ([]model.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}

	samples, dropped := parse(string(data))
	slog.Debug("Recording parsed", "path", c.Path, "samples", len(samples), "dropped", dropped)
	return samples, nil
}
