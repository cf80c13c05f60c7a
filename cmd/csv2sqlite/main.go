// Command csv2sqlite imports a telemetry recording into a SQLite database
// that trailview can replay with source kind "sqlite".
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"trailview/pkg/db"
	"trailview/pkg/store"
)

var (
	inPath = flag.String("in", "data/telemetry.csv", "Recording to import")
	dbPath = flag.String("db", "data/telemetry.db", "SQLite database to write")
	table  = flag.String("table", db.DefaultTable, "Table to append the samples to")
)

func main() {
	flag.Parse()

	n, err := convert(context.Background(), *inPath, *dbPath, *table)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Imported %d samples into %s (%s)", n, *dbPath, *table)
}

func convert(ctx context.Context, in, out, table string) (int, error) {
	f, err := os.Open(in)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	samples := store.Parse(f)
	if len(samples) == 0 {
		return 0, fmt.Errorf("no valid samples in %s", in)
	}

	d, err := db.Init(out)
	if err != nil {
		return 0, err
	}
	defer d.Close()

	if err := store.Import(ctx, d, table, samples); err != nil {
		return 0, err
	}
	return len(samples), nil
}
