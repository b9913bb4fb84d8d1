// Command hasshist is a one-shot inspector for a Home Assistant recorder
// database. It prints recorder table row counts or extracts temperature
// readings over an optional time window as JSON.
//
// Usage:
//
//	hasshist -db home-assistant_v2.db -counts
//	hasshist -db home-assistant_v2.db -unit fahrenheit \
//	  -from 2023-01-14T00:00:00Z -to 2023-01-15T00:00:00Z
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ijsmallman/hass-history-etl/internal/store"
)

func main() {
	dbPath := flag.String("db", "", "path to the recorder database file")
	counts := flag.Bool("counts", false, "print recorder table row counts instead of readings")
	from := flag.String("from", "", "inclusive lower bound, RFC 3339 (optional)")
	to := flag.String("to", "", "inclusive upper bound, RFC 3339 (optional)")
	unit := flag.String("unit", "celsius", "target temperature unit")
	entity := flag.String("entity", "", "with -counts, also print the state count for this entity_id")
	flag.Parse()

	if *dbPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dbPath, *counts, *from, *to, *unit, *entity); code != 0 {
		os.Exit(code)
	}
}

func run(dbPath string, counts bool, from, to, unit, entity string) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	st, err := store.Open(dbPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", dbPath, err)
		return 1
	}
	defer st.Close()

	ctx := context.Background()

	if counts {
		return printCounts(ctx, st, entity)
	}
	return printReadings(ctx, st, from, to, unit)
}

func printCounts(ctx context.Context, st *store.Store, entity string) int {
	for _, table := range []string{store.TableEvents, store.TableRecorderRuns, store.TableSchemaChanges, store.TableStates} {
		n, err := st.CountTable(ctx, table)
		if err != nil {
			fmt.Fprintf(os.Stderr, "count %s: %v\n", table, err)
			return 1
		}
		fmt.Printf("%-16s %d\n", table, n)
	}

	if entity != "" {
		n, err := st.CountStates(ctx, entity)
		if err != nil {
			fmt.Fprintf(os.Stderr, "count states for %s: %v\n", entity, err)
			return 1
		}
		fmt.Printf("%-16s %d\n", entity, n)
	}
	return 0
}

func printReadings(ctx context.Context, st *store.Store, from, to, unit string) int {
	var q store.ReadingQuery
	q.TargetUnit = unit

	var err error
	if q.From, err = parseBound(from); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -from: %v\n", err)
		return 1
	}
	if q.To, err = parseBound(to); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -to: %v\n", err)
		return 1
	}

	readings, err := st.FetchTemperatureReadings(ctx, q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch readings: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(readings); err != nil {
		fmt.Fprintf(os.Stderr, "encode readings: %v\n", err)
		return 1
	}
	return 0
}

func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
