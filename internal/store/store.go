// Package store provides read-only access to a Home Assistant recorder
// database file: row counts over the recorder tables and extraction of
// normalized temperature readings from the states table.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/ijsmallman/hass-history-etl/internal/domain"
)

// Recorder table names. The schema is owned by Home Assistant; these are the
// only identifiers a count may be requested for.
const (
	TableEvents        = "events"
	TableRecorderRuns  = "recorder_runs"
	TableSchemaChanges = "schema_changes"
	TableStates        = "states"
)

var knownTables = map[string]struct{}{
	TableEvents:        {},
	TableRecorderRuns:  {},
	TableSchemaChanges: {},
	TableStates:        {},
}

const (
	sensorDomain       = "sensor"
	temperaturePattern = "%temperature%"

	selectTemperatureStates = `SELECT domain, entity_id, state, attributes, last_changed
		FROM states
		WHERE domain = ? AND entity_id LIKE ?`
)

// Store is a read-only handle on a recorder database. It issues no writes;
// the file is opened with mode=ro so the engine enforces that too. One Store
// serves one caller at a time; open independent handles for concurrent use.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open connects to the recorder database at path. The file must already
// exist: a missing file is ErrNotFound, not an empty database.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	db, err := sqlx.Connect("sqlite", readOnlyURI(path))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrStore, path, err)
	}

	logger.Debug("recorder database opened", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// readOnlyURI renders a filesystem path as a sqlite URI filename opened
// read-only.
func readOnlyURI(path string) string {
	return "file:" + filepath.ToSlash(path) + "?mode=ro"
}

// CountTable returns the total row count of one of the recorder tables.
func (s *Store) CountTable(ctx context.Context, table string) (int64, error) {
	if _, ok := knownTables[table]; !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownTable, table)
	}

	// table is one of the fixed recorder identifiers above, never caller data.
	var n int64
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, fmt.Errorf("%w: count %s: %v", domain.ErrStore, table, err)
	}
	return n, nil
}

// CountEvents returns the total row count of the events table.
func (s *Store) CountEvents(ctx context.Context) (int64, error) {
	return s.CountTable(ctx, TableEvents)
}

// CountStates returns the row count of the states table, restricted to rows
// whose entity_id exactly equals entityID when it is non-empty.
func (s *Store) CountStates(ctx context.Context, entityID string) (int64, error) {
	if entityID == "" {
		return s.CountTable(ctx, TableStates)
	}

	var n int64
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM states WHERE entity_id = ?", entityID)
	if err != nil {
		return 0, fmt.Errorf("%w: count states for %s: %v", domain.ErrStore, entityID, err)
	}
	return n, nil
}

// ReadingQuery bounds a temperature extraction. Zero From/To leave that side
// unbounded; both bounds are inclusive. An empty TargetUnit defaults to
// celsius.
type ReadingQuery struct {
	From       time.Time
	To         time.Time
	TargetUnit string
}

// FetchTemperatureReadings extracts normalized temperature readings from the
// states table in store iteration order. Any malformed row inside the
// requested window fails the whole call; partial results are never returned.
func (s *Store) FetchTemperatureReadings(ctx context.Context, q ReadingQuery) ([]domain.TemperatureReading, error) {
	target := domain.Celsius
	if q.TargetUnit != "" {
		var err error
		if target, err = domain.ParseUnit(q.TargetUnit); err != nil {
			return nil, err
		}
	}

	var rows []domain.StateRow
	if err := s.db.SelectContext(ctx, &rows, selectTemperatureStates, sensorDomain, temperaturePattern); err != nil {
		return nil, fmt.Errorf("%w: select states: %v", domain.ErrStore, err)
	}

	readings := make([]domain.TemperatureReading, 0, len(rows))
	for _, row := range rows {
		// The recorder's last_changed strings carry a variable number of
		// fractional-second digits, so they do not sort lexically. Bounds
		// are applied on the parsed instant, and a row outside the window
		// is dropped before its payload is parsed: a SQL-side time filter
		// would never have surfaced that row either.
		ts, err := domain.ParseStateTime(row.LastChanged)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", row.EntityID, err)
		}
		if !q.From.IsZero() && ts.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && ts.After(q.To) {
			continue
		}

		reading, err := domain.ParseStateRow(row, target)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}

	s.logger.Debug("temperature readings extracted", "rows", len(rows), "readings", len(readings))
	return readings, nil
}
