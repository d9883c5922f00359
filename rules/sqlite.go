package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/alonecong/hotparam"
)

// Compile-time interface checks.
var (
	_ hotparam.Source         = (*SQLiteSource)(nil)
	_ hotparam.ChangeNotifier = (*SQLiteSource)(nil)
)

// SQLiteSource is a rule source persisted in a SQLite database. Rules are
// read into an in-memory snapshot by Reload; the engine's queries never hit
// the database.
type SQLiteSource struct {
	db  *sql.DB
	mem *hotparam.MemorySource
}

// NewSQLiteSource opens (or creates) a SQLite database at the given path,
// initialises the schema and loads the stored rules. Use ":memory:" for an
// in-memory database.
func NewSQLiteSource(ctx context.Context, dsn string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("hotparam/rules: open sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS hotparam_rules (
			resource        TEXT NOT NULL,
			param_index     INTEGER NOT NULL,
			threshold       INTEGER NOT NULL DEFAULT 0,
			window_ms       INTEGER NOT NULL,
			behavior        TEXT NOT NULL DEFAULT 'reject',
			burst_count     INTEGER NOT NULL DEFAULT 0,
			max_queueing_ms INTEGER NOT NULL DEFAULT 0,
			overrides       TEXT NOT NULL DEFAULT '[]',
			PRIMARY KEY (resource, param_index)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("hotparam/rules: create table: %w", err)
	}

	s := &SQLiteSource{db: db, mem: hotparam.NewMemorySource()}
	if err := s.Reload(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Reload reads all stored rules and swaps them into the snapshot.
func (s *SQLiteSource) Reload(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT resource, param_index, threshold, window_ms, behavior,
		       burst_count, max_queueing_ms, overrides
		FROM hotparam_rules
		ORDER BY resource, param_index
	`)
	if err != nil {
		return fmt.Errorf("hotparam/rules: load: %w", err)
	}
	defer rows.Close()

	var loaded []hotparam.Rule
	for rows.Next() {
		var w ruleJSON
		var overrides string
		if err := rows.Scan(&w.Resource, &w.ParamIndex, &w.Threshold,
			&w.WindowMs, &w.Behavior, &w.BurstCount, &w.MaxQueueingMs, &overrides); err != nil {
			return fmt.Errorf("hotparam/rules: scan: %w", err)
		}
		if err := json.Unmarshal([]byte(overrides), &w.ValueThresholds); err != nil {
			return fmt.Errorf("hotparam/rules: decode overrides for %s: %w", w.Resource, err)
		}
		r, err := fromWire(w)
		if err != nil {
			return err
		}
		loaded = append(loaded, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("hotparam/rules: load: %w", err)
	}

	s.mem.Load(loaded)
	return nil
}

// Save inserts or updates a rule. A resource holds at most one stored rule
// per parameter index; saving again replaces any earlier version, window
// included. The snapshot is not refreshed until the next Reload.
func (s *SQLiteSource) Save(ctx context.Context, r hotparam.Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	w := toWire(r)
	overrides, err := json.Marshal(w.ValueThresholds)
	if err != nil {
		return fmt.Errorf("hotparam/rules: encode overrides: %w", err)
	}
	if w.ValueThresholds == nil {
		overrides = []byte("[]")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO hotparam_rules
			(resource, param_index, threshold, window_ms, behavior, burst_count, max_queueing_ms, overrides)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (resource, param_index) DO UPDATE SET
			threshold = excluded.threshold,
			window_ms = excluded.window_ms,
			behavior = excluded.behavior,
			burst_count = excluded.burst_count,
			max_queueing_ms = excluded.max_queueing_ms,
			overrides = excluded.overrides
	`, w.Resource, w.ParamIndex, w.Threshold, w.WindowMs, w.Behavior,
		w.BurstCount, w.MaxQueueingMs, string(overrides))
	if err != nil {
		return fmt.Errorf("hotparam/rules: save: %w", err)
	}
	return nil
}

// Delete removes every stored rule for the resource. The snapshot is not
// refreshed until the next Reload.
func (s *SQLiteSource) Delete(ctx context.Context, resource string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM hotparam_rules WHERE resource = ?`, resource)
	if err != nil {
		return fmt.Errorf("hotparam/rules: delete: %w", err)
	}
	return nil
}

// HasRules reports whether the snapshot holds rules for the resource.
func (s *SQLiteSource) HasRules(resource string) bool {
	return s.mem.HasRules(resource)
}

// RulesFor returns the snapshot's rules for the resource.
func (s *SQLiteSource) RulesFor(resource string) []hotparam.Rule {
	return s.mem.RulesFor(resource)
}

// OnChange registers fn to be notified when a Reload changes a resource's
// rules.
func (s *SQLiteSource) OnChange(fn func(resource string)) {
	s.mem.OnChange(fn)
}

// Close closes the underlying database connection.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
