package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DBStore implements Store on PostgreSQL. Rows live in the events table:
// a BIGSERIAL seq column keeps insertion order queryable, id carries a
// UNIQUE constraint, event_type has a btree index and event_data a GIN
// index for containment queries.
type DBStore struct {
	db *sql.DB
}

// Compile-time check that DBStore implements Store.
var _ Store = (*DBStore)(nil)

// Open connects to PostgreSQL, configures the connection pool, verifies the
// connection and applies any pending schema migrations.
func Open(databaseURL string, maxConns, idleConns int) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(idleConns)
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// NewDBStore creates a PostgreSQL-backed event store. The schema must
// already be in place (see Open / MigrateUp).
func NewDBStore(db *sql.DB) *DBStore {
	return &DBStore{db: db}
}

const eventColumns = "id, created_at, created_by, modified_at, modified_by, event_type, event_data"

// Insert persists a new event as a single-statement transaction. Preset
// identifier and audit fields are honored so seeded and migrated rows keep
// their history; anything zero-valued is generated here.
func (s *DBStore) Insert(ctx context.Context, e *Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.ModifiedAt.IsZero() {
		e.ModifiedAt = e.CreatedAt
	}
	if e.CreatedBy == "" {
		e.CreatedBy = SystemActor
	}
	if e.ModifiedBy == "" {
		e.ModifiedBy = e.CreatedBy
	}

	dataJSON, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("marshal event_data: %w", err)
	}

	query := `
		INSERT INTO events (id, created_at, created_by, modified_at, modified_by, event_type, event_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := s.db.ExecContext(ctx, query,
		e.ID, e.CreatedAt, e.CreatedBy, e.ModifiedAt, e.ModifiedBy, e.EventType, dataJSON,
	); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return &ValidationError{Field: "id", Reason: "already exists"}
		}
		return fmt.Errorf("insert event: %w", err)
	}

	return nil
}

// Get retrieves one event by id.
func (s *DBStore) Get(ctx context.Context, id string) (*Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE id = $1", eventColumns)

	e, err := scanEvent(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// List returns all events matching the filter. Conditions are conjunctive;
// with no explicit sort requested, seq order preserves insertion order.
func (s *DBStore) List(ctx context.Context, f Filter) ([]*Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE 1=1", eventColumns)

	args := []interface{}{}
	argCount := 1

	if f.Creator != "" {
		query += fmt.Sprintf(" AND created_by = $%d", argCount)
		args = append(args, f.Creator)
		argCount++
	}

	if f.EventType != "" {
		query += fmt.Sprintf(" AND event_type = $%d", argCount)
		args = append(args, f.EventType)
		argCount++
	}

	if f.Start != nil {
		query += fmt.Sprintf(" AND modified_at >= $%d", argCount)
		args = append(args, *f.Start)
		argCount++
	}

	if f.End != nil {
		query += fmt.Sprintf(" AND modified_at < $%d", argCount)
		args = append(args, *f.End)
		argCount++
	}

	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]*Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// Truncate removes every event in one destructive statement.
func (s *DBStore) Truncate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "TRUNCATE TABLE events"); err != nil {
		return fmt.Errorf("truncate events: %w", err)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row scanner) (*Event, error) {
	var (
		e        Event
		dataJSON []byte
	)
	if err := row.Scan(
		&e.ID, &e.CreatedAt, &e.CreatedBy, &e.ModifiedAt, &e.ModifiedBy, &e.EventType, &dataJSON,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(dataJSON, &e.Data); err != nil {
		return nil, fmt.Errorf("unmarshal event_data: %w", err)
	}
	return &e, nil
}
