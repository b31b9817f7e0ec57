package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/model"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/source"
)

// SourceRepository handles database operations against one listing source
type SourceRepository struct {
	id string
	db *sqlx.DB
}

// NewSourceRepository opens the store of a source. The pool connects lazily,
// so an unreachable source surfaces as a ConnectivityError at query time.
func NewSourceRepository(id, dsn string, maxConn, maxIdleConn int) (*SourceRepository, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database for %s: %w", id, err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute)

	return NewSourceRepositoryWithDB(id, db), nil
}

// NewSourceRepositoryWithDB wraps an existing handle
func NewSourceRepositoryWithDB(id string, db *sqlx.DB) *SourceRepository {
	return &SourceRepository{id: id, db: db}
}

// ID returns the source id
func (r *SourceRepository) ID() string {
	return r.id
}

// Close closes the database connection
func (r *SourceRepository) Close() error {
	return r.db.Close()
}

// Ping checks that the store is reachable
func (r *SourceRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return &ConnectivityError{Source: r.id, Err: err}
	}
	return nil
}

// QueryListings runs a built source query and returns normalized listings.
// The connection is released before returning on every path.
func (r *SourceRepository) QueryListings(ctx context.Context, q *source.Query) ([]model.Listing, error) {
	conn, err := r.db.Connx(ctx)
	if err != nil {
		return nil, classify(r.id, err)
	}
	defer conn.Close()

	var listings []model.Listing
	if err := conn.SelectContext(ctx, &listings, q.SQL, q.Args...); err != nil {
		return nil, classify(r.id, err)
	}

	for i := range listings {
		listings[i].Normalize()
		if listings[i].SourceID == "" {
			listings[i].SourceID = r.id
		}
	}
	return listings, nil
}

// Columns returns the distinct column names of the given tables
func (r *SourceRepository) Columns(ctx context.Context, schema string, tables []string) ([]string, error) {
	query := `
		SELECT DISTINCT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = ANY($2)
		ORDER BY column_name
	`
	var columns []string
	if err := r.db.SelectContext(ctx, &columns, query, schema, pq.Array(tables)); err != nil {
		return nil, fmt.Errorf("failed to fetch columns of %s: %w", r.id, classify(r.id, err))
	}
	return columns, nil
}

// Tables lists every table of a schema with its columns in ordinal order
func (r *SourceRepository) Tables(ctx context.Context, schema string) (map[string][]string, error) {
	query := `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = $1
		ORDER BY table_name, ordinal_position
	`
	rows, err := r.db.QueryxContext(ctx, query, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect schema of %s: %w", r.id, classify(r.id, err))
	}
	defer rows.Close()

	tables := map[string][]string{}
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		tables[table] = append(tables[table], column)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to inspect schema of %s: %w", r.id, err)
	}
	return tables, nil
}
