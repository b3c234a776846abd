package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver for database/sql
	"github.com/killallgit/cortex-chat/pkg/logger"
)

// PostgresExecutor runs statements on a Postgres-compatible engine
type PostgresExecutor struct {
	db *sql.DB
}

// OpenPostgres connects with the pgx driver and verifies the connection
func OpenPostgres(ctx context.Context, dsn string) (*PostgresExecutor, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewPostgresExecutor(db), nil
}

// NewPostgresExecutor wraps an existing connection pool
func NewPostgresExecutor(db *sql.DB) *PostgresExecutor {
	return &PostgresExecutor{db: db}
}

// Query runs the statement and renders every value as a string
func (p *PostgresExecutor) Query(ctx context.Context, query string) (*Result, error) {
	statement := PrepareStatement(query)
	start := time.Now()

	rows, err := p.db.QueryContext(ctx, statement)
	if err != nil {
		logger.WithComponent("warehouse").Error("Statement failed", "error", err)
		return nil, &QueryError{SQL: statement, Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &QueryError{SQL: statement, Err: err}
	}

	result := &Result{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, &QueryError{SQL: statement, Err: err}
		}

		row := make([]string, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{SQL: statement, Err: err}
	}

	logger.WithComponent("warehouse").Debug("Statement complete", "rows", len(result.Rows), "duration", time.Since(start))
	return result, nil
}

// Close closes the connection pool
func (p *PostgresExecutor) Close() error {
	return p.db.Close()
}
