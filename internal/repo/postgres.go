package repo

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed schema.sql
var schemaSQL string

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var errForeignKey = errors.New("foreign key violation")

// Open returns a pooled handle on the pgx stdlib driver and verifies connectivity.
func Open(ctx context.Context, dsn string, maxOpen int) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen/2 + 1)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate applies the bundled schema. Every statement in it is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// classify maps driver errors onto the package sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrConflict, conflictDetail(pgErr.ConstraintName))
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", errForeignKey, pgErr.ConstraintName)
		}
	}
	return err
}

// deleteErr maps a foreign key violation raised by a DELETE onto the sentinel for
// the table still pointing at the row. Rows referenced by clicks are never deleted.
func deleteErr(err error, referenced error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		if strings.HasPrefix(pgErr.ConstraintName, "clicks_") {
			return ErrHasClicks
		}
		return referenced
	}
	return classify(err)
}

func conflictDetail(constraint string) string {
	switch {
	case strings.Contains(constraint, "slug"):
		return "slug already in use"
	case strings.Contains(constraint, "phone"):
		return "phone already registered"
	case constraint == "":
		return "duplicate value"
	}
	return constraint
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
