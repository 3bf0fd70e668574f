package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/mediastore/core/media"
)

// Compile-time check that KeySource implements media.KeySource.
var _ media.KeySource = (*KeySource)(nil)

// Querier is the subset of pgx querying satisfied by *pgxpool.Pool,
// *pgx.Conn, and pgx.Tx alike.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// KeySource lists the media file keys referenced by a single text column.
// It reads that one column and nothing else; schema management stays with
// the owning application.
type KeySource struct {
	db     Querier
	table  string
	column string
}

// NewKeySource creates a key source scanning table.column. Identifiers are
// quoted, so table and column may come from configuration.
func NewKeySource(db Querier, table, column string) (*KeySource, error) {
	if db == nil || table == "" || column == "" {
		return nil, fmt.Errorf("%w: pg key source needs a querier, table, and column", media.ErrInvalidConfig)
	}
	return &KeySource{db: db, table: table, column: column}, nil
}

// ListReferencedKeys scans the configured column, skipping NULLs and empty
// strings. When the context carries a transaction (see WithTx), the scan
// runs inside it.
func (s *KeySource) ListReferencedKeys(ctx context.Context) ([]string, error) {
	db := s.db
	if tx, ok := TxFromContext(ctx); ok {
		db = tx
	}

	col := pgx.Identifier{s.column}.Sanitize()
	query := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s IS NOT NULL AND %s <> ''",
		col, pgx.Identifier{s.table}.Sanitize(), col, col,
	)

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list referenced keys from %s.%s: %w", s.table, s.column, err)
	}

	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect referenced keys from %s.%s: %w", s.table, s.column, err)
	}
	return keys, nil
}
