package keybench

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Row is one inserted row.
type Row struct {
	Key   string
	Value []byte
}

// Store is the database under test.
type Store interface {
	CreateTable(ctx context.Context, kt KeyType) error
	InsertBatch(ctx context.Context, kt KeyType, rows []Row) error
	// Select looks up key and returns the number of value bytes read.
	Select(ctx context.Context, kt KeyType, key string) (int, error)
}

// PostgresStore is a [Store] backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres returns a [PostgresStore] for dsn. No connection is made until
// the first query.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	return &PostgresStore{db: sql.OpenDB(connector)}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateTable(ctx context.Context, kt KeyType) error {
	_, err := s.db.ExecContext(ctx, kt.CreateTableSQL())
	if err != nil {
		return fmt.Errorf("create table %s: %w", kt.Table, err)
	}

	return nil
}

// InsertBatch loads rows with a single COPY in one transaction.
func (s *PostgresStore) InsertBatch(ctx context.Context, kt KeyType, rows []Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	err = copyRows(ctx, tx, kt, rows)
	if err != nil {
		//nolint:errcheck // The copy error is more useful.
		tx.Rollback()

		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit %s batch: %w", kt.Table, err)
	}

	return nil
}

func copyRows(ctx context.Context, tx *sql.Tx, kt KeyType, rows []Row) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(kt.Table, "id", "value"))
	if err != nil {
		return fmt.Errorf("prepare copy into %s: %w", kt.Table, err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err = stmt.ExecContext(ctx, r.Key, r.Value)
		if err != nil {
			return fmt.Errorf("copy key %s: %w", r.Key, err)
		}
	}

	_, err = stmt.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("flush copy into %s: %w", kt.Table, err)
	}

	return nil
}

func (s *PostgresStore) Select(ctx context.Context, kt KeyType, key string) (int, error) {
	rows, err := s.db.QueryContext(ctx, kt.SelectSQL(), key)
	if err != nil {
		return 0, fmt.Errorf("select key %s: %w", key, err)
	}
	defer rows.Close()

	n := 0

	for rows.Next() {
		var value []byte

		err = rows.Scan(&value)
		if err != nil {
			return n, fmt.Errorf("scan key %s: %w", key, err)
		}

		n += len(value)
	}

	err = rows.Err()
	if err != nil {
		return n, fmt.Errorf("select key %s: %w", key, err)
	}

	return n, nil
}
