package core

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

type (
	// DBExecutor is satisfied by *sql.DB and *sql.Tx.
	DBExecutor interface {
		Exec(query string, args ...interface{}) (sql.Result, error)
		Query(query string, args ...interface{}) (*sql.Rows, error)
		QueryRow(query string, args ...interface{}) *sql.Row
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	}

	DB interface {
		DBExecutor

		BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error)
	}

	DBTransactor interface {
		DBExecutor

		Commit() error
		Rollback() error
	}
)

// RunInTx runs fn in a transaction begun with opts.
// The transaction is committed if fn succeeds and rolled back otherwise.
// mapErr, when set, translates driver errors (from fn or from commit) before they are returned.
func RunInTx(ctx context.Context, db DB, opts *sql.TxOptions, fn func(exec DBExecutor) error, mapErr func(error) error) error {
	if mapErr == nil {
		mapErr = func(err error) error { return err }
	}

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return errors.Wrap(mapErr(err), "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return mapErr(err)
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(mapErr(err), "committing transaction")
	}
	return nil
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// FilterOrderings keeps the orderings whose field is in allowed, renamed to allowed[field].
func FilterOrderings(orderings []DBOrdering, allowed map[string]string) []DBOrdering {
	kept := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		if col, ok := allowed[ord.Field]; ok {
			kept = append(kept, DBOrdering{Field: col, Ascending: ord.Ascending})
		}
	}
	return kept
}
