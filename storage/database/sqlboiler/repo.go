package boiledrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/trezcool/chaguo/core"
)

// postgres error codes
const (
	codeUniqueViolation      = pq.ErrorCode("23505")
	codeSerializationFailure = pq.ErrorCode("40001")
	codeDeadlockDetected     = pq.ErrorCode("40P01")
)

var errDuplicate = errors.New("duplicate row")

// trapNoRowsErr maps psql "no rows" err to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// mapPQErr surfaces serialization failures and deadlocks as *core.TransientError
// and unique violations as errDuplicate.
func mapPQErr(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case codeSerializationFailure, codeDeadlockDetected:
		return core.NewTransientError(err)
	case codeUniqueViolation:
		return errors.Wrap(errDuplicate, pqErr.Message)
	}
	return err
}

func isDuplicate(err error) bool {
	return errors.Cause(mapPQErr(err)) == errDuplicate
}

// in expands the slice arguments of a query written with `?` bindvars and rebinds it for postgres.
func in(query string, args ...interface{}) (string, []interface{}, error) {
	q, args, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, errors.Wrap(err, "expanding query arguments")
	}
	return sqlx.Rebind(sqlx.DOLLAR, q), args, nil
}

func execQuery(ctx context.Context, db core.DBExecutor, query string, args ...interface{}) (int64, error) {
	res, err := queries.Raw(query, args...).ExecContext(ctx, db)
	if err != nil {
		return 0, mapPQErr(err)
	}
	return res.RowsAffected()
}

func stringArray(ss []string) pq.StringArray {
	if ss == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(ss)
}

func newID() string {
	return uuid.New().String()
}
