package boiledrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/account"
)

const accountColumns = "id, name, email, role, is_active, password_hash, created_at, updated_at, last_login"

type accountRow struct {
	ID           string    `boil:"id"`
	Name         string    `boil:"name"`
	Email        string    `boil:"email"`
	Role         string    `boil:"role"`
	IsActive     bool      `boil:"is_active"`
	PasswordHash []byte    `boil:"password_hash"`
	CreatedAt    time.Time `boil:"created_at"`
	UpdatedAt    time.Time `boil:"updated_at"`
	LastLogin    null.Time `boil:"last_login"`
}

func (row accountRow) unboil() account.Account {
	return account.Account{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Role:         row.Role,
		IsActive:     row.IsActive,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
		LastLogin:    row.LastLogin.Ptr(),
	}
}

type accountRepository struct {
	exec core.DBExecutor
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(exec core.DBExecutor) *accountRepository {
	return &accountRepository{exec: exec}
}

func (repo *accountRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...string) error {
	q, args := "SELECT count(*) AS count FROM account WHERE email = ?", []interface{}{email}
	if len(excludedIDs) > 0 {
		q += " AND id NOT IN (?)"
		args = append(args, excludedIDs)
	}
	q, args, err := in(q, args...)
	if err != nil {
		return err
	}

	var res struct {
		Count int `boil:"count"`
	}
	if err = queries.Raw(q, args...).Bind(ctx, repo.exec, &res); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if res.Count > 0 {
		return account.ErrEmailExists
	}
	return nil
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	if acc.ID == "" {
		acc.ID = newID()
	}
	_, err := execQuery(ctx, repo.exec,
		"INSERT INTO account ("+accountColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		acc.ID, acc.Name, acc.Email, acc.Role, acc.IsActive, acc.PasswordHash,
		acc.CreatedAt.UTC(), acc.UpdatedAt.UTC(), null.TimeFromPtr(acc.LastLogin),
	)
	if err != nil {
		if isDuplicate(err) {
			return account.Account{}, account.ErrEmailExists
		}
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	return acc, nil
}

func (repo *accountRepository) getOne(ctx context.Context, where string, arg interface{}) (account.Account, error) {
	var row accountRow
	err := queries.Raw("SELECT "+accountColumns+" FROM account WHERE "+where+" = $1", arg).Bind(ctx, repo.exec, &row)
	if err != nil {
		return account.Account{}, trapNoRowsErr(err, account.ErrNotFound, "finding account")
	}
	return row.unboil(), nil
}

func (repo *accountRepository) GetAccount(ctx context.Context, id string) (account.Account, error) {
	return repo.getOne(ctx, "id", id)
}

func (repo *accountRepository) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	return repo.getOne(ctx, "email", email)
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	n, err := execQuery(ctx, repo.exec,
		`UPDATE account SET name = $2, email = $3, role = $4, is_active = $5, password_hash = $6,
		updated_at = $7, last_login = $8 WHERE id = $1`,
		acc.ID, acc.Name, acc.Email, acc.Role, acc.IsActive, acc.PasswordHash,
		acc.UpdatedAt.UTC(), null.TimeFromPtr(acc.LastLogin),
	)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "updating account")
	}
	if n == 0 {
		return account.Account{}, account.ErrNotFound
	}
	return acc, nil
}
