package inmemdb

import (
	"context"

	"github.com/trezcool/chaguo/core/account"
)

type accountRepository struct {
	t *table[account.Account]
}

var _ account.Repository = (*accountRepository)(nil)

func NewAccountRepository(db *DB) account.Repository {
	return &accountRepository{t: db.accounts}
}

func (repo *accountRepository) CheckEmailUniqueness(_ context.Context, email string, excludedIDs ...string) error {
	repo.t.mu.RLock()
	defer repo.t.mu.RUnlock()

	excluded := make(map[string]bool, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = true
	}
	for _, acc := range repo.t.rows {
		if acc.Email == email && !excluded[acc.ID] {
			return account.ErrEmailExists
		}
	}
	return nil
}

func (repo *accountRepository) CreateAccount(_ context.Context, acc account.Account) (account.Account, error) {
	repo.t.mu.Lock()
	defer repo.t.mu.Unlock()

	if acc.ID == "" {
		acc.ID = newID()
	}
	repo.t.rows[acc.ID] = acc
	return acc, nil
}

func (repo *accountRepository) GetAccount(_ context.Context, id string) (account.Account, error) {
	repo.t.mu.RLock()
	defer repo.t.mu.RUnlock()

	if acc, ok := repo.t.get(id); ok {
		return acc, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) GetAccountByEmail(_ context.Context, email string) (account.Account, error) {
	repo.t.mu.RLock()
	defer repo.t.mu.RUnlock()

	for _, acc := range repo.t.rows {
		if acc.Email == email {
			return acc, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) UpdateAccount(_ context.Context, acc account.Account) (account.Account, error) {
	repo.t.mu.Lock()
	defer repo.t.mu.Unlock()

	if _, ok := repo.t.get(acc.ID); !ok {
		return account.Account{}, account.ErrNotFound
	}
	repo.t.rows[acc.ID] = acc
	return acc, nil
}
