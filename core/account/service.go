package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/chaguo/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("account")
	ErrEmailExists        = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...string) error
		CreateAccount(ctx context.Context, acc Account) (Account, error)
		GetAccount(ctx context.Context, id string) (Account, error)
		GetAccountByEmail(ctx context.Context, email string) (Account, error)
		UpdateAccount(ctx context.Context, acc Account) (Account, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, excludedIDs ...string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludedIDs...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Create creates an active account. NewAccount must have been validated.
func (svc *Service) Create(ctx context.Context, na NewAccount) (Account, error) {
	if err := svc.checkUniqueness(ctx, na.Email); err != nil {
		return Account{}, err
	}

	now := core.Now()
	acc := Account{
		ID:        na.ID,
		Name:      na.Name,
		Email:     na.Email,
		Role:      na.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if acc.ID == "" {
		acc.ID = uuid.New().String()
	}
	if err := acc.SetPassword(na.Password); err != nil {
		return Account{}, pkgerrors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateAccount(ctx, acc)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Account, error) {
	return svc.repo.GetAccount(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Account, error) {
	return svc.repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Authenticate checks the credentials of an active account and records the login.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (Account, error) {
	acc, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if core.IsNotFound(err) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, pkgerrors.Wrap(err, "finding account by email")
	}
	if err = acc.CheckPassword(pwd); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	if !acc.IsActive {
		return Account{}, ErrAccountDeactivated
	}

	now := core.Now()
	acc.LastLogin = &now
	acc, err = svc.repo.UpdateAccount(ctx, acc)
	return acc, pkgerrors.Wrap(err, "setting lastLogin")
}

// SetPassword replaces the password of the account with the given email.
func (svc *Service) SetPassword(ctx context.Context, email, pwd string) (Account, error) {
	acc, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return Account{}, err
	}
	if err = acc.SetPassword(pwd); err != nil {
		return Account{}, pkgerrors.Wrap(err, "hashing password")
	}
	acc.UpdatedAt = core.Now()
	return svc.repo.UpdateAccount(ctx, acc)
}
