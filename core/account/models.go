package account

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/chaguo/core"
)

// Roles
const (
	RoleStudent     = "student"
	RoleInstitution = "institution"
	RoleCompany     = "company"
	RoleAdmin       = "admin"
)

var AllRoles = []string{RoleStudent, RoleInstitution, RoleCompany, RoleAdmin}

// Account is the identity behind every authenticated request.
// The ID of a student, institution or company account is the ID of that student, institution or company.
type Account struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"isActive"`
	PasswordHash []byte     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"` // UTC
	UpdatedAt    time.Time  `json:"updatedAt"` // UTC
	LastLogin    *time.Time `json:"lastLogin"` // UTC
}

func (acc *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	acc.PasswordHash = hash
	return nil
}

func (acc *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(pwd))
}

func (acc *Account) IsAdmin() bool       { return acc.Role == RoleAdmin }
func (acc *Account) IsStudent() bool     { return acc.Role == RoleStudent }
func (acc *Account) IsInstitution() bool { return acc.Role == RoleInstitution }
func (acc *Account) IsCompany() bool     { return acc.Role == RoleCompany }

// NewAccount contains information needed to create a new Account.
// ID is set when the account belongs to an existing student, institution or company.
type NewAccount struct {
	ID              string `json:"id"`
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role" validate:"required,allroles"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (na *NewAccount) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.Role = core.CleanString(na.Role, true /* lower */)
	return validate.Struct(na)
}

type SetPassword struct {
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (sp SetPassword) Validate(validate *validator.Validate) error { return validate.Struct(sp) }
