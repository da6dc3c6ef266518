package main

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/chaguo/core/account"
)

// addAccount creates an active account along with the student, institution or company it logs in as.
// Both share the same ID.
func (cli *commandLine) addAccount(email, name, role, pwd string) error {
	ctx := context.Background()
	na := account.NewAccount{
		ID:              uuid.New().String(),
		Name:            name,
		Email:           email,
		Role:            role,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := na.Validate(cli.validate); err != nil {
		return cli.describe(err)
	}

	var err error
	switch na.Role {
	case account.RoleStudent:
		_, err = cli.students.Create(ctx, na.ID, na.Name, na.Email)
	case account.RoleInstitution:
		_, err = cli.catalog.CreateInstitution(ctx, na.ID, na.Name, na.Email)
	case account.RoleCompany:
		_, err = cli.catalog.CreateCompany(ctx, na.ID, na.Name, na.Email)
	}
	if err != nil {
		return errors.Wrapf(err, "creating %s profile", na.Role)
	}

	acc, err := cli.accounts.Create(ctx, na)
	if err != nil {
		return cli.describe(err)
	}
	logger.Printf("%s account %s created for %s", acc.Role, acc.ID, acc.Email)
	return nil
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	if err := (account.SetPassword{Password: pwd, PasswordConfirm: pwd}).Validate(cli.validate); err != nil {
		return cli.describe(err)
	}
	_, err := cli.accounts.SetPassword(context.Background(), email, pwd)
	return err
}
