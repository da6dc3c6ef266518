package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/account"
	"github.com/trezcool/chaguo/core/admission"
	"github.com/trezcool/chaguo/core/catalog"
	"github.com/trezcool/chaguo/core/student"
	"github.com/trezcool/chaguo/storage/database/inmem"
	"github.com/trezcool/chaguo/tests"
)

type fixture struct {
	cli        *commandLine
	out        *bytes.Buffer
	accounts   account.Repository
	students   student.Repository
	catalog    catalog.Repository
	admissions admission.Repository
}

func setup(t *testing.T) *fixture {
	t.Helper()
	logger = log.New(io.Discard, "", 0)
	conf := core.NewTestConfig()

	// set up DB & repos
	db := inmemdb.Open()
	f := &fixture{
		out:        new(bytes.Buffer),
		accounts:   inmemdb.NewAccountRepository(db),
		students:   inmemdb.NewStudentRepository(db),
		catalog:    inmemdb.NewCatalogRepository(db),
		admissions: inmemdb.NewAdmissionRepository(db),
	}

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)

	// start CLI
	f.cli = &commandLine{
		out:        f.out,
		validate:   validate,
		translator: translator,
		accounts:   account.NewService(f.accounts),
		students:   student.NewService(f.students),
		catalog:    catalog.NewService(f.catalog),
		admissions: admission.NewService(f.admissions, f.catalog, f.students, nil, conf, core.NopLogger{}),
	}
	return f
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (f *fixture) check(t *testing.T, tt cliTest) error {
	t.Helper()
	err := f.cli.run(append([]string{"admin"}, tt.args...))
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
	return err
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_migrate(t *testing.T) {
	f := setup(t)

	runMigrationsFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "waitlist_index", "sql"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) { f.check(t, tt) })
	}
}

func Test_commandLine_addAccount(t *testing.T) {
	f := setup(t)
	pwd := "Adm1ss!ons"
	testutil.CreateAccount(t, f.accounts, "", "Taken", "taken@example.com", pwd, account.RoleAdmin, true)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"addaccount"}, wantErr: errHelp},
		{name: "missing role", args: []string{"addaccount", "-email", "a@example.com", "-name", "A"}, extra: pwd, wantErr: errHelp},
		{name: "no password", args: []string{"addaccount", "-email", "a@example.com", "-name", "A", "-role", "student"}, wantErr: errHelp},
		{
			name: "invalid role", args: []string{"addaccount", "-email", "a@example.com", "-name", "A", "-role", "dean"},
			extra: pwd, wantErrStr: "role: invalid role",
		},
		{
			name: "weak password", args: []string{"addaccount", "-email", "a@example.com", "-name", "A", "-role", "student"},
			extra: "lol", wantErrStr: fmt.Sprintf("password: password must contain at least %d characters", 8),
		},
		{
			name: "email taken", args: []string{"addaccount", "-email", "TAKEN@example.com", "-name", "Taken", "-role", "admin"},
			extra: pwd, wantErrStr: "an account with this email already exists",
		},
	}
	for _, tt := range tests {
		pwd, _ := tt.extra.(string)
		mockPassword(pwd)
		t.Run(tt.name, func(t *testing.T) { f.check(t, tt) })
	}

	ctx := context.Background()
	profiles := []struct {
		role   string
		exists func(id string) error
	}{
		{account.RoleStudent, func(id string) error { _, err := f.students.GetStudent(ctx, id); return err }},
		{account.RoleInstitution, func(id string) error { _, err := f.catalog.GetInstitution(ctx, id); return err }},
		{account.RoleCompany, func(id string) error { _, err := f.catalog.GetCompany(ctx, id); return err }},
		{account.RoleAdmin, func(id string) error { return nil }},
	}
	for _, p := range profiles {
		t.Run("create "+p.role, func(t *testing.T) {
			mockPassword(pwd)
			email := p.role + "@example.com"
			f.check(t, cliTest{args: []string{"addaccount", "-email", email, "-name", "The " + p.role, "-role", p.role}})

			acc, err := f.accounts.GetAccountByEmail(ctx, email)
			require.NoError(t, err)
			assert.Equal(t, p.role, acc.Role)
			assert.True(t, acc.IsActive)
			assert.NoError(t, acc.CheckPassword(pwd))
			assert.NoError(t, p.exists(acc.ID))
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	f := setup(t)
	acc := testutil.CreateAccount(t, f.accounts, "", "User", "awe@example.com", "0ld!Passw", account.RoleStudent, true)

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "awe@example.com"}, wantErr: errHelp},
		{name: "account not found", args: []string{"resetpassword", "-email", "lol@example.com"}, extra: "N3w!Passw", wantErr: account.ErrNotFound},
		{name: "weak password", args: []string{"resetpassword", "-email", acc.Email}, extra: "12345678", wantErrStr: "password: password cannot be entirely numeric"},
		{name: "reset", args: []string{"resetpassword", "-email", " AWE@example.com"}, extra: "N3w!Passw"},
	}
	for _, tt := range tests {
		pwd, _ := tt.extra.(string)
		mockPassword(pwd)
		t.Run(tt.name, func(t *testing.T) { f.check(t, tt) })
	}

	refreshed, err := f.accounts.GetAccount(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.NoError(t, refreshed.CheckPassword("N3w!Passw"))
}

func Test_commandLine_report(t *testing.T) {
	f := setup(t)
	inst := testutil.CreateInstitution(t, f.catalog, "uon", true)
	empty := testutil.CreateInstitution(t, f.catalog, "ku", false)
	law := testutil.CreateCourse(t, f.catalog, inst.ID, "Law", catalog.CourseRequirements{})
	amina := testutil.CreateStudent(t, f.students, "amina", "English", 90)
	juma := testutil.CreateStudent(t, f.students, "juma", "English", 60)
	now := time.Now()
	testutil.CreateApplication(t, f.admissions, amina, law, admission.StatusAdmitted, now.Add(-time.Hour))
	testutil.CreateApplication(t, f.admissions, juma, law, admission.StatusWaitingList, now)

	tests := []cliTest{
		{name: "no args", args: []string{"report"}, wantErr: errHelp},
		{name: "unknown institution", args: []string{"report", "-institution", "nope"}, wantErr: catalog.ErrInstitutionNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) { f.check(t, tt) })
	}

	t.Run("no applications", func(t *testing.T) {
		f.out.Reset()
		f.check(t, cliTest{args: []string{"report", "-institution", empty.ID}})
		assert.Contains(t, f.out.String(), "ku: admissions closed, 0 application(s)")
	})

	t.Run("applications", func(t *testing.T) {
		f.out.Reset()
		f.check(t, cliTest{args: []string{"report", "-institution", inst.ID}})
		out := f.out.String()
		assert.Contains(t, out, "uon: admissions open, 2 application(s)")
		for _, want := range []string{"Law", "amina", "juma", "3.60", "2.40", "admitted", "waiting-list"} {
			assert.Contains(t, out, want)
		}
	})
}
