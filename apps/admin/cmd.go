package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/chaguo/core/account"
	"github.com/trezcool/chaguo/core/admission"
	"github.com/trezcool/chaguo/core/catalog"
	"github.com/trezcool/chaguo/core/student"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sql.DB
	out        io.Writer
	validate   *validator.Validate
	translator ut.Translator
	accounts   *account.Service
	students   *student.Service
	catalog    *catalog.Service
	admissions *admission.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, redo...) against the database")
	fmt.Fprintln(cli.out, "  addaccount -email EMAIL -name NAME -role ROLE - create an account and its profile")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL - reset an account's password")
	fmt.Fprintln(cli.out, "  report -institution ID - print the applications received by an institution")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAccountCmd := flag.NewFlagSet("addaccount", flag.ContinueOnError)
	addAccountEmail := addAccountCmd.String("email", "", "The account's email. The password will be prompted next.")
	addAccountName := addAccountCmd.String("name", "", "The name of the student, institution or company.")
	addAccountRole := addAccountCmd.String("role", "", "One of: "+strings.Join(account.AllRoles, ", "))

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The account's email. The password will be prompted next.")

	reportCmd := flag.NewFlagSet("report", flag.ContinueOnError)
	reportInstitution := reportCmd.String("institution", "", "The institution's ID.")

	for _, cmd := range []*flag.FlagSet{addAccountCmd, resetPasswordCmd, reportCmd} {
		cmd.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addaccount":
		if err := addAccountCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addAccountEmail == "" || *addAccountName == "" || *addAccountRole == "" {
			addAccountCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addAccountCmd.Usage()
			return errHelp
		}
		return cli.addAccount(*addAccountEmail, *addAccountName, *addAccountRole, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *reportInstitution == "" {
			reportCmd.Usage()
			return errHelp
		}
		return cli.report(*reportInstitution)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// describe flattens validation errors into a single readable error.
func (cli *commandLine) describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Field()+": "+fe.Translate(cli.translator))
	}
	sort.Strings(msgs)
	return errors.New(strings.Join(msgs, "; "))
}
