package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/account"
	"github.com/trezcool/chaguo/core/admission"
	"github.com/trezcool/chaguo/core/catalog"
	"github.com/trezcool/chaguo/core/student"
	logsvc "github.com/trezcool/chaguo/services/logger"
	"github.com/trezcool/chaguo/storage/database"
	boiledrepos "github.com/trezcool/chaguo/storage/database/sqlboiler"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	conf := core.NewConfig()
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)
	account.LoadCommonPasswords(appLogger)

	catalogs := boiledrepos.NewCatalogRepository(db)
	students := boiledrepos.NewStudentRepository(db)

	// start CLI
	cli := commandLine{
		db:         db,
		out:        os.Stdout,
		validate:   validate,
		translator: translator,
		accounts:   account.NewService(boiledrepos.NewAccountRepository(db)),
		students:   student.NewService(students),
		catalog:    catalog.NewService(catalogs),
		admissions: admission.NewService(boiledrepos.NewAdmissionRepository(db), catalogs, students, nil, conf, appLogger),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
