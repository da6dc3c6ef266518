package tests

import (
	"net/http/httptest"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/chaguo/apps/api/echo"
	"github.com/trezcool/chaguo/core"
	"github.com/trezcool/chaguo/core/account"
	"github.com/trezcool/chaguo/core/admission"
	"github.com/trezcool/chaguo/core/catalog"
	"github.com/trezcool/chaguo/core/recruitment"
	"github.com/trezcool/chaguo/core/student"
	"github.com/trezcool/chaguo/services/email"
	"github.com/trezcool/chaguo/storage/database/inmem"
)

type fixture struct {
	conf         *core.Config
	app          Server
	accounts     account.Repository
	students     student.Repository
	catalog      catalog.Repository
	admissions   admission.Repository
	recruitments recruitment.Repository
}

func setup(t *testing.T, edit ...func(conf *core.Config)) *fixture {
	t.Helper()
	conf := core.NewTestConfig()
	for _, fn := range edit {
		fn(conf)
	}

	// set up DB & repos
	db := inmemdb.Open()
	f := &fixture{
		conf:         conf,
		accounts:     inmemdb.NewAccountRepository(db),
		students:     inmemdb.NewStudentRepository(db),
		catalog:      inmemdb.NewCatalogRepository(db),
		admissions:   inmemdb.NewAdmissionRepository(db),
		recruitments: inmemdb.NewRecruitmentRepository(db),
	}

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)

	// set up services
	logger := core.NopLogger{}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	notifier := admission.NewMailNotifier(mailSvc, f.catalog, f.students, logger)

	// set up server
	f.app = NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
		AccountSvc:     account.NewService(f.accounts),
		StudentSvc:     student.NewService(f.students),
		CatalogSvc:     catalog.NewService(f.catalog),
		AdmissionSvc:   admission.NewService(f.admissions, f.catalog, f.students, notifier, conf, logger),
		RecruitmentSvc: recruitment.NewService(f.recruitments, f.catalog, f.students),
	})
	return f
}

// token signs a token for the account with the given id, which needs not be stored.
func (f *fixture) token(t *testing.T, id, role string) string {
	t.Helper()
	acc := account.Account{ID: id, Name: role + " " + id, Email: id + "@example.com", Role: role, IsActive: true}
	token, err := GenerateToken(NewClaims(acc, f.conf), f.conf)
	if err != nil {
		t.Fatalf("token(): %v", err)
	}
	return token
}

func (f *fixture) serve(tt httpTest) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	f.app.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, f.serve(tt))
		})
	}
}
