package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chaguo/core/catalog"
	"github.com/trezcool/chaguo/core/recruitment"
)

type companyApi struct {
	catalog      *catalog.Service
	recruitments *recruitment.Service
	validate     *validator.Validate
}

func registerCompanyAPI(g *echo.Group, deps ServerDeps) {
	api := companyApi{
		catalog:      deps.CatalogSvc,
		recruitments: deps.RecruitmentSvc,
		validate:     deps.Validate,
	}

	g.GET("/jobs", api.jobs)
	g.POST("/jobs", api.postJob)
	g.GET("/jobs/:id/applicants", api.applicants)
}

func (api *companyApi) jobs(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	jobs, err := api.catalog.ListJobs(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "listing jobs")
	}
	if jobs == nil {
		jobs = []catalog.Job{}
	}
	return ctx.JSON(http.StatusOK, jobs)
}

func (api *companyApi) postJob(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	var data catalog.NewJob
	if err = bindAndValidate(ctx, &data, api.validate, "NewJob"); err != nil {
		return err
	}

	job, err := api.catalog.PostJob(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "posting job")
	}
	return ctx.JSON(http.StatusCreated, job)
}

// applicants lists the eligible applicants of a job, best first.
func (api *companyApi) applicants(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	applicants, err := api.recruitments.Applicants(ctx.Request().Context(), id, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing applicants")
	}
	if applicants == nil {
		applicants = []recruitment.Applicant{}
	}
	return ctx.JSON(http.StatusOK, applicants)
}
