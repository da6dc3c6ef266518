package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chaguo/core/admission"
	"github.com/trezcool/chaguo/core/recruitment"
	"github.com/trezcool/chaguo/core/student"
)

type studentApi struct {
	students     *student.Service
	admissions   *admission.Service
	recruitments *recruitment.Service
	validate     *validator.Validate
}

// registerStudentAPI registers the student portal on g, which is restricted to student accounts.
// limit guards the endpoints that consume applications.
func registerStudentAPI(g *echo.Group, limit echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{
		students:     deps.StudentSvc,
		admissions:   deps.AdmissionSvc,
		recruitments: deps.RecruitmentSvc,
		validate:     deps.Validate,
	}

	g.GET("/profile", api.profile)
	g.PUT("/profile", api.updateProfile)
	g.PUT("/grades", api.updateGrades)

	g.POST("/apply", api.apply, limit)
	g.GET("/applications", api.applications)
	g.PUT("/applications/:id/decision", api.decide, limit)

	jg := g.Group("/jobs")
	jg.GET("", api.availableJobs)
	jg.GET("/applications/ids", api.appliedJobIDs)
	jg.GET("/saved/ids", api.savedJobIDs)
	jg.POST("/:id/apply", api.applyToJob)
	jg.POST("/:id/save", api.saveJob)
}

func (api *studentApi) profile(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	stu, err := api.students.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) updateProfile(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	var data student.UpdateProfile
	if err = bindAndValidate(ctx, &data, api.validate, "UpdateProfile"); err != nil {
		return err
	}

	stu, err := api.students.UpdateProfile(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) updateGrades(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	var data student.UpdateGrades
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGrades")
	}

	stu, err := api.students.UpdateGrades(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating grades")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) apply(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	var data admission.Submission
	if err = bindAndValidate(ctx, &data, api.validate, "Submission"); err != nil {
		return err
	}

	apps, err := api.admissions.Submit(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "submitting applications")
	}
	return ctx.JSON(http.StatusCreated, apps)
}

func (api *studentApi) applications(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	apps, err := api.admissions.ListForStudent(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "listing applications")
	}
	if apps == nil {
		apps = []admission.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *studentApi) decide(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	var data admission.DecisionRequest
	if err = bindAndValidate(ctx, &data, api.validate, "DecisionRequest"); err != nil {
		return err
	}

	outcome, err := api.admissions.Decide(ctx.Request().Context(), id, ctx.Param("id"), data.Decision)
	if err != nil {
		return errors.Wrap(err, "deciding on application")
	}
	return ctx.JSON(http.StatusOK, outcome)
}

func (api *studentApi) availableJobs(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	jobs, err := api.recruitments.AvailableJobs(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "listing available jobs")
	}
	if jobs == nil {
		jobs = []recruitment.AvailableJob{}
	}
	return ctx.JSON(http.StatusOK, jobs)
}

func (api *studentApi) applyToJob(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	app, err := api.recruitments.Apply(ctx.Request().Context(), id, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "applying to job")
	}
	return ctx.JSON(http.StatusCreated, app)
}

func (api *studentApi) saveJob(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	if err = api.recruitments.Save(ctx.Request().Context(), id, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "saving job")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Job saved."})
}

func (api *studentApi) appliedJobIDs(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	ids, err := api.recruitments.AppliedJobIDs(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "listing applied jobs")
	}
	return ctx.JSON(http.StatusOK, IDsResponse{IDs: nonNil(ids)})
}

func (api *studentApi) savedJobIDs(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	ids, err := api.recruitments.SavedJobIDs(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "listing saved jobs")
	}
	return ctx.JSON(http.StatusOK, IDsResponse{IDs: nonNil(ids)})
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
