package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chaguo/core/admission"
	"github.com/trezcool/chaguo/core/catalog"
)

type institutionApi struct {
	catalog    *catalog.Service
	admissions *admission.Service
	validate   *validator.Validate
}

func registerInstitutionAPI(g *echo.Group, deps ServerDeps) {
	api := institutionApi{
		catalog:    deps.CatalogSvc,
		admissions: deps.AdmissionSvc,
		validate:   deps.Validate,
	}

	g.GET("/courses", api.courses)
	g.POST("/courses", api.addCourse)
	g.GET("/applications", api.applications)
	g.PUT("/applications/:id/status", api.review)
	g.PUT("/admissions/settings", api.updateAdmissionsSettings)
}

func (api *institutionApi) courses(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	courses, err := api.catalog.ListCourses(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	if courses == nil {
		courses = []catalog.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *institutionApi) addCourse(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	var data catalog.NewCourse
	if err = bindAndValidate(ctx, &data, api.validate, "NewCourse"); err != nil {
		return err
	}

	course, err := api.catalog.AddCourse(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "adding course")
	}
	return ctx.JSON(http.StatusCreated, course)
}

func (api *institutionApi) applications(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	var filter admission.QueryFilter
	if err = ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	apps, err := api.admissions.ListForInstitution(ctx.Request().Context(), id, filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "listing applications")
	}
	if apps == nil {
		apps = []admission.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *institutionApi) review(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	var data admission.Review
	if err = bindAndValidate(ctx, &data, api.validate, "Review"); err != nil {
		return err
	}

	app, err := api.admissions.Review(ctx.Request().Context(), id, ctx.Param("id"), data.Status)
	if err != nil {
		return errors.Wrap(err, "reviewing application")
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *institutionApi) updateAdmissionsSettings(ctx echo.Context) error {
	id, err := contextAccountID(ctx)
	if err != nil {
		return err
	}
	var data catalog.AdmissionsSettings
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdmissionsSettings")
	}

	inst, err := api.catalog.UpdateAdmissionsSettings(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating admissions settings")
	}
	return ctx.JSON(http.StatusOK, inst)
}
