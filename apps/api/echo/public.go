package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chaguo/core/catalog"
)

type publicApi struct {
	catalog *catalog.Service
}

// registerPublicAPI registers the endpoints open to anonymous visitors.
func registerPublicAPI(g *echo.Group, deps ServerDeps) {
	api := publicApi{catalog: deps.CatalogSvc}

	g.GET("/institutions", api.institutions)
	g.GET("/institutions/:id/courses", api.courses)
}

func (api *publicApi) institutions(ctx echo.Context) error {
	insts, err := api.catalog.ListInstitutions(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing institutions")
	}
	if insts == nil {
		insts = []catalog.Institution{}
	}
	return ctx.JSON(http.StatusOK, insts)
}

func (api *publicApi) courses(ctx echo.Context) error {
	courses, err := api.catalog.ListCourses(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	if courses == nil {
		courses = []catalog.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}
