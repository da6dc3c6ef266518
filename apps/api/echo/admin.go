package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chaguo/core/catalog"
)

type adminApi struct {
	catalog  *catalog.Service
	validate *validator.Validate
}

func registerAdminAPI(g *echo.Group, deps ServerDeps) {
	api := adminApi{catalog: deps.CatalogSvc, validate: deps.Validate}

	g.POST("/admissions/publish", api.publishAdmissions)
}

func (api *adminApi) publishAdmissions(ctx echo.Context) error {
	var data catalog.Publication
	if err := bindAndValidate(ctx, &data, api.validate, "Publication"); err != nil {
		return err
	}

	n, err := api.catalog.PublishAdmissions(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "publishing admissions")
	}
	return ctx.JSON(http.StatusOK, PublishResponse{Affected: n})
}
