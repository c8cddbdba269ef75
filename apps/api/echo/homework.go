package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shakhna/portal/core/school"
)

type homeworkApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerHomeworkAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := homeworkApi{
		svc:      deps.SchoolSvc,
		validate: deps.Validate,
	}

	hg := g.Group("/homework", jwt)
	hg.GET("", api.homeworkList)
	hg.PATCH("/:id/done", api.markDone)
	hg.POST("", api.createHomework, teacherMiddleware())
}

// homeworkList returns the session student's homework cards.
func (api *homeworkApi) homeworkList(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	list, err := api.svc.StudentHomework(ctx.Request().Context(), claims.GroupID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *homeworkApi) markDone(ctx echo.Context) error {
	var data struct {
		Done bool `json:"done"`
	}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding done flag")
	}

	hw, err := api.svc.MarkHomeworkDone(ctx.Request().Context(), ctx.Param("id"), data.Done)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, hw)
}

func (api *homeworkApi) createHomework(ctx echo.Context) error {
	var data school.NewHomework
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewHomework")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	hw, err := api.svc.CreateHomework(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, hw)
}
