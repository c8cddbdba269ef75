package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shakhna/portal/core/school"
)

type paymentApi struct {
	svc *school.Service
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := paymentApi{svc: deps.SchoolSvc}

	pg := g.Group("/payments", jwt)
	pg.GET("/schedule", api.schedule)
}

// schedule returns the session student's month-by-month payment schedule up to
// today, with the unpaid warning flag.
func (api *paymentApi) schedule(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	sched, err := api.svc.StudentPayments(ctx.Request().Context(), claims.Subject, claims.GroupID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sched)
}
