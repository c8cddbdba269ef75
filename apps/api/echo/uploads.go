package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shakhna/portal/core"
)

type uploadApi struct {
	svc core.MediaService
}

func registerUploadAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := uploadApi{svc: deps.MediaSvc}

	ug := g.Group("/uploads", jwt, teacherMiddleware())
	ug.POST("", api.upload)
}

// upload relays a multipart file to the media host. A failed relay is not a
// server error: the client gets {"ok": false} and decides what to do.
func (api *uploadApi) upload(ctx echo.Context) error {
	fileHdr, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(errors.New("missing file part"),
			core.FieldError{Field: "file", Error: "file is required"})
	}

	src, err := fileHdr.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	uploaded := api.svc.Upload(ctx.Request().Context(), fileHdr.Filename, src)
	if uploaded == nil {
		return ctx.JSON(http.StatusBadGateway, echo.Map{
			"ok":    false,
			"error": "upload_failed",
		})
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"ok":        true,
		"publicUrl": uploaded.URL,
		"filename":  uploaded.Filename,
	})
}
