package echoapi

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shakhna/portal/core"
	"github.com/shakhna/portal/core/school"
)

type (
	testApi struct {
		conf     *core.Config
		svc      *school.Service
		catalog  TestCatalog
		validate *validator.Validate
	}

	// NewTestUpload carries a test page to publish plus the assignment details.
	// An empty filename gets a generated one; an absent due date leaves the
	// test without a deadline.
	NewTestUpload struct {
		Title    string `json:"title" validate:"required"`
		GroupID  string `json:"group" validate:"required"`
		DueDate  string `json:"due_date"`
		Filename string `json:"filename"`
		Content  string `json:"content" validate:"required"`
	}
)

func (nt *NewTestUpload) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.GroupID = core.CleanString(nt.GroupID)
	nt.DueDate = core.CleanString(nt.DueDate)
	nt.Filename = core.CleanString(nt.Filename)
	return validate.Struct(nt)
}

func registerTestAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := testApi{
		conf:     deps.Conf,
		svc:      deps.SchoolSvc,
		catalog:  deps.TestCatalog,
		validate: deps.Validate,
	}

	tg := g.Group("/tests", jwt)
	tg.GET("", api.studentTests)
	tg.GET("/available", api.availableTests, teacherMiddleware())
	tg.POST("", api.uploadTest, teacherMiddleware())

	teacher := g.Group("/teacher", jwt, teacherMiddleware())
	teacher.GET("/tests", api.teacherTests)
	teacher.GET("/tests/:id/stats", api.testStats)

	g.GET("/groups", api.groupOptions, jwt, teacherMiddleware())
}

// studentTests lists the tests assigned to the session student's group.
func (api *testApi) studentTests(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	panel, err := api.svc.StudentTests(ctx.Request().Context(), claims.GroupID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, panel)
}

// availableTests lists the published test pages the teacher can assign.
func (api *testApi) availableTests(ctx echo.Context) error {
	files, err := api.catalog.Available(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing available tests")
	}
	return ctx.JSON(http.StatusOK, files)
}

// uploadTest publishes the test page under the served tests directory and
// records the assignment.
func (api *testApi) uploadTest(ctx echo.Context) error {
	var data NewTestUpload
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTestUpload")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	name := filepath.Base(data.Filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = uuid.New().String() + ".html"
	}

	if err := os.MkdirAll(api.conf.TestsDir, 0o755); err != nil {
		return errors.Wrap(err, "creating tests dir")
	}
	if err := os.WriteFile(filepath.Join(api.conf.TestsDir, name), []byte(data.Content), 0o644); err != nil {
		return errors.Wrap(err, "writing test page "+name)
	}

	test, err := api.svc.AssignTest(ctx.Request().Context(), school.NewTest{
		Title:   data.Title,
		GroupID: data.GroupID,
		DueDate: data.DueDate,
		FileURL: api.testFileURL(name),
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, test)
}

// teacherTests returns the full panel with group names resolved.
func (api *testApi) teacherTests(ctx echo.Context) error {
	panel, err := api.svc.TeacherTests(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, panel)
}

func (api *testApi) testStats(ctx echo.Context) error {
	groupID := core.CleanString(ctx.QueryParam("group"))
	if groupID == "" {
		return core.NewValidationError(errors.New("missing group parameter"),
			core.FieldError{Field: "group", Error: "group is required"})
	}

	stats, err := api.svc.TestStatistics(
		ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("title"), groupID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *testApi) groupOptions(ctx echo.Context) error {
	opts, err := api.svc.GroupOptions(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, opts)
}

// testFileURL is the URL the page is served at once published.
func (api *testApi) testFileURL(name string) string {
	if base := api.conf.TestsIndexURL; base != "" {
		return strings.TrimSuffix(base, "/") + "/" + name
	}
	return "/tests/" + name
}
