package echoapi

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"os"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/shakhna/portal/core"
	"github.com/shakhna/portal/core/school"
	"github.com/shakhna/portal/core/user"
	"github.com/shakhna/portal/storage/testindex"
)

type (
	// TestCatalog lists the test pages available for assignment.
	TestCatalog interface {
		Available(ctx context.Context) ([]testindex.File, error)
	}

	Deps struct {
		Conf           *core.Config
		Logger         core.Logger
		UserSvc        *user.Service
		SchoolSvc      *school.Service
		MediaSvc       core.MediaService
		TestCatalog    TestCatalog
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		addr     string
		deps     *Deps
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(addr string, shutdown chan os.Signal, deps *Deps) Server {
	s := &server{
		addr:     addr,
		deps:     deps,
		app:      echo.New(),
		shutdown: shutdown,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	// the static test pages, plus a listing of them for the tests catalog
	s.app.Static("/tests", conf.TestsDir)
	s.app.GET("/tests", listTestPages(conf.TestsDir))

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(jwtConfig(conf))

	registerAuthAPI(api, jwt, s.deps)
	registerHomeworkAPI(api, jwt, s.deps)
	registerPaymentAPI(api, jwt, s.deps)
	registerTestAPI(api, jwt, s.deps)
	registerUploadAPI(api, jwt, s.deps)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.addr))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// signalShutdown lets the error handler request a graceful stop on
// unrecoverable errors.
func (s *server) signalShutdown() {
	if s.shutdown != nil {
		s.shutdown <- syscall.SIGTERM
	}
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the Shakhna portal API!")
}

// listTestPages serves a bare directory index of the published test pages.
// The tests catalog scrapes it when no external index URL is configured; a
// missing directory reads as an empty listing, not an error.
func listTestPages(dir string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		entries, err := os.ReadDir(dir)
		if err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "reading tests dir")
		}

		var b strings.Builder
		b.WriteString("<pre>\n")
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := html.EscapeString(entry.Name())
			fmt.Fprintf(&b, "<a href=\"%s\">%s</a>\n", name, name)
		}
		b.WriteString("</pre>\n")
		return ctx.HTML(http.StatusOK, b.String())
	}
}
