package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/shakhna/portal/apps/api/echo"
	"github.com/shakhna/portal/core"
	"github.com/shakhna/portal/core/school"
	"github.com/shakhna/portal/core/user"
	emailsvc "github.com/shakhna/portal/services/email"
	logsvc "github.com/shakhna/portal/services/logger"
	mediasvc "github.com/shakhna/portal/services/media"
	"github.com/shakhna/portal/storage/airtable"
	"github.com/shakhna/portal/storage/testindex"
)

const shutdownTimeout = 20 * time.Second

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stdout, conf.AppName+" api : ", log.LstdFlags|log.Lshortfile)

	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up store-backed repos
	client := airtable.NewClient(conf.Store.BaseID, conf.Store.Token)
	usrRepo := airtable.NewUserRepository(client, conf.Store.Tables.Users)
	schoolRepo := airtable.NewSchoolRepository(client, conf.Store.Tables)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(usrRepo, mailSvc)
	schoolSvc := school.NewService(schoolRepo, logger)
	mediaSvc := mediasvc.NewCloudinaryService(conf, logger)
	catalog := testindex.New(testsIndexURL(conf))

	validate, translator := core.NewValidator()

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	addr := fmt.Sprintf("%s:%d", conf.Server.Host, conf.Server.Port)
	app := echoapi.NewServer(addr, shutdown, &echoapi.Deps{
		Conf:        conf,
		Logger:      logger,
		UserSvc:     usrSvc,
		SchoolSvc:   schoolSvc,
		MediaSvc:    mediaSvc,
		TestCatalog: catalog,
		Validate:    validate,
		Translator:  translator,
	})
	go app.Start()

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v : server stopping...", sig))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Stop(ctx); err != nil {
		std.Fatalf("could not stop server gracefully: %v", err)
	}
}

// testsIndexURL falls back to the server's own tests listing when no external
// index is configured.
func testsIndexURL(conf *core.Config) string {
	if conf.TestsIndexURL != "" {
		return conf.TestsIndexURL
	}
	return fmt.Sprintf("http://%s:%d/tests/", conf.Server.Host, conf.Server.Port)
}
