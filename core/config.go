package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	// TableNames holds the name of the remote table backing each entity.
	TableNames struct {
		Users       string
		Groups      string
		Homeworks   string
		Payments    string
		AssignTests string
		TestResults string
	}

	ServerConfig struct {
		Host               string
		Port               int
		JWTExpirationDelta time.Duration
	}

	StoreConfig struct {
		BaseID string
		Token  string
		Tables TableNames
	}

	MediaConfig struct {
		CloudName string
		APIKey    string
		APISecret string
		Folder    string
	}

	Config struct {
		Debug            bool
		TestMode         bool
		Env              string
		Build            string
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridAPIKey   string
		RollbarToken     string
		TestsDir         string
		TestsIndexURL    string

		Server ServerConfig
		Store  StoreConfig
		Media  MediaConfig
	}
)

// NewConfig loads configuration from the environment with sane defaults.
// An optional config/.env.<env> file is loaded first if present.
func NewConfig() *Config {
	conf := viper.New()

	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Shakhna")
	conf.SetDefault("secretKey", "o2h&x7!dz)ebp+4c(mqy5u*0s#vg9r$kt81wjf6l3a%i_e-")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("frontendBaseURL", "http://localhost:8000")
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverPort", 8000)
	conf.SetDefault("testsDir", "assets/tests")

	conf.SetDefault("storeBaseID", "")
	conf.SetDefault("storeToken", "")
	conf.SetDefault("usersTable", "Users")
	conf.SetDefault("groupsTable", "Groups")
	conf.SetDefault("homeworksTable", "Homeworks")
	conf.SetDefault("paymentsTable", "Payments")
	conf.SetDefault("assignTestsTable", "Assign_Tests")
	conf.SetDefault("testResultsTable", "Test_Results")

	conf.SetDefault("mediaCloudName", "")
	conf.SetDefault("mediaAPIKey", "")
	conf.SetDefault("mediaAPISecret", "")
	conf.SetDefault("mediaFolder", "shakhna_uploads")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		Env:              env,
		Build:            conf.GetString("build"),
		AppName:          conf.GetString("appName"),
		SecretKey:        conf.GetString("secretKey"),
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		SendgridAPIKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		TestsDir:         conf.GetString("testsDir"),
		TestsIndexURL:    conf.GetString("testsIndexURL"),
		Server: ServerConfig{
			Host:               conf.GetString("serverHost"),
			Port:               conf.GetInt("serverPort"),
			JWTExpirationDelta: conf.GetDuration("jwtExpirationDelta"),
		},
		Store: StoreConfig{
			BaseID: conf.GetString("storeBaseID"),
			Token:  conf.GetString("storeToken"),
			Tables: TableNames{
				Users:       conf.GetString("usersTable"),
				Groups:      conf.GetString("groupsTable"),
				Homeworks:   conf.GetString("homeworksTable"),
				Payments:    conf.GetString("paymentsTable"),
				AssignTests: conf.GetString("assignTestsTable"),
				TestResults: conf.GetString("testResultsTable"),
			},
		},
		Media: MediaConfig{
			CloudName: conf.GetString("mediaCloudName"),
			APIKey:    conf.GetString("mediaAPIKey"),
			APISecret: conf.GetString("mediaAPISecret"),
			Folder:    conf.GetString("mediaFolder"),
		},
	}
}
