package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Application cap policies.
const (
	// CapPolicyAll counts every application to an institution against the cap, whatever its status.
	CapPolicyAll = "all"
	// CapPolicyActive only counts applications that are not rejected or declined.
	CapPolicyActive = "active"
)

type (
	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		SecretKey    string
		WorkDir      string
		RollbarToken string

		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridApiKey   string

		Server    ServerConfig
		Database  DatabaseConfig
		Admission AdmissionConfig
		RateLimit RateLimitConfig
	}

	ServerConfig struct {
		Host                      string
		Port                      int
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	AdmissionConfig struct {
		// ApplicationCap is the maximum number of applications a student may hold against one institution.
		ApplicationCap int
		// CapPolicy is one of CapPolicyAll, CapPolicyActive.
		CapPolicy string
		// TxAttempts bounds how many times a contended submission or decision is re-executed.
		TxAttempts       int
		PromoteOnVacancy bool
		EnforceWindow    bool
	}

	RateLimitConfig struct {
		RedisURL string
		Limit    int
		Window   time.Duration
	}
)

func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NewConfig loads the application config from the environment.
// Env variables are prefixed by the current ENV (DEV, TEST, QA, PROD), e.g. DEV_DATABASE_NAME.
// config/.env.<env> is loaded first if present.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Chaguo")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "k6f!w3q-0)zm$eqt7=ps&u9xa2(c!y)#*d1(#rb5h^$cfgn3emz")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromName", "Chaguo")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("sendgridApiKey", "")

	conf.SetDefault("server_host", "0.0.0.0")
	conf.SetDefault("server_port", 8000)
	conf.SetDefault("server_debugHost", "0.0.0.0:4000")
	conf.SetDefault("server_shutdownTimeout", 5*time.Second)
	conf.SetDefault("server_jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("server_jwtRefreshExpirationDelta", 4*time.Hour)

	conf.SetDefault("database_engine", "postgres")
	conf.SetDefault("database_host", "localhost")
	conf.SetDefault("database_port", 5432)
	conf.SetDefault("database_name", "chaguo")
	conf.SetDefault("database_user", "chaguo")
	conf.SetDefault("database_password", "chaguo")
	conf.SetDefault("database_adminUser", "postgres")
	conf.SetDefault("database_adminPassword", "postgres")
	conf.SetDefault("database_disableTLS", true)

	conf.SetDefault("admission_applicationCap", 2)
	conf.SetDefault("admission_capPolicy", CapPolicyAll)
	conf.SetDefault("admission_txAttempts", 3)
	conf.SetDefault("admission_promoteOnVacancy", true)
	conf.SetDefault("admission_enforceWindow", true)

	conf.SetDefault("rateLimit_redisURL", "")
	conf.SetDefault("rateLimit_limit", 10)
	conf.SetDefault("rateLimit_window", time.Minute)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	conf.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		Build:        conf.GetString("build"),
		SecretKey:    conf.GetString("secretKey"),
		WorkDir:      wd,
		RollbarToken: conf.GetString("rollbarToken"),

		FrontendBaseURL: conf.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{
			Name:    conf.GetString("defaultFromName"),
			Address: conf.GetString("defaultFromEmail"),
		},
		SendgridApiKey: conf.GetString("sendgridApiKey"),

		Server: ServerConfig{
			Host:                      conf.GetString("server_host"),
			Port:                      conf.GetInt("server_port"),
			DebugHost:                 conf.GetString("server_debugHost"),
			ShutdownTimeout:           conf.GetDuration("server_shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("server_jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("server_jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database_engine"),
			Host:          conf.GetString("database_host"),
			Port:          conf.GetInt("database_port"),
			Name:          conf.GetString("database_name"),
			User:          conf.GetString("database_user"),
			Password:      conf.GetString("database_password"),
			AdminUser:     conf.GetString("database_adminUser"),
			AdminPassword: conf.GetString("database_adminPassword"),
			DisableTLS:    conf.GetBool("database_disableTLS"),
		},
		Admission: AdmissionConfig{
			ApplicationCap:   conf.GetInt("admission_applicationCap"),
			CapPolicy:        conf.GetString("admission_capPolicy"),
			TxAttempts:       conf.GetInt("admission_txAttempts"),
			PromoteOnVacancy: conf.GetBool("admission_promoteOnVacancy"),
			EnforceWindow:    conf.GetBool("admission_enforceWindow"),
		},
		RateLimit: RateLimitConfig{
			RedisURL: conf.GetString("rateLimit_redisURL"),
			Limit:    conf.GetInt("rateLimit_limit"),
			Window:   conf.GetDuration("rateLimit_window"),
		},
	}
}

// NewTestConfig returns the config used by tests: no env lookups, debug off.
func NewTestConfig() *Config {
	return &Config{
		Env:              "TEST",
		TestMode:         true,
		AppName:          "Chaguo",
		Build:            "test",
		SecretKey:        "test-secret",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "Chaguo", Address: "noreply@localhost"},
		Server: ServerConfig{
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
		Admission: AdmissionConfig{
			ApplicationCap:   2,
			CapPolicy:        CapPolicyAll,
			TxAttempts:       3,
			PromoteOnVacancy: true,
			EnforceWindow:    true,
		},
		RateLimit: RateLimitConfig{Limit: 10, Window: time.Minute},
	}
}
