// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	dbPath         = pflag.String("db", "", "Overrides the database DSN from the config file")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers   = []string{"sqlite", "postgres"}
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.cors_origins", "host_cors_origins")

	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")
	v.BindEnv("host.ssl.certificate_path", "host_ssl_certificate_path")
	v.BindEnv("host.ssl.certificate_key_path", "host_ssl_certificate_key_path")

	v.BindEnv("jwt.secret", "jwt_secret")
	v.BindEnv("jwt.user_ttl_minutes", "jwt_user_ttl_minutes")
	v.BindEnv("jwt.guest_ttl_minutes", "jwt_guest_ttl_minutes")

	v.BindEnv("guest.id_length", "guest_id_length")

	v.BindEnv("database.driver", "database_driver")
	v.BindEnv("database.dsn", "database_dsn")

	v.BindEnv("upload.max_size", "upload_max_size")
	v.BindEnv("upload.allowed_types", "upload_allowed_types")

	v.BindEnv("inference.endpoint", "inference_endpoint")
	v.BindEnv("inference.timeout_seconds", "inference_timeout_seconds")
	v.BindEnv("inference.model_version", "inference_model_version")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.cors_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("jwt.user_ttl_minutes", 43200)
	v.SetDefault("jwt.guest_ttl_minutes", 1440)

	// 12 hex chars is roughly 48 bits of entropy. Enough to stop someone
	// guessing another guest's session, raise it if that ever stops being true
	v.SetDefault("guest.id_length", 12)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "captions.db")

	v.SetDefault("upload.max_size", 10)
	v.SetDefault("upload.allowed_types", []string{"image/jpeg", "image/png", "image/gif"})

	v.SetDefault("inference.timeout_seconds", 30)
	v.SetDefault("inference.model_version", "unknown")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); ok {
			return errors.New("config.toml file is missing")
		}

		return fmt.Errorf("failed to read config file, %w", err)
	}

	if *dbPath != "" {
		v.Set("database.dsn", *dbPath)
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetBool("host.ssl.enabled") {
		if v.GetString("host.ssl.certificate_path") == "" {
			return errors.New("no ssl certificate path provided")
		}

		if v.GetString("host.ssl.certificate_key_path") == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if v.GetString("jwt.secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if v.GetInt("jwt.user_ttl_minutes") <= 0 {
		return errors.New("jwt.user_ttl_minutes must be bigger than 0")
	}

	if v.GetInt("jwt.guest_ttl_minutes") <= 0 {
		return errors.New("jwt.guest_ttl_minutes must be bigger than 0")
	}

	if v.GetInt("guest.id_length") < 12 {
		return errors.New("guest.id_length must be at least 12")
	}

	if !slices.Contains(validDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("database.dsn") == "" {
		return errors.New("database dsn can't be empty")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if len(v.GetStringSlice("upload.allowed_types")) == 0 {
		zap.L().Warn("No upload.allowed_types specified, any image type will be accepted")
	}

	if v.GetString("inference.endpoint") == "" {
		return errors.New("inference endpoint can't be empty")
	}

	if v.GetInt("inference.timeout_seconds") <= 0 {
		return errors.New("inference.timeout_seconds must be bigger than 0")
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}
