package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"buildall/pkg/logging"
)

// Environment variables read by ApplyEnv.
const (
	EnvToken       = "BINSTAR_TOKEN"
	EnvS3Endpoint  = "BUILDALL_S3_ENDPOINT"
	EnvS3Region    = "BUILDALL_S3_REGION"
	EnvS3AccessKey = "BUILDALL_S3_ACCESS_KEY"
	EnvS3SecretKey = "BUILDALL_S3_SECRET_KEY"
	EnvS3UseSSL    = "BUILDALL_S3_USE_SSL"
)

// LoadConfig reads the configuration file at path on top of the defaults.
// With an empty path, DefaultConfigFile is used if it exists. An explicitly
// named file must exist.
func LoadConfig(path string) (Config, error) {
	config := GetDefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			logging.Debug("ConfigLoader", "No %s found, using defaults", path)
			return config, nil
		}
		return Config{}, NewConfigurationError(path, "io", err.Error())
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, NewConfigurationError(path, "parse", err.Error())
	}
	logging.Info("ConfigLoader", "Loaded configuration from %s", path)
	return config, nil
}

// LoadEnv loads .env style files into the process environment. Missing files
// are skipped; variables already set are not overridden.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load environment from %s: %w", strings.Join(existing, ", "), err)
	}
	logging.Debug("ConfigLoader", "Loaded environment from %s", strings.Join(existing, ", "))
	return nil
}

// ApplyEnv copies secrets and S3 settings from the environment.
func ApplyEnv(config *Config, getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if token := strings.TrimSpace(getenv(EnvToken)); token != "" {
		config.Upload.Token = token
	}
	s3 := &config.Upload.S3
	if v := strings.TrimSpace(getenv(EnvS3Endpoint)); v != "" {
		s3.Endpoint = v
	}
	if v := strings.TrimSpace(getenv(EnvS3Region)); v != "" {
		s3.Region = v
	}
	if v := strings.TrimSpace(getenv(EnvS3AccessKey)); v != "" {
		s3.AccessKey = v
	}
	if v := strings.TrimSpace(getenv(EnvS3SecretKey)); v != "" {
		s3.SecretKey = v
	}
	if v := strings.TrimSpace(getenv(EnvS3UseSSL)); v != "" {
		if useSSL, err := strconv.ParseBool(v); err == nil {
			s3.UseSSL = useSSL
		} else {
			logging.Warn("ConfigLoader", "Ignoring %s=%q: not a boolean", EnvS3UseSSL, v)
		}
	}
}
