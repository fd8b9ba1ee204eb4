package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Development fallbacks, used only outside production.
const (
	devSessionSecret   = "dev-only-upgrade-auth-secret-change-this-in-production"
	devStudentEmail    = "Student@UpGrade.com"
	devStudentPassword = "Student123"
	devTutorEmail      = "Ibrahim@UpGrade.com"
	devTutorPassword   = "Ibrahim123"
)

// minSessionSecretLength is the minimum secret size accepted in production.
const minSessionSecretLength = 32

// Config holds runtime configuration values for the API service. It is
// built once at startup and passed to the components that need it; no
// component reads the environment on its own.
type Config struct {
	AppName string
	AppEnv  string
	AppPort string

	SessionSecret   string
	StudentEmail    string
	StudentPassword string
	TutorEmail      string
	TutorPassword   string

	QuickLearnEmails []string

	StorePath    string
	UploadDir    string
	UploadMaxMB  int
	PublicPrefix string
	RedisURL     string
	ContactRPM   int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs with production guards.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and an
// optional .env file. In production the session secret and both
// credential pairs must be provided; elsewhere fixed development
// fallbacks fill the gaps.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("UPGRADE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "UpGrade API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("store.path", "data/course-modules.json")
	v.SetDefault("upload.dir", "public/course-files")
	v.SetDefault("upload.max_mb", 20)
	v.SetDefault("upload.public_prefix", "/course-files")
	v.SetDefault("contact.rpm", 10)

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		SessionSecret:    v.GetString("auth.session_secret"),
		StudentEmail:     v.GetString("auth.student_email"),
		StudentPassword:  v.GetString("auth.student_password"),
		TutorEmail:       v.GetString("auth.tutor_email"),
		TutorPassword:    v.GetString("auth.tutor_password"),
		QuickLearnEmails: splitList(v.GetString("auth.quicklearn_emails")),
		StorePath:        v.GetString("store.path"),
		UploadDir:        v.GetString("upload.dir"),
		UploadMaxMB:      v.GetInt("upload.max_mb"),
		PublicPrefix:     v.GetString("upload.public_prefix"),
		RedisURL:         v.GetString("redis.url"),
		ContactRPM:       v.GetInt("contact.rpm"),
	}

	if cfg.IsProduction() {
		if len(cfg.SessionSecret) < minSessionSecretLength {
			return Config{}, fmt.Errorf("auth session secret must be at least %d characters in production", minSessionSecretLength)
		}
		if cfg.StudentEmail == "" || cfg.StudentPassword == "" || cfg.TutorEmail == "" || cfg.TutorPassword == "" {
			return Config{}, fmt.Errorf("role credentials must be provided in production")
		}
		return cfg, nil
	}

	if len(cfg.SessionSecret) < minSessionSecretLength {
		cfg.SessionSecret = devSessionSecret
	}
	if cfg.StudentEmail == "" {
		cfg.StudentEmail = devStudentEmail
	}
	if cfg.StudentPassword == "" {
		cfg.StudentPassword = devStudentPassword
	}
	if cfg.TutorEmail == "" {
		cfg.TutorEmail = devTutorEmail
	}
	if cfg.TutorPassword == "" {
		cfg.TutorPassword = devTutorPassword
	}

	return cfg, nil
}

func splitList(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
