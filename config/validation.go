package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the configuration carries everything the server
// needs to start. Test runs supply their own database, so the requirements
// are relaxed there.
func ValidateConfig(cfg *Config) error {
	var errs []string

	if cfg.JWTSecret == "" && !IsTest() {
		errs = append(errs, "JWT_SECRET is required")
	}
	if cfg.DBPassword == "" && IsProduction() {
		errs = append(errs, "db_password secret is required in production")
	}
	if cfg.ServerPort == "" {
		errs = append(errs, "SERVER_PORT must not be empty")
	}
	if cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBName == "" {
		errs = append(errs, "DB_HOST, DB_PORT and DB_NAME must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
