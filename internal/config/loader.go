package config

import (
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// loadEnv populates a Config from the environment without validating it.
func loadEnv() (*Config, error) {
	cfg := &Config{}
	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Input validation
	if c.Input.Path == "" {
		errs = append(errs, "SALESNORM_INPUT must not be empty")
	}
	if utf8.RuneCountInString(c.Input.Delimiter) != 1 {
		errs = append(errs, fmt.Sprintf("SALESNORM_DELIMITER (%q) must be a single character", c.Input.Delimiter))
	} else if d := c.Input.DelimiterRune(); d == '\n' || d == '\r' || d == '\\' || d == utf8.RuneError {
		errs = append(errs, fmt.Sprintf("SALESNORM_DELIMITER (%q) is not usable as a field separator", c.Input.Delimiter))
	}

	// Output validation
	if c.Output.Dir == "" {
		errs = append(errs, "SALESNORM_OUTPUT_DIR must not be empty")
	}
	validEscapes := map[string]bool{"backslash": true, "none": true}
	if !validEscapes[strings.ToLower(c.Output.Escape)] {
		errs = append(errs, fmt.Sprintf("SALESNORM_ESCAPE (%q) must be one of: backslash, none", c.Output.Escape))
	}
	validOrders := map[string]bool{"insertion": true, "sorted": true}
	if !validOrders[strings.ToLower(c.Output.Order)] {
		errs = append(errs, fmt.Sprintf("SALESNORM_ORDER (%q) must be one of: insertion, sorted", c.Output.Order))
	}

	// Database validation, only when the loader is enabled
	if c.Database.Enabled() {
		if u, err := url.Parse(c.Database.URL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			errs = append(errs, "DATABASE_URL must be a postgres:// or postgresql:// URL")
		}
		if c.Database.Schema == "" {
			errs = append(errs, "DB_SCHEMA must not be empty when DATABASE_URL is set")
		}
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// The database URL is masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Input: {Path: %q, Delimiter: %q}, ", c.Input.Path, c.Input.Delimiter))
	b.WriteString(fmt.Sprintf("Output: {Dir: %q, Escape: %q, CRLF: %v, Order: %q}, ",
		c.Output.Dir, c.Output.Escape, c.Output.CRLF, c.Output.Order))
	if c.Database.Enabled() {
		b.WriteString(fmt.Sprintf("Database: {URL: [MASKED], Schema: %q, Truncate: %v}, ",
			c.Database.Schema, c.Database.Truncate))
	} else {
		b.WriteString("Database: {disabled}, ")
	}
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
