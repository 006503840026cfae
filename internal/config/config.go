// Package config provides centralized configuration management for the tool.
// It loads configuration from environment variables with defaults that
// reproduce the fixed file names, lets command-line flags override them, and
// validates all settings before any file is touched.
package config

// Config holds all application configuration.
type Config struct {
	Input    InputConfig
	Output   OutputConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// InputConfig holds source file settings.
type InputConfig struct {
	// Path is the denormalized source file (default: SalesFile.csv)
	Path string `env:"SALESNORM_INPUT" default:"SalesFile.csv"`

	// Delimiter is the single-character field separator, shared by the
	// source and the outputs (default: ,)
	Delimiter string `env:"SALESNORM_DELIMITER" default:","`
}

// OutputConfig holds settings for the four table files.
type OutputConfig struct {
	// Dir is the directory the table files are written to (default: .)
	Dir string `env:"SALESNORM_OUTPUT_DIR" default:"."`

	// Escape is backslash or none (default: backslash)
	Escape string `env:"SALESNORM_ESCAPE" default:"backslash"`

	// CRLF ends output lines with \r\n instead of \n (default: false)
	CRLF bool `env:"SALESNORM_CRLF" default:"false"`

	// Order is insertion or sorted (default: insertion)
	Order string `env:"SALESNORM_ORDER" default:"insertion"`
}

// DatabaseConfig holds the optional Postgres loader settings.
type DatabaseConfig struct {
	// URL enables the loader when set.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// Schema is the target schema (default: public)
	Schema string `env:"DB_SCHEMA" default:"public"`

	// Truncate empties the tables before loading (default: true)
	Truncate bool `env:"DB_TRUNCATE" default:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// DelimiterRune returns the configured delimiter as a rune.
// Only meaningful after Validate succeeds.
func (c *InputConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}

// Enabled reports whether the Postgres loader should run.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}
