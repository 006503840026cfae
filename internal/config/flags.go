package config

import (
	"fmt"

	flag "github.com/spf13/pflag"
)

// BindFlags defines command-line flags on fs that write into cfg.
// The current values of cfg become the flag defaults, so flags only
// override what the environment set when they are given explicitly.
func BindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Input.Path, "input", cfg.Input.Path, "source CSV file (or set SALESNORM_INPUT)")
	fs.StringVar(&cfg.Input.Delimiter, "delimiter", cfg.Input.Delimiter, "field delimiter for input and output (or set SALESNORM_DELIMITER)")

	fs.StringVar(&cfg.Output.Dir, "output-dir", cfg.Output.Dir, "directory for Store.csv, WeekDate.csv, Attributes.csv, Sales.csv (or set SALESNORM_OUTPUT_DIR)")
	fs.StringVar(&cfg.Output.Escape, "escape", cfg.Output.Escape, "output escaping: backslash or none (or set SALESNORM_ESCAPE)")
	fs.BoolVar(&cfg.Output.CRLF, "crlf", cfg.Output.CRLF, "end output lines with CRLF (or set SALESNORM_CRLF=true)")
	fs.StringVar(&cfg.Output.Order, "order", cfg.Output.Order, "output row order: insertion or sorted (or set SALESNORM_ORDER)")

	fs.StringVar(&cfg.Database.URL, "database-url", cfg.Database.URL, "load the tables into this Postgres database (or set DATABASE_URL)")
	fs.StringVar(&cfg.Database.Schema, "db-schema", cfg.Database.Schema, "Postgres schema for the tables (or set DB_SCHEMA)")
	fs.BoolVar(&cfg.Database.Truncate, "db-truncate", cfg.Database.Truncate, "empty the tables before loading (or set DB_TRUNCATE)")

	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "debug, info, warn, error (or set LOG_LEVEL)")
	fs.StringVar(&cfg.Logging.Format, "log-format", cfg.Logging.Format, "text or json (or set LOG_FORMAT)")
}

// LoadWithArgs loads configuration from the environment, applies the
// command-line arguments on top, and validates the result.
// Returns flag.ErrHelp when -h or --help was requested.
func LoadWithArgs(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg, err := loadEnv()
	if err != nil {
		return nil, err
	}

	BindFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}
