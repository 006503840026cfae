package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/salesnorm/internal/config"
	"github.com/JonMunkholm/salesnorm/internal/core"
	_ "github.com/JonMunkholm/salesnorm/internal/core/tables" // Register all tables
	"github.com/JonMunkholm/salesnorm/internal/database"
	"github.com/JonMunkholm/salesnorm/internal/logging"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

func main() {
	os.Exit(exitCode(os.Stderr, run(os.Args[1:])))
}

// exitCode reports err on w and returns the process exit status.
func exitCode(w io.Writer, err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if msg := core.FormatUserError(err); msg != "" {
		fmt.Fprintf(w, "Error: %s\n", msg)
	}
	fmt.Fprintf(w, "Details: %v\n", err)
	return 1
}

func run(args []string) error {
	// Load .env file if it exists; real environment variables take precedence
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	fs := flag.NewFlagSet("salesnorm", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: salesnorm [flags]\n\nSplits the sales file into Store, WeekDate, Attributes and Sales tables.\n\n")
		fs.PrintDefaults()
	}

	cfg, err := config.LoadWithArgs(fs, args)
	if err != nil {
		return err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, _ = logging.WithRunID(ctx)
	logger := logging.FromContext(ctx)
	logger.Debug("configuration loaded", "config", cfg.String())

	svc, err := core.NewService(core.Options{
		InputPath: cfg.Input.Path,
		OutputDir: cfg.Output.Dir,
		Writer: core.WriterOptions{
			Delimiter: cfg.Input.DelimiterRune(),
			Escape:    core.EscapeMode(strings.ToLower(cfg.Output.Escape)),
			CRLF:      cfg.Output.CRLF,
		},
		Order: core.OrderPolicy(strings.ToLower(cfg.Output.Order)),
	}, core.All())
	if err != nil {
		return err
	}

	logger.Info("run started", "input", cfg.Input.Path, "output_dir", cfg.Output.Dir, "tables", core.TableCount())

	ds, results, err := svc.Run(ctx)
	if ds == nil {
		return err
	}
	writeErr := err

	for _, res := range results {
		if res.Err == nil {
			logger.Debug("table summary", "table", res.Label, "rows", res.Rows, "path", res.Path)
		}
	}

	var loadErr error
	if cfg.Database.Enabled() {
		loadErr = loadDatabase(ctx, cfg, ds, core.OrderPolicy(strings.ToLower(cfg.Output.Order)))
	}

	if err := errors.Join(writeErr, loadErr); err != nil {
		logger.Error("run failed", "error", err)
		return err
	}

	logger.Info("run complete", "source_rows", ds.SourceRows)
	return nil
}

func loadDatabase(ctx context.Context, cfg *config.Config, ds *core.Dataset, order core.OrderPolicy) error {
	pool, err := database.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return &core.LoadError{Err: err}
	}
	defer pool.Close()

	loader := database.NewLoader(pool, cfg.Database.Schema, cfg.Database.Truncate)
	_, err = loader.Load(ctx, ds, order)
	return err
}
