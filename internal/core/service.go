package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/salesnorm/internal/logging"
)

// ContextCheckInterval is how often (in rows) the read loop checks for
// cancellation.
var ContextCheckInterval = 1000

// Options configures a normalization run.
type Options struct {
	InputPath string
	OutputDir string
	Writer    WriterOptions
	Order     OrderPolicy
}

// Table is one normalized table accumulated during a run.
type Table struct {
	Def    TableDefinition
	Header Record
	Set    *RecordSet
}

// Dataset holds the four deduplicated tables built from one source file.
type Dataset struct {
	Source     string
	SourceRows int // data rows read, excluding the header
	Tables     []*Table
}

// Table returns the table with the given key, or nil.
func (d *Dataset) Table(key string) *Table {
	for _, t := range d.Tables {
		if t.Def.Info.Key == key {
			return t
		}
	}
	return nil
}

// TableResult reports the outcome of writing one table.
type TableResult struct {
	Key   string
	Label string
	Path  string
	Rows  int // data rows written, excluding the header
	Err   error
}

// Service runs the read, project, deduplicate and write stages.
type Service struct {
	opts   Options
	tables []TableDefinition
}

// NewService creates a Service over the given table definitions.
// Pass All() to use the registered tables.
func NewService(opts Options, tables []TableDefinition) (*Service, error) {
	if len(tables) == 0 {
		return nil, errors.New("no tables registered")
	}
	if opts.InputPath == "" {
		return nil, errors.New("input path is required")
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Writer.Delimiter == 0 {
		opts.Writer.Delimiter = ','
	}
	if opts.Writer.Escape == "" {
		opts.Writer.Escape = EscapeBackslash
	}
	if opts.Order == "" {
		opts.Order = OrderInsertion
	}
	return &Service{opts: opts, tables: tables}, nil
}

// Normalize reads the source file and returns the deduplicated tables.
// Nothing is written; a FormatError or IOError aborts the whole read.
func (s *Service) Normalize(ctx context.Context) (*Dataset, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	r, err := OpenReader(s.opts.InputPath, s.opts.Writer.Delimiter)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	ds, err := s.accumulate(ctx, r)
	if err != nil {
		return nil, err
	}

	logger.Info("source read",
		"path", s.opts.InputPath,
		"rows", ds.SourceRows,
		"bytes", r.BytesRead(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ds, nil
}

// NormalizeReader is Normalize over an already open source.
func (s *Service) NormalizeReader(ctx context.Context, src io.Reader, name string) (*Dataset, error) {
	r, err := NewReader(src, name, s.opts.Writer.Delimiter)
	if err != nil {
		return nil, err
	}
	return s.accumulate(ctx, r)
}

func (s *Service) accumulate(ctx context.Context, r *Reader) (*Dataset, error) {
	header := r.Header()
	ds := &Dataset{Source: s.opts.InputPath, Tables: make([]*Table, len(s.tables))}
	for i, def := range s.tables {
		ds.Tables[i] = &Table{Def: def, Header: def.Project(header), Set: NewRecordSet()}
	}

	for {
		if ds.SourceRows%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("read cancelled after %d rows: %w", ds.SourceRows, err)
			}
		}

		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		ds.SourceRows++

		for _, t := range ds.Tables {
			t.Set.Add(t.Def.Project(row))
		}
	}

	return ds, nil
}

// Write writes every table of ds to its own file in the output directory.
// Tables are independent: a failure on one does not stop the others. The
// returned error joins every table failure and is nil only if all succeeded.
func (s *Service) Write(ctx context.Context, ds *Dataset) ([]TableResult, error) {
	results := make([]TableResult, 0, len(ds.Tables))
	var errs []error

	for _, t := range ds.Tables {
		logger := logging.WithFields(ctx, "table", t.Def.Info.Key)
		path := filepath.Join(s.opts.OutputDir, t.Def.Info.FileName)
		rows := t.Set.Records(s.opts.Order)

		res := TableResult{Key: t.Def.Info.Key, Label: t.Def.Info.Label, Path: path}
		if err := WriteTableFile(path, t.Header, rows, s.opts.Writer); err != nil {
			logger.Error("table write failed", "path", path, "error", err)
			res.Err = err
			errs = append(errs, err)
		} else {
			res.Rows = len(rows)
			logger.Info("table written", "path", path, "rows", res.Rows)
		}
		results = append(results, res)
	}

	return results, errors.Join(errs...)
}

// Run reads the source and writes all four tables.
func (s *Service) Run(ctx context.Context) (*Dataset, []TableResult, error) {
	ds, err := s.Normalize(ctx)
	if err != nil {
		return nil, nil, err
	}
	results, err := s.Write(ctx, ds)
	return ds, results, err
}
