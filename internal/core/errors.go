package core

import (
	"errors"
	"fmt"
)

// Error codes carried by the typed errors below.
const (
	CodeInputOpen     = "FILE001"
	CodeInputRead     = "FILE002"
	CodeOutputWrite   = "FILE003"
	CodeShortRow      = "FMT001"
	CodeMissingHeader = "FMT002"
	CodeDatabaseLoad  = "DB001"
	CodeConfig        = "CFG001"
)

// ErrMissingHeader is returned when the source file has no header line.
var ErrMissingHeader = errors.New("source file has no header row")

// FormatError reports a source row that does not match the fixed layout.
// A FormatError aborts the run before any output is written.
type FormatError struct {
	Path   string
	Line   int // 1-indexed; 0 when the whole file is at fault
	Fields int // number of fields found on the line
	Want   int // number of fields required
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("format error in %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("format error in %s line %d: row has %d fields, expected at least %d",
		e.Path, e.Line, e.Fields, e.Want)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Code returns the support code for the error.
func (e *FormatError) Code() string {
	if errors.Is(e.Err, ErrMissingHeader) {
		return CodeMissingHeader
	}
	return CodeShortRow
}

// IOOp names the file operation that failed.
type IOOp string

const (
	OpOpen  IOOp = "open"
	OpRead  IOOp = "read"
	OpWrite IOOp = "write"
	OpClose IOOp = "close"
)

// IOError reports a file that could not be opened, read, or written.
type IOError struct {
	Op     IOOp
	Path   string
	Output bool // true for destination files
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Code returns the support code for the error.
func (e *IOError) Code() string {
	switch {
	case e.Output:
		return CodeOutputWrite
	case e.Op == OpOpen:
		return CodeInputOpen
	default:
		return CodeInputRead
	}
}

// LoadError reports a failure while loading tables into the database.
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("database load: %v", e.Err)
	}
	return fmt.Sprintf("database load %s: %v", e.Table, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Code returns the support code for the error.
func (e *LoadError) Code() string {
	return CodeDatabaseLoad
}
