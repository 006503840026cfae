package core

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// WriterOptions controls the output text format.
type WriterOptions struct {
	Delimiter rune
	Escape    EscapeMode
	CRLF      bool
}

// escapeField applies the escape mode to a single field. In backslash mode
// the delimiter, the backslash itself and line break characters are prefixed
// with a backslash. Fields read from the source can never contain the
// delimiter, so this only changes header text or values with stray CRs.
func (o WriterOptions) escapeField(field string) string {
	if o.Escape != EscapeBackslash {
		return field
	}
	if !strings.ContainsFunc(field, o.needsEscape) {
		return field
	}

	var b strings.Builder
	b.Grow(len(field) + 4)
	for _, r := range field {
		if o.needsEscape(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (o WriterOptions) needsEscape(r rune) bool {
	return r == o.Delimiter || r == '\\' || r == '\n' || r == '\r'
}

func (o WriterOptions) lineEnd() string {
	if o.CRLF {
		return "\r\n"
	}
	return "\n"
}

// WriteRecords serializes header followed by rows to w.
func WriteRecords(w io.Writer, header Record, rows []Record, opts WriterOptions) error {
	bw := bufio.NewWriter(w)
	delim := string(opts.Delimiter)
	eol := opts.lineEnd()

	writeLine := func(rec Record) error {
		for i, f := range rec {
			if i > 0 {
				if _, err := bw.WriteString(delim); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(opts.escapeField(f)); err != nil {
				return err
			}
		}
		_, err := bw.WriteString(eol)
		return err
	}

	if err := writeLine(header); err != nil {
		return err
	}
	for _, rec := range rows {
		if err := writeLine(rec); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteTableFile creates (or truncates) path and writes the table to it.
// Any failure, including on close, is returned as an *IOError.
func WriteTableFile(path string, header Record, rows []Record, opts WriterOptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: OpOpen, Path: path, Output: true, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IOError{Op: OpClose, Path: path, Output: true, Err: cerr}
		}
	}()

	if err := WriteRecords(f, header, rows, opts); err != nil {
		return &IOError{Op: OpWrite, Path: path, Output: true, Err: err}
	}
	return nil
}
