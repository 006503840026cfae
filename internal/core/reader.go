package core

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

const readBufferSize = 1 << 20 // 1 MiB

// Reader yields source rows one line at a time.
//
// Fields are split on every delimiter. No quoting, escaping or trimming is
// interpreted: a field is exactly the text between two delimiters. The header
// row is consumed by the constructor and is available through [Reader.Header].
type Reader struct {
	path    string
	closer  io.Closer
	counter *countingReader
	br      *bufio.Reader
	delim   string
	line    int
	header  SourceRow
	done    bool
}

// OpenReader opens the file at path and reads its header row.
func OpenReader(path string, delim rune) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: OpOpen, Path: path, Err: err}
	}

	r, err := NewReader(f, path, delim)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader reads the header row from src. name is used in error messages.
func NewReader(src io.Reader, name string, delim rune) (*Reader, error) {
	counter := &countingReader{reader: src}
	r := &Reader{
		path:    name,
		counter: counter,
		br:      bufio.NewReaderSize(counter, readBufferSize),
		delim:   string(delim),
	}

	if err := skipBOM(r.br); err != nil {
		return nil, &IOError{Op: OpRead, Path: name, Err: err}
	}

	header, err := r.Next()
	if errors.Is(err, io.EOF) {
		return nil, &FormatError{Path: name, Err: ErrMissingHeader}
	}
	if err != nil {
		return nil, err
	}
	r.header = header

	return r, nil
}

// Header returns the header row.
func (r *Reader) Header() SourceRow {
	return r.header
}

// Next returns the next non-empty row. It returns io.EOF after the last row,
// a *FormatError for a row with fewer than [SourceColumns] fields, and an
// *IOError if the underlying read fails.
func (r *Reader) Next() (SourceRow, error) {
	for !r.done {
		text, err := r.br.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return SourceRow{}, &IOError{Op: OpRead, Path: r.path, Err: err}
			}
			r.done = true
		}
		if text == "" && r.done {
			break
		}
		r.line++

		text = strings.TrimSuffix(text, "\n")
		text = strings.TrimSuffix(text, "\r")
		if text == "" {
			continue
		}

		fields := strings.Split(text, r.delim)
		if len(fields) < SourceColumns {
			return SourceRow{}, &FormatError{
				Path:   r.path,
				Line:   r.line,
				Fields: len(fields),
				Want:   SourceColumns,
			}
		}
		return SourceRow{Line: r.line, Fields: fields}, nil
	}
	return SourceRow{}, io.EOF
}

// BytesRead returns the number of bytes consumed from the source so far.
func (r *Reader) BytesRead() int64 {
	return r.counter.bytesRead
}

// Close releases the underlying file, if the reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	if err := r.closer.Close(); err != nil {
		return &IOError{Op: OpClose, Path: r.path, Err: err}
	}
	return nil
}
