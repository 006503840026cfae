package core

// streaming.go holds the io helpers the reader layers over the source file:
//
//   - countingReader: tracks bytes consumed for progress logging
//   - skipBOM: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF) written by Windows tools

import (
	"bufio"
	"bytes"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// countingReader wraps an io.Reader to track bytes read.
type countingReader struct {
	reader    io.Reader
	bytesRead int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.bytesRead += int64(n)
	return n, err
}

// skipBOM discards a UTF-8 BOM at the current position of br.
// Inputs shorter than the BOM are left untouched.
func skipBOM(br *bufio.Reader) error {
	head, err := br.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return err
	}
	if bytes.Equal(head, utf8BOM) {
		_, err = br.Discard(len(utf8BOM))
		return err
	}
	return nil
}
