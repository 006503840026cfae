package core

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = "Store,Dept,Date,Weekly_Sales,IsHoliday,Type,Size,Temperature,Fuel_Price,CPI,Unemployment"

func readAll(t *testing.T, r *Reader) []SourceRow {
	t.Helper()
	var rows []SourceRow
	for {
		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return rows
		}
		require.NoError(t, err)
		rows = append(rows, row)
	}
}

func TestReader_HeaderAndRows(t *testing.T) {
	input := testHeader + "\n" +
		"1,1,05-02-2010,24924.5,FALSE,A,151315,42.31,2.572,211.1,8.106\n" +
		"1,2,05-02-2010,50605.27,FALSE,A,151315,42.31,2.572,211.1,8.106\n"

	r, err := NewReader(strings.NewReader(input), "sales.csv", ',')
	require.NoError(t, err)

	assert.Equal(t, strings.Split(testHeader, ","), r.Header().Fields)
	assert.Equal(t, 1, r.Header().Line)

	rows := readAll(t, r)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "2", rows[1].Field(ColDept))
	assert.Equal(t, "50605.27", rows[1].Field(ColWeeklySales))
	assert.Equal(t, "8.106", rows[1].Field(ColUnemploymentRate))
	assert.Equal(t, int64(len(input)), r.BytesRead())
}

func TestReader_LiteralFields(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		col   Column
		want  string
		count int
	}{
		{
			name:  "quotes are literal",
			line:  `"1",1,05-02-2010,24924.5,FALSE,A,151315,42.31,2.572,211.1,8.106`,
			col:   ColStore,
			want:  `"1"`,
			count: 11,
		},
		{
			name:  "quoted delimiter still splits",
			line:  `1,1,05-02-2010,24924.5,FALSE,"A,B",151315,42.31,2.572,211.1,8.106`,
			col:   ColType,
			want:  `"A`,
			count: 12,
		},
		{
			name:  "whitespace kept",
			line:  "1,1,05-02-2010,24924.5, FALSE ,A,151315,42.31,2.572,211.1,8.106",
			col:   ColIsHoliday,
			want:  " FALSE ",
			count: 11,
		},
		{
			name:  "backslash kept",
			line:  `1,1,05-02-2010,24924.5,FALSE,A\,151315,42.31,2.572,211.1,8.106`,
			col:   ColType,
			want:  `A\`,
			count: 11,
		},
		{
			name:  "empty fields kept",
			line:  "1,1,05-02-2010,,FALSE,A,151315,42.31,2.572,,",
			col:   ColCPI,
			want:  "",
			count: 11,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(strings.NewReader(testHeader+"\n"+tt.line+"\n"), "in", ',')
			require.NoError(t, err)

			rows := readAll(t, r)
			require.Len(t, rows, 1)
			assert.Len(t, rows[0].Fields, tt.count)
			assert.Equal(t, tt.want, rows[0].Field(tt.col))
		})
	}
}

func TestReader_LineEndingsAndBlankLines(t *testing.T) {
	row := "1,1,05-02-2010,24924.5,FALSE,A,151315,42.31,2.572,211.1,8.106"
	input := testHeader + "\r\n" + row + "\r\n\r\n\n" + row // no trailing newline

	r, err := NewReader(strings.NewReader(input), "in", ',')
	require.NoError(t, err)
	assert.Equal(t, "Unemployment", r.Header().Field(ColUnemploymentRate))

	rows := readAll(t, r)
	require.Len(t, rows, 2)
	assert.Equal(t, "8.106", rows[0].Field(ColUnemploymentRate))
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, 5, rows[1].Line)
}

func TestReader_BOMStripped(t *testing.T) {
	input := "\xEF\xBB\xBF" + testHeader + "\n"

	r, err := NewReader(strings.NewReader(input), "in", ',')
	require.NoError(t, err)
	assert.Equal(t, "Store", r.Header().Field(ColStore))
	assert.Empty(t, readAll(t, r))
}

func TestReader_CustomDelimiter(t *testing.T) {
	input := strings.ReplaceAll(testHeader, ",", ";") + "\n" +
		"1;1;05-02-2010;24924,5;FALSE;A;151315;42,31;2,572;211,1;8,106\n"

	r, err := NewReader(strings.NewReader(input), "in", ';')
	require.NoError(t, err)

	rows := readAll(t, r)
	require.Len(t, rows, 1)
	assert.Equal(t, "24924,5", rows[0].Field(ColWeeklySales))
}

func TestReader_ShortRow(t *testing.T) {
	input := testHeader + "\n" +
		"1,1,05-02-2010,24924.5,FALSE,A,151315,42.31,2.572,211.1,8.106\n" +
		"1,1,05-02-2010,24924.5\n"

	r, err := NewReader(strings.NewReader(input), "sales.csv", ',')
	require.NoError(t, err)

	_, err = r.Next()
	require.NoError(t, err)

	_, err = r.Next()
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 3, fe.Line)
	assert.Equal(t, 4, fe.Fields)
	assert.Equal(t, SourceColumns, fe.Want)
	assert.Equal(t, CodeShortRow, fe.Code())
	assert.Contains(t, fe.Error(), "sales.csv line 3")
}

func TestReader_ShortHeader(t *testing.T) {
	_, err := NewReader(strings.NewReader("Store,Dept\n"), "in", ',')

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 1, fe.Line)
}

func TestReader_MissingHeader(t *testing.T) {
	for _, input := range []string{"", "\n\n", "\xEF\xBB\xBF"} {
		_, err := NewReader(strings.NewReader(input), "empty.csv", ',')

		var fe *FormatError
		require.ErrorAs(t, err, &fe, "input %q", input)
		assert.ErrorIs(t, err, ErrMissingHeader)
		assert.Equal(t, CodeMissingHeader, fe.Code())
	}
}

func TestOpenReader(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope.csv")
		_, err := OpenReader(path, ',')

		var ioe *IOError
		require.ErrorAs(t, err, &ioe)
		assert.Equal(t, OpOpen, ioe.Op)
		assert.Equal(t, CodeInputOpen, ioe.Code())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("reads and closes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "in.csv")
		require.NoError(t, os.WriteFile(path, []byte(testHeader+"\n"), 0o644))

		r, err := OpenReader(path, ',')
		require.NoError(t, err)
		assert.Empty(t, readAll(t, r))
		assert.NoError(t, r.Close())
	})
}

func TestSkipBOM(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{name: "file with BOM", input: append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello,world")...), expected: "hello,world"},
		{name: "file without BOM", input: []byte("hello,world"), expected: "hello,world"},
		{name: "empty file", input: []byte{}, expected: ""},
		{name: "only BOM", input: []byte{0xEF, 0xBB, 0xBF}, expected: ""},
		{name: "partial BOM at start", input: []byte{0xEF, 0xBB, 'a', 'b', 'c'}, expected: string([]byte{0xEF, 0xBB, 'a', 'b', 'c'})},
		{name: "short input", input: []byte{0xEF}, expected: string([]byte{0xEF})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br := bufio.NewReader(bytes.NewReader(tt.input))
			require.NoError(t, skipBOM(br))

			result, err := io.ReadAll(br)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}
