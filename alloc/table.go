package alloc

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const utf8BOM = "\ufeff"

// Table is a header row plus data rows, all as raw strings. Header casing and
// column order are preserved exactly as read.
// Every row has len(Header) cells once it comes out of ReadCSV.
type Table struct {
	Header []string
	Rows   [][]string
}

// NumRows returns the number of data rows (header excluded).
func (t *Table) NumRows() int { return len(t.Rows) }

// Index returns the position of the column with the exact label, or -1.
func (t *Table) Index(label string) int {
	for i, h := range t.Header {
		if h == label {
			return i
		}
	}
	return -1
}

// Cell returns the raw cell at (row, col), or "" if the row is short.
func (t *Table) Cell(row, col int) string {
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// ReadCSV parses delimited text with a header row. A leading UTF-8 BOM is
// dropped and empty lines are skipped. Short rows are padded with blanks; rows
// longer than the header are rejected.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{Reason: ErrEmptyTable}
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	t := &Table{Header: header}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		if len(row) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d has %d cells, header has %d: %w", line, len(row), len(header), ErrRaggedRow)
		}
		for len(row) < len(header) {
			row = append(row, "")
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// LoadCSV opens path and reads it with ReadCSV.
func LoadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input table: %w", err)
	}
	defer func() { _ = file.Close() }()

	t, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteCSV writes the header and rows as delimited text.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveCSV writes the table to path, truncating any existing file.
func (t *Table) SaveCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := t.WriteCSV(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
