// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table provides an in-memory view of a CSV file: an ordered list
// of column names plus string-valued rows, with the column operations the
// conversion pipeline needs (rename, dedupe, derive).
package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Table holds one CSV file's contents. Rows are aligned with Columns;
// every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Read parses a CSV file into a Table. The file is decoded as UTF-8 when
// its bytes are valid UTF-8 (a leading BOM is stripped); otherwise the
// bytes are reinterpreted as Latin-1 and then Windows-1252, in that order.
// An empty file is an error; a header-only file yields a table with zero
// rows. Rows shorter than the header are padded with empty cells; a row
// wider than the header is an error, since dropping its extra cells would
// lose data silently.
func Read(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	if !utf8.Valid(data) {
		for _, cm := range []*charmap.Charmap{charmap.ISO8859_1, charmap.Windows1252} {
			decoded, decodeErr := io.ReadAll(transform.NewReader(bytes.NewReader(data), cm.NewDecoder()))
			if decodeErr == nil {
				data = decoded
				break
			}
		}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // ragged rows are padded below
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV file: %s", path)
	}

	t := &Table{Columns: records[0]}
	for i, rec := range records[1:] {
		if len(rec) > len(t.Columns) {
			return nil, fmt.Errorf("parsing %s: row %d has %d fields, header has %d",
				path, i+2, len(rec), len(t.Columns))
		}
		row := make([]string, len(t.Columns))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Write serializes the table as UTF-8 CSV with a header row.
func (t *Table) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to path via a temporary file and rename, so a
// failed write never leaves a truncated output behind.
func (t *Table) WriteFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".oscapify-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	writeErr := t.Write(tmp)
	closeErr := tmp.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	return t.Index(name) >= 0
}

// Get returns the cell at (row, column name), or "" when the column does
// not exist.
func (t *Table) Get(row int, name string) string {
	i := t.Index(name)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][i]
}

// Set assigns the cell at (row, column name). Missing columns are ignored.
func (t *Table) Set(row int, name, value string) {
	i := t.Index(name)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return
	}
	t.Rows[row][i] = value
}

// Rename applies a map of old column name to new column name. Only the
// first occurrence of each old name is renamed.
func (t *Table) Rename(corrections map[string]string) {
	for old, canonical := range corrections {
		if i := t.Index(old); i >= 0 {
			t.Columns[i] = canonical
		}
	}
}

// EnsureColumn appends an empty-valued column when the name is absent.
func (t *Table) EnsureColumn(name string) {
	if t.HasColumn(name) {
		return
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
}

// TrimColumnNames strips leading and trailing whitespace from every
// column name.
func (t *Table) TrimColumnNames() {
	for i, c := range t.Columns {
		t.Columns[i] = strings.TrimSpace(c)
	}
}

// DedupeColumns drops columns whose name already appeared earlier,
// keeping the first occurrence and its values.
func (t *Table) DedupeColumns() {
	seen := make(map[string]bool, len(t.Columns))
	keep := make([]int, 0, len(t.Columns))
	for i, c := range t.Columns {
		if seen[c] {
			continue
		}
		seen[c] = true
		keep = append(keep, i)
	}
	if len(keep) == len(t.Columns) {
		return
	}

	cols := make([]string, len(keep))
	for j, i := range keep {
		cols[j] = t.Columns[i]
	}
	for r, row := range t.Rows {
		next := make([]string, len(keep))
		for j, i := range keep {
			next[j] = row[i]
		}
		t.Rows[r] = next
	}
	t.Columns = cols
}
