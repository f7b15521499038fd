// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead(t *testing.T) {
	path := writeTemp(t, "in.csv", []byte("pmid,sentence\n111,hello\n222,world\n"))

	tbl, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !reflect.DeepEqual(tbl.Columns, []string{"pmid", "sentence"}) {
		t.Errorf("Columns = %v", tbl.Columns)
	}
	if len(tbl.Rows) != 2 || tbl.Get(1, "sentence") != "world" {
		t.Errorf("Rows = %v", tbl.Rows)
	}
}

func TestReadBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("pmid,sentence\n111,a\n")...)
	path := writeTemp(t, "bom.csv", data)

	tbl, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if tbl.Columns[0] != "pmid" {
		t.Errorf("first column = %q, want BOM stripped", tbl.Columns[0])
	}
}

func TestReadLatin1(t *testing.T) {
	// "café" with a Latin-1 encoded é (0xE9), invalid as UTF-8.
	data := []byte("pmid,sentence\n111,caf\xe9\n")
	path := writeTemp(t, "latin1.csv", data)

	tbl, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got := tbl.Get(0, "sentence"); got != "café" {
		t.Errorf("sentence = %q, want café", got)
	}
}

func TestReadRaggedRows(t *testing.T) {
	path := writeTemp(t, "ragged.csv", []byte("pmid,sentence,score\n111,a\n"))

	tbl, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(tbl.Rows[0]) != 3 {
		t.Fatalf("row width = %d, want padded to 3", len(tbl.Rows[0]))
	}
	if got := tbl.Get(0, "score"); got != "" {
		t.Errorf("score = %q, want empty pad", got)
	}
}

func TestReadOverWideRow(t *testing.T) {
	path := writeTemp(t, "wide.csv", []byte("pmid,sentence\n111,a,extra\n"))

	_, err := Read(path)
	if err == nil {
		t.Fatal("expected error for a row wider than the header")
	}
	if !strings.Contains(err.Error(), "row 2 has 3 fields") {
		t.Errorf("error = %v, want field-count diagnostic", err)
	}
}

func TestReadEmptyFile(t *testing.T) {
	path := writeTemp(t, "empty.csv", nil)
	if _, err := Read(path); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestReadHeaderOnly(t *testing.T) {
	path := writeTemp(t, "header.csv", []byte("pmid,sentence\n"))

	tbl, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(tbl.Rows) != 0 {
		t.Errorf("Rows = %v, want none", tbl.Rows)
	}
}

func TestWriteFile(t *testing.T) {
	tbl := &Table{
		Columns: []string{"id", "sentence"},
		Rows:    [][]string{{"1", "has, comma"}, {"2", "plain"}},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := tbl.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "id,sentence\n1,\"has, comma\"\n2,plain\n"
	if string(data) != want {
		t.Errorf("output = %q, want %q", data, want)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".oscapify-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestGetSet(t *testing.T) {
	tbl := &Table{Columns: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}}

	if got := tbl.Get(0, "b"); got != "2" {
		t.Errorf("Get = %q", got)
	}
	if got := tbl.Get(0, "missing"); got != "" {
		t.Errorf("Get missing column = %q, want empty", got)
	}
	if got := tbl.Get(5, "a"); got != "" {
		t.Errorf("Get out-of-range row = %q, want empty", got)
	}

	tbl.Set(0, "a", "9")
	if got := tbl.Get(0, "a"); got != "9" {
		t.Errorf("after Set, Get = %q", got)
	}
	tbl.Set(0, "missing", "x") // no-op
	if len(tbl.Columns) != 2 {
		t.Error("Set on missing column must not add it")
	}
}

func TestRename(t *testing.T) {
	tbl := &Table{Columns: []string{"PMID", "Sentence"}, Rows: [][]string{{"1", "a"}}}
	tbl.Rename(map[string]string{"PMID": "pmid", "Sentence": "sentence", "absent": "x"})

	if !reflect.DeepEqual(tbl.Columns, []string{"pmid", "sentence"}) {
		t.Errorf("Columns = %v", tbl.Columns)
	}
	if got := tbl.Get(0, "pmid"); got != "1" {
		t.Errorf("values must follow the renamed column, got %q", got)
	}
}

func TestEnsureColumn(t *testing.T) {
	tbl := &Table{Columns: []string{"a"}, Rows: [][]string{{"1"}, {"2"}}}

	tbl.EnsureColumn("b")
	if !reflect.DeepEqual(tbl.Columns, []string{"a", "b"}) {
		t.Errorf("Columns = %v", tbl.Columns)
	}
	for i := range tbl.Rows {
		if len(tbl.Rows[i]) != 2 {
			t.Fatalf("row %d width = %d", i, len(tbl.Rows[i]))
		}
	}

	tbl.EnsureColumn("a") // already present
	if len(tbl.Columns) != 2 {
		t.Errorf("Columns = %v, want unchanged", tbl.Columns)
	}
}

func TestDedupeColumns(t *testing.T) {
	tbl := &Table{
		Columns: []string{"a", "b", "a", "c"},
		Rows:    [][]string{{"1", "2", "3", "4"}},
	}

	tbl.DedupeColumns()
	if !reflect.DeepEqual(tbl.Columns, []string{"a", "b", "c"}) {
		t.Errorf("Columns = %v", tbl.Columns)
	}
	if !reflect.DeepEqual(tbl.Rows[0], []string{"1", "2", "4"}) {
		t.Errorf("Row = %v, want first occurrence kept", tbl.Rows[0])
	}
}
