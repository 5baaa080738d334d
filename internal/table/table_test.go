package table

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func mustRecords(t *testing.T, columns []string, records [][]string) *Table {
	t.Helper()
	tbl, err := FromRecords(columns, records)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	return tbl
}

func TestFromRecordsEmptyCellsAreMissing(t *testing.T) {
	tbl := mustRecords(t, []string{"a", "b", "c"}, [][]string{{"x", ""}})

	if v := tbl.At(0, 0); !v.Equal(Text("x")) {
		t.Errorf("At(0, 0) = %v, want x", v)
	}
	if !tbl.At(0, 1).IsMissing() {
		t.Errorf("empty cell should be missing")
	}
	if !tbl.At(0, 2).IsMissing() {
		t.Errorf("short record should pad with missing")
	}
}

func TestNewRejectsDuplicateColumns(t *testing.T) {
	if _, err := New([]string{"a", "a"}, nil); err == nil {
		t.Error("expected duplicate column error")
	}
}

func TestMissingColumn(t *testing.T) {
	tbl := mustRecords(t, []string{"a"}, nil)

	_, err := tbl.Column("nope")
	var mce *MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("Column(nope) error = %v, want *MissingColumnError", err)
	}
	if mce.Column != "nope" {
		t.Errorf("MissingColumnError.Column = %q", mce.Column)
	}
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	tbl := mustRecords(t, []string{"a"}, [][]string{{"1"}, {"2"}, {"3"}})

	out := tbl.Filter(func(i int) bool { return i != 1 })
	if out.Len() != 2 {
		t.Errorf("filtered Len() = %d, want 2", out.Len())
	}
	if tbl.Len() != 3 {
		t.Errorf("input Len() = %d after Filter, want 3", tbl.Len())
	}
}

func TestWithColumnCopiesRows(t *testing.T) {
	tbl := mustRecords(t, []string{"a"}, [][]string{{"1"}})

	out, err := tbl.WithColumn("a", []Value{Number(1)})
	if err != nil {
		t.Fatalf("WithColumn: %v", err)
	}
	if !out.At(0, 0).Equal(Number(1)) {
		t.Errorf("replaced cell = %v", out.At(0, 0))
	}
	if !tbl.At(0, 0).Equal(Text("1")) {
		t.Errorf("input cell changed to %v", tbl.At(0, 0))
	}

	out, err = tbl.WithColumn("b", []Value{Bool(true)})
	if err != nil {
		t.Fatalf("WithColumn(b): %v", err)
	}
	if got := strings.Join(out.Columns(), ","); got != "a,b" {
		t.Errorf("columns = %s, want a,b", got)
	}
}

func TestRenameCollision(t *testing.T) {
	tbl := mustRecords(t, []string{"a", "b"}, nil)

	if _, err := tbl.Rename(map[string]string{"a": "b"}); err == nil {
		t.Error("expected collision error")
	}
	out, err := tbl.Rename(map[string]string{"a": "c", "zzz": "y"})
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if got := strings.Join(out.Columns(), ","); got != "c,b" {
		t.Errorf("columns = %s, want c,b", got)
	}
}

func TestDrop(t *testing.T) {
	tbl := mustRecords(t, []string{"a", "b", "c"}, [][]string{{"1", "2", "3"}})

	out, err := tbl.Drop("b")
	if err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if got := strings.Join(out.Columns(), ","); got != "a,c" {
		t.Errorf("columns = %s, want a,c", got)
	}
	if !out.At(0, 1).Equal(Text("3")) {
		t.Errorf("At(0, 1) = %v, want 3", out.At(0, 1))
	}
	if _, err := tbl.Drop("x"); err == nil {
		t.Error("expected error dropping unknown column")
	}
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		opts    ReadOptions
		columns string
		rows    int
	}{
		{"empty", "", ReadOptions{}, "", 0},
		{"header only", "a,b\n", ReadOptions{}, "a,b", 0},
		{"bom", "\xef\xbb\xbfa,b\n1,2\n", ReadOptions{}, "a,b", 1},
		{"tabs", "a\tb\n1\t2\n3\t4\n", ReadOptions{Delimiter: '\t'}, "a,b", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := ReadCSV(strings.NewReader(tt.input), tt.opts)
			if err != nil {
				t.Fatalf("ReadCSV: %v", err)
			}
			if got := strings.Join(tbl.Columns(), ","); got != tt.columns {
				t.Errorf("columns = %q, want %q", got, tt.columns)
			}
			if tbl.Len() != tt.rows {
				t.Errorf("Len() = %d, want %d", tbl.Len(), tt.rows)
			}
		})
	}
}

func TestReadCSVInferTypes(t *testing.T) {
	input := "n,b,s,m\n1.5,True,x,\n2,false,3,\n"
	tbl, err := ReadCSV(strings.NewReader(input), ReadOptions{InferTypes: true})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	if v := tbl.At(1, 0); !v.Equal(Number(2)) {
		t.Errorf("n = %v, want number 2", v)
	}
	if v := tbl.At(0, 1); !v.Equal(Bool(true)) {
		t.Errorf("b = %v, want bool true", v)
	}
	if v := tbl.At(1, 2); !v.Equal(Text("3")) {
		t.Errorf("s = %v, want text 3 in a mixed column", v)
	}
	if !tbl.At(0, 3).IsMissing() {
		t.Errorf("m should stay missing")
	}
}

func TestReadCSVKeepsTextColumns(t *testing.T) {
	input := "track,n\n007,1\n42,2\n"
	tbl, err := ReadCSV(strings.NewReader(input), ReadOptions{InferTypes: true, Text: []string{"track", "absent"}})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if v := tbl.At(0, 0); !v.Equal(Text("007")) {
		t.Errorf("track = %v (%v), want text 007", v, v.Kind())
	}
	if v := tbl.At(1, 1); !v.Equal(Number(2)) {
		t.Errorf("n = %v, want number 2", v)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tbl, err := New([]string{"name", "score", "flag", "gap"}, [][]Value{
		{Text("a, b"), Number(0.1), Bool(false), Missing},
		{Text("c"), Number(70), Bool(true), Missing},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tbl, 0); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	back, err := ReadCSV(&buf, ReadOptions{InferTypes: true})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	for r := 0; r < tbl.Len(); r++ {
		for c := range tbl.Columns() {
			if !back.At(r, c).Equal(tbl.At(r, c)) {
				t.Errorf("cell (%d, %d) = %v, want %v", r, c, back.At(r, c), tbl.At(r, c))
			}
		}
	}
}
