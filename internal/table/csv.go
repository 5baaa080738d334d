package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var utf8BOM = []byte("\xef\xbb\xbf")

type ReadOptions struct {
	// Delimiter between fields, ',' when zero.
	Delimiter rune

	// InferTypes turns columns whose non-empty cells are all numeric into
	// numbers, and all true/false into booleans. Without it every non-empty
	// cell is text.
	InferTypes bool

	// Text lists columns that stay text under InferTypes. Names the file
	// does not have are ignored.
	Text []string
}

// ReadCSV reads a delimited file with a header row. Input with no header
// yields an empty table, not an error.
func ReadCSV(r io.Reader, opts ReadOptions) (*Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return New(nil, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		records = append(records, rec)
	}

	t, err := FromRecords(header, records)
	if err != nil {
		return nil, err
	}
	if opts.InferTypes {
		return inferTypes(t, opts.Text), nil
	}
	return t, nil
}

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, t *Table, delimiter rune) error {
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}
	if err := cw.Write(t.columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	rec := make([]string, len(t.columns))
	for _, row := range t.rows {
		for i, v := range row {
			rec[i] = v.String()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func inferTypes(t *Table, text []string) *Table {
	keep := make(map[string]bool, len(text))
	for _, c := range text {
		keep[c] = true
	}

	rows := make([][]Value, len(t.rows))
	for i, r := range t.rows {
		rows[i] = make([]Value, len(r))
		copy(rows[i], r)
	}

	for c, name := range t.columns {
		if keep[name] {
			continue
		}
		numeric, boolean := true, true
		for _, r := range t.rows {
			s, ok := r[c].AsText()
			if !ok {
				continue
			}
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				numeric = false
			}
			if _, ok := ParseBool(s); !ok {
				boolean = false
			}
		}
		for _, r := range rows {
			s, ok := r[c].AsText()
			if !ok {
				continue
			}
			switch {
			case numeric:
				f, _ := strconv.ParseFloat(s, 64)
				r[c] = Number(f)
			case boolean:
				b, _ := ParseBool(s)
				r[c] = Bool(b)
			}
		}
	}
	return &Table{columns: t.columns, index: t.index, rows: rows}
}
