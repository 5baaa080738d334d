// Package normalize cleans individual columns before they are joined or
// aggregated. Every rule is idempotent.
package normalize

import (
	"strconv"
	"strings"

	"github.com/ademuri/listening-dashboard/internal/table"
)

// Rule maps one cell to its cleaned form.
type Rule func(table.Value) table.Value

// Apply runs rules, in order, over every cell of column and returns the new
// table. The input table is left as it was.
func Apply(t *table.Table, column string, rules ...Rule) (*table.Table, error) {
	vals, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		for _, rule := range rules {
			v = rule(v)
		}
		vals[i] = v
	}
	return t.WithColumn(column, vals)
}

// Trim strips surrounding whitespace from text cells. Text that trims to
// nothing becomes missing, the same as an empty cell in a source file.
func Trim(v table.Value) table.Value {
	s, ok := v.AsText()
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return table.Missing
	}
	return table.Text(s)
}

// FirstOfMultivalue keeps the first sep-separated segment of a text cell,
// trimmed: "ArtistA; ArtistB" becomes "ArtistA".
func FirstOfMultivalue(sep string) Rule {
	return func(v table.Value) table.Value {
		s, ok := v.AsText()
		if !ok {
			return v
		}
		first, _, _ := strings.Cut(s, sep)
		return Trim(table.Text(first))
	}
}

// TrimEach trims every sep-separated segment of a text cell and joins them
// back with sep: "rock ; pop" becomes "rock;pop".
func TrimEach(sep string) Rule {
	return func(v table.Value) table.Value {
		s, ok := v.AsText()
		if !ok {
			return v
		}
		parts := strings.Split(s, sep)
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		return table.Text(strings.Join(parts, sep))
	}
}

// ToNumeric parses text cells as numbers. Text that does not parse becomes
// missing, never zero.
func ToNumeric(v table.Value) table.Value {
	switch v.Kind() {
	case table.KindText:
		s, _ := v.AsText()
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return table.Missing
		}
		return table.Number(f)
	case table.KindBool:
		if b, _ := v.AsBool(); b {
			return table.Number(1)
		}
		return table.Number(0)
	}
	return v
}

// ToBool parses text cells spelled true/false and numbers 0/1 as booleans.
// Anything else becomes missing.
func ToBool(v table.Value) table.Value {
	switch v.Kind() {
	case table.KindText:
		s, _ := v.AsText()
		if b, ok := table.ParseBool(s); ok {
			return table.Bool(b)
		}
		return table.Missing
	case table.KindNumber:
		f, _ := v.AsNumber()
		switch f {
		case 0:
			return table.Bool(false)
		case 1:
			return table.Bool(true)
		}
		return table.Missing
	}
	return v
}

// FillMissing replaces missing cells with def.
func FillMissing(def table.Value) Rule {
	return func(v table.Value) table.Value {
		if v.IsMissing() {
			return def
		}
		return v
	}
}
