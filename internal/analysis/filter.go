package analysis

import (
	"errors"
	"fmt"

	"github.com/ademuri/listening-dashboard/internal/table"
)

// ErrUnsupportedFilter is returned when a selection targets a dataset that
// has no column for it.
var ErrUnsupportedFilter = errors.New("filter not supported by dataset")

// FilterState is the selection that gates every chart. It cannot be changed
// once built; an empty set means no restriction.
type FilterState struct {
	countries []string
	platforms []string
	metric    string
}

func NewFilterState(countries, platforms []string, metric string) FilterState {
	return FilterState{
		countries: dedupe(countries),
		platforms: dedupe(platforms),
		metric:    metric,
	}
}

func (f FilterState) Countries() []string { return append([]string(nil), f.countries...) }
func (f FilterState) Platforms() []string { return append([]string(nil), f.platforms...) }
func (f FilterState) Metric() string      { return f.metric }

func dedupe(in []string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Dataset is a materialized table together with the columns the filters
// apply to. An empty column name means the dataset cannot be filtered on it.
type Dataset struct {
	Name     string
	Table    *table.Table
	Country  string
	Platform string
}

// Filter returns the view of rows whose country and platform are selected.
// Rows with a missing value never pass an active filter.
func (d Dataset) Filter(f FilterState) (*table.Table, error) {
	view := d.Table
	var err error
	if view, err = restrict(view, d.Name, "country", d.Country, f.countries); err != nil {
		return nil, err
	}
	return restrict(view, d.Name, "platform", d.Platform, f.platforms)
}

func restrict(t *table.Table, dataset, kind, column string, allowed []string) (*table.Table, error) {
	if len(allowed) == 0 {
		return t, nil
	}
	if column == "" {
		return nil, fmt.Errorf("%w: %s has no %s column", ErrUnsupportedFilter, dataset, kind)
	}
	c, err := t.Index(column)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	return t.Filter(func(row int) bool {
		v := t.At(row, c)
		return !v.IsMissing() && set[v.String()]
	}), nil
}
