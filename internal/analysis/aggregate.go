package analysis

import (
	"fmt"
	"sort"

	"github.com/ademuri/listening-dashboard/internal/table"
)

type LabelValue struct {
	Label string
	Value float64
}

type LabelCount struct {
	Label string
	Count int
}

type GroupTotal struct {
	Label  string
	Sum    float64
	Unique int
}

type Reduce int

const (
	Min Reduce = iota
	Mean
	Max
)

func (r Reduce) String() string {
	switch r {
	case Min:
		return "min"
	case Mean:
		return "mean"
	case Max:
		return "max"
	}
	return fmt.Sprintf("Reduce(%d)", int(r))
}

// numeric reads a cell as a number. Booleans count as 0 and 1. Text is a
// programming error: the column was never coerced.
func numeric(v table.Value, column string) (float64, bool, error) {
	switch v.Kind() {
	case table.KindNumber:
		f, _ := v.AsNumber()
		return f, true, nil
	case table.KindBool:
		if b, _ := v.AsBool(); b {
			return 1, true, nil
		}
		return 0, true, nil
	case table.KindText:
		return 0, false, fmt.Errorf("column %q holds non-numeric value %q", column, v.String())
	}
	return 0, false, nil
}

// groups returns the distinct non-missing labels of column in first-seen
// order, with the rows of each.
func groups(t *table.Table, column string) ([]string, map[string][]int, error) {
	c, err := t.Index(column)
	if err != nil {
		return nil, nil, err
	}
	var order []string
	rows := make(map[string][]int)
	for r := 0; r < t.Len(); r++ {
		v := t.At(r, c)
		if v.IsMissing() {
			continue
		}
		label := v.String()
		if _, ok := rows[label]; !ok {
			order = append(order, label)
		}
		rows[label] = append(rows[label], r)
	}
	return order, rows, nil
}

// GroupMean averages valueCol over the present values of each groupCol
// label. Groups with no present value have no mean and are left out. The
// result is sorted by mean, highest first; ties keep first-seen order.
func GroupMean(t *table.Table, groupCol, valueCol string) ([]LabelValue, error) {
	order, rows, err := groups(t, groupCol)
	if err != nil {
		return nil, err
	}
	vc, err := t.Index(valueCol)
	if err != nil {
		return nil, err
	}

	out := []LabelValue{}
	for _, label := range order {
		var sum float64
		var n int
		for _, r := range rows[label] {
			f, ok, err := numeric(t.At(r, vc), valueCol)
			if err != nil {
				return nil, err
			}
			if ok {
				sum += f
				n++
			}
		}
		if n > 0 {
			out = append(out, LabelValue{Label: label, Value: sum / float64(n)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out, nil
}

// ValueCounts counts each distinct present value of column, most frequent
// first; ties keep first-seen order.
func ValueCounts(t *table.Table, column string) ([]LabelCount, error) {
	order, rows, err := groups(t, column)
	if err != nil {
		return nil, err
	}
	out := make([]LabelCount, len(order))
	for i, label := range order {
		out[i] = LabelCount{Label: label, Count: len(rows[label])}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

// TopNBy sorts rows by rankCol, highest first with missing ranks last. With
// a dedupCol only the first row of each dedupCol value survives the sort.
// At most n rows are returned; a negative n returns them all.
func TopNBy(t *table.Table, rankCol string, n int, dedupCol string) (*table.Table, error) {
	rc, err := t.Index(rankCol)
	if err != nil {
		return nil, err
	}
	dc := -1
	if dedupCol != "" {
		if dc, err = t.Index(dedupCol); err != nil {
			return nil, err
		}
	}

	type ranked struct {
		row     int
		rank    float64
		present bool
	}
	rows := make([]ranked, t.Len())
	for r := range rows {
		f, ok, err := numeric(t.At(r, rc), rankCol)
		if err != nil {
			return nil, err
		}
		rows[r] = ranked{row: r, rank: f, present: ok}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].present != rows[j].present {
			return rows[i].present
		}
		return rows[i].rank > rows[j].rank
	})

	var picked []int
	seen := make(map[table.Value]bool)
	for _, r := range rows {
		if n >= 0 && len(picked) == n {
			break
		}
		if dc >= 0 {
			key := t.At(r.row, dc)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		picked = append(picked, r.row)
	}
	return t.Pick(picked), nil
}

// ScalarReduce folds the present values of column. ok is false when there
// is nothing to fold, and callers show their own placeholder.
func ScalarReduce(t *table.Table, column string, op Reduce) (value float64, ok bool, err error) {
	c, err := t.Index(column)
	if err != nil {
		return 0, false, err
	}
	var n int
	for r := 0; r < t.Len(); r++ {
		f, present, err := numeric(t.At(r, c), column)
		if err != nil {
			return 0, false, err
		}
		if !present {
			continue
		}
		switch {
		case n == 0:
			value = f
		case op == Min && f < value:
			value = f
		case op == Max && f > value:
			value = f
		case op == Mean:
			value += f
		}
		n++
	}
	if n == 0 {
		return 0, false, nil
	}
	if op == Mean {
		value /= float64(n)
	}
	return value, true, nil
}

// GroupNUnique counts the distinct present valueCol values of each groupCol
// label, sorted by label.
func GroupNUnique(t *table.Table, groupCol, valueCol string) ([]LabelCount, error) {
	order, rows, err := groups(t, groupCol)
	if err != nil {
		return nil, err
	}
	vc, err := t.Index(valueCol)
	if err != nil {
		return nil, err
	}
	out := make([]LabelCount, 0, len(order))
	for _, label := range order {
		out = append(out, LabelCount{Label: label, Count: distinct(t, rows[label], vc)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// GroupSumNUnique sums sumCol and counts distinct uniqueCol values for each
// groupCol label, largest sum first; ties keep first-seen order.
func GroupSumNUnique(t *table.Table, groupCol, sumCol, uniqueCol string) ([]GroupTotal, error) {
	order, rows, err := groups(t, groupCol)
	if err != nil {
		return nil, err
	}
	sc, err := t.Index(sumCol)
	if err != nil {
		return nil, err
	}
	uc, err := t.Index(uniqueCol)
	if err != nil {
		return nil, err
	}

	out := make([]GroupTotal, 0, len(order))
	for _, label := range order {
		g := GroupTotal{Label: label, Unique: distinct(t, rows[label], uc)}
		for _, r := range rows[label] {
			f, ok, err := numeric(t.At(r, sc), sumCol)
			if err != nil {
				return nil, err
			}
			if ok {
				g.Sum += f
			}
		}
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sum > out[j].Sum })
	return out, nil
}

// BucketShares assigns each present value of column to a bucket and returns
// the percentage of values in each bucket, largest first.
func BucketShares(t *table.Table, column string, bucket func(float64) string) ([]LabelValue, error) {
	c, err := t.Index(column)
	if err != nil {
		return nil, err
	}
	var order []string
	counts := make(map[string]int)
	total := 0
	for r := 0; r < t.Len(); r++ {
		f, ok, err := numeric(t.At(r, c), column)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		label := bucket(f)
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
		total++
	}

	out := make([]LabelValue, len(order))
	for i, label := range order {
		out[i] = LabelValue{Label: label, Value: 100 * float64(counts[label]) / float64(total)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out, nil
}

func distinct(t *table.Table, rows []int, col int) int {
	seen := make(map[table.Value]bool)
	for _, r := range rows {
		if v := t.At(r, col); !v.IsMissing() {
			seen[v] = true
		}
	}
	return len(seen)
}
