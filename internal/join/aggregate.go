package join

import (
	"fmt"

	"github.com/ademuri/listening-dashboard/internal/table"
)

type meanAcc struct {
	sum   float64
	count int
}

func (m meanAcc) value() table.Value {
	if m.count == 0 {
		return table.Missing
	}
	return table.Number(m.sum / float64(m.count))
}

type artistAcc struct {
	key     string
	metrics []meanAcc
	clean   int
	flagged int
}

// AggregateArtists groups tracks by first credited artist. Each metric is
// averaged over the tracks where it is present. The non-explicit share
// counts only tracks whose explicit flag is present. Artists appear in the
// order they are first seen, under the internal key column.
func AggregateArtists(s Schema, tracks *table.Table) (*table.Table, error) {
	coerced, err := coerceTracks(s, tracks)
	if err != nil {
		return nil, err
	}

	key, _ := coerced.Index(keyColumn)
	explicit, _ := coerced.Index(s.Explicit)
	metrics := make([]int, len(s.TrackMetrics))
	for i, m := range s.TrackMetrics {
		metrics[i], _ = coerced.Index(m)
	}

	var order []*artistAcc
	byKey := make(map[string]*artistAcc)
	for r := 0; r < coerced.Len(); r++ {
		k, ok := coerced.At(r, key).AsText()
		if !ok {
			continue
		}
		acc, ok := byKey[k]
		if !ok {
			acc = &artistAcc{key: k, metrics: make([]meanAcc, len(metrics))}
			byKey[k] = acc
			order = append(order, acc)
		}
		for i, c := range metrics {
			if f, ok := coerced.At(r, c).AsNumber(); ok {
				acc.metrics[i].sum += f
				acc.metrics[i].count++
			}
		}
		if b, ok := coerced.At(r, explicit).AsBool(); ok {
			if b {
				acc.flagged++
			} else {
				acc.clean++
			}
		}
	}

	cols := append([]string{keyColumn}, s.TrackMetrics...)
	cols = append(cols, s.NonExplicitShare)
	rows := make([][]table.Value, len(order))
	for i, acc := range order {
		row := make([]table.Value, 0, len(cols))
		row = append(row, table.Text(acc.key))
		for _, m := range acc.metrics {
			row = append(row, m.value())
		}
		share := table.Missing
		if known := acc.clean + acc.flagged; known > 0 {
			share = table.Number(float64(acc.clean) / float64(known))
		}
		rows[i] = append(row, share)
	}

	out, err := table.New(cols, rows)
	if err != nil {
		return nil, fmt.Errorf("building artist aggregate: %w", err)
	}
	return out, nil
}
