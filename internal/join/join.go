// Package join reconciles the listener survey, the track metadata and the
// artist metadata into the denormalized tables the dashboard reads.
package join

import (
	"fmt"
	"strings"

	"github.com/ademuri/listening-dashboard/internal/normalize"
	"github.com/ademuri/listening-dashboard/internal/table"
)

// Source names, as used in descriptors and error reports.
const (
	Listeners = "listeners"
	Tracks    = "tracks"
	Artists   = "artists"
)

// keyColumn holds a normalized artist key while it is only used for
// matching. It never reaches an output table.
const keyColumn = "_artist_key"

type Inputs struct {
	Listeners *table.Table
	Tracks    *table.Table
	Artists   *table.Table
}

// MissingSourcesError aborts a join when any source it needs is absent.
type MissingSourcesError struct {
	Sources []string
}

func (e *MissingSourcesError) Error() string {
	return fmt.Sprintf("cannot join without sources: %s", strings.Join(e.Sources, ", "))
}

func require(named map[string]*table.Table, order ...string) error {
	var missing []string
	for _, name := range order {
		if named[name] == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingSourcesError{Sources: missing}
	}
	return nil
}

// JoinAll builds the analysis table: every listener row, extended with the
// per-artist track aggregate and the artist metadata of its most played
// artist. Listener rows without a match keep missing cells.
func JoinAll(s Schema, in Inputs) (*table.Table, error) {
	err := require(map[string]*table.Table{
		Listeners: in.Listeners,
		Tracks:    in.Tracks,
		Artists:   in.Artists,
	}, Listeners, Tracks, Artists)
	if err != nil {
		return nil, err
	}

	listeners, err := coerceListeners(s, in.Listeners)
	if err != nil {
		return nil, fmt.Errorf("normalizing listeners: %w", err)
	}

	aggregate, err := AggregateArtists(s, in.Tracks)
	if err != nil {
		return nil, fmt.Errorf("aggregating tracks: %w", err)
	}

	meta, err := artistMetadata(s, in.Artists)
	if err != nil {
		return nil, fmt.Errorf("preparing artist metadata: %w", err)
	}

	joined, err := LeftJoin(listeners, aggregate, s.ListenerArtist, keyColumn)
	if err != nil {
		return nil, fmt.Errorf("joining track aggregate: %w", err)
	}
	joined, err = LeftJoin(joined, meta, s.ListenerArtist, keyColumn)
	if err != nil {
		return nil, fmt.Errorf("joining artist metadata: %w", err)
	}
	return joined, nil
}

// JoinCatalog builds the track catalog: every track row with the metadata of
// its first credited artist.
func JoinCatalog(s Schema, in Inputs) (*table.Table, error) {
	err := require(map[string]*table.Table{
		Tracks:  in.Tracks,
		Artists: in.Artists,
	}, Tracks, Artists)
	if err != nil {
		return nil, err
	}

	tracks, err := coerceTracks(s, in.Tracks)
	if err != nil {
		return nil, fmt.Errorf("normalizing tracks: %w", err)
	}
	for _, c := range s.ExtraNumeric {
		if !tracks.Has(c) {
			continue
		}
		if tracks, err = normalize.Apply(tracks, c, normalize.ToNumeric); err != nil {
			return nil, err
		}
	}

	meta, err := artistMetadata(s, in.Artists)
	if err != nil {
		return nil, fmt.Errorf("preparing artist metadata: %w", err)
	}

	joined, err := LeftJoin(tracks, meta, keyColumn, keyColumn)
	if err != nil {
		return nil, fmt.Errorf("joining artist metadata: %w", err)
	}
	return joined.Drop(keyColumn)
}

// coerceListeners trims the artist key and coerces the numeric listener
// columns.
func coerceListeners(s Schema, listeners *table.Table) (*table.Table, error) {
	out, err := normalize.Apply(listeners, s.ListenerArtist, normalize.Trim)
	if err != nil {
		return nil, err
	}
	for _, c := range s.ListenerNumeric {
		if !out.Has(c) {
			continue
		}
		if out, err = normalize.Apply(out, c, normalize.ToNumeric); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// coerceTracks adds the normalized key column and coerces the metric and
// explicit columns.
func coerceTracks(s Schema, tracks *table.Table) (*table.Table, error) {
	credits, err := tracks.Column(s.TrackArtist)
	if err != nil {
		return nil, err
	}
	first := normalize.FirstOfMultivalue(s.ArtistSeparator)
	for i, v := range credits {
		credits[i] = first(v)
	}
	out, err := tracks.WithColumn(keyColumn, credits)
	if err != nil {
		return nil, err
	}

	for _, m := range s.TrackMetrics {
		if out, err = normalize.Apply(out, m, normalize.ToNumeric); err != nil {
			return nil, err
		}
	}
	return normalize.Apply(out, s.Explicit, normalize.ToBool)
}

// artistMetadata selects the carried fields, keys them by trimmed artist
// name, keeps the first row of each artist and applies the renames.
func artistMetadata(s Schema, artists *table.Table) (*table.Table, error) {
	meta, err := artists.Select(append([]string{s.ArtistKey}, s.ArtistFields...)...)
	if err != nil {
		return nil, err
	}
	if meta, err = normalize.Apply(meta, s.ArtistKey, normalize.Trim); err != nil {
		return nil, err
	}
	if meta, err = meta.Rename(map[string]string{s.ArtistKey: keyColumn}); err != nil {
		return nil, err
	}

	key, _ := meta.Index(keyColumn)
	seen := make(map[string]bool, meta.Len())
	first := meta.Filter(func(row int) bool {
		k, ok := meta.At(row, key).AsText()
		if !ok || seen[k] {
			return false
		}
		seen[k] = true
		return true
	})

	return first.Rename(s.Rename)
}

// LeftJoin keeps every left row. A left row matching several right rows is
// repeated once per match; one matching nothing gets missing right cells.
// Missing keys never match. The right key column is not carried over, and a
// right column whose name is already on the left is an error.
func LeftJoin(left, right *table.Table, leftKey, rightKey string) (*table.Table, error) {
	lk, err := left.Index(leftKey)
	if err != nil {
		return nil, err
	}
	rk, err := right.Index(rightKey)
	if err != nil {
		return nil, err
	}

	cols := left.Columns()
	var carried []int
	for i, c := range right.Columns() {
		if i == rk {
			continue
		}
		if left.Has(c) {
			return nil, fmt.Errorf("column %q exists on both sides of the join; rename it in the schema", c)
		}
		cols = append(cols, c)
		carried = append(carried, i)
	}

	matches := make(map[string][]int, right.Len())
	for r := 0; r < right.Len(); r++ {
		v := right.At(r, rk)
		if v.IsMissing() {
			continue
		}
		matches[v.String()] = append(matches[v.String()], r)
	}

	leftWidth := len(left.Columns())
	rows := make([][]table.Value, 0, left.Len())
	for l := 0; l < left.Len(); l++ {
		var found []int
		if v := left.At(l, lk); !v.IsMissing() {
			found = matches[v.String()]
		}
		if len(found) == 0 {
			row := make([]table.Value, len(cols))
			copy(row, left.Row(l))
			rows = append(rows, row)
			continue
		}
		for _, r := range found {
			row := make([]table.Value, len(cols))
			copy(row, left.Row(l))
			for j, c := range carried {
				row[leftWidth+j] = right.At(r, c)
			}
			rows = append(rows, row)
		}
	}
	return table.New(cols, rows)
}
