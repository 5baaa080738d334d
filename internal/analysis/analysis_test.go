package analysis

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/ademuri/listening-dashboard/internal/normalize"
	"github.com/ademuri/listening-dashboard/internal/table"
)

// typed builds a table from "|"-separated rows, inferring column types the
// same way a reloaded table does.
func typed(t *testing.T, columns string, rows ...string) *table.Table {
	t.Helper()
	var sb strings.Builder
	sb.WriteString(strings.ReplaceAll(columns, "|", "\t"))
	sb.WriteString("\n")
	for _, r := range rows {
		sb.WriteString(strings.ReplaceAll(r, "|", "\t"))
		sb.WriteString("\n")
	}
	tbl, err := table.ReadCSV(strings.NewReader(sb.String()), table.ReadOptions{Delimiter: '\t', InferTypes: true})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return tbl
}

func listenersFixture(t *testing.T) *table.Table {
	return typed(t, "Most Played Artist|Country|Streaming Platform|Minutes Streamed Per Day|Number of Songs Liked|Top Genre|Listening Time (Morning/Afternoon/Night)|popularity|danceability",
		"Alice|Germany|Deezer|100|10|Pop|Morning|70|0.5",
		"Bob|Japan|Tidal|200|20|Jazz|Night|40|0.6",
		"Alice|Japan|Deezer|300|30|Pop|Night|70|0.5",
		"Carol|Brazil|Spotify|50||Rock|Afternoon||0.9",
		"Dan|Germany|Tidal|120|5|Pop|Morning|90|0.3",
	)
}

func catalogFixture(t *testing.T) *table.Table {
	return typed(t, "artists|track_name|track_genre|popularity|duration_ms|tempo|explicit|country",
		"Alice|One|pop|80|200000|120|False|Germany",
		"Alice|One|pop|75|200000|120|False|Germany",
		"Alice|Two|pop|60||95|True|Germany",
		"Bob|Three|jazz|90|100000|70||Canada",
		"Bob|Four|jazz|50|300000|60|False|Canada",
		"Carol|Five|rock|40|250000|130|True|",
	)
}

func labels[T any](items []T, label func(T) string) string {
	var out []string
	for _, it := range items {
		out = append(out, label(it))
	}
	return strings.Join(out, ",")
}

func TestGroupMean(t *testing.T) {
	means, err := GroupMean(listenersFixture(t), "Most Played Artist", "popularity")
	if err != nil {
		t.Fatalf("GroupMean: %v", err)
	}
	got := labels(means, func(lv LabelValue) string { return lv.Label })
	if got != "Dan,Alice,Bob" {
		t.Errorf("order = %s, want Dan,Alice,Bob (Carol has no popularity)", got)
	}
	if means[1].Value != 70 {
		t.Errorf("Alice mean = %v, want 70", means[1].Value)
	}
}

func TestGroupMeanTiesKeepFirstSeen(t *testing.T) {
	tbl := typed(t, "g|v", "b|1", "a|1", "c|2")
	means, err := GroupMean(tbl, "g", "v")
	if err != nil {
		t.Fatalf("GroupMean: %v", err)
	}
	if got := labels(means, func(lv LabelValue) string { return lv.Label }); got != "c,b,a" {
		t.Errorf("order = %s, want c,b,a", got)
	}
}

func TestGroupMeanIsPermutationInvariant(t *testing.T) {
	base := catalogFixture(t)
	want, err := GroupMean(base, "artists", "popularity")
	if err != nil {
		t.Fatalf("GroupMean: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		perm := rng.Perm(base.Len())
		got, err := GroupMean(base.Pick(perm), "artists", "popularity")
		if err != nil {
			t.Fatalf("GroupMean: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("got %d groups, want %d", len(got), len(want))
		}
		byLabel := make(map[string]float64)
		for _, lv := range got {
			byLabel[lv.Label] = lv.Value
		}
		for _, lv := range want {
			if math.Abs(byLabel[lv.Label]-lv.Value) > 1e-9 {
				t.Errorf("permutation %v: %s = %v, want %v", perm, lv.Label, byLabel[lv.Label], lv.Value)
			}
		}
	}
}

func TestGroupMeanRejectsText(t *testing.T) {
	tbl := typed(t, "g|v", "a|x")
	if _, err := GroupMean(tbl, "g", "v"); err == nil {
		t.Error("expected an error averaging a text column")
	}
}

func TestValueCountsSumToPresentValues(t *testing.T) {
	tbl := typed(t, "genre|n", "Pop|1", "Jazz|2", "|3", "Pop|4", "Rock|5", "Jazz|6", "Pop|7")
	counts, err := ValueCounts(tbl, "genre")
	if err != nil {
		t.Fatalf("ValueCounts: %v", err)
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if total != 6 {
		t.Errorf("counts sum to %d, want 6 present values", total)
	}
	if got := labels(counts, func(lc LabelCount) string { return lc.Label }); got != "Pop,Jazz,Rock" {
		t.Errorf("order = %s, want Pop,Jazz,Rock", got)
	}
}

func TestTopNByDedup(t *testing.T) {
	tbl := typed(t, "track_name|popularity",
		"a|10", "b|90", "a|95", "c|50", "b|80", "d|", "e|70", "f|60", "c|99",
	)
	top, err := TopNBy(tbl, "popularity", 5, "track_name")
	if err != nil {
		t.Fatalf("TopNBy: %v", err)
	}
	if top.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", top.Len())
	}

	names, _ := top.Column("track_name")
	pops, _ := top.Column("popularity")
	seen := make(map[string]bool)
	var got []string
	for i, n := range names {
		if seen[n.String()] {
			t.Errorf("duplicate track %s", n)
		}
		seen[n.String()] = true
		got = append(got, n.String()+"="+pops[i].String())
	}
	if want := "c=99,a=95,b=90,e=70,f=60"; strings.Join(got, ",") != want {
		t.Errorf("top = %s, want %s", strings.Join(got, ","), want)
	}
}

func TestTopNByMissingRanksLast(t *testing.T) {
	tbl := typed(t, "name|rank", "x|", "y|1")
	top, err := TopNBy(tbl, "rank", -1, "")
	if err != nil {
		t.Fatalf("TopNBy: %v", err)
	}
	if v, _ := top.Get(0, "name"); v.String() != "y" {
		t.Errorf("first = %s, want y", v)
	}
}

func TestScalarReduce(t *testing.T) {
	tbl := typed(t, "duration_ms", "200000", "N/A", "100000")
	tbl, err := normalize.Apply(tbl, "duration_ms", normalize.ToNumeric)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	tests := []struct {
		op   Reduce
		want float64
	}{
		{Min, 100000},
		{Mean, 150000},
		{Max, 200000},
	}
	for _, tt := range tests {
		got, ok, err := ScalarReduce(tbl, "duration_ms", tt.op)
		if err != nil || !ok {
			t.Fatalf("ScalarReduce(%v) = %v, %v, %v", tt.op, got, ok, err)
		}
		if got != tt.want {
			t.Errorf("ScalarReduce(%v) = %v, want %v", tt.op, got, tt.want)
		}
	}

	empty := tbl.Filter(func(int) bool { return false })
	if _, ok, err := ScalarReduce(empty, "duration_ms", Mean); ok || err != nil {
		t.Errorf("empty ScalarReduce ok = %v, err = %v; want not ok, nil", ok, err)
	}
}

func TestGroupNUnique(t *testing.T) {
	counts, err := GroupNUnique(catalogFixture(t), "country", "artists")
	if err != nil {
		t.Fatalf("GroupNUnique: %v", err)
	}
	got := labels(counts, func(lc LabelCount) string { return lc.Label })
	if got != "Canada,Germany" {
		t.Errorf("labels = %s, want Canada,Germany", got)
	}
	if counts[0].Count != 1 || counts[1].Count != 1 {
		t.Errorf("counts = %v, want 1 artist each", counts)
	}
}

func TestGroupSumNUnique(t *testing.T) {
	totals, err := GroupSumNUnique(catalogFixture(t), "artists", "popularity", "track_name")
	if err != nil {
		t.Fatalf("GroupSumNUnique: %v", err)
	}
	if totals[0].Label != "Alice" || totals[0].Sum != 215 || totals[0].Unique != 2 {
		t.Errorf("first = %+v, want Alice 215 over 2 tracks", totals[0])
	}
}

func TestBucketShares(t *testing.T) {
	shares, err := BucketShares(catalogFixture(t), "tempo", TempoCategory)
	if err != nil {
		t.Fatalf("BucketShares: %v", err)
	}
	total := 0.0
	for _, s := range shares {
		total += s.Value
	}
	if math.Abs(total-100) > 1e-9 {
		t.Errorf("shares sum to %v, want 100", total)
	}
	if shares[0].Label != "Fast (110+)" {
		t.Errorf("largest bucket = %s, want Fast (110+)", shares[0].Label)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[float64]string{
		0:       "0:00",
		59999:   "0:59",
		200000:  "3:20",
		3725000: "62:05",
		-1:      EmptyDuration,
	}
	for ms, want := range tests {
		if got := FormatDuration(ms); got != want {
			t.Errorf("FormatDuration(%v) = %q, want %q", ms, got, want)
		}
	}
}

func TestFilterContainment(t *testing.T) {
	ds := Dataset{Name: "listeners", Table: listenersFixture(t), Country: "Country", Platform: "Streaming Platform"}
	f := NewFilterState([]string{"Germany", "Brazil"}, []string{"Deezer", "Spotify"}, "")

	view, err := ds.Filter(f)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if view.Len() != 2 {
		t.Errorf("Len() = %d, want 2", view.Len())
	}
	for r := 0; r < view.Len(); r++ {
		c, _ := view.Get(r, "Country")
		p, _ := view.Get(r, "Streaming Platform")
		if c.String() != "Germany" && c.String() != "Brazil" {
			t.Errorf("row %d country %s not selected", r, c)
		}
		if p.String() != "Deezer" && p.String() != "Spotify" {
			t.Errorf("row %d platform %s not selected", r, p)
		}
	}
	if ds.Table.Len() != 5 {
		t.Errorf("base table changed to %d rows", ds.Table.Len())
	}
}

func TestFilterUnsupported(t *testing.T) {
	ds := Dataset{Name: "catalog", Table: catalogFixture(t), Country: "country"}
	_, err := ds.Filter(NewFilterState(nil, []string{"Deezer"}, ""))
	if !errors.Is(err, ErrUnsupportedFilter) {
		t.Errorf("error = %v, want ErrUnsupportedFilter", err)
	}
}

func TestFilterStateIsACopy(t *testing.T) {
	countries := []string{"Germany", "Germany", "Japan"}
	f := NewFilterState(countries, nil, "popularity")
	countries[0] = "Mars"

	if got := strings.Join(f.Countries(), ","); got != "Germany,Japan" {
		t.Errorf("Countries() = %s, want Germany,Japan", got)
	}
	f.Countries()[0] = "Venus"
	if f.Countries()[0] != "Germany" {
		t.Errorf("Countries() exposes internal state")
	}
}
