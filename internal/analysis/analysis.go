// Package analysis computes the dashboard charts from the materialized
// tables. Tables are only read: every chart filters into a fresh view and
// aggregates that, so one Dashboard can serve concurrent queries.
package analysis

import (
	"errors"
	"fmt"

	"github.com/ademuri/listening-dashboard/internal/normalize"
	"github.com/ademuri/listening-dashboard/internal/table"
)

var (
	ErrUnknownChart     = errors.New("unknown chart")
	ErrUnknownMetric    = errors.New("unknown metric")
	ErrDatasetNotLoaded = errors.New("dataset not loaded")
)

const (
	datasetListeners = "listeners"
	datasetCatalog   = "catalog"
)

var charts = []ChartInfo{
	{ChartMetricByCountry, datasetListeners, "Mean of the selected metric by country"},
	{ChartTopGenres, datasetListeners, "Top music genres"},
	{ChartListeningTime, datasetListeners, "Listening time of day"},
	{ChartArtistPopularity, datasetListeners, "Top artists by popularity"},
	{ChartGenrePopularity, datasetCatalog, "Genre popularity"},
	{ChartExplicitShare, datasetCatalog, "Share of tracks without explicit content"},
	{ChartTempo, datasetCatalog, "Track tempo distribution"},
	{ChartDurations, datasetCatalog, "Track durations"},
	{ChartArtistsByCountry, datasetCatalog, "Artists per country"},
	{ChartTopArtists, datasetCatalog, "Top artists"},
	{ChartTopTracks, datasetCatalog, "Top tracks"},
}

// Charts lists every chart in display order.
func Charts() []ChartInfo {
	return append([]ChartInfo(nil), charts...)
}

func lookup(c Chart) (ChartInfo, bool) {
	for _, info := range charts {
		if info.Chart == c {
			return info, true
		}
	}
	return ChartInfo{}, false
}

// Dashboard is the process-wide handle on the loaded tables. Either table
// may be nil, in which case the charts reading it report
// ErrDatasetNotLoaded.
type Dashboard struct {
	cfg       Config
	listeners Dataset
	catalog   Dataset
}

func NewDashboard(cfg Config, listeners, catalog *table.Table) *Dashboard {
	return &Dashboard{
		cfg: cfg,
		listeners: Dataset{
			Name:     datasetListeners,
			Table:    listeners,
			Country:  cfg.Country,
			Platform: cfg.Platform,
		},
		catalog: Dataset{
			Name:    datasetCatalog,
			Table:   catalog,
			Country: cfg.CatalogCountry,
		},
	}
}

// Query computes one chart for the selection.
func (d *Dashboard) Query(f FilterState, c Chart) (Result, error) {
	info, ok := lookup(c)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownChart, c)
	}

	ds := d.listeners
	if info.Dataset == datasetCatalog {
		ds = d.catalog
	}
	if ds.Table == nil {
		return Result{}, fmt.Errorf("%s: %w: %s", c, ErrDatasetNotLoaded, ds.Name)
	}
	view, err := ds.Filter(f)
	if err != nil {
		return Result{}, fmt.Errorf("%s: filtering: %w", c, err)
	}

	res := Result{Chart: c, Title: info.Title, Points: []Point{}}
	switch c {
	case ChartMetricByCountry:
		metric, err := d.metric(f)
		if err != nil {
			return Result{}, err
		}
		res.Title = fmt.Sprintf("Mean %s by country", metric)
		return res, wrap(c, d.groupStats(&res, view, d.cfg.Country, metric))

	case ChartTopGenres:
		return res, wrap(c, d.valueCounts(&res, view, d.cfg.Genre, d.cfg.TopGenres))

	case ChartListeningTime:
		return res, wrap(c, d.valueCounts(&res, view, d.cfg.ListeningTime, -1))

	case ChartArtistPopularity:
		return res, wrap(c, d.groupMean(&res, view, d.cfg.Artist, d.cfg.Popularity, d.cfg.TopArtistsByPop))

	case ChartGenrePopularity:
		return res, wrap(c, d.groupMean(&res, view, d.cfg.CatalogGenre, d.cfg.Popularity, d.cfg.TopCatalogGenres))

	case ChartExplicitShare:
		return res, wrap(c, d.explicitShare(&res, view))

	case ChartTempo:
		shares, err := BucketShares(view, d.cfg.Tempo, TempoCategory)
		if err != nil {
			return Result{}, wrap(c, err)
		}
		for _, s := range shares {
			res.Points = append(res.Points, Point{Label: s.Label, Value: s.Value, Detail: fmt.Sprintf("%.1f%%", s.Value)})
		}
		return res, nil

	case ChartDurations:
		return res, wrap(c, d.durations(&res, view))

	case ChartArtistsByCountry:
		counts, err := GroupNUnique(view, d.cfg.CatalogCountry, d.cfg.CatalogArtist)
		if err != nil {
			return Result{}, wrap(c, err)
		}
		for _, lc := range counts {
			res.Points = append(res.Points, Point{Label: lc.Label, Value: float64(lc.Count)})
		}
		return res, nil

	case ChartTopArtists:
		totals, err := GroupSumNUnique(view, d.cfg.CatalogArtist, d.cfg.Popularity, d.cfg.Track)
		if err != nil {
			return Result{}, wrap(c, err)
		}
		for _, g := range capped(totals, d.cfg.TopArtists) {
			res.Points = append(res.Points, Point{Label: g.Label, Value: g.Sum, Detail: fmt.Sprintf("%d tracks", g.Unique)})
		}
		return res, nil

	case ChartTopTracks:
		return res, wrap(c, d.topTracks(&res, view))
	}
	return Result{}, fmt.Errorf("%w: %q", ErrUnknownChart, c)
}

func wrap(c Chart, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", c, err)
}

func capped[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// metric returns the selected metric, or the first configured one.
func (d *Dashboard) metric(f FilterState) (string, error) {
	m := f.Metric()
	if m == "" {
		if len(d.cfg.Metrics) == 0 {
			return "", fmt.Errorf("%w: none configured", ErrUnknownMetric)
		}
		return d.cfg.Metrics[0], nil
	}
	for _, allowed := range d.cfg.Metrics {
		if m == allowed {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of %q)", ErrUnknownMetric, m, d.cfg.Metrics)
}

func (d *Dashboard) groupMean(res *Result, view *table.Table, group, value string, n int) error {
	means, err := GroupMean(view, group, value)
	if err != nil {
		return err
	}
	for _, lv := range capped(means, n) {
		res.Points = append(res.Points, Point{Label: lv.Label, Value: lv.Value})
	}
	return nil
}

// groupStats is groupMean with the min and max of each group attached.
func (d *Dashboard) groupStats(res *Result, view *table.Table, group, value string) error {
	means, err := GroupMean(view, group, value)
	if err != nil {
		return err
	}
	_, rows, err := groups(view, group)
	if err != nil {
		return err
	}
	for _, lv := range means {
		sub := view.Pick(rows[lv.Label])
		lo, _, err := ScalarReduce(sub, value, Min)
		if err != nil {
			return err
		}
		hi, _, err := ScalarReduce(sub, value, Max)
		if err != nil {
			return err
		}
		res.Points = append(res.Points, Point{Label: lv.Label, Value: lv.Value, Range: &Range{Min: lo, Max: hi}})
	}
	return nil
}

func (d *Dashboard) valueCounts(res *Result, view *table.Table, column string, n int) error {
	counts, err := ValueCounts(view, column)
	if err != nil {
		return err
	}
	for _, lc := range capped(counts, n) {
		res.Points = append(res.Points, Point{Label: lc.Label, Value: float64(lc.Count)})
	}
	return nil
}

// explicitShare reports the percentage of selected tracks without explicit
// content. Tracks with no explicit flag take the configured default here,
// and only here.
func (d *Dashboard) explicitShare(res *Result, view *table.Table) error {
	filled, err := normalize.Apply(view, d.cfg.Explicit, normalize.ToBool, normalize.FillMissing(table.Bool(d.cfg.ExplicitDefault)))
	if err != nil {
		return err
	}
	explicit, ok, err := ScalarReduce(filled, d.cfg.Explicit, Mean)
	if err != nil {
		return err
	}
	share := 0.0
	if ok {
		share = (1 - explicit) * 100
	}
	res.Points = append(res.Points, Point{Label: "non-explicit", Value: share, Detail: fmt.Sprintf("%.1f%%", share)})
	return nil
}

// durations reports the shortest, mean and longest track. With no tracks
// selected all three read EmptyDuration.
func (d *Dashboard) durations(res *Result, view *table.Table) error {
	for _, p := range []struct {
		label string
		op    Reduce
	}{
		{"shortest", Min},
		{"average", Mean},
		{"longest", Max},
	} {
		ms, ok, err := ScalarReduce(view, d.cfg.Duration, p.op)
		if err != nil {
			return err
		}
		detail := EmptyDuration
		if ok {
			detail = FormatDuration(ms)
		}
		res.Points = append(res.Points, Point{Label: p.label, Value: ms, Detail: detail})
	}
	return nil
}

func (d *Dashboard) topTracks(res *Result, view *table.Table) error {
	top, err := TopNBy(view, d.cfg.Popularity, d.cfg.TopTracks, d.cfg.Track)
	if err != nil {
		return err
	}
	tc, _ := top.Index(d.cfg.Track)
	pc, _ := top.Index(d.cfg.Popularity)
	ac, err := top.Index(d.cfg.CatalogArtist)
	if err != nil {
		return err
	}
	for r := 0; r < top.Len(); r++ {
		pop, _, err := numeric(top.At(r, pc), d.cfg.Popularity)
		if err != nil {
			return err
		}
		res.Points = append(res.Points, Point{
			Label:  top.At(r, tc).String(),
			Value:  pop,
			Detail: top.At(r, ac).String(),
		})
	}
	return nil
}
