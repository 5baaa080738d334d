// Package source fetches the raw delimited tables the join pipeline starts
// from: local files or published-spreadsheet exports over HTTP.
package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/avast/retry-go"
	"golang.org/x/sync/errgroup"

	"github.com/ademuri/listening-dashboard/internal/table"
)

// Descriptor names one tabular source.
type Descriptor struct {
	Name      string
	Location  string
	Delimiter rune
}

// NewDescriptor guesses the delimiter from the location: tab for .tsv/.tab
// files and exports requested with output=tsv, comma otherwise.
func NewDescriptor(name, location string) Descriptor {
	d := Descriptor{Name: name, Location: location, Delimiter: ','}
	if u, err := url.Parse(location); err == nil && isRemote(u) {
		if u.Query().Get("output") == "tsv" {
			d.Delimiter = '\t'
		}
		return d
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".tsv", ".tab":
		d.Delimiter = '\t'
	}
	return d
}

func (d Descriptor) Remote() bool {
	u, err := url.Parse(d.Location)
	return err == nil && isRemote(u)
}

func isRemote(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

// LoadFailure reports a source that could not be fetched or parsed.
type LoadFailure struct {
	Source   string
	Location string
	Err      error
}

func (f *LoadFailure) Error() string {
	return fmt.Sprintf("source %q (%s) unavailable: %v", f.Source, f.Location, f.Err)
}

func (f *LoadFailure) Unwrap() error { return f.Err }

type Loader struct {
	client   *http.Client
	attempts uint
}

// NewLoader returns a loader that makes attempts tries per source. Fewer
// than one attempt is treated as one.
func NewLoader(client *http.Client, attempts uint) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if attempts < 1 {
		attempts = 1
	}
	return &Loader{client: client, attempts: attempts}
}

// Load reads the source into a text table. Every failure is returned as a
// *LoadFailure.
func (l *Loader) Load(ctx context.Context, d Descriptor) (*table.Table, error) {
	var t *table.Table
	err := retry.Do(
		func() error {
			var err error
			t, err = l.loadOnce(ctx, d)
			return err
		},
		retry.Attempts(l.attempts),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, &LoadFailure{Source: d.Name, Location: d.Location, Err: err}
	}
	return t, nil
}

func (l *Loader) loadOnce(ctx context.Context, d Descriptor) (*table.Table, error) {
	opts := table.ReadOptions{Delimiter: d.Delimiter}
	if !d.Remote() {
		f, err := os.Open(d.Location)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return table.ReadCSV(f, opts)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.Location, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("GET returned %s", resp.Status)
	}
	return table.ReadCSV(resp.Body, opts)
}

// LoadAll loads every descriptor concurrently. Tables are keyed by
// descriptor name; failed sources are absent from the map and each one is
// reported in failures.
func (l *Loader) LoadAll(ctx context.Context, descs []Descriptor) (map[string]*table.Table, []*LoadFailure) {
	tables := make([]*table.Table, len(descs))
	errs := make([]error, len(descs))

	var g errgroup.Group
	g.SetLimit(4)
	for i, d := range descs {
		g.Go(func() error {
			tables[i], errs[i] = l.Load(ctx, d)
			return nil
		})
	}
	g.Wait()

	loaded := make(map[string]*table.Table, len(descs))
	var failures []*LoadFailure
	for i, d := range descs {
		if errs[i] != nil {
			failures = append(failures, errs[i].(*LoadFailure))
			continue
		}
		loaded[d.Name] = tables[i]
	}
	return loaded, failures
}
