// Package enrich builds the artist metadata source from last.fm top tags.
package enrich

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ademuri/lastfm-go/lastfm"
	"github.com/avast/retry-go"
	"golang.org/x/time/rate"

	"github.com/ademuri/listening-dashboard/internal/normalize"
	"github.com/ademuri/listening-dashboard/internal/table"
)

type Tag struct {
	Name  string
	Count int
}

// TagFetcher looks up the most used tags of an artist, most used first.
type TagFetcher interface {
	TopTags(ctx context.Context, artist string) ([]Tag, error)
}

// Lastfm fetches tags from the last.fm API, at most one request per second.
type Lastfm struct {
	client  *lastfm.Api
	limiter *rate.Limiter
}

func NewLastfm(apiKey, secret string) *Lastfm {
	client := lastfm.New(apiKey, secret)
	client.SetUserAgent("listening-dashboard/1.0")
	return &Lastfm{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(1*time.Second), 1),
	}
}

func (l *Lastfm) TopTags(ctx context.Context, artist string) ([]Tag, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var topTags lastfm.ArtistGetTopTags
	err := retry.Do(
		func() error {
			var err error
			topTags, err = l.client.Artist.GetTopTags(lastfm.P{
				"artist":      artist,
				"autocorrect": 1,
			})
			return err
		},
		retry.RetryIf(serverError),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching tags for %q: %w", artist, err)
	}

	tags := make([]Tag, 0, len(topTags.Tags))
	for _, t := range topTags.Tags {
		c, _ := strconv.Atoi(t.Count)
		tags = append(tags, Tag{Name: t.Name, Count: c})
	}
	return tags, nil
}

// serverError reports whether last.fm failed on its side, in which case the
// request is worth repeating.
func serverError(err error) bool {
	if lerr, ok := err.(*lastfm.LastfmError); ok {
		return lerr.Code/100 == 5
	}
	return false
}

// Columns names the columns of the artist metadata table.
type Columns struct {
	Artist  string
	Country string
	Tags    string
}

// Options controls how the artist metadata table is built.
type Options struct {
	Columns Columns

	// TagSeparator joins the tags of one artist into a single cell.
	TagSeparator string

	// MaxTags caps the tags kept per artist; zero keeps them all.
	MaxTags int

	// Failed, when set, is told about every artist whose lookup failed.
	// The artist is still listed, with its tags missing.
	Failed func(artist string, err error)
}

// Artists returns the distinct first-credited artists of column, in the
// order they first appear.
func Artists(tracks *table.Table, column, separator string) ([]string, error) {
	firsts, err := normalize.Apply(tracks, column, normalize.FirstOfMultivalue(separator))
	if err != nil {
		return nil, err
	}
	vals, err := firsts.Column(column)
	if err != nil {
		return nil, err
	}

	var out []string
	seen := make(map[string]bool)
	for _, v := range vals {
		s, ok := v.AsText()
		if !ok || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}

// Build looks up every artist and returns one row per artist. last.fm has no
// notion of an artist's country, so that column is left missing for the
// schema to fill or rename.
func Build(ctx context.Context, f TagFetcher, artists []string, opts Options) (*table.Table, error) {
	rows := make([][]table.Value, 0, len(artists))
	for _, artist := range artists {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tagCell := table.Missing
		tags, err := f.TopTags(ctx, artist)
		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			if opts.Failed != nil {
				opts.Failed(artist, err)
			}
		default:
			tagCell = joinTags(tags, opts.MaxTags, opts.TagSeparator)
		}
		rows = append(rows, []table.Value{table.Text(artist), table.Missing, tagCell})
	}

	c := opts.Columns
	return table.New([]string{c.Artist, c.Country, c.Tags}, rows)
}

func joinTags(tags []Tag, max int, sep string) table.Value {
	var names []string
	for _, t := range tags {
		if max > 0 && len(names) == max {
			break
		}
		if name := strings.TrimSpace(t.Name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return table.Missing
	}
	return table.Text(strings.Join(names, sep))
}
