package analysis

// Chart names one view of the dashboard.
type Chart string

const (
	ChartMetricByCountry  Chart = "metric-by-country"
	ChartTopGenres        Chart = "top-genres"
	ChartListeningTime    Chart = "listening-time"
	ChartArtistPopularity Chart = "artist-popularity"

	ChartGenrePopularity  Chart = "genre-popularity"
	ChartExplicitShare    Chart = "explicit-share"
	ChartTempo            Chart = "tempo-distribution"
	ChartDurations        Chart = "track-durations"
	ChartArtistsByCountry Chart = "artists-by-country"
	ChartTopArtists       Chart = "top-artists"
	ChartTopTracks        Chart = "top-tracks"
)

// Result is what a chart hands to the presentation layer. Points is never
// nil; an empty selection gives an empty list or the chart's placeholder
// values.
type Result struct {
	Chart  Chart   `yaml:"chart"`
	Title  string  `yaml:"title"`
	Points []Point `yaml:"points"`
}

type Point struct {
	Label  string  `yaml:"label"`
	Value  float64 `yaml:"value"`
	Detail string  `yaml:"detail,omitempty"`
	Range  *Range  `yaml:"range,omitempty"`
}

// Range is the spread of the values behind a Point.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type ChartInfo struct {
	Chart   Chart  `yaml:"chart"`
	Dataset string `yaml:"dataset"`
	Title   string `yaml:"title"`
}

// Config names the dashboard columns and chart sizes.
type Config struct {
	// Listener analysis table.
	Country       string   `mapstructure:"country" yaml:"country"`
	Platform      string   `mapstructure:"platform" yaml:"platform"`
	Artist        string   `mapstructure:"artist" yaml:"artist"`
	Genre         string   `mapstructure:"genre" yaml:"genre"`
	ListeningTime string   `mapstructure:"listening_time" yaml:"listening_time"`
	Metrics       []string `mapstructure:"metrics" yaml:"metrics"`

	// Shared by both tables.
	Popularity string `mapstructure:"popularity" yaml:"popularity"`

	// Track catalog table.
	CatalogCountry string `mapstructure:"catalog_country" yaml:"catalog_country"`
	CatalogGenre   string `mapstructure:"catalog_genre" yaml:"catalog_genre"`
	CatalogArtist  string `mapstructure:"catalog_artist" yaml:"catalog_artist"`
	Track          string `mapstructure:"track" yaml:"track"`
	Duration       string `mapstructure:"duration" yaml:"duration"`
	Tempo          string `mapstructure:"tempo" yaml:"tempo"`
	Explicit       string `mapstructure:"explicit" yaml:"explicit"`

	// Explicit flag assumed for tracks where it is missing. Applied only
	// when the share is computed, never stored.
	ExplicitDefault bool `mapstructure:"explicit_default" yaml:"explicit_default"`

	TopGenres        int `mapstructure:"top_genres" yaml:"top_genres"`
	TopArtistsByPop  int `mapstructure:"top_artists_by_popularity" yaml:"top_artists_by_popularity"`
	TopCatalogGenres int `mapstructure:"top_catalog_genres" yaml:"top_catalog_genres"`
	TopArtists       int `mapstructure:"top_artists" yaml:"top_artists"`
	TopTracks        int `mapstructure:"top_tracks" yaml:"top_tracks"`
}

func DefaultConfig() Config {
	return Config{
		Country:       "Country",
		Platform:      "Streaming Platform",
		Artist:        "Most Played Artist",
		Genre:         "Top Genre",
		ListeningTime: "Listening Time (Morning/Afternoon/Night)",
		Metrics: []string{
			"Minutes Streamed Per Day",
			"Number of Songs Liked",
			"popularity",
			"danceability",
		},
		Popularity:       "popularity",
		CatalogCountry:   "country",
		CatalogGenre:     "track_genre",
		CatalogArtist:    "artists",
		Track:            "track_name",
		Duration:         "duration_ms",
		Tempo:            "tempo",
		Explicit:         "explicit",
		ExplicitDefault:  false,
		TopGenres:        10,
		TopArtistsByPop:  20,
		TopCatalogGenres: 10,
		TopArtists:       5,
		TopTracks:        5,
	}
}

// LabelColumns lists the columns that hold names rather than quantities.
// They stay text when a saved table is read back.
func (c Config) LabelColumns() []string {
	return []string{
		c.Country, c.Platform, c.Artist, c.Genre, c.ListeningTime,
		c.CatalogCountry, c.CatalogGenre, c.CatalogArtist, c.Track,
	}
}
