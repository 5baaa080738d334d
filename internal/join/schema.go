package join

// Schema maps the source files onto the join. It comes from configuration
// so the column names and the rename convention can be checked against the
// real dataset instead of being baked in.
type Schema struct {
	// Artist name column in each source.
	ListenerArtist string `mapstructure:"listener_artist" yaml:"listener_artist"`
	TrackArtist    string `mapstructure:"track_artist" yaml:"track_artist"`
	ArtistKey      string `mapstructure:"artist_key" yaml:"artist_key"`

	// Numeric listener columns. Cells that do not parse become missing.
	// Columns the listener source does not have are skipped.
	ListenerNumeric []string `mapstructure:"listener_numeric" yaml:"listener_numeric"`

	// Separator of multi-artist credits; only the first credit is a key.
	ArtistSeparator string `mapstructure:"artist_separator" yaml:"artist_separator"`

	// Numeric track columns averaged per artist.
	TrackMetrics []string `mapstructure:"track_metrics" yaml:"track_metrics"`

	// Further numeric track columns, coerced in the catalog when present.
	ExtraNumeric []string `mapstructure:"extra_numeric" yaml:"extra_numeric"`

	Explicit string `mapstructure:"explicit" yaml:"explicit"`

	// Output column for the per-artist share of non-explicit tracks.
	NonExplicitShare string `mapstructure:"non_explicit_share" yaml:"non_explicit_share"`

	// Artist metadata columns carried into the output.
	ArtistFields []string `mapstructure:"artist_fields" yaml:"artist_fields"`

	// Canonical names for artist metadata columns.
	Rename map[string]string `mapstructure:"rename" yaml:"rename"`
}

// DefaultSchema matches the published listening-survey dataset.
func DefaultSchema() Schema {
	return Schema{
		ListenerArtist:   "Most Played Artist",
		TrackArtist:      "artists",
		ArtistKey:        "artist_lastfm",
		ListenerNumeric:  []string{"Minutes Streamed Per Day", "Number of Songs Liked"},
		ArtistSeparator:  ";",
		TrackMetrics:     []string{"popularity", "duration_ms", "danceability", "energy"},
		ExtraNumeric:     []string{"tempo"},
		Explicit:         "explicit",
		NonExplicitShare: "non_explicit_share",
		ArtistFields:     []string{"country_lastfm", "tags_lastfm"},
		Rename: map[string]string{
			"country_lastfm": "style",
			"tags_lastfm":    "country",
		},
	}
}
