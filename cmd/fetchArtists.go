/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-dashboard/internal/enrich"
	"github.com/ademuri/listening-dashboard/internal/join"
	"github.com/ademuri/listening-dashboard/internal/source"
	"github.com/ademuri/listening-dashboard/internal/table"
)

type FetchArtistsConfig struct {
	Tracks   string
	Output   string
	MaxTags  int
	Attempts uint
	Schema   join.Schema
}

// fetchArtistsCmd represents the fetch-artists command
var fetchArtistsCmd = &cobra.Command{
	Use:   "fetch-artists",
	Short: "Builds the artist source from last.fm tags",
	Long: `Looks up the top last.fm tags of every first-credited artist in the track
source and writes them as an artist metadata file that join can read.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range []string{"api_key", "secret", "tracks"} {
			if viper.GetString(name) == "" {
				return fmt.Errorf("required flag(s) %q not set", name)
			}
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		schema, err := schemaConfig()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		config := FetchArtistsConfig{
			Tracks:   viper.GetString("tracks"),
			Output:   viper.GetString("output"),
			MaxTags:  viper.GetInt("max_tags"),
			Attempts: viper.GetUint("attempts"),
			Schema:   schema,
		}

		fetcher := enrich.NewLastfm(viper.GetString("api_key"), viper.GetString("secret"))
		err = fetchArtists(context.Background(), config, fetcher, os.Stdout)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(fetchArtistsCmd)

	var output string
	fetchArtistsCmd.Flags().StringVar(&output, "output", "artists.csv", "File to write the artist metadata to")
	viper.BindPFlag("output", fetchArtistsCmd.Flags().Lookup("output"))

	var maxTags int
	fetchArtistsCmd.Flags().IntVar(&maxTags, "max_tags", 5, "Tags to keep per artist, 0 for all")
	viper.BindPFlag("max_tags", fetchArtistsCmd.Flags().Lookup("max_tags"))
}

func fetchArtists(ctx context.Context, config FetchArtistsConfig, fetcher enrich.TagFetcher, out io.Writer) error {
	s := config.Schema
	if len(s.ArtistFields) < 2 {
		return fmt.Errorf("schema.artist_fields needs a country and a tags column, got %q", s.ArtistFields)
	}

	loader := source.NewLoader(nil, config.Attempts)
	tracks, err := loader.Load(ctx, source.NewDescriptor(join.Tracks, config.Tracks))
	if err != nil {
		return err
	}
	artists, err := enrich.Artists(tracks, s.TrackArtist, s.ArtistSeparator)
	if err != nil {
		return fmt.Errorf("listing artists: %w", err)
	}
	fmt.Fprintf(out, "Found %d artists\n", len(artists))

	opts := enrich.Options{
		Columns: enrich.Columns{
			Artist:  s.ArtistKey,
			Country: s.ArtistFields[0],
			Tags:    s.ArtistFields[1],
		},
		TagSeparator: s.ArtistSeparator + " ",
		MaxTags:      config.MaxTags,
		Failed: func(artist string, err error) {
			fmt.Fprintf(out, "Error fetching tags for artist %s: %v\n", artist, err)
		},
	}
	artistTable, err := enrich.Build(ctx, fetcher, artists, opts)
	if err != nil {
		return fmt.Errorf("fetching tags: %w", err)
	}

	f, err := os.Create(config.Output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", config.Output, err)
	}
	defer f.Close()
	d := source.NewDescriptor(join.Artists, config.Output)
	if err := table.WriteCSV(f, artistTable, d.Delimiter); err != nil {
		return fmt.Errorf("writing %s: %w", config.Output, err)
	}
	fmt.Fprintf(out, "Wrote %d artists to %s\n", artistTable.Len(), config.Output)
	return f.Close()
}
