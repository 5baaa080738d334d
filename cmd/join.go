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

	"github.com/ademuri/listening-dashboard/internal/join"
	"github.com/ademuri/listening-dashboard/internal/source"
	"github.com/ademuri/listening-dashboard/internal/store"
)

type JoinConfig struct {
	Listeners string
	Tracks    string
	Artists   string
	DataDir   string
	Attempts  uint
	Schema    join.Schema
}

// joinCmd represents the join command
var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Joins the sources into the dashboard tables",
	Long: `Loads the listener, track and artist sources, joins them on the artist
name and writes the analysis and catalog tables to the data directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		schema, err := schemaConfig()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		config := JoinConfig{
			Listeners: viper.GetString("listeners"),
			Tracks:    viper.GetString("tracks"),
			Artists:   viper.GetString("artists"),
			DataDir:   viper.GetString("data_dir"),
			Attempts:  viper.GetUint("attempts"),
			Schema:    schema,
		}

		err = runJoin(context.Background(), config, os.Stdout)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(joinCmd)
}

func runJoin(ctx context.Context, config JoinConfig, out io.Writer) error {
	var descs []source.Descriptor
	for _, s := range []struct{ name, location string }{
		{join.Listeners, config.Listeners},
		{join.Tracks, config.Tracks},
		{join.Artists, config.Artists},
	} {
		if s.location == "" {
			fmt.Fprintf(out, "No location configured for %s\n", s.name)
			continue
		}
		descs = append(descs, source.NewDescriptor(s.name, s.location))
	}

	loader := source.NewLoader(nil, config.Attempts)
	tables, failures := loader.LoadAll(ctx, descs)
	for _, f := range failures {
		fmt.Fprintf(out, "Error: %v\n", f)
	}
	for _, d := range descs {
		if t, ok := tables[d.Name]; ok {
			fmt.Fprintf(out, "Loaded %d rows from %s\n", t.Len(), d.Name)
		}
	}

	in := join.Inputs{
		Listeners: tables[join.Listeners],
		Tracks:    tables[join.Tracks],
		Artists:   tables[join.Artists],
	}
	analysisTable, err := join.JoinAll(config.Schema, in)
	if err != nil {
		return fmt.Errorf("joining analysis table: %w", err)
	}
	catalogTable, err := join.JoinCatalog(config.Schema, in)
	if err != nil {
		return fmt.Errorf("joining catalog table: %w", err)
	}

	st, err := store.New(config.DataDir)
	if err != nil {
		return err
	}
	if err := st.Save(store.Analysis, analysisTable); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d rows to %s\n", analysisTable.Len(), st.Path(store.Analysis))
	if err := st.Save(store.Catalog, catalogTable); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d rows to %s\n", catalogTable.Len(), st.Path(store.Catalog))
	return nil
}
