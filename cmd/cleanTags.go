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
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ademuri/listening-dashboard/internal/normalize"
	"github.com/ademuri/listening-dashboard/internal/source"
	"github.com/ademuri/listening-dashboard/internal/table"
)

// cleanTagsCmd represents the clean-tags command
var cleanTagsCmd = &cobra.Command{
	Use:   "clean-tags <file>",
	Short: "Trims whitespace around ;-separated tags in a file",
	Long: `Rewrites a delimited file in place so that every cell of the form
"rock ; indie" reads "rock;indie".`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := cleanTags(args[0], os.Stdout)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(cleanTagsCmd)
}

func cleanTags(path string, out io.Writer) error {
	d := source.NewDescriptor("tags", path)
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	t, err := table.ReadCSV(in, table.ReadOptions{Delimiter: d.Delimiter})
	in.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	for _, column := range t.Columns() {
		if t, err = normalize.Apply(t, column, normalize.TrimEach(";")); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := table.WriteCSV(tmp, t, d.Delimiter); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	fmt.Fprintf(out, "Cleaned %d rows in %s\n", t.Len(), path)
	return nil
}
