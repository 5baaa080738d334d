/*
Copyright 2026 Google LLC

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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ademuri/listening-dashboard/internal/analysis"
)

// chartsCmd represents the charts command
var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Lists the charts query can compute",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		err := listCharts(os.Stdout)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chartsCmd)
}

func listCharts(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHART\tTABLE\tTITLE")
	for _, c := range analysis.Charts() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Chart, c.Dataset, c.Title)
	}
	return w.Flush()
}
