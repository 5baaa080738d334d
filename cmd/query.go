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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/listening-dashboard/internal/analysis"
	"github.com/ademuri/listening-dashboard/internal/store"
	"github.com/ademuri/listening-dashboard/internal/table"
)

type QueryConfig struct {
	DataDir   string
	Chart     string
	Countries []string
	Platforms []string
	Metric    string
	Format    string
	Dashboard analysis.Config
}

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <chart>",
	Short: "Computes one chart from the joined tables",
	Long: `Reads the tables written by join and prints one chart, restricted to the
selected countries and platforms. Run "charts" for the list of charts.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		switch f := viper.GetString("format"); f {
		case "table", "yaml":
			return nil
		default:
			return fmt.Errorf("unknown format %q, want table or yaml", f)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		dashboard, err := dashboardConfig()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		config := QueryConfig{
			DataDir:   viper.GetString("data_dir"),
			Chart:     args[0],
			Countries: viper.GetStringSlice("country"),
			Platforms: viper.GetStringSlice("platform"),
			Metric:    viper.GetString("metric"),
			Format:    viper.GetString("format"),
			Dashboard: dashboard,
		}

		err = runQuery(config, os.Stdout)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)

	var countries []string
	queryCmd.Flags().StringSliceVar(&countries, "country", nil, "Only include these countries (default all)")
	viper.BindPFlag("country", queryCmd.Flags().Lookup("country"))

	var platforms []string
	queryCmd.Flags().StringSliceVar(&platforms, "platform", nil, "Only include these streaming platforms (default all)")
	viper.BindPFlag("platform", queryCmd.Flags().Lookup("platform"))

	var metric string
	queryCmd.Flags().StringVar(&metric, "metric", "", "Metric for metric-by-country (default the first configured)")
	viper.BindPFlag("metric", queryCmd.Flags().Lookup("metric"))

	var format string
	queryCmd.Flags().StringVarP(&format, "format", "o", "table", "Output format: table or yaml")
	viper.BindPFlag("format", queryCmd.Flags().Lookup("format"))
}

// loadDashboard opens whichever joined tables exist. Charts over a table
// that was never written report it as not loaded.
func loadDashboard(dataDir string, config analysis.Config) (*analysis.Dashboard, error) {
	st, err := store.New(dataDir)
	if err != nil {
		return nil, err
	}

	load := func(name string) (*table.Table, error) {
		exists, err := st.Exists(name)
		if err != nil || !exists {
			return nil, err
		}
		return st.Load(name, config.LabelColumns()...)
	}
	listeners, err := load(store.Analysis)
	if err != nil {
		return nil, err
	}
	catalog, err := load(store.Catalog)
	if err != nil {
		return nil, err
	}
	return analysis.NewDashboard(config, listeners, catalog), nil
}

func runQuery(config QueryConfig, out io.Writer) error {
	dashboard, err := loadDashboard(config.DataDir, config.Dashboard)
	if err != nil {
		return err
	}

	filter := analysis.NewFilterState(config.Countries, config.Platforms, config.Metric)
	res, err := dashboard.Query(filter, analysis.Chart(config.Chart))
	if err != nil {
		return err
	}

	switch config.Format {
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(res); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		return encoder.Close()
	default:
		fmt.Fprint(out, newAnalysis(res).String())
		return nil
	}
}
