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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-dashboard/internal/analysis"
	"github.com/ademuri/listening-dashboard/internal/join"
)

var cfgFile string
var lastFmApiKey string
var lastFmSecret string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "listening-dashboard",
	Short: "Joins music listening data and computes dashboard charts",
	Long: `Joins a listener survey with track and artist metadata into flat tables,
then answers chart queries over them filtered by country and platform.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.listening-dashboard.yaml)")

	rootCmd.PersistentFlags().StringVarP(
		&lastFmApiKey, "api_key", "", "", "last.fm API key, for fetch-artists")
	viper.BindPFlag("api_key", rootCmd.PersistentFlags().Lookup("api_key"))

	rootCmd.PersistentFlags().StringVarP(
		&lastFmSecret, "secret", "", "", "last.fm secret, for fetch-artists")
	viper.BindPFlag("secret", rootCmd.PersistentFlags().Lookup("secret"))

	var listeners, tracks, artists string
	rootCmd.PersistentFlags().StringVar(&listeners, "listeners", "", "Listener survey source (path or URL)")
	viper.BindPFlag("listeners", rootCmd.PersistentFlags().Lookup("listeners"))
	rootCmd.PersistentFlags().StringVar(&tracks, "tracks", "", "Track metadata source (path or URL)")
	viper.BindPFlag("tracks", rootCmd.PersistentFlags().Lookup("tracks"))
	rootCmd.PersistentFlags().StringVar(&artists, "artists", "", "Artist metadata source (path or URL)")
	viper.BindPFlag("artists", rootCmd.PersistentFlags().Lookup("artists"))

	var dataDir string
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data_dir", "d", "./data", "Directory holding the joined tables")
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data_dir"))

	var attempts uint
	rootCmd.PersistentFlags().UintVar(&attempts, "attempts", 1, "Attempts per source before giving up on it")
	viper.BindPFlag("attempts", rootCmd.PersistentFlags().Lookup("attempts"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".listening-dashboard" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".listening-dashboard")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

// schemaConfig overlays the "schema" config section on the default join
// schema. Viper lowercases map keys, so rename entries must use lowercase
// column names.
func schemaConfig() (join.Schema, error) {
	s := join.DefaultSchema()
	if err := viper.UnmarshalKey("schema", &s); err != nil {
		return s, fmt.Errorf("reading schema config: %w", err)
	}
	return s, nil
}

// dashboardConfig overlays the "dashboard" config section on the default
// chart configuration.
func dashboardConfig() (analysis.Config, error) {
	c := analysis.DefaultConfig()
	if err := viper.UnmarshalKey("dashboard", &c); err != nil {
		return c, fmt.Errorf("reading dashboard config: %w", err)
	}
	return c, nil
}
