/*
Copyright © 2023 the EVCharge authors.
This file is part of EVCharge.

EVCharge is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EVCharge is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EVCharge.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package evutil holds the command-line interface and configuration
// handling for EVCharge.
package evutil

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/evcharge"
	"github.com/spatialmodel/evcharge/tomtom"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log is the logger used by the commands.
var Log = logrus.StandardLogger()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to EVCharge.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "key",
			usage: `
              key is the TomTom API access key.`,
			shorthand:  "k",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{searchCmd.Flags(), availabilityCmd.Flags(), pollCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages to print:
              one of debug, info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "SearchURL",
			usage: `
              SearchURL is the address of the nearby-search endpoint.`,
			defaultVal: tomtom.DefaultSearchURL,
			flagsets:   []*pflag.FlagSet{searchCmd.Flags()},
		},
		{
			name: "AvailabilityURL",
			usage: `
              AvailabilityURL is the address of the charging-availability endpoint.`,
			defaultVal: tomtom.DefaultAvailabilityURL,
			flagsets:   []*pflag.FlagSet{availabilityCmd.Flags(), pollCmd.Flags()},
		},
		{
			name: "lon",
			usage: `
              lon is the longitude of the search center.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{searchCmd.Flags()},
		},
		{
			name: "lat",
			usage: `
              lat is the latitude of the search center.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{searchCmd.Flags()},
		},
		{
			name: "Radius",
			usage: `
              Radius is the search radius in meters.`,
			defaultVal: float64(tomtom.DefaultRadius),
			flagsets:   []*pflag.FlagSet{searchCmd.Flags()},
		},
		{
			name: "Limit",
			usage: `
              Limit is the maximum number of search results.`,
			defaultVal: tomtom.DefaultLimit,
			flagsets:   []*pflag.FlagSet{searchCmd.Flags()},
		},
		{
			name: "CategorySet",
			usage: `
              CategorySet is the TomTom category to search for. The default
              is EV charging stations.`,
			defaultVal: tomtom.DefaultCategorySet,
			flagsets:   []*pflag.FlagSet{searchCmd.Flags()},
		},
		{
			name: "Stations",
			usage: `
              Stations are the availability IDs of the charging stations to query.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{availabilityCmd.Flags(), pollCmd.Flags()},
		},
		{
			name: "Interval",
			usage: `
              Interval is the number of minutes between availability queries.`,
			defaultVal: 5.0,
			flagsets:   []*pflag.FlagSet{pollCmd.Flags()},
		},
		{
			name: "Output",
			usage: `
              Output is the path of the figure to write. The format is
              chosen by the file extension: png, jpg, svg, pdf, eps or tiff.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{searchCmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "Open",
			usage: `
              Open specifies whether to open the figure after writing it.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{searchCmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "Hulls",
			usage: `
              Hulls is the path of a GeoJSON file to write the buffered hull
              around the search results to.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{searchCmd.Flags()},
		},
		{
			name: "HullRadius",
			usage: `
              HullRadius is the buffer radius around each station, in degrees.`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{searchCmd.Flags()},
		},
		{
			name: "Scenario",
			usage: `
              Scenario is the path of the TOML file describing the graph,
              routes and cliques to plot.`,
			shorthand:  "s",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("EVCHARGE")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
			case int:
				set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(searchCmd)
	Root.AddCommand(availabilityCmd)
	Root.AddCommand(pollCmd)
	Root.AddCommand(plotCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the log level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("evcharge: problem reading configuration file: %v", err)
		}
	}
	lvl, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("evcharge: %v", err)
	}
	Log.SetLevel(lvl)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "evcharge",
	Short: "Electric-vehicle charging station analysis tools.",
	Long: `evcharge searches for electric-vehicle charging stations, polls their
live availability and plots station graphs, routes and service areas.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'EVCHARGE_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of EVCharge.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("EVCharge v%s\n", evcharge.Version)
	},
	DisableAutoGenTag: true,
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for charging stations near a location.",
	Long: `search prints the charging stations within Radius meters of the
location given by --lon and --lat. If --Output is given, the stations are
also plotted; if --Hulls is given, the buffered hull around them is written
as GeoJSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Search(context.Background(), client(), tomtom.SearchRequest{
			Lon:         Cfg.GetFloat64("lon"),
			Lat:         Cfg.GetFloat64("lat"),
			Radius:      Cfg.GetFloat64("Radius"),
			Limit:       Cfg.GetInt("Limit"),
			CategorySet: Cfg.GetInt("CategorySet"),
		}, SearchOutput{
			Figure:     Cfg.GetString("Output"),
			Open:       Cfg.GetBool("Open"),
			Hulls:      Cfg.GetString("Hulls"),
			HullRadius: Cfg.GetFloat64("HullRadius"),
		}, cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

var availabilityCmd = &cobra.Command{
	Use:   "availability",
	Short: "Query the availability of charging stations.",
	Long: `availability queries the live availability of each of the --Stations
once and prints the outcome for every station. A failure for one station
does not stop the others.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := stations()
		if err != nil {
			return err
		}
		return Availability(context.Background(), client(), ids, cmd.OutOrStdout())
	},
	DisableAutoGenTag: true,
}

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Poll the availability of charging stations.",
	Long: `poll queries the availability of the --Stations every --Interval
minutes and prints the outcome until interrupted. The first query happens
one interval after starting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := stations()
		if err != nil {
			return err
		}
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		err = Poll(ctx, client(), Cfg.GetFloat64("Interval"), ids, cmd.OutOrStdout())
		if err == context.Canceled {
			return nil
		}
		return err
	},
	DisableAutoGenTag: true,
}

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot a scenario.",
	Long: `plot draws the graph, routes and cliques described in the --Scenario
TOML file and writes the figure to --Output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Plot(Cfg.GetString("Scenario"), Cfg.GetString("Output"), Cfg.GetBool("Open"))
	},
	DisableAutoGenTag: true,
}
