/*
Copyright © 2025 the WRFPolar authors.
This file is part of WRFPolar.

WRFPolar is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WRFPolar is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WRFPolar.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package wrfpputil holds the command-line interface of the WRFPolar
// post-processor.
package wrfpputil

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var logger *logrus.Logger

func init() {
	logger = logrus.StandardLogger()
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
}

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
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
			name: "var",
			usage: `
              var specifies the variable to summarize. It may be a raw
              wrfout variable or one of the derived variables:
              geopotential, theta, pressure, temperature, rho, rh,
              precip, slp.`,
			shorthand:  "v",
			defaultVal: "slp",
			flagsets:   []*pflag.FlagSet{statsCmd.Flags()},
		},
		{
			name: "tstart",
			usage: `
              tstart specifies the beginning time index (inclusive).`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{statsCmd.Flags()},
		},
		{
			name: "tend",
			usage: `
              tend specifies the ending time index (exclusive). The
              default is -1 which represents the last time step.`,
			defaultVal: -1,
			flagsets:   []*pflag.FlagSet{statsCmd.Flags()},
		},
		{
			name: "lstart",
			usage: `
              lstart specifies the beginning vertical layer index
              (inclusive).`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{statsCmd.Flags()},
		},
		{
			name: "lend",
			usage: `
              lend specifies the ending vertical layer index
              (exclusive). The default is -1 which represents the top
              layer.`,
			defaultVal: -1,
			flagsets:   []*pflag.FlagSet{statsCmd.Flags()},
		},
		{
			name: "lat",
			usage: `
              lat specifies a latitude in degrees, north positive.`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{nearestCmd.Flags(), ll2xyCmd.Flags()},
		},
		{
			name: "lon",
			usage: `
              lon specifies a longitude in degrees, east positive.`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{nearestCmd.Flags(), ll2xyCmd.Flags()},
		},
		{
			name: "neighbors",
			usage: `
              neighbors specifies whether to include the 3x3
              neighborhood of the nearest grid cell in the report.`,
			shorthand:  "n",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{nearestCmd.Flags()},
		},
		{
			name: "x",
			usage: `
              x specifies a projected x coordinate in meters.`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{xy2llCmd.Flags()},
		},
		{
			name: "y",
			usage: `
              y specifies a projected y coordinate in meters.`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{xy2llCmd.Flags()},
		},
		{
			name: "spec",
			usage: `
              spec specifies the location of the TOML file holding the
              download specifications (period, area, variables).`,
			defaultVal: "download.toml",
			flagsets:   []*pflag.FlagSet{downloadCmd.PersistentFlags()},
		},
		{
			name: "dir",
			usage: `
              dir specifies the directory downloads are saved to,
              overriding the directory in the specification file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{downloadCmd.PersistentFlags()},
		},
	}

	Cfg = viper.New()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
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
	Root.AddCommand(infoCmd)
	Root.AddCommand(statsCmd)
	Root.AddCommand(nearestCmd)
	Root.AddCommand(ll2xyCmd)
	Root.AddCommand(xy2llCmd)
	Root.AddCommand(downloadCmd)
	downloadCmd.AddCommand(downloadFNLCmd)
	downloadCmd.AddCommand(downloadFINNCmd)
	downloadCmd.AddCommand(downloadERA5Cmd)
	downloadCmd.AddCommand(downloadChlCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("wrfpp: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Version is the version of this program.
const Version = "1.0.0"

// Root is the main command.
var Root = &cobra.Command{
	Use:   "wrfpp",
	Short: "Post-process polar WRF-Chem model output.",
	Long: `wrfpp derives physical variables from wrfout files, converts between
geographic and grid coordinates, and downloads model input data.
Use the subcommands specified below to access the functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag) or by using command-line arguments.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of wrfpp.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wrfpp v%s\n", Version)
	},
	DisableAutoGenTag: true,
}

var infoCmd = &cobra.Command{
	Use:   "info [wrfout file]",
	Short: "Describe a wrfout file",
	Long: `info prints the dimensions, the map projection, and the global
attributes of a wrfout file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Info(os.Stdout, args[0])
	},
	DisableAutoGenTag: true,
}

var statsCmd = &cobra.Command{
	Use:   "stats [wrfout file]",
	Short: "Summarize a raw or derived variable",
	Long: `stats computes the count, mean, minimum, maximum and sample standard
deviation of a raw or derived variable over the selected time steps and
vertical layers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return VarStats(os.Stdout, args[0], Cfg.GetString("var"),
			Cfg.GetInt("tstart"), Cfg.GetInt("tend"),
			Cfg.GetInt("lstart"), Cfg.GetInt("lend"))
	},
	DisableAutoGenTag: true,
}

var nearestCmd = &cobra.Command{
	Use:   "nearest [wrfout file]",
	Short: "Find the grid cell nearest to a location",
	Long: `nearest reports the grid cell whose center is closest to the given
latitude and longitude, and optionally its 3x3 neighborhood.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Nearest(os.Stdout, args[0],
			Cfg.GetFloat64("lat"), Cfg.GetFloat64("lon"),
			Cfg.GetBool("neighbors"))
	},
	DisableAutoGenTag: true,
}

var ll2xyCmd = &cobra.Command{
	Use:   "ll2xy [wrfout file]",
	Short: "Convert a geographic coordinate to grid coordinates",
	Long: `ll2xy converts a latitude and longitude in degrees to projected
x and y coordinates in meters, using the map projection of the given
wrfout file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return LL2XY(os.Stdout, args[0],
			Cfg.GetFloat64("lon"), Cfg.GetFloat64("lat"))
	},
	DisableAutoGenTag: true,
}

var xy2llCmd = &cobra.Command{
	Use:   "xy2ll [wrfout file]",
	Short: "Convert grid coordinates to a geographic coordinate",
	Long: `xy2ll converts projected x and y coordinates in meters to a
latitude and longitude in degrees, using the map projection of the
given wrfout file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return XY2LL(os.Stdout, args[0],
			Cfg.GetFloat64("x"), Cfg.GetFloat64("y"))
	},
	DisableAutoGenTag: true,
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download model input data",
	Long: `download fetches the input datasets a simulation is built from.
Use the subcommands specified below to choose a dataset. The download
specifications (period, area, variables) are read from the TOML file
given by the --spec flag.`,
	DisableAutoGenTag: true,
}

var downloadFNLCmd = &cobra.Command{
	Use:   "fnl",
	Short: "Download NCEP FNL reanalyses",
	Long: `fnl downloads the 6-hourly GRIB2 FNL analyses for the configured
period for use as initial and boundary conditions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Download(context.Background(), "fnl", Cfg.GetString("spec"), Cfg.GetString("dir"))
	},
	DisableAutoGenTag: true,
}

var downloadFINNCmd = &cobra.Command{
	Use:   "finn",
	Short: "Download FINN fire emissions",
	Long: `finn downloads the daily MOZART-speciated FINN fire emission
inventory files for the configured days.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Download(context.Background(), "finn", Cfg.GetString("spec"), Cfg.GetString("dir"))
	},
	DisableAutoGenTag: true,
}

var downloadERA5Cmd = &cobra.Command{
	Use:   "era5",
	Short: "Download ERA5 surface reanalyses",
	Long: `era5 retrieves daily ERA5 single-level analyses through the
Copernicus Climate Data Store API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Download(context.Background(), "era5", Cfg.GetString("spec"), Cfg.GetString("dir"))
	},
	DisableAutoGenTag: true,
}

var downloadChlCmd = &cobra.Command{
	Use:   "chlorophyll",
	Short: "Download CMEMS ocean chlorophyll",
	Long: `chlorophyll downloads a subset of the CMEMS ocean chlorophyll
product for marine organic aerosol emissions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Download(context.Background(), "chlorophyll", Cfg.GetString("spec"), Cfg.GetString("dir"))
	},
	DisableAutoGenTag: true,
}
