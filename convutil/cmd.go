/*
Copyright © 2018 the InMAP authors.
This file is part of rconvergence.

rconvergence is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

rconvergence is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with rconvergence.  If not, see <http://www.gnu.org/licenses/>.
*/

package convutil

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/convergence"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to rconvergence.
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
			name: "input",
			usage: `
              input specifies the path to the NetCDF file holding the elevation
              raster. It can also be an http(s) URL or a blob location
              ('gs://bucket/file.nc', 's3://bucket/file.nc' or 'file://dir/file.nc'),
              in which case the file is downloaded first.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "variable",
			usage: `
              variable specifies the name of the elevation variable in the input file.`,
			defaultVal: "elevation",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "output",
			usage: `
              output specifies the path to the NetCDF file the convergence index
              is written to. It can also be a blob location, in which case the
              output and its accompanying files are uploaded when the run finishes.`,
			shorthand:  "o",
			defaultVal: "convergence.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "window",
			usage: `
              window specifies the number of cells along each side of the moving
              window. It must be odd and at least 3.`,
			shorthand:  "w",
			defaultVal: 3,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "weights",
			usage: `
              weights specifies how the contribution of each window cell falls
              off with its distance from the centre. It must be one of
              standard, inverse, power, square or gentle.`,
			defaultVal: "standard",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "circular",
			usage: `
              circular specifies whether to use a circular window instead of a
              square one.`,
			shorthand:  "c",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "slope",
			usage: `
              slope specifies whether to take the slope and aspect of each window
              cell into account. This is more accurate on steep terrain but
              considerably slower.`,
			shorthand:  "s",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "colors",
			usage: `
              colors specifies whether to write a color rules file next to the
              output.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "preview",
			usage: `
              preview specifies the path of a PNG image of the output. No image is
              drawn if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can include
              environment variables. If LogFile is left blank, the logfile
              will be saved in the same location as the output.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "demofile",
			usage: `
              demofile specifies where the demonstration elevation raster is written.`,
			defaultVal: "dem.nc",
			flagsets:   []*pflag.FlagSet{demoCmd.Flags()},
		},
		{
			name: "rows",
			usage: `
              rows specifies the number of rows in the demonstration raster.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{demoCmd.Flags()},
		},
		{
			name: "cols",
			usage: `
              cols specifies the number of columns in the demonstration raster.`,
			defaultVal: 200,
			flagsets:   []*pflag.FlagSet{demoCmd.Flags()},
		},
		{
			name: "resolution",
			usage: `
              resolution specifies the cell size of the demonstration raster in meters.`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{demoCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("RCONV")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
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
	Root.AddCommand(runCmd)
	Root.AddCommand(demoCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("rconvergence: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "rconvergence",
	Short: "Calculate the convergence index of a digital elevation model.",
	Long: `rconvergence calculates the convergence index of a digital elevation
model: for every cell, the degree to which the surrounding terrain is oriented
towards it (positive values, up to 100) or away from it (negative values, down to -100).
Valleys and depressions are convergent; ridges and peaks are divergent.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'RCONV_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of rconvergence.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("rconvergence v%s\n", convergence.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Calculate the convergence index.",
	Long: `run reads an elevation raster from a NetCDF file, calculates its
convergence index and writes it to another NetCDF file. Cells within half a
window of the edge of the raster, and cells whose window centre has no data,
have no data in the output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := NewRunConfig(Cfg)
		if err != nil {
			return err
		}
		_, err = Run(context.Background(), cmd.OutOrStdout(), strings.Join(os.Args, " "), rc)
		return err
	},
	DisableAutoGenTag: true,
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Write a demonstration elevation raster.",
	Long: `demo writes a synthetic elevation raster with a crater and a hill
to a NetCDF file that can be used as input to the run command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := os.ExpandEnv(Cfg.GetString("demofile"))
		if err := WriteDemo(path, cast.ToInt(Cfg.Get("rows")), cast.ToInt(Cfg.Get("cols")),
			cast.ToFloat64(Cfg.Get("resolution"))); err != nil {
			return err
		}
		cmd.Printf("wrote demonstration elevation raster to %s\n", path)
		return nil
	},
	DisableAutoGenTag: true,
}
