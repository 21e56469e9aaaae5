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
	"path/filepath"
	"strings"

	"github.com/ctessum/geom/proj"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/convergence"
	"github.com/spf13/cast"
)

// RunConfig holds the settings of one convergence index run.
type RunConfig struct {
	// Input is the path or URL of the elevation NetCDF file and Variable
	// the name of the elevation variable in it.
	Input, Variable string

	// Output is the path or blob location of the convergence NetCDF file.
	Output string

	LogFile string

	// Colors specifies whether a color rules file is written next to the
	// output. Preview, if not empty, is where a PNG image of the output
	// is written.
	Colors  bool
	Preview string

	// Engine is filled in from the options, except for the cell
	// resolution which is read from the input file.
	Engine convergence.Config
}

// NewRunConfig reads and checks the run options in cfg.
func NewRunConfig(cfg *viper.Viper) (*RunConfig, error) {
	window, err := cast.ToIntE(cfg.Get("window"))
	if err != nil {
		return nil, fmt.Errorf("convutil: reading 'window': %v", err)
	}
	weights, err := convergence.ParseWeightMethod(os.ExpandEnv(cfg.GetString("weights")))
	if err != nil {
		return nil, err
	}
	rc := &RunConfig{
		Input:    os.ExpandEnv(cfg.GetString("input")),
		Variable: os.ExpandEnv(cfg.GetString("variable")),
		Colors:   cast.ToBool(cfg.Get("colors")),
		Preview:  os.ExpandEnv(cfg.GetString("preview")),
		Engine: convergence.Config{
			WindowSize: window,
			Circular:   cast.ToBool(cfg.Get("circular")),
			Weights:    weights,
			Slope:      cast.ToBool(cfg.Get("slope")),
			EWRes:      1,
			NSRes:      1,
		},
	}
	// The placeholder resolution lets window problems surface before
	// anything is downloaded.
	if err := rc.Engine.Validate(); err != nil {
		return nil, err
	}
	if rc.Input == "" {
		return nil, fmt.Errorf("convutil: you need to specify an input elevation file (for example: --input=dem.nc)")
	}
	if rc.Variable == "" {
		return nil, fmt.Errorf("convutil: you need to specify the elevation variable name")
	}
	if rc.Output, err = checkOutputFile(cfg.GetString("output")); err != nil {
		return nil, err
	}
	rc.LogFile = checkLogFile(os.ExpandEnv(cfg.GetString("LogFile")), rc.Output)
	return rc, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory or bucket exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`convutil: you need to specify an output file (for example: --output="convergence.nc")`)
	}
	f = os.ExpandEnv(f)
	if IsBlob(f) {
		bucket, _, err := blobKey(f)
		if err != nil {
			return f, err
		}
		if _, err = OpenBucket(context.TODO(), bucket); err != nil {
			return f, fmt.Errorf("convutil: error when checking output location: %v", err)
		}
		return f, nil
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("convutil: the output directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// sidecar returns the path of a file that accompanies outputFile.
func sidecar(outputFile, suffix string) string {
	return strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + suffix
}

// checkProjection parses the projection of the input raster. A raster
// without a projection returns a nil SR.
func checkProjection(proj4 string) (*proj.SR, error) {
	if proj4 == "" {
		return nil, nil
	}
	sr, err := proj.Parse(proj4)
	if err != nil {
		return nil, fmt.Errorf("convutil: the following error occurred while parsing "+
			"the input projection: %v", err)
	}
	return sr, nil
}
