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
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/convergence"
	"github.com/spatialmodel/convergence/raster"
)

// OutputVariable is the variable written to convergence index files.
var OutputVariable = raster.Variable{
	Name:        "convergence",
	Description: "Convergence index: positive where the terrain converges, negative where it diverges",
	Units:       "percent",
}

// newLogger returns a logger that writes to out and to a new log file at
// logFile. The returned function closes the log file; calls after the
// first return the result of the first.
func newLogger(out io.Writer, logFile string) (*logrus.Logger, func() error, error) {
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("convutil: creating log file: %v", err)
	}
	log := logrus.New()
	log.Out = io.MultiWriter(out, f)
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: true,
	}
	var (
		once     sync.Once
		closeErr error
	)
	closeLog := func() error {
		once.Do(func() { closeErr = f.Close() })
		return closeErr
	}
	return log, closeLog, nil
}

// Run calculates the convergence index of the elevations in rc.Input and
// writes it to rc.Output, along with a log file, a history file and,
// as configured, color rules and a preview image. Progress is logged to out.
// command is recorded in the history.
func Run(ctx context.Context, out io.Writer, command string, rc *RunConfig) (*History, error) {
	start := time.Now()
	up := new(uploader)
	output := up.maybeUpload(rc.Output)
	logFile := up.maybeUpload(rc.LogFile)
	historyFile := up.maybeUpload(sidecar(rc.Output, ".history.toml"))
	colorFile := up.maybeUpload(sidecar(rc.Output, ".colors"))
	preview := up.maybeUpload(rc.Preview)
	if up.err != nil {
		return nil, fmt.Errorf("convutil: preparing output: %v", up.err)
	}

	log, closeLog, err := newLogger(out, logFile)
	if err != nil {
		return nil, err
	}
	defer closeLog()

	input, err := maybeDownload(ctx, rc.Input, log)
	if err != nil {
		return nil, err
	}
	in, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("convutil: opening input file: %v", err)
	}
	defer in.Close()
	r, err := raster.NewNetCDFReader(in, rc.Variable)
	if err != nil {
		return nil, err
	}

	sr, err := checkProjection(r.Proj4)
	if err != nil {
		return nil, err
	}
	if sr == nil {
		log.Warn("the input has no projection; assuming that elevations and cell sizes have the same units")
	} else if sr.Name == "longlat" && rc.Engine.Slope {
		log.Warn("the input is in geographic coordinates; slopes will be wrong unless cell sizes are in elevation units")
	}

	cfg := rc.Engine
	cfg.EWRes, cfg.NSRes = r.Dx, r.Dy
	e, err := convergence.NewEngine(&cfg)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(output)
	if err != nil {
		return nil, fmt.Errorf("convutil: creating output file: %v", err)
	}
	defer f.Close()
	w, err := raster.NewNetCDFWriter(f, r.Header, OutputVariable, map[string]string{
		"history": command,
		"source":  rc.Input,
		"window":  strconv.Itoa(cfg.WindowSize),
		"weights": cfg.Weights.String(),
	})
	if err != nil {
		return nil, err
	}

	stats := new(convergence.Stats)
	p := convergence.NewPass(e, r, w)
	p.InitFuncs = append(p.InitFuncs, func(p *convergence.Pass) error {
		log.WithFields(logrus.Fields{
			"input":    rc.Input,
			"variable": rc.Variable,
			"rows":     p.NRows,
			"cols":     p.NCols,
			"window":   cfg.WindowSize,
			"weights":  cfg.Weights,
			"circular": cfg.Circular,
			"slope":    cfg.Slope,
		}).Info("convergence: starting")
		return nil
	})
	p.RowFuncs = append(p.RowFuncs, stats.Collect(), convergence.Log(log))
	p.CleanupFuncs = append(p.CleanupFuncs, func(p *convergence.Pass) error {
		log.WithFields(logrus.Fields{
			"min":    stats.Min,
			"max":    stats.Max,
			"mean":   stats.Mean(),
			"nodata": stats.NoData,
		}).Info("convergence: finished")
		return nil
	})
	if err := p.Init(); err != nil {
		return nil, err
	}
	if err := p.Run(ctx); err != nil {
		return nil, err
	}
	if err := p.Cleanup(); err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("convutil: closing output file: %v", err)
	}

	if rc.Colors {
		if err := writeColorRules(colorFile); err != nil {
			return nil, err
		}
	}
	if preview != "" {
		if err := writePreview(preview, output); err != nil {
			return nil, err
		}
		log.WithField("file", rc.Preview).Info("wrote preview")
	}

	hist := newHistory(command, rc, r.Header, stats, start, time.Now())
	if err := writeHistory(historyFile, hist); err != nil {
		return nil, err
	}
	log.WithField("file", rc.Output).Info("wrote output")

	// Close the log so that it is complete before it is uploaded.
	if err := closeLog(); err != nil {
		return nil, err
	}
	if err := up.uploadOutput(ctx); err != nil {
		return nil, err
	}
	return hist, nil
}

func writeColorRules(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("convutil: creating color rules file: %v", err)
	}
	if err := WriteColorRules(f); err != nil {
		f.Close()
		return fmt.Errorf("convutil: writing color rules: %v", err)
	}
	return f.Close()
}

// writePreview draws the convergence index file at output as a PNG image
// at path.
func writePreview(path, output string) error {
	in, err := os.Open(output)
	if err != nil {
		return fmt.Errorf("convutil: opening output for preview: %v", err)
	}
	defer in.Close()
	r, err := raster.NewNetCDFReader(in, OutputVariable.Name)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("convutil: creating preview file: %v", err)
	}
	if err := Preview(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
