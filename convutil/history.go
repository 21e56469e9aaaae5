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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/convergence"
	"github.com/spatialmodel/convergence/internal/hash"
	"github.com/spatialmodel/convergence/raster"
)

// History records how an output raster was created.
type History struct {
	Command string
	Version string

	Input, Variable, Output string

	WindowSize int
	Shape      string
	Weights    string
	Slope      bool
	ConfigHash string

	Rows, Cols               int
	West, South, East, North float64
	Proj4                    string `toml:",omitempty"`

	Start, End time.Time

	Min, Max, Mean float64
	Cells, NoData  int
}

// newHistory fills in a History for a finished run.
func newHistory(command string, rc *RunConfig, h raster.Header, s *convergence.Stats, start, end time.Time) *History {
	b := h.Bounds()
	shape := convergence.Square
	if rc.Engine.Circular {
		shape = convergence.Circular
	}
	hist := &History{
		Command:    command,
		Version:    convergence.Version,
		Input:      rc.Input,
		Variable:   rc.Variable,
		Output:     rc.Output,
		WindowSize: rc.Engine.WindowSize,
		Shape:      shape.String(),
		Weights:    rc.Engine.Weights.String(),
		Slope:      rc.Engine.Slope,
		ConfigHash: hash.Fingerprint(rc.Engine),
		Rows:       h.NRows,
		Cols:       h.NCols,
		West:       b.Min.X,
		South:      b.Min.Y,
		East:       b.Max.X,
		North:      b.Max.Y,
		Proj4:      h.Proj4,
		Start:      start,
		End:        end,
		Cells:      s.N,
		NoData:     s.NoData,
	}
	// TOML cannot hold NaN, so the statistics stay at zero when no cell
	// has data.
	if s.N > 0 {
		hist.Min, hist.Max, hist.Mean = s.Min, s.Max, s.Mean()
	}
	return hist
}

// Write encodes hist as TOML.
func (hist *History) Write(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(hist); err != nil {
		return fmt.Errorf("convutil: writing history: %v", err)
	}
	return nil
}

// writeHistory writes hist to the file at path.
func writeHistory(path string, hist *History) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("convutil: creating history file: %v", err)
	}
	if err := hist.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadHistory decodes the TOML history file at path.
func ReadHistory(path string) (*History, error) {
	hist := new(History)
	if _, err := toml.DecodeFile(path, hist); err != nil {
		return nil, fmt.Errorf("convutil: reading history: %v", err)
	}
	return hist, nil
}
