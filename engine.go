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

package convergence

import (
	"fmt"
	"math"
)

// Config holds the settings of a convergence index calculation. It is
// validated once by NewEngine and is not modified afterwards.
type Config struct {
	// WindowSize is the number of cells along each side of the moving
	// window. It must be odd and at least 3.
	WindowSize int

	// Circular specifies whether corners further than the radius from the
	// window centre are dropped.
	Circular bool

	// Weights specifies how cell contributions fall off with distance.
	Weights WeightMethod

	// Slope specifies whether the angle between each window cell's
	// direction of steepest descent and the window centre is measured in
	// three dimensions, taking the slope of the cell and the elevation
	// difference to the centre into account. Otherwise only the aspect
	// is compared with the horizontal direction to the centre.
	Slope bool

	// EWRes and NSRes are the east-west and north-south cell sizes in
	// map units.
	EWRes, NSRes float64
}

// Validate returns an error wrapping ErrInvalidConfig if c cannot be used.
func (c *Config) Validate() error {
	if !c.Weights.valid() {
		return fmt.Errorf("%w: unknown weighting method %d", ErrInvalidConfig, int(c.Weights))
	}
	return c.window().validate()
}

func (c *Config) window() WindowSpec {
	w := WindowSpec{Size: c.WindowSize, Shape: Square, EWRes: c.EWRes, NSRes: c.NSRes}
	if c.Circular {
		w.Shape = Circular
	}
	return w
}

// Window is the part of a Terrain that the Engine reads from.
type Window interface {
	// RowAt returns the row offset rows from the window centre, or nil
	// if that row is not available.
	RowAt(offset int) ([]float64, error)

	// GradientAt returns the slope angles and aspects of the same row.
	GradientAt(offset int) (slope, aspect []float64, err error)
}

// Engine calculates the convergence index for single cells and rows.
type Engine struct {
	cfg     Config
	geom    *Geometry
	weights []float64 // weight of each geometry cell
	radius  int
}

// NewEngine returns an engine for the given configuration.
func NewEngine(cfg *Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := NewGeometry(cfg.window())
	if err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:     *cfg,
		geom:    g,
		weights: make([]float64, len(g.Cells)),
		radius:  g.Radius(),
	}
	for i, c := range g.Cells {
		e.weights[i] = cfg.Weights.Weight(c.Distance, e.radius)
	}
	return e, nil
}

// Config returns the configuration of e.
func (e *Engine) Config() Config { return e.cfg }

// Geometry returns the window geometry used by e.
func (e *Engine) Geometry() *Geometry { return e.geom }

// Radius returns the window radius.
func (e *Engine) Radius() int { return e.radius }

// IsBorder returns whether the cell at (row, col) of a raster with nrows
// rows and ncols columns lies close enough to the edge that the window
// would extend outside of the raster. The outermost ring of the raster is
// always part of the border.
func (e *Engine) IsBorder(row, col, nrows, ncols int) bool {
	// Subsumed by the radius check below, since NewEngine ensures radius >= 1.
	if row <= 0 || row >= nrows-1 || col <= 0 || col >= ncols-1 {
		return true
	}
	return row < e.radius || row >= nrows-e.radius || col < e.radius || col >= ncols-e.radius
}

// ComputeCell returns the convergence index of the cell in column col of
// the centre row of w, in [-100, 100]. Positive values mean that the
// surrounding terrain drains toward the cell. Neighbours without data are
// skipped; NoData is returned if the cell itself has no data or if no
// neighbour could be used.
func (e *Engine) ComputeCell(w Window, col int) (float64, error) {
	centre, err := w.RowAt(0)
	if err != nil {
		return NoData, err
	}
	if centre == nil || col < 0 || col >= len(centre) {
		return NoData, nil
	}
	e0 := centre[col]
	if IsNoData(e0) {
		return NoData, nil
	}
	var sum, wsum float64
	for i, gc := range e.geom.Cells {
		row, err := w.RowAt(gc.DY)
		if err != nil {
			return NoData, err
		}
		c := col + gc.DX
		if row == nil || c < 0 || c >= len(row) {
			continue
		}
		en := row[c]
		if IsNoData(en) {
			continue
		}
		slope, aspect, err := w.GradientAt(gc.DY)
		if err != nil {
			return NoData, err
		}
		if slope == nil {
			continue
		}
		sum += e.weights[i] * e.contribution(gc, e0, en, slope[c], aspect[c])
		wsum += e.weights[i]
	}
	if wsum == 0 {
		return NoData, nil
	}
	v := sum / wsum / math.Pi * 100
	return math.Max(-100, math.Min(100, v)), nil
}

// ComputeRow writes the convergence index of every cell in the centre row
// of w into out. row is the index of that row in a raster of nrows rows;
// border cells are set to NoData.
func (e *Engine) ComputeRow(w Window, row, nrows int, out []float64) error {
	ncols := len(out)
	for col := range out {
		if e.IsBorder(row, col, nrows, ncols) {
			out[col] = NoData
			continue
		}
		v, err := e.ComputeCell(w, col)
		if err != nil {
			return fmt.Errorf("convergence: row %d column %d: %w", row, col, err)
		}
		out[col] = v
	}
	return nil
}
