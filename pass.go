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
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// RowSource supplies the rows of an elevation raster from north to south.
type RowSource interface {
	// Dims returns the number of rows and columns in the raster.
	Dims() (nrows, ncols int)

	// NextRow returns the next row of the raster. Cells without data
	// are NoData. The returned slice may be reused by the next call.
	NextRow() ([]float64, error)
}

// RowWriter receives output rows from north to south.
type RowWriter interface {
	// WriteRow persists row, which is reused after WriteRow returns.
	WriteRow(row []float64) error
}

// PassManipulator is a function that inspects or modifies a Pass.
type PassManipulator func(p *Pass) error

// Pass streams a raster through an Engine, reading every input row once
// and writing one output row per input row. Only Engine.Radius()*2+2
// input rows, and the gradients of the rows in the window, are held in
// memory at any time.
type Pass struct {
	Engine *Engine
	Source RowSource
	Sink   RowWriter

	// InitFuncs are run once by Init, after the raster dimensions are known.
	InitFuncs []PassManipulator

	// RowFuncs are run after every output row is written.
	RowFuncs []PassManipulator

	// CleanupFuncs are run by Cleanup.
	CleanupFuncs []PassManipulator

	// NRows and NCols are the raster dimensions.
	NRows, NCols int

	// Row is the index of the most recently written output row, or -1.
	Row int

	// Out holds the most recently written output row.
	Out []float64

	terrain *Terrain
}

// NewPass returns a Pass that reads elevations from src and writes the
// convergence index to dst.
func NewPass(e *Engine, src RowSource, dst RowWriter) *Pass {
	return &Pass{Engine: e, Source: src, Sink: dst, Row: -1}
}

// Init allocates the row buffers and runs the InitFuncs.
func (p *Pass) Init() error {
	p.NRows, p.NCols = p.Source.Dims()
	if p.NRows < 1 || p.NCols < 1 {
		return fmt.Errorf("convergence: invalid raster dimensions %d×%d", p.NRows, p.NCols)
	}
	var err error
	cfg := p.Engine.cfg
	p.terrain, err = NewTerrain(p.Engine.geom.Size, p.NCols, cfg.EWRes, cfg.NSRes)
	if err != nil {
		return err
	}
	p.Out = make([]float64, p.NCols)
	p.Row = -1
	for _, f := range p.InitFuncs {
		if err := f(p); err != nil {
			return err
		}
	}
	return nil
}

// Run processes the whole raster. ctx is checked between rows; a cancelled
// pass returns the context error. Output rows trail the input by
// Engine.Radius()+1 rows.
func (p *Pass) Run(ctx context.Context) error {
	if p.terrain == nil {
		return fmt.Errorf("convergence: Pass.Run called before Init")
	}
	r := p.Engine.Radius()
	for in := 0; in < p.NRows; in++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("convergence: stopped before row %d: %w", in, err)
		}
		row, err := p.Source.NextRow()
		if err != nil {
			return fmt.Errorf("convergence: reading row %d: %w", in, err)
		}
		if err := p.terrain.Push(row); err != nil {
			return fmt.Errorf("convergence: reading row %d: %w", in, err)
		}
		if err := p.compute(in - 1 - r); err != nil {
			return err
		}
	}
	if err := p.terrain.Flush(); err != nil {
		return err
	}
	if err := p.compute(p.NRows - 1 - r); err != nil {
		return err
	}
	// The last rows are border rows.
	start := p.NRows - r
	if start < 0 {
		start = 0
	}
	for out := start; out < p.NRows; out++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("convergence: stopped before output row %d: %w", out, err)
		}
		for i := range p.Out {
			p.Out[i] = NoData
		}
		if err := p.emit(out); err != nil {
			return err
		}
	}
	return nil
}

// compute writes output row out, which is at the centre of the window.
// Negative rows are ignored.
func (p *Pass) compute(out int) error {
	if out < 0 {
		return nil
	}
	if err := p.Engine.ComputeRow(p.terrain, out, p.NRows, p.Out); err != nil {
		return err
	}
	return p.emit(out)
}

func (p *Pass) emit(row int) error {
	if err := p.Sink.WriteRow(p.Out); err != nil {
		return fmt.Errorf("convergence: writing row %d: %w", row, err)
	}
	p.Row = row
	for _, f := range p.RowFuncs {
		if err := f(p); err != nil {
			return err
		}
	}
	return nil
}

// Cleanup runs the CleanupFuncs.
func (p *Pass) Cleanup() error {
	for _, f := range p.CleanupFuncs {
		if err := f(p); err != nil {
			return err
		}
	}
	return nil
}

// BufferCap returns the number of elevation values held in memory by p.
func (p *Pass) BufferCap() int {
	if p.terrain == nil {
		return 0
	}
	return p.terrain.Cap()
}

// Log returns a RowFunc that logs the progress of the pass every time
// another 2% of the rows has been written, and when the pass finishes.
func Log(l logrus.FieldLogger) PassManipulator {
	const step = 2
	startTime := time.Now()
	last := 0
	return func(p *Pass) error {
		pct := 100 * (p.Row + 1) / p.NRows
		if pct-last < step && p.Row != p.NRows-1 {
			return nil
		}
		last = pct
		l.WithFields(logrus.Fields{
			"row":      p.Row + 1,
			"rows":     p.NRows,
			"percent":  pct,
			"walltime": time.Since(startTime).Round(time.Millisecond).String(),
		}).Info("convergence: calculating")
		return nil
	}
}

// Stats holds summary statistics of the output of a pass.
type Stats struct {
	Min, Max, Sum float64

	// N is the number of cells with data and NoData the number without.
	N, NoData int

	valid []float64
}

// Mean returns the mean of the cells with data, or NaN if there are none.
func (s *Stats) Mean() float64 {
	if s.N == 0 {
		return math.NaN()
	}
	return s.Sum / float64(s.N)
}

// Collect returns a RowFunc that adds every written row to s.
func (s *Stats) Collect() PassManipulator {
	s.Min, s.Max = math.Inf(1), math.Inf(-1)
	return func(p *Pass) error {
		s.valid = s.valid[:0]
		for _, v := range p.Out {
			if IsNoData(v) {
				s.NoData++
				continue
			}
			s.valid = append(s.valid, v)
		}
		if len(s.valid) == 0 {
			return nil
		}
		s.N += len(s.valid)
		s.Sum += floats.Sum(s.valid)
		s.Min = math.Min(s.Min, floats.Min(s.valid))
		s.Max = math.Max(s.Max, floats.Max(s.valid))
		return nil
	}
}
