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

package raster

import (
	"fmt"
	"io"

	"github.com/ctessum/sparse"
)

// Grid is an in-memory raster that can be used both as a row source and as
// a row sink. Data is indexed [row, col], with row 0 in the north.
type Grid struct {
	Header
	Data *sparse.DenseArray

	read, written int
}

// NewGrid returns a zero-valued grid with the layout in h.
func NewGrid(h Header) *Grid {
	return &Grid{Header: h, Data: sparse.ZerosDense(h.NRows, h.NCols)}
}

// Get returns the value at (row, col).
func (g *Grid) Get(row, col int) float64 { return g.Data.Get(row, col) }

// Set sets the value at (row, col).
func (g *Grid) Set(v float64, row, col int) { g.Data.Set(v, row, col) }

// Row returns row i of the grid. The returned slice shares storage with g.
func (g *Grid) Row(i int) []float64 {
	return g.Data.Elements[i*g.NCols : (i+1)*g.NCols]
}

// Dims returns the number of rows and columns.
func (g *Grid) Dims() (nrows, ncols int) { return g.NRows, g.NCols }

// NextRow returns the next unread row, from north to south.
func (g *Grid) NextRow() ([]float64, error) {
	if g.read >= g.NRows {
		return nil, io.EOF
	}
	g.read++
	return g.Row(g.read - 1), nil
}

// WriteRow copies row into the next unwritten row of g.
func (g *Grid) WriteRow(row []float64) error {
	if g.written >= g.NRows {
		return fmt.Errorf("raster: writing row %d of a grid with %d rows", g.written, g.NRows)
	}
	if len(row) != g.NCols {
		return fmt.Errorf("raster: row has %d columns, want %d", len(row), g.NCols)
	}
	copy(g.Row(g.written), row)
	g.written++
	return nil
}

// Rewind restarts reading and writing at the first row.
func (g *Grid) Rewind() { g.read, g.written = 0, 0 }

// RowSource supplies raster rows from north to south.
type RowSource interface {
	Dims() (nrows, ncols int)
	NextRow() ([]float64, error)
}

// RowWriter receives raster rows from north to south.
type RowWriter interface {
	WriteRow(row []float64) error
}

// Copy writes every row of src to dst.
func Copy(dst RowWriter, src RowSource) error {
	nrows, _ := src.Dims()
	for i := 0; i < nrows; i++ {
		row, err := src.NextRow()
		if err != nil {
			return err
		}
		if err := dst.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}
