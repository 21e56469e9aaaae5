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

// Terrain holds the moving window of elevation rows together with the
// slope and aspect of every cell in it. The gradient of a row needs the
// row to its south, so each pushed row is held back until the next one
// arrives and the window trails the input by one row.
type Terrain struct {
	elev, slope, aspect *ElevationBuffer

	next    []float64 // newest row, not yet in the window
	pending bool

	ewres, nsres float64
	s, a         []float64 // gradient of next
}

// NewTerrain allocates a Terrain for a window of size rows over a raster
// with ncols columns and the given cell sizes.
func NewTerrain(size, ncols int, ewres, nsres float64) (*Terrain, error) {
	if !(ewres > 0) || !(nsres > 0) {
		return nil, fmt.Errorf("%w: cell resolution must be positive, got ew=%g ns=%g", ErrInvalidConfig, ewres, nsres)
	}
	t := &Terrain{ewres: ewres, nsres: nsres}
	var err error
	for _, b := range []**ElevationBuffer{&t.elev, &t.slope, &t.aspect} {
		if *b, err = NewElevationBuffer(size, ncols); err != nil {
			return nil, err
		}
	}
	t.next = make([]float64, ncols)
	t.s = make([]float64, ncols)
	t.a = make([]float64, ncols)
	return t, nil
}

// Push adds the next raster row. The row held back by the previous call
// enters the window.
func (t *Terrain) Push(row []float64) error {
	if len(row) != len(t.next) {
		return fmt.Errorf("convergence: row has %d columns but the buffer holds %d", len(row), len(t.next))
	}
	if t.pending {
		if err := t.advance(row); err != nil {
			return err
		}
	}
	copy(t.next, row)
	t.pending = true
	return nil
}

// Flush moves the last pushed row into the window, treating it as the
// southern edge of the raster.
func (t *Terrain) Flush() error {
	if !t.pending {
		return nil
	}
	t.pending = false
	return t.advance(nil)
}

// advance computes the gradient of t.next, whose southern neighbour is
// south, and pushes it into the window.
func (t *Terrain) advance(south []float64) error {
	north, err := t.elev.RowAt(t.elev.radius)
	if err != nil {
		return err
	}
	horn(north, t.next, south, t.s, t.a, t.ewres, t.nsres)
	if err := t.elev.Push(t.next); err != nil {
		return err
	}
	if err := t.slope.Push(t.s); err != nil {
		return err
	}
	return t.aspect.Push(t.a)
}

// RowAt returns the elevations offset rows from the window centre.
func (t *Terrain) RowAt(offset int) ([]float64, error) { return t.elev.RowAt(offset) }

// GradientAt returns the slope angles and aspects offset rows from the
// window centre.
func (t *Terrain) GradientAt(offset int) (slope, aspect []float64, err error) {
	if slope, err = t.slope.RowAt(offset); err != nil {
		return nil, nil, err
	}
	if aspect, err = t.aspect.RowAt(offset); err != nil {
		return nil, nil, err
	}
	return slope, aspect, nil
}

// Cap returns the number of elevation values held by t.
func (t *Terrain) Cap() int { return t.elev.Cap() + len(t.next) }

// horn writes the slope angle and aspect of every cell of row into slope
// and aspect, using Horn's weighted differences over the 3×3
// neighbourhood. north and south are nil at the edges of the raster, where
// rows and columns alike fall back to one-sided differences. Neighbours
// without data take the elevation of the cell itself. Flat cells have a
// slope of zero and no aspect; cells without data have neither.
func horn(north, row, south, slope, aspect []float64, ewres, nsres float64) {
	rows := [3][]float64{north, row, south}
	n, s := 0, 2
	if north == nil {
		n = 1
	}
	if south == nil {
		s = 1
	}
	last := len(row) - 1
	at := func(i, j int, z float64) float64 {
		if v := rows[i][j]; !IsNoData(v) {
			return v
		}
		return z
	}
	for c, z := range row {
		if IsNoData(z) {
			slope[c], aspect[c] = NoData, NoData
			continue
		}
		w, e := c-1, c+1
		if w < 0 {
			w = c
		}
		if e > last {
			e = c
		}
		var dzdx, dzdn float64
		if e > w {
			dzdx = (at(n, e, z) + 2*at(1, e, z) + at(s, e, z) -
				at(n, w, z) - 2*at(1, w, z) - at(s, w, z)) /
				(4 * float64(e-w) * ewres)
		}
		if s > n {
			dzdn = (at(n, w, z) + 2*at(n, c, z) + at(n, e, z) -
				at(s, w, z) - 2*at(s, c, z) - at(s, e, z)) /
				(4 * float64(s-n) * nsres)
		}
		g := math.Hypot(dzdx, dzdn)
		if g == 0 {
			slope[c], aspect[c] = 0, NoData
			continue
		}
		slope[c], aspect[c] = math.Atan(g), compass(-dzdx, -dzdn)
	}
}
