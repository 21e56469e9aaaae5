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

import "fmt"

// ElevationBuffer is a fixed-capacity ring of raster rows holding the
// vertical slice of the raster covered by the moving window. Rows are
// pushed from north to south; the centre of the window is the row pushed
// Radius pushes before the newest one.
type ElevationBuffer struct {
	rows   [][]float64
	radius int
	next   int // slot that the next pushed row is written to
	loaded int // number of pushed rows, saturating at len(rows)
}

// NewElevationBuffer allocates a buffer for a window of size rows over a
// raster with ncols columns. All storage is allocated here; Push never
// allocates.
func NewElevationBuffer(size, ncols int) (*ElevationBuffer, error) {
	if size < 3 || size%2 == 0 {
		return nil, fmt.Errorf("%w: window size must be odd and at least 3, got %d", ErrInvalidConfig, size)
	}
	if ncols < 1 {
		return nil, fmt.Errorf("%w: raster must have at least one column, got %d", ErrInvalidConfig, ncols)
	}
	storage := make([]float64, size*ncols)
	b := &ElevationBuffer{
		rows:   make([][]float64, size),
		radius: (size - 1) / 2,
	}
	for i := range b.rows {
		b.rows[i] = storage[i*ncols : (i+1)*ncols : (i+1)*ncols]
	}
	return b, nil
}

// Push copies row into the slot of the oldest row, which is evicted once
// the buffer is full.
func (b *ElevationBuffer) Push(row []float64) error {
	if len(row) != b.NCols() {
		return fmt.Errorf("convergence: row has %d columns but the buffer holds %d", len(row), b.NCols())
	}
	copy(b.rows[b.next], row)
	b.next = (b.next + 1) % len(b.rows)
	if b.loaded < len(b.rows) {
		b.loaded++
	}
	return nil
}

// RowAt returns the row offset rows south (positive) or north (negative)
// of the window centre. The returned slice is owned by the buffer and is
// overwritten by later pushes. Rows of a partially filled window that
// have not been pushed yet are returned as nil.
func (b *ElevationBuffer) RowAt(offset int) ([]float64, error) {
	if offset < -b.radius || offset > b.radius {
		return nil, fmt.Errorf("%w: offset %d with radius %d", ErrOutOfWindow, offset, b.radius)
	}
	// age is the number of rows pushed after the requested one.
	age := b.radius - offset
	if age >= b.loaded {
		return nil, nil
	}
	n := len(b.rows)
	return b.rows[(b.next-1-age+2*n)%n], nil
}

// Full returns whether a whole window of rows has been pushed.
func (b *ElevationBuffer) Full() bool { return b.loaded == len(b.rows) }

// Size returns the number of rows held by the buffer.
func (b *ElevationBuffer) Size() int { return len(b.rows) }

// NCols returns the length of each row.
func (b *ElevationBuffer) NCols() int { return len(b.rows[0]) }

// Cap returns the number of elevation values the buffer can hold.
func (b *ElevationBuffer) Cap() int { return len(b.rows) * len(b.rows[0]) }

// Reset empties the buffer without releasing its storage.
func (b *ElevationBuffer) Reset() {
	b.next = 0
	b.loaded = 0
}
