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

// Package raster reads and writes gridded rasters one row at a time.
// Rows are delivered from north to south; cells without data are NaN.
package raster

import (
	"fmt"

	"github.com/ctessum/geom"
)

// Header describes the layout of a raster.
type Header struct {
	NRows, NCols int

	// X0 and Y0 are the coordinates of the south-west corner of the raster.
	X0, Y0 float64

	// Dx and Dy are the east-west and north-south cell sizes.
	Dx, Dy float64

	// Proj4 is the spatial reference of the raster, if known.
	Proj4 string
}

// Check returns an error if h does not describe a usable raster.
func (h Header) Check() error {
	if h.NRows < 1 || h.NCols < 1 {
		return fmt.Errorf("raster: invalid dimensions %d×%d", h.NRows, h.NCols)
	}
	if !(h.Dx > 0) || !(h.Dy > 0) {
		return fmt.Errorf("raster: invalid cell size %g×%g", h.Dx, h.Dy)
	}
	return nil
}

// Bounds returns the spatial extent of the raster.
func (h Header) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: h.X0, Y: h.Y0},
		Max: geom.Point{X: h.X0 + float64(h.NCols)*h.Dx, Y: h.Y0 + float64(h.NRows)*h.Dy},
	}
}

// CellCenter returns the coordinates of the centre of the cell in row
// (counted from the north) and col.
func (h Header) CellCenter(row, col int) geom.Point {
	return geom.Point{
		X: h.X0 + (float64(col)+0.5)*h.Dx,
		Y: h.Y0 + (float64(h.NRows-row)-0.5)*h.Dy,
	}
}
