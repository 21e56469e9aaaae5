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

// Shape is the shape of the moving window.
type Shape int

// These are the supported window shapes.
const (
	// Square windows include every cell within Radius rows and columns
	// of the centre.
	Square Shape = iota
	// Circular windows drop the cells whose distance from the centre
	// is larger than the radius.
	Circular
)

func (s Shape) String() string {
	switch s {
	case Square:
		return "square"
	case Circular:
		return "circular"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// WindowSpec specifies the moving window.
type WindowSpec struct {
	// Size is the number of cells along each side of the window.
	// It must be odd and at least 3.
	Size int

	Shape Shape

	// EWRes and NSRes are the east-west and north-south cell sizes
	// in map units.
	EWRes, NSRes float64
}

// Radius returns the number of cells between the window centre and its edge.
func (w WindowSpec) Radius() int { return (w.Size - 1) / 2 }

func (w WindowSpec) validate() error {
	if w.Size < 3 || w.Size%2 == 0 {
		return fmt.Errorf("%w: window size must be odd and at least 3, got %d", ErrInvalidConfig, w.Size)
	}
	if w.Shape != Square && w.Shape != Circular {
		return fmt.Errorf("%w: unknown window shape %v", ErrInvalidConfig, w.Shape)
	}
	if !(w.EWRes > 0) || !(w.NSRes > 0) {
		return fmt.Errorf("%w: cell resolution must be positive, got ew=%g ns=%g", ErrInvalidConfig, w.EWRes, w.NSRes)
	}
	return nil
}

// GeometryCell holds the precomputed position of one window cell relative
// to the window centre.
type GeometryCell struct {
	// DX is the column offset (positive to the east) and DY is the row
	// offset (positive to the south).
	DX, DY int

	// Distance is the distance from the centre in cells.
	Distance float64

	// Reach is the distance from the centre in map units.
	Reach float64

	// Bearing is the compass direction from the centre to the cell in
	// radians clockwise from north, in [0, 2π). It uses the same convention
	// as the aspect computed in slope mode.
	Bearing float64
}

// Geometry is the set of window cells used for every output cell in a run.
type Geometry struct {
	WindowSpec
	Cells []GeometryCell
}

// NewGeometry precomputes the window cells for spec. The centre cell is
// excluded and cells are ordered from north to south and west to east.
func NewGeometry(spec WindowSpec) (*Geometry, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	r := spec.Radius()
	g := &Geometry{
		WindowSpec: spec,
		Cells:      make([]GeometryCell, 0, spec.Size*spec.Size-1),
	}
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			d := math.Hypot(float64(dx), float64(dy))
			if spec.Shape == Circular && d > float64(r) {
				continue
			}
			east := float64(dx) * spec.EWRes
			north := -float64(dy) * spec.NSRes
			g.Cells = append(g.Cells, GeometryCell{
				DX:       dx,
				DY:       dy,
				Distance: d,
				Reach:    math.Hypot(east, north),
				Bearing:  compass(east, north),
			})
		}
	}
	return g, nil
}

// compass returns the direction of the vector (east, north) in radians
// clockwise from north, in [0, 2π).
func compass(east, north float64) float64 {
	a := math.Atan2(east, north)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// angleBetween returns the absolute difference between two compass
// directions, in [0, π].
func angleBetween(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}
