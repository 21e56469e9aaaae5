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
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/ctessum/geom/carto"
	"github.com/spatialmodel/convergence/raster"
)

// colorRule assigns a color to a convergence index value. Colors are
// interpolated linearly between neighbouring rules.
type colorRule struct {
	value   float64
	r, g, b uint8
}

// colorRules is the default ramp for convergence index rasters:
// divergent cells are red, convergent cells are blue and plain cells
// are white.
var colorRules = []colorRule{
	{-100, 56, 0, 0},
	{-70, 128, 0, 0},
	{-50, 255, 0, 0},
	{0, 255, 255, 255},
	{50, 0, 0, 255},
	{70, 0, 0, 128},
	{100, 0, 0, 56},
}

// ConvergenceColors is colorRules expressed as a carto color scheme,
// with values scaled to [-1, 1].
var ConvergenceColors = func() carto.Colorlist {
	var c carto.Colorlist
	for _, r := range colorRules {
		c.Val = append(c.Val, r.value/100)
		c.R = append(c.R, float64(r.r))
		c.G = append(c.G, float64(r.g))
		c.B = append(c.B, float64(r.b))
	}
	first, last := colorRules[0], colorRules[len(colorRules)-1]
	c.LowLimit = color.NRGBA{R: first.r, G: first.g, B: first.b, A: 255}
	c.HighLimit = color.NRGBA{R: last.r, G: last.g, B: last.b, A: 255}
	return c
}()

// ColorMap returns a color map spanning the full range of the
// convergence index.
func ColorMap() *carto.ColorMap {
	cmap := carto.NewColorMap(carto.Linear)
	cmap.ColorScheme = ConvergenceColors
	cmap.AddArray([]float64{-100, 100})
	cmap.Set()
	return cmap
}

// WriteColorRules writes the color ramp as a text rules file with one
// "value red:green:blue" line per rule.
func WriteColorRules(w io.Writer) error {
	b := bufio.NewWriter(w)
	for _, r := range colorRules {
		if _, err := fmt.Fprintf(b, "%g %d:%d:%d\n", r.value, r.r, r.g, r.b); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(b, "nv 255:255:255"); err != nil {
		return err
	}
	return b.Flush()
}

// Preview draws every row of src as a PNG image with one pixel per cell.
// Cells without data are transparent.
func Preview(w io.Writer, src raster.RowSource) error {
	nrows, ncols := src.Dims()
	img := image.NewNRGBA(image.Rect(0, 0, ncols, nrows))
	cmap := ColorMap()
	for y := 0; y < nrows; y++ {
		row, err := src.NextRow()
		if err != nil {
			return fmt.Errorf("convutil: drawing preview: %v", err)
		}
		for x, v := range row {
			if math.IsNaN(v) {
				continue
			}
			img.SetNRGBA(x, y, cmap.GetColor(clamp(v)))
		}
	}
	return png.Encode(w, img)
}

// clamp limits v to the range of the color map.
func clamp(v float64) float64 {
	return math.Max(-100, math.Min(100, v))
}
