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
	"math"
	"os"

	"github.com/spatialmodel/convergence/raster"
)

// DemoProj4 is the projection of demonstration elevation rasters.
const DemoProj4 = "+proj=lcc +lat_1=33.000000 +lat_2=45.000000 +lat_0=40.000000 +lon_0=-97.000000 +x_0=0 +y_0=0 +a=6370997.000000 +b=6370997.000000 +to_meter=1"

// DemoVariable is the elevation variable of demonstration rasters.
var DemoVariable = raster.Variable{
	Name:        "elevation",
	Description: "Synthetic elevation with a crater in the west and a hill in the east",
	Units:       "m",
}

// DemoDEM returns a synthetic elevation raster on a gentle slope, with a
// cone-shaped crater centred in the west half and a cone-shaped hill
// centred in the east half. The crater converges and the hill diverges.
func DemoDEM(nrows, ncols int, res float64) *raster.Grid {
	g := raster.NewGrid(raster.Header{
		NRows: nrows,
		NCols: ncols,
		Dx:    res,
		Dy:    res,
		Proj4: DemoProj4,
	})
	radius := math.Min(float64(nrows)/2, float64(ncols)/4)
	cy := float64(nrows) / 2
	craterX, hillX := float64(ncols)/4, 3*float64(ncols)/4
	const height = 50.
	for row := 0; row < nrows; row++ {
		for col := 0; col < ncols; col++ {
			z := 100 + 0.05*float64(row)*res
			dc := math.Hypot(float64(col)-craterX, float64(row)-cy)
			if dc < radius {
				z -= height * (1 - dc/radius)
			}
			dh := math.Hypot(float64(col)-hillX, float64(row)-cy)
			if dh < radius {
				z += height * (1 - dh/radius)
			}
			g.Set(z, row, col)
		}
	}
	return g
}

// WriteDemo writes a DemoDEM raster to a NetCDF file at path.
func WriteDemo(path string, nrows, ncols int, res float64) error {
	if nrows < 1 || ncols < 1 || !(res > 0) {
		return fmt.Errorf("convutil: invalid demonstration raster %d×%d with resolution %g", nrows, ncols, res)
	}
	g := DemoDEM(nrows, ncols, res)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("convutil: creating demonstration file: %v", err)
	}
	w, err := raster.NewNetCDFWriter(f, g.Header, DemoVariable, map[string]string{
		"title": "rconvergence demonstration elevation",
	})
	if err != nil {
		f.Close()
		return err
	}
	if err := raster.Copy(w, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
