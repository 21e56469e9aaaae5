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
	"context"
	"io"
	"io/ioutil"
	"math"
	"os"
	"testing"

	"github.com/spatialmodel/convergence"
)

func testGrid() *Grid {
	g := NewGrid(Header{NRows: 6, NCols: 4, X0: -1000, Y0: 500, Dx: 250, Dy: 100, Proj4: "+proj=longlat"})
	for i := 0; i < g.NRows; i++ {
		for j := 0; j < g.NCols; j++ {
			g.Set(float64(10*i+j)+0.5, i, j)
		}
	}
	g.Set(math.NaN(), 2, 3)
	return g
}

func TestNetCDFRoundTrip(t *testing.T) {
	f, err := ioutil.TempFile("", "raster_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()

	g := testGrid()
	w, err := NewNetCDFWriter(f, g.Header, Variable{Name: "elevation", Units: "m"},
		map[string]string{"comment": "test raster", "empty": ""})
	if err != nil {
		t.Fatal(err)
	}
	if err := Copy(w, g); err != nil {
		t.Fatal(err)
	}
	if w.Written() != g.NRows {
		t.Errorf("wrote %d rows", w.Written())
	}
	if err := w.WriteRow(make([]float64, 4)); err == nil {
		t.Errorf("writing past the last row should fail")
	}

	r, err := NewNetCDFReader(f, "elevation")
	if err != nil {
		t.Fatal(err)
	}
	if r.Header != g.Header {
		t.Errorf("header %+v != %+v", r.Header, g.Header)
	}
	for i := 0; i < g.NRows; i++ {
		row, err := r.NextRow()
		if err != nil {
			t.Fatal(err)
		}
		for j, v := range row {
			want := g.Get(i, j)
			if math.IsNaN(want) != math.IsNaN(v) || (!math.IsNaN(v) && v != want) {
				t.Errorf("(%d, %d): %g != %g", i, j, v, want)
			}
		}
	}
	if _, err := r.NextRow(); err != io.EOF {
		t.Errorf("reading past the last row: %v", err)
	}
}

func TestNetCDFReaderErrors(t *testing.T) {
	f, err := ioutil.TempFile("", "raster_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	defer f.Close()
	g := testGrid()
	if _, err := NewNetCDFWriter(f, g.Header, Variable{Name: "elevation"}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := NewNetCDFReader(f, "height"); err == nil {
		t.Errorf("missing variable should fail")
	}
	if _, err := NewNetCDFWriter(f, Header{NRows: 0, NCols: 3, Dx: 1, Dy: 1}, Variable{Name: "x"}, nil); err == nil {
		t.Errorf("empty header should fail")
	}
}

func TestBounds(t *testing.T) {
	b := testGrid().Bounds()
	if b.Min.X != -1000 || b.Min.Y != 500 || b.Max.X != 0 || b.Max.Y != 1100 {
		t.Errorf("bounds %+v", b)
	}
	p := testGrid().CellCenter(0, 0)
	if p.X != -875 || p.Y != 1050 {
		t.Errorf("north-west cell centre %+v", p)
	}
}

func TestGrid(t *testing.T) {
	src := testGrid()
	dst := NewGrid(src.Header)
	if err := Copy(dst, src); err != nil {
		t.Fatal(err)
	}
	for i, v := range dst.Data.Elements {
		if w := src.Data.Elements[i]; v != w && !(math.IsNaN(v) && math.IsNaN(w)) {
			t.Errorf("element %d: %g != %g", i, v, w)
		}
	}
	if _, err := src.NextRow(); err != io.EOF {
		t.Errorf("reading past the last row: %v", err)
	}
	if err := dst.WriteRow(make([]float64, 4)); err == nil {
		t.Errorf("writing past the last row should fail")
	}
	dst.Rewind()
	if err := dst.WriteRow(make([]float64, 3)); err == nil {
		t.Errorf("writing a short row should fail")
	}
}

// TestConvergenceNetCDF runs a convergence pass from one NetCDF file to
// another.
func TestConvergenceNetCDF(t *testing.T) {
	in, err := ioutil.TempFile("", "raster_test_in")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(in.Name())
	defer in.Close()
	out, err := ioutil.TempFile("", "raster_test_out")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(out.Name())
	defer out.Close()

	h := Header{NRows: 15, NCols: 11, Dx: 30, Dy: 30}
	dem := NewGrid(h)
	for i := 0; i < h.NRows; i++ {
		for j := 0; j < h.NCols; j++ {
			dem.Set(100+math.Hypot(float64(i-7), float64(j-5)), i, j)
		}
	}
	w, err := NewNetCDFWriter(in, h, Variable{Name: "elevation"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := Copy(w, dem); err != nil {
		t.Fatal(err)
	}

	r, err := NewNetCDFReader(in, "elevation")
	if err != nil {
		t.Fatal(err)
	}
	e, err := convergence.NewEngine(&convergence.Config{WindowSize: 3, EWRes: r.Dx, NSRes: r.Dy})
	if err != nil {
		t.Fatal(err)
	}
	sink, err := NewNetCDFWriter(out, r.Header, Variable{Name: "convergence", Units: "%"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	p := convergence.NewPass(e, r, sink)
	if err := p.Init(); err != nil {
		t.Fatal(err)
	}
	if err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	res, err := NewNetCDFReader(out, "convergence")
	if err != nil {
		t.Fatal(err)
	}
	result := NewGrid(res.Header)
	if err := Copy(result, res); err != nil {
		t.Fatal(err)
	}
	if v := result.Get(7, 5); v > 100 || math.Abs(v-100) > 1e-9 {
		t.Errorf("pit = %.17g, want 100", v)
	}
	if v := result.Get(0, 5); !math.IsNaN(v) {
		t.Errorf("border = %g, want NaN", v)
	}
}
