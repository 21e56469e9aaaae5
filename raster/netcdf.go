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
	"math"
	"sort"

	"github.com/ctessum/cdf"
)

// FillValue marks cells without data in the NetCDF files written by
// NetCDFWriter.
const FillValue float32 = -9999

// Variable describes a raster variable in a NetCDF file.
type Variable struct {
	Name        string
	Description string
	Units       string
}

// NetCDFReader reads one two-dimensional (y, x) variable of a NetCDF file.
// The y index of the file increases northward, starting at Y0, so rows are
// read from the end of the file first. Fill values are returned as NaN.
type NetCDFReader struct {
	Header
	Variable string

	f       *cdf.File
	fill    float64
	next    int
	row     []float64
	scratch interface{}
}

// NewNetCDFReader reads the header of the NetCDF file in rw and prepares to
// read variable. Cell sizes and corner coordinates are read from the global
// attributes dx, dy, x0 and y0, and the projection from proj4.
func NewNetCDFReader(rw cdf.ReaderWriterAt, variable string) (*NetCDFReader, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("raster: opening NetCDF file: %v", err)
	}
	lengths := f.Header.Lengths(variable)
	if lengths == nil {
		return nil, fmt.Errorf("raster: variable %q is not in the file; available variables are %v",
			variable, f.Header.Variables())
	}
	if len(lengths) != 2 {
		return nil, fmt.Errorf("raster: variable %q has dimensions %v; it must have two (y, x)",
			variable, f.Header.Dimensions(variable))
	}
	r := &NetCDFReader{Variable: variable, f: f}
	r.NRows, r.NCols = lengths[0], lengths[1]
	for _, a := range []struct {
		name string
		dst  *float64
		def  float64
	}{
		{"dx", &r.Dx, 1},
		{"dy", &r.Dy, 1},
		{"x0", &r.X0, 0},
		{"y0", &r.Y0, 0},
	} {
		if *a.dst, err = floatAttribute(f.Header, a.name, a.def); err != nil {
			return nil, err
		}
	}
	r.Proj4, _ = f.Header.GetAttribute("", "proj4").(string)

	switch fv := f.Header.FillValue(variable).(type) {
	case float32:
		r.fill = float64(fv)
	case float64:
		r.fill = fv
	default:
		return nil, fmt.Errorf("raster: variable %q must be of type float or double", variable)
	}
	if err := r.Header.Check(); err != nil {
		return nil, err
	}
	r.row = make([]float64, r.NCols)
	r.scratch = f.Header.ZeroValue(variable, r.NCols)
	return r, nil
}

func floatAttribute(h *cdf.Header, name string, def float64) (float64, error) {
	switch v := h.GetAttribute("", name).(type) {
	case nil:
		return def, nil
	case []float64:
		if len(v) == 1 {
			return v[0], nil
		}
	case []float32:
		if len(v) == 1 {
			return float64(v[0]), nil
		}
	case []int32:
		if len(v) == 1 {
			return float64(v[0]), nil
		}
	}
	return 0, fmt.Errorf("raster: global attribute %q must be a single number, got %v",
		name, h.GetAttribute("", name))
}

// Dims returns the number of rows and columns.
func (r *NetCDFReader) Dims() (nrows, ncols int) { return r.NRows, r.NCols }

// NextRow returns the next row from north to south. The returned slice is
// reused by the next call. io.EOF is returned after the last row.
func (r *NetCDFReader) NextRow() ([]float64, error) {
	if r.next >= r.NRows {
		return nil, io.EOF
	}
	y := r.NRows - 1 - r.next
	rd := r.f.Reader(r.Variable, []int{y, 0}, []int{y, r.NCols - 1})
	if _, err := rd.Read(r.scratch); err != nil {
		return nil, fmt.Errorf("raster: reading row %d of %s: %v", r.next, r.Variable, err)
	}
	switch s := r.scratch.(type) {
	case []float32:
		for i, v := range s {
			r.row[i] = r.value(float64(v))
		}
	case []float64:
		for i, v := range s {
			r.row[i] = r.value(v)
		}
	}
	r.next++
	return r.row, nil
}

func (r *NetCDFReader) value(v float64) float64 {
	if v == r.fill {
		return math.NaN()
	}
	return v
}

// NetCDFWriter writes one float variable to a NetCDF file, row by row from
// north to south. NaN cells are written as FillValue.
type NetCDFWriter struct {
	Header
	Variable Variable

	f    *cdf.File
	next int
	buf  []float32
}

// NewNetCDFWriter writes the header of a NetCDF file holding v to rw.
// attributes are added as global attributes.
func NewNetCDFWriter(rw cdf.ReaderWriterAt, h Header, v Variable, attributes map[string]string) (*NetCDFWriter, error) {
	if err := h.Check(); err != nil {
		return nil, err
	}
	dims := []string{"y", "x"}
	ch := cdf.NewHeader(dims, []int{h.NRows, h.NCols})
	ch.AddAttribute("", "dx", []float64{h.Dx})
	ch.AddAttribute("", "dy", []float64{h.Dy})
	ch.AddAttribute("", "x0", []float64{h.X0})
	ch.AddAttribute("", "y0", []float64{h.Y0})
	if h.Proj4 != "" {
		ch.AddAttribute("", "proj4", h.Proj4)
	}
	keys := make([]string, 0, len(attributes))
	for k := range attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if attributes[k] != "" {
			ch.AddAttribute("", k, attributes[k])
		}
	}
	ch.AddVariable(v.Name, dims, []float32{0})
	if v.Description != "" {
		ch.AddAttribute(v.Name, "description", v.Description)
	}
	if v.Units != "" {
		ch.AddAttribute(v.Name, "units", v.Units)
	}
	ch.AddAttribute(v.Name, "_FillValue", []float32{FillValue})
	ch.Define()
	if errs := ch.Check(); len(errs) > 0 {
		return nil, fmt.Errorf("raster: invalid NetCDF header: %v", errs)
	}

	f, err := cdf.Create(rw, ch)
	if err != nil {
		return nil, fmt.Errorf("raster: creating NetCDF file: %v", err)
	}
	return &NetCDFWriter{
		Header:   h,
		Variable: v,
		f:        f,
		buf:      make([]float32, h.NCols),
	}, nil
}

// WriteRow writes the next row from north to south.
func (w *NetCDFWriter) WriteRow(row []float64) error {
	if w.next >= w.NRows {
		return fmt.Errorf("raster: writing row %d of a raster with %d rows", w.next, w.NRows)
	}
	if len(row) != w.NCols {
		return fmt.Errorf("raster: row has %d columns, want %d", len(row), w.NCols)
	}
	for i, v := range row {
		if math.IsNaN(v) {
			w.buf[i] = FillValue
		} else {
			w.buf[i] = float32(v)
		}
	}
	y := w.NRows - 1 - w.next
	wr := w.f.Writer(w.Variable.Name, []int{y, 0}, []int{y, w.NCols - 1})
	if _, err := wr.Write(w.buf); err != nil {
		return fmt.Errorf("raster: writing row %d of %s: %v", w.next, w.Variable.Name, err)
	}
	w.next++
	return nil
}

// Written returns the number of rows written so far.
func (w *NetCDFWriter) Written() int { return w.next }
