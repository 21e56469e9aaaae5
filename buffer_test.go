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
	"errors"
	"testing"
)

func TestElevationBuffer(t *testing.T) {
	b, err := NewElevationBuffer(5, 3)
	if err != nil {
		t.Fatal(err)
	}
	if b.Cap() != 15 {
		t.Errorf("capacity %d != 15", b.Cap())
	}

	push := func(v float64) {
		if err := b.Push([]float64{v, v, v}); err != nil {
			t.Fatal(err)
		}
	}
	// The centre is the row pushed two pushes before the newest one.
	push(0)
	push(1)
	push(2)
	if b.Full() {
		t.Errorf("buffer should not be full")
	}
	for offset, want := range map[int]float64{-2: -1, -1: -1, 0: 0, 1: 1, 2: 2} {
		row, err := b.RowAt(offset)
		if err != nil {
			t.Fatal(err)
		}
		if want < 0 {
			if row != nil {
				t.Errorf("offset %d: row %v should not be loaded", offset, row)
			}
			continue
		}
		if row == nil || row[0] != want {
			t.Errorf("offset %d: %v != %g", offset, row, want)
		}
	}

	push(3)
	for v := 4.0; v < 12; v++ {
		push(v)
		if !b.Full() {
			t.Errorf("buffer should be full")
		}
		for offset := -2; offset <= 2; offset++ {
			row, err := b.RowAt(offset)
			if err != nil {
				t.Fatal(err)
			}
			if want := v - 2 + float64(offset); row[1] != want {
				t.Errorf("after pushing %g, offset %d: %g != %g", v, offset, row[1], want)
			}
		}
	}
}

func TestElevationBufferCopies(t *testing.T) {
	b, err := NewElevationBuffer(3, 2)
	if err != nil {
		t.Fatal(err)
	}
	row := []float64{1, 2}
	if err := b.Push(row); err != nil {
		t.Fatal(err)
	}
	row[0] = 99
	got, _ := b.RowAt(1)
	if got[0] != 1 {
		t.Errorf("buffer shares storage with the pushed row")
	}
}

func TestElevationBufferErrors(t *testing.T) {
	b, err := NewElevationBuffer(3, 4)
	if err != nil {
		t.Fatal(err)
	}
	for _, offset := range []int{-2, 2, 10} {
		if _, err := b.RowAt(offset); !errors.Is(err, ErrOutOfWindow) {
			t.Errorf("offset %d: error %v should be ErrOutOfWindow", offset, err)
		}
	}
	if err := b.Push([]float64{1, 2, 3}); err == nil {
		t.Errorf("pushing a short row should fail")
	}
	for _, size := range []int{0, 2, 4} {
		if _, err := NewElevationBuffer(size, 4); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("size %d: error %v should be ErrInvalidConfig", size, err)
		}
	}
	if _, err := NewElevationBuffer(3, 0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("zero columns: error %v should be ErrInvalidConfig", err)
	}
}

func TestElevationBufferReset(t *testing.T) {
	b, err := NewElevationBuffer(3, 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		b.Push([]float64{float64(i)})
	}
	b.Reset()
	if b.Full() {
		t.Errorf("buffer should be empty")
	}
	if row, _ := b.RowAt(0); row != nil {
		t.Errorf("centre row should not be loaded")
	}
}
