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
	"math"
	"sort"
	"testing"
)

func TestWeightMonotonic(t *testing.T) {
	for _, name := range WeightMethodNames() {
		m, err := ParseWeightMethod(name)
		if err != nil {
			t.Fatal(err)
		}
		t.Run(name, func(t *testing.T) {
			for _, size := range []int{3, 5, 9, 21} {
				g, err := NewGeometry(WindowSpec{Size: size, EWRes: 1, NSRes: 1})
				if err != nil {
					t.Fatal(err)
				}
				d := make([]float64, len(g.Cells))
				for i, c := range g.Cells {
					d[i] = c.Distance
				}
				sort.Float64s(d)
				prev := math.Inf(1)
				for _, dist := range d {
					w := m.Weight(dist, g.Radius())
					if !(w > 0) || math.IsInf(w, 0) {
						t.Errorf("size %d: weight(%g) = %g is not strictly positive and finite", size, dist, w)
					}
					if w > prev {
						t.Errorf("size %d: weight(%g) = %g increased from %g", size, dist, w, prev)
					}
					prev = w
				}
			}
		})
	}
}

func TestWeightValues(t *testing.T) {
	const d = 2.0
	for _, test := range []struct {
		m    WeightMethod
		want float64
	}{
		{WeightStandard, 1},
		{WeightInverse, 0.5},
		{WeightPower, 0.25},
		{WeightSquare, math.Pow((3*math.Sqrt2+1-d)/(3*math.Sqrt2+1), 2)},
		{WeightGentle, 1 / math.Sqrt2},
	} {
		if got := test.m.Weight(d, 3); different(got, test.want, 1e-12) {
			t.Errorf("%v: %g != %g", test.m, got, test.want)
		}
	}
}

func TestWeightGentleSlowerThanInverse(t *testing.T) {
	for d := 1.0; d < 10; d += 0.5 {
		if WeightGentle.Weight(d, 5) < WeightInverse.Weight(d, 5) {
			t.Errorf("gentle weight decays faster than inverse at %g", d)
		}
	}
}

func TestParseWeightMethod(t *testing.T) {
	for i, name := range weightNames {
		m, err := ParseWeightMethod(name)
		if err != nil {
			t.Fatal(err)
		}
		if int(m) != i || m.String() != name {
			t.Errorf("%s parsed as %v", name, m)
		}
	}
	if m, err := ParseWeightMethod(" Inverse"); err != nil || m != WeightInverse {
		t.Errorf("case-insensitive parse: %v, %v", m, err)
	}
	if _, err := ParseWeightMethod("cubic"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("unknown method error %v should be ErrInvalidConfig", err)
	}
}
