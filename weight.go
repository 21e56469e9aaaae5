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
	"strings"
)

// WeightMethod selects how the contribution of a window cell falls off with
// its distance from the centre.
type WeightMethod int

// These are the available weighting methods.
const (
	// WeightStandard gives every cell the same weight.
	WeightStandard WeightMethod = iota
	// WeightInverse weights cells by 1/d.
	WeightInverse
	// WeightPower weights cells by 1/d².
	WeightPower
	// WeightSquare weights cells by ((R-d)/R)², where R is one cell past
	// the window corner, so that near cells dominate.
	WeightSquare
	// WeightGentle weights cells by 1/√d, decaying slower than WeightInverse.
	WeightGentle
)

var weightNames = []string{"standard", "inverse", "power", "square", "gentle"}

// WeightMethodNames returns the names accepted by ParseWeightMethod.
func WeightMethodNames() []string {
	return append([]string(nil), weightNames...)
}

func (m WeightMethod) String() string {
	if m.valid() {
		return weightNames[m]
	}
	return fmt.Sprintf("WeightMethod(%d)", int(m))
}

func (m WeightMethod) valid() bool { return m >= 0 && int(m) < len(weightNames) }

// ParseWeightMethod returns the WeightMethod called name.
func ParseWeightMethod(name string) (WeightMethod, error) {
	for i, n := range weightNames {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return WeightMethod(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown weighting method %q, valid options are %s",
		ErrInvalidConfig, name, strings.Join(weightNames, ", "))
}

// Weight returns the weight of a window cell at the given distance (in
// cells) from the centre of a window with the given radius. The result is
// strictly positive and does not increase with distance. distance must be
// positive.
func (m WeightMethod) Weight(distance float64, radius int) float64 {
	switch m {
	case WeightStandard:
		return 1
	case WeightInverse:
		return 1 / distance
	case WeightPower:
		return 1 / (distance * distance)
	case WeightSquare:
		r := float64(radius)*math.Sqrt2 + 1
		f := (r - distance) / r
		return f * f
	case WeightGentle:
		return 1 / math.Sqrt(distance)
	default:
		panic(fmt.Errorf("convergence: invalid weight method %d", int(m)))
	}
}
