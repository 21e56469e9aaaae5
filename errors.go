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
)

var (
	// ErrInvalidConfig is returned when a window or engine configuration
	// cannot be used. No rows are read when it occurs.
	ErrInvalidConfig = errors.New("convergence: invalid configuration")

	// ErrOutOfWindow is returned when a row is requested that is further
	// from the window centre than the window radius.
	ErrOutOfWindow = errors.New("convergence: offset outside of window")
)

// NoData is the value of a cell without a valid measurement.
var NoData = math.NaN()

// IsNoData returns whether v marks a cell without a valid measurement.
func IsNoData(v float64) bool { return math.IsNaN(v) }

// Version is the version of this program.
const Version = "1.0.0"
