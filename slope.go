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

import "math"

// contribution returns π-2θ for the neighbour gc with elevation en, slope
// angle s and aspect aspect, where θ is the angle between the direction of
// steepest descent at the neighbour and the line from the neighbour to the
// window centre at elevation e0. Without Config.Slope the angle is taken
// in the horizontal plane. A flat neighbour contributes nothing.
func (e *Engine) contribution(gc GeometryCell, e0, en, s, aspect float64) float64 {
	if s == 0 || IsNoData(aspect) {
		return 0
	}
	toCentre := math.Mod(gc.Bearing+math.Pi, 2*math.Pi)
	delta := angleBetween(aspect, toCentre)
	if !e.cfg.Slope {
		return math.Pi - 2*delta
	}
	// Elevation angle of the centre as seen from the neighbour.
	beta := math.Atan2(e0-en, gc.Reach)

	cosTheta := math.Cos(s)*math.Cos(beta)*math.Cos(delta) - math.Sin(s)*math.Sin(beta)
	theta := math.Acos(math.Max(-1, math.Min(1, cosTheta)))
	return math.Pi - 2*theta
}
