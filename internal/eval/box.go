/*
Copyright (C) 2023, 2024  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package eval

import (
	"math"

	"github.com/mizuno-gsinet/inari-graph/internal/interval"
)

// Box is a pixel/subpixel rectangle in world coordinates (spec.md
// §3's "Pixel box"): the product of two machine intervals. It lives
// in internal/eval, not internal/search, so that eval never needs to
// import its own caller.
type Box struct {
	X, Y interval.Interval
}

func (b Box) Corner(loX, loY bool) (float64, float64) {
	x := b.X.Hi
	if loX {
		x = b.X.Lo
	}
	y := b.Y.Hi
	if loY {
		y = b.Y.Lo
	}
	return x, y
}

// Corners returns the four corner points in a fixed order, used by
// the equality decision rule's intermediate-value check.
func (b Box) Corners() [4][2]float64 {
	x0, y0 := b.Corner(true, true)
	x1, y1 := b.Corner(false, true)
	x2, y2 := b.Corner(true, false)
	x3, y3 := b.Corner(false, false)
	return [4][2]float64{{x0, y0}, {x1, y1}, {x2, y2}, {x3, y3}}
}

// Point returns the degenerate box {x}×{y}.
func Point(x, y float64) Box {
	return Box{X: interval.Point(x), Y: interval.Point(y)}
}

// Bisect splits b into four children along both axes' midpoints,
// using outward rounding so the children's union still covers the
// parent even though floating-point midpoints aren't exact (spec.md
// §4.5's "computed with directed rounding so children cover the
// parent").
func (b Box) Bisect() [4]Box {
	mx := midpoint(b.X.Lo, b.X.Hi)
	my := midpoint(b.Y.Lo, b.Y.Hi)
	left := interval.Interval{Lo: b.X.Lo, Hi: math.Nextafter(mx, math.Inf(1))}
	right := interval.Interval{Lo: math.Nextafter(mx, math.Inf(-1)), Hi: b.X.Hi}
	bottom := interval.Interval{Lo: b.Y.Lo, Hi: math.Nextafter(my, math.Inf(1))}
	top := interval.Interval{Lo: math.Nextafter(my, math.Inf(-1)), Hi: b.Y.Hi}
	return [4]Box{
		{X: left, Y: bottom},
		{X: right, Y: bottom},
		{X: left, Y: top},
		{X: right, Y: top},
	}
}

func midpoint(lo, hi float64) float64 {
	if math.IsInf(lo, -1) && math.IsInf(hi, 1) {
		return 0
	}
	if math.IsInf(lo, -1) {
		return hi - 1
	}
	if math.IsInf(hi, 1) {
		return lo + 1
	}
	return lo + (hi-lo)/2
}
