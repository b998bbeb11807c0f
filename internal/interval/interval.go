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

// Package interval implements the outward-rounded interval and
// interval-set arithmetic the graphing engine evaluates relations
// over, plus the IEEE-1788-style decoration lattice that tracks how
// well-defined a computation was on its input box.
package interval

import "math"

// Interval is a closed, connected subset of the extended reals,
// represented by an outward-rounded pair so that the mathematically
// exact result of any operation lies within [Lo, Hi].
type Interval struct {
	Lo, Hi float64
}

// Empty is the distinguished empty interval (I1: lo <= hi never
// holds for it, by convention Lo > Hi).
var Empty = Interval{Lo: math.Inf(1), Hi: math.Inf(-1)}

// Entire is (-inf, +inf).
var Entire = Interval{Lo: math.Inf(-1), Hi: math.Inf(1)}

func Point(x float64) Interval {
	return Interval{Lo: x, Hi: x}
}

func (x Interval) IsEmpty() bool {
	return x.Lo > x.Hi
}

func (x Interval) Contains(v float64) bool {
	return !x.IsEmpty() && x.Lo <= v && v <= x.Hi
}

func (x Interval) ContainsZero() bool {
	return x.Contains(0)
}

// down rounds a computed lower bound one ULP toward -Inf. Go exposes
// no directed FPU rounding mode (unlike the C++/Rust interval
// libraries this domain usually rests on), so outward rounding is
// simulated by nudging the naively-computed bound outward by one
// representable step; IEEE-754 rounding error per elementary op is at
// most 0.5ULP so this is always sufficient to make the bound outward.
func down(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Nextafter(v, math.Inf(-1))
}

func up(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Nextafter(v, math.Inf(1))
}

// Hull is the outward-rounded interval [lo,hi] (arguments may arrive
// in either order) with lo/hi bumped one ULP outward each; used by
// every primitive to turn a pointwise evaluation into a proved
// outward-rounded bound.
func Hull(a, b float64) Interval {
	if math.IsNaN(a) || math.IsNaN(b) {
		return Empty
	}
	if a > b {
		a, b = b, a
	}
	return Interval{Lo: down(a), Hi: up(b)}
}

// HullOf returns the outward-rounded hull of a set of sample points,
// used by primitives that evaluate at a handful of critical points
// (endpoints plus interior extrema) and take the envelope.
func HullOf(xs ...float64) Interval {
	if len(xs) == 0 {
		return Empty
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return Hull(lo, hi)
}

func (x Interval) Add(y Interval) Interval {
	if x.IsEmpty() || y.IsEmpty() {
		return Empty
	}
	return Interval{down(x.Lo + y.Lo), up(x.Hi + y.Hi)}
}

func (x Interval) Sub(y Interval) Interval {
	return x.Add(y.Neg())
}

func (x Interval) Neg() Interval {
	if x.IsEmpty() {
		return Empty
	}
	return Interval{-x.Hi, -x.Lo}
}

func (x Interval) Mul(y Interval) Interval {
	if x.IsEmpty() || y.IsEmpty() {
		return Empty
	}
	candidates := [4]float64{x.Lo * y.Lo, x.Lo * y.Hi, x.Hi * y.Lo, x.Hi * y.Hi}
	lo, hi := candidates[0], candidates[0]
	for _, c := range candidates[1:] {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	return Interval{down(lo), up(hi)}
}

// Div divides by y, returning (quotient, ok). When y contains zero
// (including a y that is exactly {0}) it returns Entire and ok=false;
// the result is not split into branches.
func (x Interval) Div(y Interval) (Interval, bool) {
	if x.IsEmpty() || y.IsEmpty() {
		return Empty, true
	}
	if y.Lo <= 0 && 0 <= y.Hi {
		return Entire, false
	}
	candidates := [4]float64{x.Lo / y.Lo, x.Lo / y.Hi, x.Hi / y.Lo, x.Hi / y.Hi}
	lo, hi := candidates[0], candidates[0]
	for _, c := range candidates[1:] {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}
	return Interval{down(lo), up(hi)}, true
}

func (x Interval) Abs() Interval {
	if x.IsEmpty() {
		return Empty
	}
	if x.Lo >= 0 {
		return x
	}
	if x.Hi <= 0 {
		return x.Neg()
	}
	return Interval{0, up(math.Max(-x.Lo, x.Hi))}
}

func (x Interval) Min(y Interval) Interval {
	if x.IsEmpty() || y.IsEmpty() {
		return Empty
	}
	return Interval{math.Min(x.Lo, y.Lo), math.Min(x.Hi, y.Hi)}
}

func (x Interval) Max(y Interval) Interval {
	if x.IsEmpty() || y.IsEmpty() {
		return Empty
	}
	return Interval{math.Max(x.Lo, y.Lo), math.Max(x.Hi, y.Hi)}
}

// Union widens x to also cover y (a plain interval hull; the k-capped
// disjoint-component union lives on Set).
func (x Interval) Union(y Interval) Interval {
	if x.IsEmpty() {
		return y
	}
	if y.IsEmpty() {
		return x
	}
	return Interval{math.Min(x.Lo, y.Lo), math.Max(x.Hi, y.Hi)}
}

// Overlaps reports whether x and y share at least one point, so that
// merging their disjoint-component representation is legal.
func (x Interval) Overlaps(y Interval) bool {
	if x.IsEmpty() || y.IsEmpty() {
		return false
	}
	return x.Lo <= y.Hi && y.Lo <= x.Hi
}

// Gap is the (unsigned) distance between two disjoint intervals,
// used to pick the two closest components to merge when a Set
// overflows its k-component cap.
func (x Interval) Gap(y Interval) float64 {
	if x.Hi < y.Lo {
		return y.Lo - x.Hi
	}
	if y.Hi < x.Lo {
		return x.Lo - y.Hi
	}
	return 0
}

// Sign classifies x relative to zero: -1 entirely negative, +1
// entirely positive, 0 exactly {0}, and 2 to mean "straddles zero"
// (ambiguous), which callers must treat as undetermined.
const (
	SignNeg      = -1
	SignPos      = 1
	SignZero     = 0
	SignStraddle = 2
)

func (x Interval) SignOf() int {
	if x.Hi < 0 {
		return SignNeg
	}
	if x.Lo > 0 {
		return SignPos
	}
	if x.Lo == 0 && x.Hi == 0 {
		return SignZero
	}
	return SignStraddle
}
