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

package interval

import "math"

func init() {
	DeclareTitle("Trig")

	Declare(&Declaration{Name: "sin", Desc: "sine", MinArity: 1, MaxArity: 1, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}}, Fn: liftUnary(sinImage)})
	Declare(&Declaration{Name: "cos", Desc: "cosine", MinArity: 1, MaxArity: 1, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}}, Fn: liftUnary(cosImage)})
	Declare(&Declaration{Name: "tan", Desc: "tangent; undefined (pole) at pi/2+k*pi", MinArity: 1, MaxArity: 1, Foldable: true, Restricted: true,
		Params: []DeclarationParameter{{"x", "scalar"}}, Fn: liftUnary(tanImage)})
	Declare(&Declaration{Name: "asin", Desc: "arcsine; undefined outside [-1,1]", MinArity: 1, MaxArity: 1, Foldable: true, Restricted: true,
		Params: []DeclarationParameter{{"x", "scalar"}}, Fn: liftUnary(monotoneIncreasing(-1, 1, math.Asin))})
	Declare(&Declaration{Name: "acos", Desc: "arccosine; undefined outside [-1,1]", MinArity: 1, MaxArity: 1, Foldable: true, Restricted: true,
		Params: []DeclarationParameter{{"x", "scalar"}}, Fn: liftUnary(monotoneIncreasing(-1, 1, math.Acos))})
	Declare(&Declaration{Name: "atan", Desc: "arctangent", MinArity: 1, MaxArity: 1, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}}, Fn: liftUnary(monotoneIncreasing(math.Inf(-1), math.Inf(1), math.Atan))})
	Declare(&Declaration{Name: "atan2", Desc: "two-argument arctangent; multi-branch across the negative-x cut, undefined at (0,0)", MinArity: 2, MaxArity: 2, Foldable: true, Restricted: true,
		Params: []DeclarationParameter{{"y", "scalar"}, {"x", "scalar"}}, Fn: atan2Fn})
	Declare(&Declaration{Name: "sinh", Desc: "hyperbolic sine", MinArity: 1, MaxArity: 1, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}}, Fn: liftUnary(monotoneIncreasing(math.Inf(-1), math.Inf(1), math.Sinh))})
	Declare(&Declaration{Name: "cosh", Desc: "hyperbolic cosine", MinArity: 1, MaxArity: 1, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}}, Fn: liftUnary(coshImage)})
	Declare(&Declaration{Name: "tanh", Desc: "hyperbolic tangent", MinArity: 1, MaxArity: 1, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}}, Fn: liftUnary(monotoneIncreasing(math.Inf(-1), math.Inf(1), math.Tanh))})
	Declare(&Declaration{Name: "asinh", Desc: "inverse hyperbolic sine", MinArity: 1, MaxArity: 1, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}}, Fn: liftUnary(monotoneIncreasing(math.Inf(-1), math.Inf(1), math.Asinh))})
	Declare(&Declaration{Name: "acosh", Desc: "inverse hyperbolic cosine; undefined for x<1", MinArity: 1, MaxArity: 1, Foldable: true, Restricted: true,
		Params: []DeclarationParameter{{"x", "scalar"}}, Fn: liftUnary(monotoneIncreasing(1, math.Inf(1), math.Acosh))})
	Declare(&Declaration{Name: "atanh", Desc: "inverse hyperbolic tangent; undefined outside (-1,1)", MinArity: 1, MaxArity: 1, Foldable: true, Restricted: true,
		Params: []DeclarationParameter{{"x", "scalar"}}, Fn: liftUnary(monotoneIncreasingOpen(-1, 1, math.Atanh))})
}

// monotoneIncreasingOpen handles a function undefined at both open
// domain endpoints (atanh at +-1).
func monotoneIncreasingOpen(dlo, dhi float64, f func(float64) float64) func(Interval) (Interval, Decoration) {
	return func(x Interval) (Interval, Decoration) {
		if x.Hi <= dlo || x.Lo >= dhi {
			return Empty, Trv
		}
		clo := math.Max(x.Lo, math.Nextafter(dlo, math.Inf(1)))
		chi := math.Min(x.Hi, math.Nextafter(dhi, math.Inf(-1)))
		dec := Com
		if x.Lo <= dlo || x.Hi >= dhi {
			dec = Trv
		}
		return Hull(f(clo), f(chi)), dec
	}
}

// anyMultipleInRange reports whether base+n*period lies in [lo,hi]
// for some integer n.
func anyMultipleInRange(lo, hi, base, period float64) bool {
	if math.IsInf(lo, -1) || math.IsInf(hi, 1) {
		return true
	}
	n := math.Ceil((lo - base) / period)
	v := base + n*period
	return v >= lo && v <= hi
}

func sinImage(x Interval) (Interval, Decoration) {
	if x.Hi-x.Lo >= 2*math.Pi {
		return Interval{-1, 1}, Com
	}
	vals := []float64{math.Sin(x.Lo), math.Sin(x.Hi)}
	if anyMultipleInRange(x.Lo, x.Hi, math.Pi/2, 2*math.Pi) {
		vals = append(vals, 1)
	}
	if anyMultipleInRange(x.Lo, x.Hi, -math.Pi/2, 2*math.Pi) {
		vals = append(vals, -1)
	}
	return HullOf(vals...), Com
}

func cosImage(x Interval) (Interval, Decoration) {
	if x.Hi-x.Lo >= 2*math.Pi {
		return Interval{-1, 1}, Com
	}
	vals := []float64{math.Cos(x.Lo), math.Cos(x.Hi)}
	if anyMultipleInRange(x.Lo, x.Hi, 0, 2*math.Pi) {
		vals = append(vals, 1)
	}
	if anyMultipleInRange(x.Lo, x.Hi, math.Pi, 2*math.Pi) {
		vals = append(vals, -1)
	}
	return HullOf(vals...), Com
}

func coshImage(x Interval) (Interval, Decoration) {
	vals := []float64{math.Cosh(x.Lo), math.Cosh(x.Hi)}
	if x.ContainsZero() {
		vals = append(vals, 1)
	}
	return HullOf(vals...), Com
}

// tanImage is sound but coarse: a box straddling a pole yields Entire
// with Trv rather than the two proper branches either side of the
// pole, since a pole-splitting evaluator would need to know which
// period it is in, which the compiler's static domain-annotation pass
// does not track. This never produces a false Solution/Empty; it only
// forces further subdivision (spec.md §4.5's "internal failure ->
// treated as UU" degrades identically).
func tanImage(x Interval) (Interval, Decoration) {
	if anyMultipleInRange(x.Lo, x.Hi, math.Pi/2, math.Pi) {
		return Entire, Trv
	}
	return Hull(math.Tan(x.Lo), math.Tan(x.Hi)), Com
}

// atan2Fn implements the two-argument arctangent as a genuine
// multi-branch primitive (spec.md §4.3): when the box straddles the
// negative-x axis, the result set has two components, one for each
// side of the branch cut, rather than one hull spanning [-pi,pi] that
// would hide the discontinuity from the search.
func atan2Fn(args ...Set) Set {
	y, x := args[0], args[1]
	dec := Meet(y.Dec, x.Dec)
	var out []Interval
	for _, yi := range y.Ivs {
		for _, xi := range x.Ivs {
			if yi.ContainsZero() && xi.ContainsZero() {
				dec = Meet(dec, Trv)
				continue
			}
			if xi.Lo >= 0 {
				out = append(out, Hull(math.Atan2(yi.Lo, xi.Hi), math.Atan2(yi.Hi, xi.Lo)))
				continue
			}
			if xi.Hi <= 0 && (yi.Lo >= 0 || yi.Hi <= 0) {
				// entirely in one half (upper-left or lower-left): monotone in each
				if yi.Lo >= 0 {
					out = append(out, Hull(math.Atan2(yi.Hi, xi.Hi), math.Atan2(yi.Lo, xi.Lo)))
				} else {
					out = append(out, Hull(math.Atan2(yi.Lo, xi.Hi), math.Atan2(yi.Hi, xi.Lo)))
				}
				continue
			}
			// straddles the negative-x axis: two branches, near +pi and near -pi
			out = append(out, Hull(math.Atan2(0, xi.Lo), math.Pi), Hull(-math.Pi, math.Atan2(-0.0, xi.Lo)))
		}
	}
	return Normalize(dec, out...)
}
