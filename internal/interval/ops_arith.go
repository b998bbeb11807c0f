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

// liftUnary turns a pointwise (interval, decoration) rule into a
// Set-level Fn, mapping over every component of the operand set the
// way spec.md §4.4 step 2 describes.
func liftUnary(f func(Interval) (Interval, Decoration)) Fn {
	return func(args ...Set) Set {
		x := args[0]
		dec := x.Dec
		out := make([]Interval, 0, len(x.Ivs))
		for _, iv := range x.Ivs {
			r, d := f(iv)
			dec = Meet(dec, d)
			if !r.IsEmpty() {
				out = append(out, r)
			}
		}
		return Normalize(dec, out...)
	}
}

// liftBinary applies f to the Cartesian product of both operands'
// components (spec.md §4.4 step 2), unioning the results.
func liftBinary(f func(x, y Interval) (Interval, Decoration)) Fn {
	return func(args ...Set) Set {
		a, b := args[0], args[1]
		dec := Meet(a.Dec, b.Dec)
		out := make([]Interval, 0, len(a.Ivs)*len(b.Ivs))
		for _, x := range a.Ivs {
			for _, y := range b.Ivs {
				r, d := f(x, y)
				dec = Meet(dec, d)
				if !r.IsEmpty() {
					out = append(out, r)
				}
			}
		}
		return Normalize(dec, out...)
	}
}

func total(x Interval) (Interval, Decoration) { return x, Com }

func init() {
	DeclareTitle("Arithmetic")

	Declare(&Declaration{Name: "+", Desc: "outward-rounded sum", MinArity: 2, MaxArity: 2, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}, {"y", "scalar"}},
		Fn:     liftBinary(func(x, y Interval) (Interval, Decoration) { return x.Add(y), Com }),
	})
	Declare(&Declaration{Name: "-", Desc: "outward-rounded difference", MinArity: 2, MaxArity: 2, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}, {"y", "scalar"}},
		Fn:     liftBinary(func(x, y Interval) (Interval, Decoration) { return x.Sub(y), Com }),
	})
	Declare(&Declaration{Name: "neg", Desc: "unary negation", MinArity: 1, MaxArity: 1, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}},
		Fn:     liftUnary(func(x Interval) (Interval, Decoration) { return x.Neg(), Com }),
	})
	Declare(&Declaration{Name: "*", Desc: "outward-rounded product", MinArity: 2, MaxArity: 2, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}, {"y", "scalar"}},
		Fn:     liftBinary(func(x, y Interval) (Interval, Decoration) { return x.Mul(y), Com }),
	})
	Declare(&Declaration{Name: "/", Desc: "outward-rounded quotient; Entire (with Trv) when the divisor straddles zero", MinArity: 2, MaxArity: 2, Foldable: true, Restricted: true,
		Params: []DeclarationParameter{{"x", "scalar"}, {"y", "scalar"}},
		Fn: liftBinary(func(x, y Interval) (Interval, Decoration) {
			if y.SignOf() == SignZero {
				return Empty, Trv
			}
			r, ok := x.Div(y)
			if !ok {
				return r, Trv
			}
			return r, Com
		}),
	})
	Declare(&Declaration{Name: "abs", Desc: "|x|, with a kink (still continuous) at 0", MinArity: 1, MaxArity: 1, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}},
		Fn:     liftUnary(func(x Interval) (Interval, Decoration) { return x.Abs(), Com }),
	})
	Declare(&Declaration{Name: "min", Desc: "pointwise minimum", MinArity: 2, MaxArity: 2, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}, {"y", "scalar"}},
		Fn:     liftBinary(func(x, y Interval) (Interval, Decoration) { return x.Min(y), Com }),
	})
	Declare(&Declaration{Name: "max", Desc: "pointwise maximum", MinArity: 2, MaxArity: 2, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}, {"y", "scalar"}},
		Fn:     liftBinary(func(x, y Interval) (Interval, Decoration) { return x.Max(y), Com }),
	})
	Declare(&Declaration{Name: "ranked_min", Desc: "k-th smallest of a list of scalars, bounds computed order-statistic-wise", MinArity: 2, MaxArity: 32, Foldable: true,
		Params: []DeclarationParameter{{"k", "scalar"}, {"xs...", "scalar"}},
		Fn:     rankedFn(false),
	})
	Declare(&Declaration{Name: "ranked_max", Desc: "k-th largest of a list of scalars, bounds computed order-statistic-wise", MinArity: 2, MaxArity: 32, Foldable: true,
		Params: []DeclarationParameter{{"k", "scalar"}, {"xs...", "scalar"}},
		Fn:     rankedFn(true),
	})
	Declare(&Declaration{Name: "floor", Desc: "greatest integer <= x; discontinuous at integers", MinArity: 1, MaxArity: 1, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}},
		Fn:     liftUnary(stepFn(math.Floor)),
	})
	Declare(&Declaration{Name: "ceil", Desc: "least integer >= x; discontinuous at integers", MinArity: 1, MaxArity: 1, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}},
		Fn:     liftUnary(stepFn(math.Ceil)),
	})
	Declare(&Declaration{Name: "sign", Desc: "-1, 0 or 1; returned as a genuine 3-point set when the box straddles 0", MinArity: 1, MaxArity: 1, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}},
		Fn:     signSetFn,
	})
	Declare(&Declaration{Name: "mod", Desc: "result in [0, |y|)", MinArity: 2, MaxArity: 2, Foldable: true, Restricted: true,
		Params: []DeclarationParameter{{"x", "scalar"}, {"y", "scalar"}},
		Fn:     liftBinary(modImage),
	})
	Declare(&Declaration{Name: "gcd", Desc: "greatest common divisor; UU (Trv) on non-exact-integer inputs", MinArity: 2, MaxArity: 2, Foldable: true, Restricted: true,
		Params: []DeclarationParameter{{"x", "scalar"}, {"y", "scalar"}},
		Fn:     liftBinary(gcdImage),
	})
	Declare(&Declaration{Name: "lcm", Desc: "least common multiple; UU (Trv) on non-exact-integer inputs", MinArity: 2, MaxArity: 2, Foldable: true, Restricted: true,
		Params: []DeclarationParameter{{"x", "scalar"}, {"y", "scalar"}},
		Fn:     liftBinary(lcmImage),
	})
}

// stepFn lifts a monotone step function (floor/ceil) into the
// (Interval, Decoration) shape: the naive image is always sound, but
// the decoration degrades to Dac whenever an integer boundary falls
// strictly inside the box (a jump discontinuity is then possible).
func stepFn(f func(float64) float64) func(Interval) (Interval, Decoration) {
	return func(x Interval) (Interval, Decoration) {
		lo, hi := f(x.Lo), f(x.Hi)
		dec := Com
		if hi > lo {
			dec = Dac
		}
		return Hull(lo, hi), dec
	}
}

func signSetFn(args ...Set) Set {
	x := args[0]
	var out []Interval
	dec := x.Dec
	for _, iv := range x.Ivs {
		switch iv.SignOf() {
		case SignNeg:
			out = append(out, Point(-1))
		case SignPos:
			out = append(out, Point(1))
		case SignZero:
			out = append(out, Point(0))
		default:
			out = append(out, Point(-1), Point(0), Point(1))
			dec = Meet(dec, Dac)
		}
	}
	return Normalize(dec, out...)
}

func modImage(x, y Interval) (Interval, Decoration) {
	if y.ContainsZero() {
		return Empty, Trv
	}
	period := math.Max(math.Abs(y.Lo), math.Abs(y.Hi))
	if x.Hi-x.Lo >= period {
		return Interval{0, up(period)}, Dac
	}
	lo := math.Mod(x.Lo, period)
	if lo < 0 {
		lo += period
	}
	hi := math.Mod(x.Hi, period)
	if hi < 0 {
		hi += period
	}
	if lo <= hi {
		return Hull(lo, hi), Dac
	}
	// wrapped across the period boundary within the box: sound but
	// coarse fallback to the whole codomain.
	return Interval{0, up(period)}, Dac
}

func exactInt(x Interval) (int64, bool) {
	if x.Lo != x.Hi {
		return 0, false
	}
	if x.Lo != math.Trunc(x.Lo) {
		return 0, false
	}
	return int64(x.Lo), true
}

func gcdImage(x, y Interval) (Interval, Decoration) {
	a, ok1 := exactInt(x)
	b, ok2 := exactInt(y)
	if !ok1 || !ok2 {
		return Interval{0, math.Inf(1)}, Trv
	}
	return Point(float64(gcdInt(abs64(a), abs64(b)))), Com
}

func lcmImage(x, y Interval) (Interval, Decoration) {
	a, ok1 := exactInt(x)
	b, ok2 := exactInt(y)
	if !ok1 || !ok2 {
		return Interval{0, math.Inf(1)}, Trv
	}
	g := gcdInt(abs64(a), abs64(b))
	if g == 0 {
		return Point(0), Com
	}
	return Point(float64(abs64(a) / g * abs64(b))), Com
}

func gcdInt(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}

// rankedFn returns bounds for the k-th order statistic of a list of
// scalar sets by taking the k-th smallest lower bound and the k-th
// smallest upper bound -- the standard sound generalization of min/
// max to arbitrary rank.
func rankedFn(largest bool) Fn {
	return func(args ...Set) Set {
		k, ok := exactInt(args[0].Hull())
		if !ok || len(args) < 2 {
			return Set{Dec: Trv}
		}
		xs := args[1:]
		if largest {
			k = int64(len(xs)) - k + 1
		}
		if k < 1 || int(k) > len(xs) {
			return Set{Dec: Trv}
		}
		los := make([]float64, len(xs))
		his := make([]float64, len(xs))
		dec := Com
		for i, s := range xs {
			h := s.Hull()
			los[i], his[i] = h.Lo, h.Hi
			dec = Meet(dec, s.Dec)
		}
		sortFloat64s(los)
		sortFloat64s(his)
		return Single(Hull(los[k-1], his[k-1]), dec)
	}
}

func sortFloat64s(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
