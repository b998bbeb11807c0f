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
	DeclareTitle("Power/log")

	Declare(&Declaration{Name: "sqrt", Desc: "principal square root; undefined for x<0", MinArity: 1, MaxArity: 1, Foldable: true, Restricted: true,
		Params: []DeclarationParameter{{"x", "scalar"}},
		Fn:     liftUnary(monotoneIncreasing(0, math.Inf(1), math.Sqrt)),
	})
	Declare(&Declaration{Name: "exp", Desc: "e^x", MinArity: 1, MaxArity: 1, Foldable: true,
		Params: []DeclarationParameter{{"x", "scalar"}},
		Fn:     liftUnary(monotoneIncreasing(math.Inf(-1), math.Inf(1), math.Exp)),
	})
	Declare(&Declaration{Name: "ln", Desc: "natural log; undefined for x<=0", MinArity: 1, MaxArity: 1, Foldable: true, Restricted: true,
		Params: []DeclarationParameter{{"x", "scalar"}},
		Fn:     liftUnary(monotoneIncreasingOpenLo(0, math.Log)),
	})
	Declare(&Declaration{Name: "log10", Desc: "base-10 log; undefined for x<=0", MinArity: 1, MaxArity: 1, Foldable: true, Restricted: true,
		Params: []DeclarationParameter{{"x", "scalar"}},
		Fn:     liftUnary(monotoneIncreasingOpenLo(0, math.Log10)),
	})
	Declare(&Declaration{Name: "log_b", Desc: "log base b of x; undefined for x<=0 or b<=0 or b=1", MinArity: 2, MaxArity: 2, Foldable: true, Restricted: true,
		Params: []DeclarationParameter{{"b", "scalar"}, {"x", "scalar"}},
		Fn:     liftBinary(logBaseImage),
	})
	Declare(&Declaration{Name: "pow", Desc: "x^n, exact for integer n (0^0=1); other n is bounded from the box corners for x>=0 only (integer-ratio literal exponents are lowered to root/pow by the compiler)", MinArity: 2, MaxArity: 2, Foldable: true, Restricted: true,
		Params: []DeclarationParameter{{"x", "scalar"}, {"n", "scalar"}},
		Fn:     powFn,
	})
	Declare(&Declaration{Name: "root", Desc: "principal n-th root, with the negative-base odd-root branch (§6): (-1)^(1/3)=-1", MinArity: 2, MaxArity: 2, Foldable: true, Restricted: true,
		Params: []DeclarationParameter{{"n", "scalar"}, {"x", "scalar"}},
		Fn:     rootFn,
	})
}

// monotoneIncreasing lifts a monotone increasing f defined on [dlo,dhi]
// into (Interval, Decoration): clip to the domain, evaluate at both
// clipped endpoints, and degrade decoration to Trv if any part of the
// input box fell outside the domain.
func monotoneIncreasing(dlo, dhi float64, f func(float64) float64) func(Interval) (Interval, Decoration) {
	return func(x Interval) (Interval, Decoration) {
		if x.Hi < dlo || x.Lo > dhi {
			return Empty, Trv
		}
		clo, chi := math.Max(x.Lo, dlo), math.Min(x.Hi, dhi)
		dec := Com
		if x.Lo < dlo || x.Hi > dhi {
			dec = Trv
		}
		return Hull(f(clo), f(chi)), dec
	}
}

// monotoneIncreasingOpenLo is monotoneIncreasing for a function whose
// domain excludes its lower bound (e.g. ln at 0): touching dlo itself
// still degrades the decoration even though dlo is included in the
// clip, since the function is undefined exactly there.
func monotoneIncreasingOpenLo(dlo float64, f func(float64) float64) func(Interval) (Interval, Decoration) {
	return func(x Interval) (Interval, Decoration) {
		if x.Hi <= dlo {
			return Empty, Trv
		}
		clo, chi := math.Max(x.Lo, math.Nextafter(dlo, math.Inf(1))), x.Hi
		dec := Com
		if x.Lo <= dlo {
			dec = Trv
		}
		return Hull(f(clo), f(chi)), dec
	}
}

func logBaseImage(b, x Interval) (Interval, Decoration) {
	if x.Hi <= 0 || b.Hi <= 0 || (b.Lo <= 1 && b.Hi >= 1) {
		return Empty, Trv
	}
	lo := math.Log(math.Max(x.Lo, 1e-300)) / math.Log(b.Hi)
	hi := math.Log(x.Hi) / math.Log(b.Lo)
	dec := Com
	if x.Lo <= 0 || b.Lo <= 0 {
		dec = Trv
	}
	return Hull(lo, hi), dec
}

// powFn implements x^n. Integer n is expanded arithmetically
// (matching the compiler's canonicalization for small n, spec.md
// §4.2); this primitive covers the general/runtime case including
// negative and large integer exponents, with 0^0 = 1 per spec.md §6.
func powFn(args ...Set) Set {
	x, n := args[0], args[1]
	dec := Meet(x.Dec, n.Dec)
	var out []Interval
	for _, xi := range x.Ivs {
		for _, ni := range n.Ivs {
			exp, ok := exactInt(ni)
			if !ok {
				// non-integer exponent: delegate to root/pow composition
				// (spec.md §4.2 canonicalization); here, conservatively
				// treat as exp(n * ln(x)) restricted to x>=0.
				r, d := generalPow(xi, ni)
				out = append(out, r)
				dec = Meet(dec, d)
				continue
			}
			r, d := intPow(xi, exp)
			dec = Meet(dec, d)
			if !r.IsEmpty() {
				out = append(out, r)
			}
		}
	}
	return Normalize(dec, out...)
}

func intPow(x Interval, n int64) (Interval, Decoration) {
	if n == 0 {
		return Point(1), Com // 0^0 = 1 per spec.md §6
	}
	if n < 0 {
		base, dec := intPow(x, -n)
		inv, ok := Point(1).Div(base)
		if !ok {
			return Entire, Trv
		}
		return inv, Meet(dec, Com)
	}
	if n%2 == 1 {
		return Hull(math.Pow(x.Lo, float64(n)), math.Pow(x.Hi, float64(n))), Com
	}
	// even power: monotone on each side of 0
	if x.Lo >= 0 {
		return Hull(math.Pow(x.Lo, float64(n)), math.Pow(x.Hi, float64(n))), Com
	}
	if x.Hi <= 0 {
		return Hull(math.Pow(x.Hi, float64(n)), math.Pow(x.Lo, float64(n))), Com
	}
	hi := math.Max(math.Pow(-x.Lo, float64(n)), math.Pow(x.Hi, float64(n)))
	return Interval{0, up(hi)}, Com
}

// generalPow covers non-integer n: x^n = exp(n*ln(x)) is monotone in
// n along either side of x=1 (increasing for x>1, decreasing for
// 0<x<1) and monotone in x for fixed n, but neither variable alone
// pins down the box's extrema when both x and n are non-degenerate --
// e.g. x in [0.1,0.9], n in [1,2] peaks at the mixed corner (0.9,1)
// and bottoms out at (0.1,2), not at (x.Lo,n.Lo)/(x.Hi,n.Hi). Evaluate
// all four corners and hull them rather than guessing which pair is
// extremal.
func generalPow(x, n Interval) (Interval, Decoration) {
	if x.Hi < 0 {
		return Entire, Trv // real branch undefined for irrational exponents on negatives
	}
	lo := math.Max(x.Lo, 0)
	corners := []float64{
		math.Pow(lo, n.Lo),
		math.Pow(lo, n.Hi),
		math.Pow(x.Hi, n.Lo),
		math.Pow(x.Hi, n.Hi),
	}
	dec := Com
	if x.Lo < 0 {
		dec = Trv
	}
	return HullOf(corners...), dec
}

// rootFn implements root(n, x): the principal real n-th root, with the
// odd-root negative-base branch of spec.md §6 ((-1)^(1/3) = -1). n
// must be an exact integer; an exponent written as integer literal
// over integer literal, p/q, is lowered as written (not reduced) to
// root_q(pow_p(x)) by the compiler (spec.md §4.2), so
// by the time this runs n is always an integer.
func rootFn(args ...Set) Set {
	nSet, x := args[0], args[1]
	dec := Meet(nSet.Dec, x.Dec)
	var out []Interval
	for _, ni := range nSet.Ivs {
		n, ok := exactInt(ni)
		if !ok || n == 0 {
			return Set{Dec: Trv}
		}
		for _, xi := range x.Ivs {
			r, d := rootImage(n, xi)
			dec = Meet(dec, d)
			if !r.IsEmpty() {
				out = append(out, r)
			}
		}
	}
	return Normalize(dec, out...)
}

func rootImage(n int64, x Interval) (Interval, Decoration) {
	odd := n%2 != 0 || n < 0 && (-n)%2 != 0
	if !odd && x.Hi < 0 {
		return Empty, Trv
	}
	root := func(v float64) float64 {
		if v < 0 {
			return -math.Pow(-v, 1/float64(n))
		}
		return math.Pow(v, 1/float64(n))
	}
	if !odd {
		clo := math.Max(x.Lo, 0)
		dec := Com
		if x.Lo < 0 {
			dec = Trv
		}
		return Hull(root(clo), root(x.Hi)), dec
	}
	return Hull(root(x.Lo), root(x.Hi)), Com
}
