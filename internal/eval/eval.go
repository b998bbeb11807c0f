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

// Package eval interprets a compiled relprog.Program over a Box,
// implementing spec.md §4.4's decision rules and polar-mode strip
// iteration. Two register files back the interpreter, exactly as the
// data model describes: []interval.Set for scalar registers and
// []ternary.Value for boolean registers.
package eval

import (
	"log"
	"math"

	"github.com/mizuno-gsinet/inari-graph/internal/interval"
	"github.com/mizuno-gsinet/inari-graph/internal/relprog"
	"github.com/mizuno-gsinet/inari-graph/internal/ternary"
)

// DefaultPolarStrips bounds how many 2π-shifted copies of a box's
// principal angle range the polar evaluator tries (spec.md §9: "the
// number of strips is finite because the box has bounded θ range once
// its Cartesian box is bounded" -- we make that bound an explicit,
// documented constant rather than an unbounded search).
const DefaultPolarStrips = 3

// Evaluate classifies box under program, per spec.md §4.4. finest
// tells the equality decision rule whether box is at the search's
// L_max, the condition spec.md attaches to the intermediate-value
// proof of a solution ("...and the box is at the finest subdivision").
func Evaluate(p *relprog.Program, box Box, finest bool) ternary.Value {
	if p.Mode == relprog.Cartesian {
		return evalCartesian(p, box, finest)
	}
	return evalPolar(p, box, finest, DefaultPolarStrips)
}

func evalCartesian(p *relprog.Program, box Box, finest bool) ternary.Value {
	scalars := seedScalars(p, box)
	bools := runProgram(p, scalars)
	result := bools[p.Result.Index]
	if result != ternary.UU {
		return result
	}
	return refineEqualitiesAtCorners(p, box, finest, scalars, bools)
}

// evalPolar unions the ternary result of evaluating the relation at
// the box's principal (r,θ) coverage plus maxStrips 2π-shifted
// copies in each direction, k from -maxStrips to maxStrips (spec.md §9's polar representation multiplicity), since the
// same Cartesian point may only satisfy the relation at some of its
// equivalent angle representations (e.g. a spiral θ=r).
func evalPolar(p *relprog.Program, box Box, finest bool, maxStrips int) ternary.Value {
	rBox, thetaBox := cartesianToPolarBox(box)
	acc := ternary.FF
	for k := -maxStrips; k <= maxStrips; k++ {
		shifted := thetaBox.Add(interval.Point(2 * math.Pi * float64(k)))
		scalars := make([]interval.Set, p.ScalarRegs)
		for _, ins := range p.Instructions {
			if ins.Op != relprog.OpInput {
				continue
			}
			switch ins.Name {
			case "r":
				scalars[ins.Out.Index] = interval.Single(rBox, interval.Com)
			case "theta":
				scalars[ins.Out.Index] = interval.Single(shifted, interval.Com)
			}
		}
		bools := runProgram(p, scalars)
		acc = ternary.Or(acc, bools[p.Result.Index])
		if acc == ternary.TT {
			return ternary.TT
		}
	}
	return acc
}

// cartesianToPolarBox computes a sound (possibly loose) polar
// covering of a Cartesian box: if the box straddles the origin, the
// angle range is the full circle and the radius range starts at 0;
// otherwise both are the hull of the four corners' polar coordinates.
func cartesianToPolarBox(box Box) (rBox, thetaBox interval.Interval) {
	corners := box.Corners()
	containsOrigin := box.X.ContainsZero() && box.Y.ContainsZero()
	rs := make([]float64, 0, 4)
	thetas := make([]float64, 0, 4)
	for _, c := range corners {
		rs = append(rs, math.Hypot(c[0], c[1]))
		thetas = append(thetas, math.Atan2(c[1], c[0]))
	}
	rBox = interval.HullOf(rs...)
	if containsOrigin {
		rBox.Lo = 0
		thetaBox = interval.Interval{Lo: -math.Pi, Hi: math.Pi}
	} else {
		thetaBox = interval.HullOf(thetas...)
		// atan2's branch cut can split a box that doesn't actually
		// straddle the origin into a spuriously wide [~-pi, ~pi]
		// range; widen by a full turn in that case rather than risk
		// an unsound (too narrow) angle range.
		if thetaBox.Hi-thetaBox.Lo > math.Pi {
			thetaBox = interval.Interval{Lo: -math.Pi, Hi: math.Pi}
		}
	}
	return rBox, thetaBox
}

func seedScalars(p *relprog.Program, box Box) []interval.Set {
	scalars := make([]interval.Set, p.ScalarRegs)
	for _, ins := range p.Instructions {
		if ins.Op != relprog.OpInput {
			continue
		}
		switch ins.Name {
		case "x":
			scalars[ins.Out.Index] = interval.Single(box.X, interval.Com)
		case "y":
			scalars[ins.Out.Index] = interval.Single(box.Y, interval.Com)
		}
	}
	return scalars
}

// runProgram executes every instruction once, in order, filling both
// register files. Scalar OpInput registers must already be seeded.
func runProgram(p *relprog.Program, scalars []interval.Set) []ternary.Value {
	bools := make([]ternary.Value, p.BoolRegs)
	for _, ins := range p.Instructions {
		switch ins.Op {
		case relprog.OpInput:
			// already seeded by the caller
		case relprog.OpConst:
			scalars[ins.Out.Index] = ins.Const
		case relprog.OpCall:
			decl, ok := interval.Lookup(ins.Name)
			if !ok {
				scalars[ins.Out.Index] = interval.EmptySet
				continue
			}
			args := make([]interval.Set, len(ins.Args))
			for i, a := range ins.Args {
				args[i] = scalars[a.Index]
			}
			scalars[ins.Out.Index] = safeApply(decl.Fn, args)
		case relprog.OpCmp:
			lhs := scalars[ins.Args[0].Index]
			rhs := scalars[ins.Args[1].Index]
			bools[ins.Out.Index] = decideCmp(ins.Name, lhs, rhs)
		case relprog.OpAnd:
			v := ternary.TT
			for _, a := range ins.Args {
				v = ternary.And(v, bools[a.Index])
			}
			bools[ins.Out.Index] = v
		case relprog.OpOr:
			v := ternary.FF
			for _, a := range ins.Args {
				v = ternary.Or(v, bools[a.Index])
			}
			bools[ins.Out.Index] = v
		case relprog.OpNot:
			bools[ins.Out.Index] = ternary.Not(bools[ins.Args[0].Index])
		}
	}
	return bools
}

// safeApply treats a primitive panic (spec.md §7's InternalError: "an
// individual box's evaluator failure") as producing the vacuous
// superset, forcing further subdivision instead of aborting the run.
func safeApply(fn interval.Fn, args []interval.Set) (result interval.Set) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("internal error: primitive panicked: %v", r)
			result = interval.Set{Dec: interval.Trv}
		}
	}()
	return fn(args...)
}

// decideCmp implements spec.md §4.4's per-operator sign test on
// lhs-rhs. Equality's intermediate-value branch is handled by the
// caller (refineEqualitiesAtCorners) since it needs point evaluation
// at the box's corners, which this pure-Set function doesn't have
// access to.
func decideCmp(op string, lhs, rhs interval.Set) ternary.Value {
	sub, ok := interval.Lookup("-")
	if !ok {
		return ternary.UU
	}
	diff := sub.Fn(lhs, rhs)
	if diff.IsEmpty() {
		return ternary.UU
	}
	h := diff.Hull()
	switch op {
	case "<":
		if h.Hi < 0 {
			return ternary.TT
		}
		if h.Lo >= 0 {
			return ternary.FF
		}
	case "<=":
		if h.Hi <= 0 {
			return ternary.TT
		}
		if h.Lo > 0 {
			return ternary.FF
		}
	case ">":
		if h.Lo > 0 {
			return ternary.TT
		}
		if h.Hi <= 0 {
			return ternary.FF
		}
	case ">=":
		if h.Lo >= 0 {
			return ternary.TT
		}
		if h.Hi < 0 {
			return ternary.FF
		}
	case "!=":
		if !diff.ContainsZero() {
			return ternary.TT
		}
		if isIdenticallyZero(diff) {
			return ternary.FF
		}
	case "=":
		if !diff.ContainsZero() {
			return ternary.FF
		}
		if isIdenticallyZero(diff) {
			return ternary.TT
		}
	}
	return ternary.UU
}

func isIdenticallyZero(s interval.Set) bool {
	return len(s.Ivs) == 1 && s.Ivs[0].Lo == 0 && s.Ivs[0].Hi == 0
}
