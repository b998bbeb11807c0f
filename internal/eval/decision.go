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
	"github.com/mizuno-gsinet/inari-graph/internal/interval"
	"github.com/mizuno-gsinet/inari-graph/internal/relprog"
	"github.com/mizuno-gsinet/inari-graph/internal/ternary"
)

// refineEqualitiesAtCorners implements spec.md §4.4's second decision
// rule: an equality/disequality that the plain sign test on the whole
// box left UU can still be proved TT once the box is at the finest
// subdivision level, provided its operands carry decoration >= Dac (so
// the sign really is continuous across the box, ruling out a jump that
// only looks like a crossing) and the four corners actually witness a
// sign change (or, for a corner landing exactly on the curve, a zero).
//
// A relation can contain more than one such comparison (e.g. "x=y &&
// sin(1000*x)=0"), and each is refined independently: the corner check
// only ever asks "did this one comparison's sign change", never
// conflates one comparison's evidence with another's. The refined
// per-comparison values are then replayed through the program's own
// And/Or/Not instructions (recombine), exactly as runProgram would
// combine box-level results, so a refined conjunct only lifts the
// overall result to TT when the *other* conjuncts also allow it.
//
// This only ever turns UU into TT; it can never manufacture an FF that
// the plain sign test didn't already find, since a proved sign change
// implies at least one root inside the box, and recombine reuses the
// same monotone And/Or/Not logic runProgram already applied to every
// register whose inputs didn't change.
func refineEqualitiesAtCorners(p *relprog.Program, box Box, finest bool, scalars []interval.Set, bools []ternary.Value) ternary.Value {
	if !finest {
		return ternary.UU
	}
	corners := box.Corners()
	cornerScalars := make([][]interval.Set, 4)
	for i, c := range corners {
		cornerScalars[i] = seedScalarsAtPoint(p, c[0], c[1])
		cornerBools := runProgram(p, cornerScalars[i])
		if cornerBools[p.Result.Index] == ternary.TT {
			return ternary.TT
		}
	}

	refined := make([]ternary.Value, len(bools))
	copy(refined, bools)
	for _, ins := range p.Instructions {
		if ins.Op != relprog.OpCmp || (ins.Name != "=" && ins.Name != "!=") {
			continue
		}
		if refined[ins.Out.Index] != ternary.UU {
			continue // already decided at box level; nothing to refine
		}
		lhs := scalars[ins.Args[0].Index]
		rhs := scalars[ins.Args[1].Index]
		if interval.Meet(lhs.Dec, rhs.Dec) < interval.Dac {
			continue
		}
		if formCrossesZero(ins, cornerScalars) {
			refined[ins.Out.Index] = ternary.TT
		}
	}
	return recombine(p, refined)
}

// formCrossesZero reports whether the atomic comparison ins changes
// sign, or lands exactly on zero, at one of the box's four corners --
// the intermediate value proof that this one comparison's lhs=rhs
// holds somewhere inside the box.
func formCrossesZero(ins relprog.Instruction, cornerScalars [][]interval.Set) bool {
	sub, ok := interval.Lookup("-")
	if !ok {
		return false
	}
	sawNeg, sawPos := false, false
	for _, cs := range cornerScalars {
		lhs := cs[ins.Args[0].Index]
		rhs := cs[ins.Args[1].Index]
		diff := sub.Fn(lhs, rhs)
		if diff.IsEmpty() {
			continue
		}
		switch diff.Hull().SignOf() {
		case interval.SignZero:
			return true
		case interval.SignPos:
			sawPos = true
		case interval.SignNeg:
			sawNeg = true
		default:
			// SignStraddle at a single corner point is itself
			// inconclusive (the primitive couldn't pin the point down
			// exactly, e.g. a domain-restricted call at its boundary) --
			// it must never count as either "definite sign" evidence,
			// since treating it as proof would let two equally
			// ambiguous corners forge a crossing that was never shown.
		}
	}
	return sawNeg && sawPos
}

// recombine replays the program's And/Or/Not instructions forward
// from a (possibly corner-refined) set of per-comparison boolean
// values, reusing runProgram's own combinator logic so refined leaves
// propagate to the result exactly the way box-level evaluation would
// combine them -- never in isolation from the rest of the formula's
// structure.
func recombine(p *relprog.Program, refined []ternary.Value) ternary.Value {
	for _, ins := range p.Instructions {
		switch ins.Op {
		case relprog.OpAnd:
			v := ternary.TT
			for _, a := range ins.Args {
				v = ternary.And(v, refined[a.Index])
			}
			refined[ins.Out.Index] = v
		case relprog.OpOr:
			v := ternary.FF
			for _, a := range ins.Args {
				v = ternary.Or(v, refined[a.Index])
			}
			refined[ins.Out.Index] = v
		case relprog.OpNot:
			refined[ins.Out.Index] = ternary.Not(refined[ins.Args[0].Index])
		}
	}
	if refined[p.Result.Index] == ternary.TT {
		return ternary.TT
	}
	return ternary.UU
}

func seedScalarsAtPoint(p *relprog.Program, x, y float64) []interval.Set {
	scalars := make([]interval.Set, p.ScalarRegs)
	for _, ins := range p.Instructions {
		if ins.Op != relprog.OpInput {
			continue
		}
		switch ins.Name {
		case "x", "r":
			scalars[ins.Out.Index] = interval.PointSet(x, interval.Com)
		case "y", "theta":
			scalars[ins.Out.Index] = interval.PointSet(y, interval.Com)
		}
	}
	return scalars
}
