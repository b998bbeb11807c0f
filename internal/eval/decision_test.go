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
	"testing"

	"github.com/mizuno-gsinet/inari-graph/internal/interval"
	"github.com/mizuno-gsinet/inari-graph/internal/relprog"
	"github.com/mizuno-gsinet/inari-graph/internal/ternary"
)

// twoEqualityProgram builds "x=y && second=c" by hand. second is an
// OpConst so its corner behavior can be controlled precisely, without
// depending on any particular primitive's numerical width. Register
// layout: s0=x, s1=y, s2=second, s3=c, b0=(x=y), b1=(s2=s3),
// b2=and(b0,b1)=result.
func twoEqualityProgram(second, c interval.Set) *relprog.Program {
	return &relprog.Program{
		ScalarRegs: 4,
		BoolRegs:   3,
		Mode:       relprog.Cartesian,
		Result:     relprog.Register{Kind: relprog.Boolean, Index: 2},
		Instructions: []relprog.Instruction{
			{Op: relprog.OpInput, Out: relprog.Register{Kind: relprog.Scalar, Index: 0}, Name: "x"},
			{Op: relprog.OpInput, Out: relprog.Register{Kind: relprog.Scalar, Index: 1}, Name: "y"},
			{Op: relprog.OpConst, Out: relprog.Register{Kind: relprog.Scalar, Index: 2}, Const: second},
			{Op: relprog.OpConst, Out: relprog.Register{Kind: relprog.Scalar, Index: 3}, Const: c},
			{Op: relprog.OpCmp, Out: relprog.Register{Kind: relprog.Boolean, Index: 0}, Name: "=", Args: []relprog.Register{
				{Kind: relprog.Scalar, Index: 0}, {Kind: relprog.Scalar, Index: 1},
			}},
			{Op: relprog.OpCmp, Out: relprog.Register{Kind: relprog.Boolean, Index: 1}, Name: "=", Args: []relprog.Register{
				{Kind: relprog.Scalar, Index: 2}, {Kind: relprog.Scalar, Index: 3},
			}},
			{Op: relprog.OpAnd, Out: relprog.Register{Kind: relprog.Boolean, Index: 2}, Args: []relprog.Register{
				{Kind: relprog.Boolean, Index: 0}, {Kind: relprog.Boolean, Index: 1},
			}},
		},
	}
}

// twoEqualityProgramXDependent is like twoEqualityProgram, but the
// second conjunct compares x itself against a constant threshold, so
// its corner behavior tracks the box's own x extremes instead of
// being fixed.
func twoEqualityProgramXDependent(c interval.Set) *relprog.Program {
	p := twoEqualityProgram(interval.Set{}, c)
	// s2 = x (reuse OpInput's x register instead of a second OpConst).
	p.Instructions[2] = relprog.Instruction{Op: relprog.OpInput, Out: relprog.Register{Kind: relprog.Scalar, Index: 2}, Name: "x"}
	return p
}

// A box straddling x=y (so the first conjunct is provably TT by the
// corner check) must NOT lift the whole "x=y && second=c" to TT when
// the second conjunct's own corners never show a sign change or exact
// zero -- even though the second conjunct is itself UU at box level.
// This is the false-positive shape from a relation like
// "x=y && sin(1000*x)=0": one provable conjunct must never paper over
// an unrelated conjunct that was never actually checked.
func TestRefineDoesNotIgnoreOtherConjunct(t *testing.T) {
	// The second conjunct's value is a constant interval that straddles
	// zero at every corner alike (it doesn't depend on x/y at all), so
	// it is ambiguous at the box level but never shows a genuine sign
	// change or exact landing at any corner.
	second := interval.Single(interval.Interval{Lo: -0.1, Hi: 0.2}, interval.Com)
	p := twoEqualityProgram(second, interval.PointSet(0, interval.Com))
	box := Box{X: interval.Interval{Lo: 0.999, Hi: 1.001}, Y: interval.Point(1)}
	if got := Evaluate(p, box, true); got != ternary.UU {
		t.Fatalf("second conjunct never proven: got %v, want UU", got)
	}
}

// The same shape, but both conjuncts genuinely cross zero at the
// corners (x=y and x=1, both straddled by the box), must still be
// provable TT -- the fix must not regress legitimate multi-conjunct
// proofs by refining forms independently and then recombining.
func TestRefineCombinesBothConjunctsWhenBothProven(t *testing.T) {
	p := twoEqualityProgramXDependent(interval.PointSet(1, interval.Com))
	box := Box{X: interval.Interval{Lo: 0.999, Hi: 1.001}, Y: interval.Point(1)}
	if got := Evaluate(p, box, true); got != ternary.TT {
		t.Fatalf("both conjuncts provable: got %v, want TT", got)
	}
}
