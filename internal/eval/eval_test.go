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

	"github.com/mizuno-gsinet/inari-graph/internal/compile"
	"github.com/mizuno-gsinet/inari-graph/internal/interval"
	"github.com/mizuno-gsinet/inari-graph/internal/parse"
	"github.com/mizuno-gsinet/inari-graph/internal/ternary"
)

func TestUnitCircleInterior(t *testing.T) {
	n, err := parse.Parse("test", "x^2 + y^2 <= 1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	prog, err := compile.Compile(n)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	origin := Box{X: interval.Point(0), Y: interval.Point(0)}
	if got := Evaluate(prog, origin, true); got != ternary.TT {
		t.Errorf("origin: got %v, want TT", got)
	}
	far := Box{X: interval.Interval{Lo: 10, Hi: 10.1}, Y: interval.Point(0)}
	if got := Evaluate(prog, far, true); got != ternary.FF {
		t.Errorf("far box: got %v, want FF", got)
	}
	straddle := Box{X: interval.Interval{Lo: 0.9, Hi: 1.1}, Y: interval.Point(0)}
	if got := Evaluate(prog, straddle, false); got != ternary.UU {
		t.Errorf("straddling box (not finest): got %v, want UU", got)
	}
}

func TestUnitCircleBoundary(t *testing.T) {
	n, err := parse.Parse("test", "x^2 + y^2 = 1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	prog, err := compile.Compile(n)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	// A tiny box straddling the circle at (1,0), at the finest level,
	// should be provable by the corner sign-change check even though
	// the plain sign test over the whole box can only say UU.
	box := Box{
		X: interval.Interval{Lo: 0.999, Hi: 1.001},
		Y: interval.Interval{Lo: -0.001, Hi: 0.001},
	}
	got := Evaluate(prog, box, true)
	if got != ternary.TT {
		t.Errorf("boundary box at finest level: got %v, want TT", got)
	}
}

func TestSimpleInequalityDecision(t *testing.T) {
	n, err := parse.Parse("test", "x < y")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	prog, err := compile.Compile(n)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	definitelyTrue := Box{X: interval.Point(1), Y: interval.Point(2)}
	if got := Evaluate(prog, definitelyTrue, true); got != ternary.TT {
		t.Errorf("1<2: got %v, want TT", got)
	}
	definitelyFalse := Box{X: interval.Point(2), Y: interval.Point(1)}
	if got := Evaluate(prog, definitelyFalse, true); got != ternary.FF {
		t.Errorf("2<1: got %v, want FF", got)
	}
}

func TestBisectCoversParent(t *testing.T) {
	parent := Box{X: interval.Interval{Lo: -1, Hi: 1}, Y: interval.Interval{Lo: -1, Hi: 1}}
	children := parent.Bisect()
	lo := children[0].X.Lo
	hi := children[1].X.Hi
	if lo != parent.X.Lo || hi != parent.X.Hi {
		t.Errorf("children don't cover parent's x range: got [%v,%v] want [%v,%v]", lo, hi, parent.X.Lo, parent.X.Hi)
	}
}
