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

package compile

import (
	"testing"

	"github.com/mizuno-gsinet/inari-graph/internal/ast"
	"github.com/mizuno-gsinet/inari-graph/internal/parse"
	"github.com/mizuno-gsinet/inari-graph/internal/relprog"
)

func mustParse(t *testing.T, text string) *ast.Node {
	t.Helper()
	n, err := parse.Parse("test", text)
	if err != nil {
		t.Fatalf("parse %q: %v", text, err)
	}
	return n
}

func TestCompileRejectsCartesianPolarMix(t *testing.T) {
	n := mustParse(t, "x + theta = 1")
	_, err := Compile(n)
	if err == nil {
		t.Fatal("expected a type error mixing x and theta")
	}
	if _, ok := err.(*TypeError); !ok {
		t.Fatalf("expected *TypeError, got %T: %v", err, err)
	}
}

func TestCompileBesselNonHalfIntegerOrderIsDomainError(t *testing.T) {
	n := mustParse(t, "J(0.3, x) = 0")
	_, err := Compile(n)
	if err == nil {
		t.Fatal("expected a domain error for a non-half-integer Bessel order")
	}
	if _, ok := err.(*DomainError); !ok {
		t.Fatalf("expected *DomainError, got %T: %v", err, err)
	}
}

func TestCompileBesselHalfIntegerOrderIsAccepted(t *testing.T) {
	n := mustParse(t, "J(1.5, x) = 0")
	if _, err := Compile(n); err != nil {
		t.Fatalf("half-integer order should compile: %v", err)
	}
	n = mustParse(t, "J(2, x) = 0")
	if _, err := Compile(n); err != nil {
		t.Fatalf("integer order should compile: %v", err)
	}
}

// A rational exponent m/n (both compile-time integer literals) must
// lower to root_n(pow_m(base)) rather than falling through to the
// general runtime "pow" primitive, so that the negative-base odd-root
// branch of spec.md §6 applies.
func TestCompileRationalExponentLowersToRootOfPow(t *testing.T) {
	n := mustParse(t, "pow(x, 2/3) = 1")
	prog, err := Compile(n)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	sawRoot, sawGeneralPow := false, false
	for _, ins := range prog.Instructions {
		if ins.Op != relprog.OpCall {
			continue
		}
		switch ins.Name {
		case "root":
			sawRoot = true
		case "pow":
			sawGeneralPow = true
		}
	}
	if !sawRoot {
		t.Error("expected a root(...) call from lowering the rational exponent")
	}
	if sawGeneralPow {
		t.Error("rational exponent 2/3 should never reach the general pow primitive")
	}
}

func TestCompileSmallIntegerExponentExpandsToMultiplication(t *testing.T) {
	n := mustParse(t, "pow(x, 3) = 1")
	prog, err := Compile(n)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	mulCount := 0
	for _, ins := range prog.Instructions {
		if ins.Op == relprog.OpCall && ins.Name == "*" {
			mulCount++
		}
		if ins.Op == relprog.OpCall && ins.Name == "pow" {
			t.Error("small integer exponent should expand, not call the general pow primitive")
		}
	}
	if mulCount == 0 {
		t.Error("expected x^3 to expand into repeated multiplication")
	}
}
