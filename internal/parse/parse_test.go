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

package parse

import (
	"fmt"
	"sync"
	"testing"

	"github.com/mizuno-gsinet/inari-graph/internal/ast"
)

func TestParsePrecedence(t *testing.T) {
	n, err := Parse("test", "x^2 + y^2 = 1")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if n.Kind != ast.KindCmp || n.Name != ast.OpEq {
		t.Fatalf("expected top-level =, got %s", n)
	}
	lhs := n.Children[0]
	if lhs.Kind != ast.KindCall || lhs.Name != "+" {
		t.Fatalf("expected + at top of lhs, got %s", lhs)
	}
}

func TestParseUnaryMinusBeforePow(t *testing.T) {
	n, err := Parse("test", "-2^2")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if n.Kind != ast.KindNeg {
		t.Fatalf("expected -2^2 to parse as -(2^2), got %s", n)
	}
	inner := n.Children[0]
	if inner.Kind != ast.KindCall || inner.Name != "pow" {
		t.Fatalf("expected pow under the negation, got %s", inner)
	}
}

func TestParseUnicodeGlyphs(t *testing.T) {
	n, err := Parse("test", "x ≤ 1 ∧ y ≥ 0")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if n.Kind != ast.KindAnd {
		t.Fatalf("expected And node, got %s", n)
	}
	if n.Children[0].Name != ast.OpLe || n.Children[1].Name != ast.OpGe {
		t.Fatalf("unicode comparison operators not normalized: %s", n)
	}
}

func TestParseFunctionCallArgs(t *testing.T) {
	n, err := Parse("test", "atan2(y, x) = 0")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	call := n.Children[0]
	if call.Kind != ast.KindCall || call.Name != "atan2" || len(call.Children) != 2 {
		t.Fatalf("expected atan2(y, x), got %s", call)
	}
}

func TestParseVars(t *testing.T) {
	n := MustParse("test", "sin(x) = cos(y)")
	vars := ast.Vars(n)
	if len(vars) != 2 || vars[0] != "x" || vars[1] != "y" {
		t.Fatalf("expected [x y], got %v", vars)
	}
}

func TestParseSyntaxError(t *testing.T) {
	if _, err := Parse("test", "x + * y = 0"); err == nil {
		t.Fatal("expected a parse error for a dangling operator")
	}
}

func TestParseImplicitMultiplication(t *testing.T) {
	n := MustParse("test", "2x + x y = 0")
	lhs := n.Children[0]
	if lhs.Kind != ast.KindCall || lhs.Name != "+" {
		t.Fatalf("expected + at top of lhs, got %s", lhs)
	}
	left := lhs.Children[0]
	if left.Kind != ast.KindCall || left.Name != "*" || left.Children[1].Name != "x" {
		t.Fatalf("expected 2*x, got %s", left)
	}
	right := lhs.Children[1]
	if right.Kind != ast.KindCall || right.Name != "*" || right.Children[0].Name != "x" || right.Children[1].Name != "y" {
		t.Fatalf("expected x*y, got %s", right)
	}
}

func TestParseImplicitMultiplicationDoesNotEatKeywords(t *testing.T) {
	n := MustParse("test", "x < 1 and y < 1")
	if n.Kind != ast.KindAnd {
		t.Fatalf("expected \"and\" to still bind as a logical operator, got %s", n)
	}
	if len(n.Children) != 2 || n.Children[0].Kind != ast.KindCmp || n.Children[1].Kind != ast.KindCmp {
		t.Fatalf("expected two comparisons under And, got %s", n)
	}
}

func TestParseChainedComparison(t *testing.T) {
	n := MustParse("test", "0 < x < 1")
	if n.Kind != ast.KindAnd {
		t.Fatalf("expected a<b<c to expand into And(a<b, b<c), got %s", n)
	}
	if len(n.Children) != 2 {
		t.Fatalf("expected 2 comparison terms, got %d", len(n.Children))
	}
	first, second := n.Children[0], n.Children[1]
	if first.Kind != ast.KindCmp || first.Name != ast.OpLt || first.Children[1].Name != "x" {
		t.Fatalf("expected 0<x, got %s", first)
	}
	if second.Kind != ast.KindCmp || second.Name != ast.OpLt || second.Children[0].Name != "x" {
		t.Fatalf("expected x<1 sharing the middle operand, got %s", second)
	}
}

func TestParseAbsFloorCeil(t *testing.T) {
	n := MustParse("test", "|x| = 1")
	call := n.Children[0]
	if call.Kind != ast.KindCall || call.Name != "abs" || len(call.Children) != 1 {
		t.Fatalf("expected abs(x), got %s", call)
	}

	n = MustParse("test", "⌊x⌋ = 1")
	call = n.Children[0]
	if call.Kind != ast.KindCall || call.Name != "floor" {
		t.Fatalf("expected floor(x), got %s", call)
	}

	n = MustParse("test", "⌈x⌉ = 1")
	call = n.Children[0]
	if call.Kind != ast.KindCall || call.Name != "ceil" {
		t.Fatalf("expected ceil(x), got %s", call)
	}
}

func TestParseListLiteral(t *testing.T) {
	n := MustParse("test", "ranked_min([x, y, 1]) = 0")
	call := n.Children[0]
	if call.Kind != ast.KindCall || call.Name != "ranked_min" || len(call.Children) != 1 {
		t.Fatalf("expected ranked_min([x, y, 1]), got %s", call)
	}
	list := call.Children[0]
	if list.Kind != ast.KindList || len(list.Children) != 3 {
		t.Fatalf("expected a 3-element list literal, got %s", list)
	}
}

func TestParseAndedEqualities(t *testing.T) {
	n := MustParse("test", "x = y && sin(1000*x) = 0")
	if n.Kind != ast.KindAnd {
		t.Fatalf("expected And of two equalities, got %s", n)
	}
	if len(n.Children) != 2 {
		t.Fatalf("expected 2 conjuncts, got %d", len(n.Children))
	}
	first, second := n.Children[0], n.Children[1]
	if first.Kind != ast.KindCmp || first.Name != ast.OpEq {
		t.Fatalf("expected x=y as the first conjunct, got %s", first)
	}
	if second.Kind != ast.KindCmp || second.Name != ast.OpEq {
		t.Fatalf("expected sin(1000*x)=0 as the second conjunct, got %s", second)
	}
}

// Parse must not share mutable state across calls: two goroutines
// parsing different source names and texts concurrently must each see
// only their own text reflected in the resulting tree's positions.
func TestParseConcurrentCallsDoNotCrossContaminate(t *testing.T) {
	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var name, text string
			if i%2 == 0 {
				name, text = "even", "x + 1 = 0"
			} else {
				name, text = "odd", "\n\ny = 2"
			}
			node, err := Parse(name, text)
			if err != nil {
				errs <- err
				return
			}
			ast.Walk(node, func(m *ast.Node) {
				if m.Src.Source != name {
					errs <- fmt.Errorf("node %s: got source %q, want %q (contamination)", m, m.Src.Source, name)
					return
				}
				if name == "odd" && m.Src.Line < 3 {
					errs <- fmt.Errorf("node %s: expected line >= 3 for text starting with two newlines, got %d", m, m.Src.Line)
				}
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestParseUnicodeIdentifiers(t *testing.T) {
	n := MustParse("test", "π + θ + γ = 0")
	vars := ast.Vars(n)
	if len(vars) != 3 || vars[0] != "π" || vars[1] != "θ" || vars[2] != "γ" {
		t.Fatalf("expected [π θ γ] to tokenize as identifiers, got %v", vars)
	}
}
