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

// Package parse turns the relation source text of spec.md §6 into an
// ast.Node tree, using the same packrat combinator library and
// self-recursion trick (forward-declared parsers) the teacher's
// Scheme reader uses for its own grammar (scm/packrat.go), but driven
// directly from Go instead of through a metaprogrammed DSL: every
// grammar rule is a small wrapper parser pairing a packrat.Parser with
// a build function that turns its matched Node into an ast.Node.
package parse

import (
	"fmt"
	"strconv"

	packrat "github.com/launix-de/go-packrat/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/mizuno-gsinet/inari-graph/internal/ast"
)

// ParseError reports where and what the parser expected, mirroring
// the source_info-carrying panics of scm/parser.go but returned
// instead of panicking, so a REPL or watch-mode reparse can recover.
type ParseError struct {
	Source   string
	Offset   int
	Expected string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: expected %s", e.Source, e.Offset, e.Expected)
}

// buildNode wraps a sub-parser together with the function that turns
// its raw match into an ast.Node; it is our analogue of the teacher's
// ScmParser (which pairs a packrat.Parser with a Scheme generator
// expression).
type buildNode struct {
	inner packrat.Parser
	build func(m *packrat.Node) *ast.Node
}

func (b *buildNode) Match(s *packrat.Scanner) *packrat.Node {
	m := b.inner.Match(s)
	if m == nil {
		return nil
	}
	return &packrat.Node{Matched: m.Matched, Start: m.Start, Parser: b, Children: []*packrat.Node{m}}
}

// extractChild recovers the ast.Node a buildNode wrapper produced, by
// re-running its build function against the wrapped raw match --
// buildNode.Match already did the wrapping, so at extraction time we
// just need the closure and its argument, both stashed on the node.
func extractChild(n *packrat.Node) *ast.Node {
	if bn, ok := n.Parser.(*buildNode); ok {
		return bn.build(n.Children[0])
	}
	panic("parse: extractChild called on a non-buildNode node")
}

// keywordGuard rejects an otherwise-valid identifier match that is
// exactly one of the word-spelled logical operators ("and", "or",
// "not"), so that implicit multiplication (mul's ε alternative) never
// swallows the next operator as if it were a bare variable -- without
// this, "x and y" would parse mulTail's implicit-multiply branch as
// "x * and" before andExpr ever got a chance to see "and".
type keywordGuard struct {
	inner packrat.Parser
}

var reservedWords = map[string]bool{"and": true, "or": true, "not": true}

func (g *keywordGuard) Match(s *packrat.Scanner) *packrat.Node {
	m := g.inner.Match(s)
	if m == nil || reservedWords[m.Matched] {
		return nil
	}
	return m
}

// forwardParser allows the grammar's mutual recursion (atom refers to
// rel through parentheses; pow refers to unary), exactly the role
// UndefinedParser plays in scm/packrat.go, minus the Scheme
// environment lookup this module has no use for.
type forwardParser struct {
	target packrat.Parser
}

func (f *forwardParser) Match(s *packrat.Scanner) *packrat.Node {
	if f.target == nil {
		panic("parse: forward-declared parser never resolved")
	}
	return f.target.Match(s)
}

// grammar holds every production of spec.md §6's expression language,
// built once by buildGrammar and reused for every Parse call.
type grammar struct {
	rel packrat.Parser
}

var g = buildGrammar()

func buildGrammar() *grammar {
	numberRe := packrat.NewRegexParser(`[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?|\.[0-9]+([eE][+-]?[0-9]+)?`, false, true)
	// \p{L} rather than A-Za-z so the identifiers spec.md §6 lists
	// (pi, π, gamma, γ, theta, θ) all tokenize, not just their ASCII
	// spellings.
	identRe := packrat.NewRegexParser(`[\p{L}_][\p{L}_0-9]*`, false, true)

	number := &buildNode{inner: numberRe, build: func(m *packrat.Node) *ast.Node {
		v, _ := strconv.ParseFloat(m.Matched, 64)
		return ast.Number(srcOf(m), v)
	}}

	relFwd := &forwardParser{}
	addFwd := &forwardParser{}

	lparen := packrat.NewAtomParser("(", false, true)
	rparen := packrat.NewAtomParser(")", false, true)
	comma := packrat.NewAtomParser(",", false, true)

	// funccall := IDENT '(' rel (',' rel)* ')'
	argTail := packrat.NewKleeneParser(packrat.NewAndParser(comma, relFwd), packrat.NewEmptyParser())
	argList := packrat.NewMaybeParser(packrat.NewAndParser(relFwd, argTail))
	funcCallSeq := packrat.NewAndParser(identRe, lparen, argList, rparen)
	funcCall := &buildNode{inner: funcCallSeq, build: func(m *packrat.Node) *ast.Node {
		name := m.Children[0].Matched
		var args []*ast.Node
		if len(m.Children[2].Children) > 0 { // MaybeParser matched
			seq := m.Children[2].Children[0] // the AndParser(rel, tail)
			args = append(args, extractChild(seq.Children[0]))
			tail := seq.Children[1] // KleeneParser
			for i := 0; i < len(tail.Children); i++ {
				pair := tail.Children[i] // AndParser(comma, rel)
				args = append(args, extractChild(pair.Children[1]))
			}
		}
		return ast.Call(srcOf(m), name, args...)
	}}

	variable := &buildNode{inner: &keywordGuard{inner: identRe}, build: func(m *packrat.Node) *ast.Node {
		return ast.Var(srcOf(m), m.Matched)
	}}

	paren := &buildNode{inner: packrat.NewAndParser(lparen, relFwd, rparen), build: func(m *packrat.Node) *ast.Node {
		return extractChild(m.Children[1])
	}}

	// abs := '|' add '|', floor := '⌊' add '⌋', ceil := '⌈' add '⌉' --
	// all three desugar straight into the matching primitive call
	// (spec.md §6's atom production, §4.3's floor/ceil/abs).
	pipe := packrat.NewAtomParser("|", false, true)
	absAtom := &buildNode{inner: packrat.NewAndParser(pipe, addFwd, pipe), build: func(m *packrat.Node) *ast.Node {
		return ast.Call(srcOf(m), "abs", extractChild(m.Children[1]))
	}}
	floorOpen := packrat.NewAtomParser("⌊", false, true)
	floorClose := packrat.NewAtomParser("⌋", false, true)
	floorAtom := &buildNode{inner: packrat.NewAndParser(floorOpen, addFwd, floorClose), build: func(m *packrat.Node) *ast.Node {
		return ast.Call(srcOf(m), "floor", extractChild(m.Children[1]))
	}}
	ceilOpen := packrat.NewAtomParser("⌈", false, true)
	ceilClose := packrat.NewAtomParser("⌉", false, true)
	ceilAtom := &buildNode{inner: packrat.NewAndParser(ceilOpen, addFwd, ceilClose), build: func(m *packrat.Node) *ast.Node {
		return ast.Call(srcOf(m), "ceil", extractChild(m.Children[1]))
	}}

	// list := '[' add (',' add)* ']', only meaningful spliced into a
	// call's argument list by the compiler (e.g. ranked_min([a,b,c])).
	lbracket := packrat.NewAtomParser("[", false, true)
	rbracket := packrat.NewAtomParser("]", false, true)
	listTail := packrat.NewKleeneParser(packrat.NewAndParser(comma, addFwd), packrat.NewEmptyParser())
	listSeq := packrat.NewAndParser(lbracket, addFwd, listTail, rbracket)
	listAtom := &buildNode{inner: listSeq, build: func(m *packrat.Node) *ast.Node {
		elems := []*ast.Node{extractChild(m.Children[1])}
		tail := m.Children[2]
		for i := 0; i < len(tail.Children); i++ {
			pair := tail.Children[i]
			elems = append(elems, extractChild(pair.Children[1]))
		}
		return ast.List(srcOf(m), elems...)
	}}

	// atom := number | funccall | var | '(' rel ')' | abs | floor | ceil | list
	atom := packrat.NewOrParser(number, funcCall, variable, paren, absAtom, floorAtom, ceilAtom, listAtom)

	// pow := atom ('^' unary)?   (right-associative, unary handles the
	// leading '-' so that -2^2 parses as -(2^2))
	caretOp := packrat.NewAtomParser("^", false, true)
	unaryFwd := &forwardParser{}
	powSeq := packrat.NewAndParser(atom, packrat.NewMaybeParser(packrat.NewAndParser(caretOp, unaryFwd)))
	pow := &buildNode{inner: powSeq, build: func(m *packrat.Node) *ast.Node {
		base := extractChild(m.Children[0])
		tail := m.Children[1]
		if len(tail.Children) == 0 {
			return base
		}
		exp := extractChild(tail.Children[0].Children[1])
		return ast.Call(srcOf(m), "pow", base, exp)
	}}

	minusOp := packrat.NewAtomParser("-", false, true)
	unarySeq := packrat.NewAndParser(packrat.NewMaybeParser(minusOp), pow)
	unary := &buildNode{inner: unarySeq, build: func(m *packrat.Node) *ast.Node {
		inner := extractChild(m.Children[1])
		if len(m.Children[0].Children) > 0 {
			return ast.Neg(srcOf(m), inner)
		}
		return inner
	}}
	unaryFwd.target = unary

	mulOp := packrat.NewOrParser(
		packrat.NewAtomParser("*", false, true),
		packrat.NewAtomParser("/", false, true),
		packrat.NewAtomParser("·", false, true), // ·
		packrat.NewAtomParser("×", false, true), // ×
		packrat.NewEmptyParser(),                // ε: implicit multiplication (spec.md §6)
	)
	mulTail := packrat.NewKleeneParser(packrat.NewAndParser(mulOp, unary), packrat.NewEmptyParser())
	mulSeq := packrat.NewAndParser(unary, mulTail)
	mulExpr := &buildNode{inner: mulSeq, build: func(m *packrat.Node) *ast.Node {
		acc := extractChild(m.Children[0])
		tail := m.Children[1]
		for i := 0; i < len(tail.Children); i++ {
			pair := tail.Children[i]
			op := pair.Children[0].Matched
			rhs := extractChild(pair.Children[1])
			name := "*"
			if op == "/" {
				name = "/"
			}
			acc = ast.Call(srcOf(pair), name, acc, rhs)
		}
		return acc
	}}

	addOp := packrat.NewOrParser(packrat.NewAtomParser("+", false, true), minusOp)
	addTail := packrat.NewKleeneParser(packrat.NewAndParser(addOp, mulExpr), packrat.NewEmptyParser())
	addSeq := packrat.NewAndParser(mulExpr, addTail)
	addExpr := &buildNode{inner: addSeq, build: func(m *packrat.Node) *ast.Node {
		acc := extractChild(m.Children[0])
		tail := m.Children[1]
		for i := 0; i < len(tail.Children); i++ {
			pair := tail.Children[i]
			op := pair.Children[0].Matched
			rhs := extractChild(pair.Children[1])
			if op == "-" {
				acc = ast.Call(srcOf(pair), "+", acc, ast.Neg(srcOf(pair), rhs))
			} else {
				acc = ast.Call(srcOf(pair), "+", acc, rhs)
			}
		}
		return acc
	}}

	cmpOp := packrat.NewOrParser(
		packrat.NewAtomParser("<=", false, true),
		packrat.NewAtomParser(">=", false, true),
		packrat.NewAtomParser("!=", false, true),
		packrat.NewAtomParser("≤", false, true), // ≤
		packrat.NewAtomParser("≥", false, true), // ≥
		packrat.NewAtomParser("≠", false, true), // ≠
		packrat.NewAtomParser("<", false, true),
		packrat.NewAtomParser(">", false, true),
		packrat.NewAtomParser("=", false, true),
	)
	// cmp := add (cmpop add)*, one buildNode per pair -- a chain
	// "a < b < c" expands to "(a<b) ∧ (b<c)" (spec.md §6), each
	// consecutive pair sharing the previous pair's right operand.
	cmpTail := packrat.NewKleeneParser(packrat.NewAndParser(cmpOp, addExpr), packrat.NewEmptyParser())
	cmpSeq := packrat.NewAndParser(addExpr, cmpTail)
	cmpExpr := &buildNode{inner: cmpSeq, build: func(m *packrat.Node) *ast.Node {
		prev := extractChild(m.Children[0])
		tail := m.Children[1]
		if len(tail.Children) == 0 {
			return prev
		}
		var terms []*ast.Node
		for i := 0; i < len(tail.Children); i++ {
			pair := tail.Children[i]
			op := normalizeCmpOp(pair.Children[0].Matched)
			rhs := extractChild(pair.Children[1])
			terms = append(terms, ast.Cmp(srcOf(pair), op, prev, rhs))
			prev = rhs
		}
		if len(terms) == 1 {
			return terms[0]
		}
		return ast.And(srcOf(m), terms...)
	}}

	notOp := packrat.NewOrParser(
		packrat.NewAtomParser("not", false, true),
		packrat.NewAtomParser("¬", false, true), // ¬
		packrat.NewAtomParser("!", false, true),
	)
	notSeq := packrat.NewAndParser(packrat.NewMaybeParser(notOp), cmpExpr)
	notExpr := &buildNode{inner: notSeq, build: func(m *packrat.Node) *ast.Node {
		inner := extractChild(m.Children[1])
		if len(m.Children[0].Children) > 0 {
			return ast.Not(srcOf(m), inner)
		}
		return inner
	}}

	andOp := packrat.NewOrParser(
		packrat.NewAtomParser("and", false, true),
		packrat.NewAtomParser("&&", false, true),
		packrat.NewAtomParser("∧", false, true), // ∧
	)
	andTail := packrat.NewKleeneParser(packrat.NewAndParser(andOp, notExpr), packrat.NewEmptyParser())
	andSeq := packrat.NewAndParser(notExpr, andTail)
	andExpr := &buildNode{inner: andSeq, build: func(m *packrat.Node) *ast.Node {
		terms := []*ast.Node{extractChild(m.Children[0])}
		tail := m.Children[1]
		for i := 0; i < len(tail.Children); i++ {
			terms = append(terms, extractChild(tail.Children[i].Children[1]))
		}
		if len(terms) == 1 {
			return terms[0]
		}
		return ast.And(srcOf(m), terms...)
	}}

	orOp := packrat.NewOrParser(
		packrat.NewAtomParser("or", false, true),
		packrat.NewAtomParser("||", false, true),
		packrat.NewAtomParser("∨", false, true), // ∨
	)
	orTail := packrat.NewKleeneParser(packrat.NewAndParser(orOp, andExpr), packrat.NewEmptyParser())
	orSeq := packrat.NewAndParser(andExpr, orTail)
	orExpr := &buildNode{inner: orSeq, build: func(m *packrat.Node) *ast.Node {
		terms := []*ast.Node{extractChild(m.Children[0])}
		tail := m.Children[1]
		for i := 0; i < len(tail.Children); i++ {
			terms = append(terms, extractChild(tail.Children[i].Children[1]))
		}
		if len(terms) == 1 {
			return terms[0]
		}
		return ast.Or(srcOf(m), terms...)
	}}

	relFwd.target = orExpr
	addFwd.target = addExpr

	return &grammar{rel: orExpr}
}

func normalizeCmpOp(op string) string {
	switch op {
	case "≤":
		return ast.OpLe
	case "≥":
		return ast.OpGe
	case "≠":
		return ast.OpNe
	default:
		return op
	}
}

// srcOf stamps a byte offset onto the node being built; the grammar
// (built once in buildGrammar and shared across every Parse call) has
// no source text of its own to resolve that offset against, so it
// defers line/column/source-name resolution to resolveSourceInfo,
// which runs once per Parse call against that call's own text --
// keeping Parse safe to call concurrently with no shared mutable
// parser state.
func srcOf(m *packrat.Node) ast.SourceInfo {
	return ast.SourceInfo{Offset: m.Start}
}

func lineCol(text string, offset int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < offset && i < len(text); i++ {
		if text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return
}

// resolveSourceInfo fills in every node's Source/Line/Col from the
// byte offset srcOf stashed during grammar matching, against this
// call's own source name and normalized text.
func resolveSourceInfo(root *ast.Node, source, text string) {
	ast.Walk(root, func(n *ast.Node) {
		line, col := lineCol(text, n.Src.Offset)
		n.Src.Source = source
		n.Src.Line = line
		n.Src.Col = col
	})
}

// Parse compiles relation source text into an ast.Node tree.
// Unicode operator glyphs (≤ ≥ ≠ ∧ ∨ ¬ · ×) are accepted directly;
// input is NFKC-normalized first so visually-identical codepoints
// collapse to the forms the grammar above matches.
func Parse(source, text string) (*ast.Node, error) {
	normalized := norm.NFKC.String(text)

	scanner := packrat.NewScanner(normalized, packrat.SkipWhitespaceAndCommentsRegex)
	node, err := packrat.Parse(g.rel, scanner)
	if err != nil {
		return nil, &ParseError{Source: source, Offset: 0, Expected: err.Error()}
	}
	root := extractChild(node)
	resolveSourceInfo(root, source, normalized)
	return root, nil
}

// MustParse is a convenience for tests and the REPL: it panics on a
// syntax error instead of returning one.
func MustParse(source, text string) *ast.Node {
	n, err := Parse(source, text)
	if err != nil {
		panic(err)
	}
	return n
}
