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

// Package ast defines the expression tree the parser produces and the
// compiler consumes: relations of scalar-valued and boolean-valued
// subexpressions per spec.md §6's grammar, each node carrying the
// source position it came from for error reporting.
package ast

import "fmt"

// SourceInfo pinpoints a node's origin in the input string, the way
// the teacher's tokenizer attaches source_info to every token. Offset
// is a byte offset into the text a particular Parse call scanned; the
// parser fills it in during grammar construction (cheap, and safe to
// compute per node without touching anything Parse-call-specific).
// Source/Line/Col are derived from Offset once, in a single pass after
// parsing completes, against that call's own source name and text --
// never through shared mutable state, so concurrent Parse calls never
// interfere with each other.
type SourceInfo struct {
	Source string
	Line   int
	Col    int
	Offset int
}

func (s SourceInfo) String() string {
	return fmt.Sprintf("%s:%d:%d", s.Source, s.Line, s.Col)
}

// Kind tags what shape of node this is.
type Kind int

const (
	// scalar-valued
	KindNumber Kind = iota
	KindVar
	KindCall
	KindNeg
	KindList // "[" rel ("," rel)* "]" -- only valid spliced into a call's arguments

	// boolean/ternary-valued
	KindCmp   // x <op> y, op in {<,<=,>,>=,=,!=}
	KindAnd
	KindOr
	KindNot
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "Number"
	case KindVar:
		return "Var"
	case KindCall:
		return "Call"
	case KindNeg:
		return "Neg"
	case KindList:
		return "List"
	case KindCmp:
		return "Cmp"
	case KindAnd:
		return "And"
	case KindOr:
		return "Or"
	case KindNot:
		return "Not"
	}
	return "?"
}

// IsBoolean reports whether a node evaluates to a ternary truth value
// rather than a scalar set.
func (k Kind) IsBoolean() bool {
	return k == KindCmp || k == KindAnd || k == KindOr || k == KindNot
}

// Node is one expression tree node. Scalar nodes (Number, Var, Call,
// Neg) carry Children as their scalar operands; Cmp carries exactly
// two scalar Children and a comparison Op; And/Or carry two or more
// boolean Children; Not carries one boolean Child.
type Node struct {
	Kind     Kind
	Src      SourceInfo
	Value    float64  // KindNumber
	Name     string   // KindVar, KindCall (function name), KindCmp (operator)
	Children []*Node
}

func Number(src SourceInfo, v float64) *Node {
	return &Node{Kind: KindNumber, Src: src, Value: v}
}

func Var(src SourceInfo, name string) *Node {
	return &Node{Kind: KindVar, Src: src, Name: name}
}

func Call(src SourceInfo, name string, args ...*Node) *Node {
	return &Node{Kind: KindCall, Src: src, Name: name, Children: args}
}

func Neg(src SourceInfo, x *Node) *Node {
	return &Node{Kind: KindNeg, Src: src, Children: []*Node{x}}
}

// List is a "[a,b,c]" literal: a bracket-delimited scalar collection,
// only meaningful spliced into the argument list of a variadic call
// such as ranked_min/ranked_max (spec.md §6's atom production).
func List(src SourceInfo, elems ...*Node) *Node {
	return &Node{Kind: KindList, Src: src, Children: elems}
}

// Comparison operators recognized by spec.md §6's cmp production.
const (
	OpLt = "<"
	OpLe = "<="
	OpGt = ">"
	OpGe = ">="
	OpEq = "="
	OpNe = "!="
)

func Cmp(src SourceInfo, op string, lhs, rhs *Node) *Node {
	return &Node{Kind: KindCmp, Src: src, Name: op, Children: []*Node{lhs, rhs}}
}

func And(src SourceInfo, terms ...*Node) *Node {
	return &Node{Kind: KindAnd, Src: src, Children: terms}
}

func Or(src SourceInfo, terms ...*Node) *Node {
	return &Node{Kind: KindOr, Src: src, Children: terms}
}

func Not(src SourceInfo, x *Node) *Node {
	return &Node{Kind: KindNot, Src: src, Children: []*Node{x}}
}

// Walk visits n and every descendant, depth-first, pre-order.
func Walk(n *Node, visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// Vars collects the distinct variable names referenced under n, in
// first-occurrence order.
func Vars(n *Node) []string {
	seen := map[string]bool{}
	var out []string
	Walk(n, func(m *Node) {
		if m.Kind == KindVar && !seen[m.Name] {
			seen[m.Name] = true
			out = append(out, m.Name)
		}
	})
	return out
}

func (n *Node) String() string {
	switch n.Kind {
	case KindNumber:
		return fmt.Sprintf("%g", n.Value)
	case KindVar:
		return n.Name
	case KindNeg:
		return fmt.Sprintf("-(%s)", n.Children[0])
	case KindList:
		return fmt.Sprintf("[%s]", joinNodes(n.Children))
	case KindCall:
		return fmt.Sprintf("%s(%s)", n.Name, joinNodes(n.Children))
	case KindCmp:
		return fmt.Sprintf("(%s %s %s)", n.Children[0], n.Name, n.Children[1])
	case KindAnd:
		return fmt.Sprintf("and(%s)", joinNodes(n.Children))
	case KindOr:
		return fmt.Sprintf("or(%s)", joinNodes(n.Children))
	case KindNot:
		return fmt.Sprintf("not(%s)", n.Children[0])
	}
	return "?"
}

func joinNodes(ns []*Node) string {
	s := ""
	for i, n := range ns {
		if i > 0 {
			s += ", "
		}
		s += n.String()
	}
	return s
}
