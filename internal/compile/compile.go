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

// Package compile walks an ast.Node into a relprog.Program: type
// check, constant fold, common-subexpression-eliminate, canonicalize
// and domain-annotate, in one pass the way scm.Optimize walks Scheme
// forms with a threaded memo table (scm/optimizer.go).
package compile

import (
	"fmt"
	"math"

	"github.com/mizuno-gsinet/inari-graph/internal/ast"
	"github.com/mizuno-gsinet/inari-graph/internal/interval"
	"github.com/mizuno-gsinet/inari-graph/internal/relprog"
)

type compiler struct {
	instrs   []relprog.Instruction
	scalarN  int
	boolN    int
	memo     map[string]relprog.Register
	folded   map[relprog.Register]interval.Set
	inputs   map[string]relprog.Register
	cartesian bool
	polar     bool
}

func newCompiler() *compiler {
	return &compiler{
		memo:   map[string]relprog.Register{},
		folded: map[relprog.Register]interval.Set{},
		inputs: map[string]relprog.Register{},
	}
}

func (c *compiler) emit(ins relprog.Instruction, key string) relprog.Register {
	if key != "" {
		if r, ok := c.memo[key]; ok {
			return r
		}
	}
	var reg relprog.Register
	if ins.Out.Kind == relprog.Boolean {
		reg = relprog.Register{Kind: relprog.Boolean, Index: c.boolN}
		c.boolN++
	} else {
		reg = relprog.Register{Kind: relprog.Scalar, Index: c.scalarN}
		c.scalarN++
	}
	ins.Out = reg
	c.instrs = append(c.instrs, ins)
	if key != "" {
		c.memo[key] = reg
	}
	return reg
}

func (c *compiler) emitConst(s interval.Set) relprog.Register {
	key := fmt.Sprintf("const:%v:%d", s.Ivs, s.Dec)
	reg := c.emit(relprog.Instruction{Op: relprog.OpConst, Out: relprog.Register{Kind: relprog.Scalar}, Const: s}, key)
	c.folded[reg] = s
	return reg
}

// emitCall looks up name in the primitive registry, applies constant
// folding when every argument is itself a compile-time constant
// (spec.md §4.2's "any subtree with no free variables"), otherwise
// emits an OpCall instruction with the domain-annotation Restricted
// flag copied from the registry entry.
func (c *compiler) emitCall(src ast.SourceInfo, name string, args ...relprog.Register) (relprog.Register, error) {
	decl, ok := interval.Lookup(name)
	if !ok {
		return relprog.Register{}, &TypeError{Src: src, Msg: "unknown function " + name}
	}
	if len(args) < decl.MinArity || (decl.MaxArity > 0 && len(args) > decl.MaxArity) {
		return relprog.Register{}, &TypeError{Src: src, Msg: fmt.Sprintf("%s expects %d-%d arguments, got %d", name, decl.MinArity, decl.MaxArity, len(args))}
	}
	if err := checkStaticDomain(src, name, args, c.folded); err != nil {
		return relprog.Register{}, err
	}
	allConst := decl.Foldable
	sets := make([]interval.Set, len(args))
	for i, a := range args {
		s, ok := c.folded[a]
		if !ok {
			allConst = false
		}
		sets[i] = s
	}
	if allConst {
		return c.emitConst(decl.Fn(sets...)), nil
	}
	key := "call:" + name + ":" + argKey(args)
	reg := c.emit(relprog.Instruction{
		Op: relprog.OpCall, Out: relprog.Register{Kind: relprog.Scalar},
		Name: name, Args: args, Restricted: decl.Restricted,
	}, key)
	return reg, nil
}

func argKey(args []relprog.Register) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%d:%d", a.Kind, a.Index)
	}
	return s
}

func isExactPoint(s interval.Set) bool {
	return len(s.Ivs) == 1 && s.Ivs[0].Lo == s.Ivs[0].Hi
}

// checkStaticDomain implements spec.md §7's static DomainError checks
// for the two primitives whose argument shape is only sound over a
// restricted class of compile-time-known values: Γ(a,x) requires an
// exact a, and the Bessel family requires an integer-or-half-integer
// order. Both checks are necessarily best-effort: if the argument is
// not itself a compile-time constant, the check is deferred to the
// runtime per-box degrade to Trv already implemented in
// internal/interval's ops_special.go.
func checkStaticDomain(src ast.SourceInfo, name string, args []relprog.Register, folded map[relprog.Register]interval.Set) error {
	switch name {
	case "gamma_inc":
		if s, ok := folded[args[0]]; ok && !isExactPoint(s) {
			return &DomainError{Src: src, Msg: "gamma_inc(a,x) requires an exact a"}
		}
	case "J", "Y", "I", "K":
		if s, ok := folded[args[0]]; ok {
			if !isExactPoint(s) || math.Mod(s.Ivs[0].Lo*2, 1) != 0 {
				return &DomainError{Src: src, Msg: name + "(n,x) requires n to be an integer or half-integer"}
			}
		}
	}
	return nil
}

var mathConsts = map[string]float64{
	"pi": math.Pi, "π": math.Pi,
	"e": math.E,
	"gamma": 0.5772156649015328606, "γ": 0.5772156649015328606,
}

func (c *compiler) compileVar(n *ast.Node) (relprog.Register, error) {
	if v, ok := mathConsts[n.Name]; ok {
		return c.emitConst(interval.PointSet(v, interval.Com)), nil
	}
	canonical := n.Name
	switch n.Name {
	case "theta", "θ":
		canonical = "theta"
		c.polar = true
	case "r":
		c.polar = true
	case "x", "y":
		c.cartesian = true
	default:
		return relprog.Register{}, &TypeError{Src: n.Src, Msg: "unknown identifier " + n.Name}
	}
	if reg, ok := c.inputs[canonical]; ok {
		return reg, nil
	}
	reg := c.emit(relprog.Instruction{Op: relprog.OpInput, Out: relprog.Register{Kind: relprog.Scalar}, Name: canonical}, "")
	c.inputs[canonical] = reg
	return reg, nil
}

// compilePow implements the canonicalization of spec.md §4.2: integer
// literal exponents with |n| <= 32 expand into repeated multiplication
// (n = 0 gives 1, negative n gives 1/x^|n|); an exponent written as an
// integer literal over an integer literal, m/n, lowers to
// root_n(pow_m(base)) for negative-base semantics (spec.md §6, §8's
// boundary case (−1)^(1/3) = −1) without reducing the fraction first;
// everything else falls through to the general runtime "pow" primitive.
func (c *compiler) compilePow(n *ast.Node) (relprog.Register, error) {
	base, exp := n.Children[0], n.Children[1]
	if exp.Kind == ast.KindNumber && exp.Value == math.Trunc(exp.Value) && math.Abs(exp.Value) <= 32 {
		iv := int64(exp.Value)
		baseReg, err := c.compileScalar(base)
		if err != nil {
			return relprog.Register{}, err
		}
		return c.compileIntPow(n.Src, baseReg, iv)
	}
	if exp.Kind == ast.KindCall && exp.Name == "/" && len(exp.Children) == 2 &&
		exp.Children[0].Kind == ast.KindNumber && exp.Children[1].Kind == ast.KindNumber &&
		exp.Children[0].Value == math.Trunc(exp.Children[0].Value) &&
		exp.Children[1].Value == math.Trunc(exp.Children[1].Value) {
		m := exp.Children[0]
		nn := exp.Children[1]
		podPow := ast.Call(n.Src, "pow", base, m)
		rootNode := ast.Call(n.Src, "root", nn, podPow)
		return c.compileScalar(rootNode)
	}
	baseReg, err := c.compileScalar(base)
	if err != nil {
		return relprog.Register{}, err
	}
	expReg, err := c.compileScalar(exp)
	if err != nil {
		return relprog.Register{}, err
	}
	return c.emitCall(n.Src, "pow", baseReg, expReg)
}

func (c *compiler) compileIntPow(src ast.SourceInfo, baseReg relprog.Register, n int64) (relprog.Register, error) {
	if n == 0 {
		return c.emitConst(interval.PointSet(1, interval.Com)), nil
	}
	if n < 0 {
		pos, err := c.compileIntPow(src, baseReg, -n)
		if err != nil {
			return relprog.Register{}, err
		}
		one := c.emitConst(interval.PointSet(1, interval.Com))
		return c.emitCall(src, "/", one, pos)
	}
	acc := baseReg
	for i := int64(1); i < n; i++ {
		var err error
		acc, err = c.emitCall(src, "*", acc, baseReg)
		if err != nil {
			return relprog.Register{}, err
		}
	}
	return acc, nil
}

// compileCallArgs compiles a call's argument list, splicing any
// "[a,b,c]" list-literal argument into individual scalar arguments in
// place (spec.md §6's atom production; ranked_min/ranked_max are the
// primitives this is for, e.g. ranked_min([a,b,c]) == ranked_min(a,b,c)).
func (c *compiler) compileCallArgs(children []*ast.Node) ([]relprog.Register, error) {
	var args []relprog.Register
	for _, ch := range children {
		if ch.Kind == ast.KindList {
			for _, elem := range ch.Children {
				r, err := c.compileScalar(elem)
				if err != nil {
					return nil, err
				}
				args = append(args, r)
			}
			continue
		}
		r, err := c.compileScalar(ch)
		if err != nil {
			return nil, err
		}
		args = append(args, r)
	}
	return args, nil
}

func (c *compiler) compileScalar(n *ast.Node) (relprog.Register, error) {
	switch n.Kind {
	case ast.KindNumber:
		return c.emitConst(interval.PointSet(n.Value, interval.Com)), nil
	case ast.KindVar:
		return c.compileVar(n)
	case ast.KindNeg:
		x, err := c.compileScalar(n.Children[0])
		if err != nil {
			return relprog.Register{}, err
		}
		return c.emitCall(n.Src, "neg", x)
	case ast.KindCall:
		if n.Name == "pow" && len(n.Children) == 2 {
			return c.compilePow(n)
		}
		args, err := c.compileCallArgs(n.Children)
		if err != nil {
			return relprog.Register{}, err
		}
		return c.emitCall(n.Src, n.Name, args...)
	case ast.KindList:
		return relprog.Register{}, &TypeError{Src: n.Src, Msg: "a list literal is only valid as a function argument, e.g. ranked_min([a,b,c])"}
	default:
		return relprog.Register{}, &TypeError{Src: n.Src, Msg: "expected a scalar expression, got a boolean-valued " + n.Kind.String()}
	}
}

func (c *compiler) compileBool(n *ast.Node) (relprog.Register, error) {
	switch n.Kind {
	case ast.KindCmp:
		lhs, err := c.compileScalar(n.Children[0])
		if err != nil {
			return relprog.Register{}, err
		}
		rhs, err := c.compileScalar(n.Children[1])
		if err != nil {
			return relprog.Register{}, err
		}
		key := fmt.Sprintf("cmp:%s:%d:%d", n.Name, lhs.Index, rhs.Index)
		return c.emit(relprog.Instruction{Op: relprog.OpCmp, Out: relprog.Register{Kind: relprog.Boolean}, Name: n.Name, Args: []relprog.Register{lhs, rhs}}, key), nil
	case ast.KindAnd:
		args, err := c.compileBoolArgs(n.Children)
		if err != nil {
			return relprog.Register{}, err
		}
		key := "and:" + argKey(args)
		return c.emit(relprog.Instruction{Op: relprog.OpAnd, Out: relprog.Register{Kind: relprog.Boolean}, Args: args}, key), nil
	case ast.KindOr:
		args, err := c.compileBoolArgs(n.Children)
		if err != nil {
			return relprog.Register{}, err
		}
		key := "or:" + argKey(args)
		return c.emit(relprog.Instruction{Op: relprog.OpOr, Out: relprog.Register{Kind: relprog.Boolean}, Args: args}, key), nil
	case ast.KindNot:
		x, err := c.compileBool(n.Children[0])
		if err != nil {
			return relprog.Register{}, err
		}
		key := "not:" + argKey([]relprog.Register{x})
		return c.emit(relprog.Instruction{Op: relprog.OpNot, Out: relprog.Register{Kind: relprog.Boolean}, Args: []relprog.Register{x}}, key), nil
	default:
		return relprog.Register{}, &TypeError{Src: n.Src, Msg: "expected a relation (comparison/and/or/not), got a scalar-valued " + n.Kind.String()}
	}
}

func (c *compiler) compileBoolArgs(children []*ast.Node) ([]relprog.Register, error) {
	args := make([]relprog.Register, len(children))
	for i, ch := range children {
		r, err := c.compileBool(ch)
		if err != nil {
			return nil, err
		}
		args[i] = r
	}
	return args, nil
}

// Compile turns a parsed relation into a linear relprog.Program.
func Compile(root *ast.Node) (*relprog.Program, error) {
	c := newCompiler()
	result, err := c.compileBool(root)
	if err != nil {
		return nil, err
	}
	if c.cartesian && c.polar {
		return nil, &TypeError{Src: root.Src, Msg: "relation mixes Cartesian (x,y) and polar (r,theta) inputs"}
	}
	mode := relprog.Cartesian
	if c.polar {
		mode = relprog.Polar
	}
	var vars []string
	for _, ins := range c.instrs {
		if ins.Op == relprog.OpInput {
			vars = append(vars, ins.Name)
		}
	}
	return &relprog.Program{
		Instructions: c.instrs,
		ScalarRegs:   c.scalarN,
		BoolRegs:     c.boolN,
		Mode:         mode,
		Result:       result,
		Vars:         vars,
	}, nil
}
