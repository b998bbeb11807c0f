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

import (
	"fmt"
	"sort"
	"strings"
)

// Fn is a primitive's set-valued implementation: given operand sets
// (already outward-rounded), it returns the outward-rounded image as a
// Set whose Dec records how well-defined the operation was on the
// input. The static restricted-domain flag is Declaration.Restricted.
type Fn func(args ...Set) Set

// DeclarationParameter documents one formal parameter, mirroring the
// teacher's scm.DeclarationParameter shape.
type DeclarationParameter struct {
	Name string
	Desc string
}

// Declaration registers one primitive of spec.md §4.3: its arity,
// documentation, whether it is safe to constant-fold, and whether it
// is a restricted-domain (partial) operation.
type Declaration struct {
	Name         string
	Desc         string
	MinArity     int
	MaxArity     int
	Params       []DeclarationParameter
	Foldable     bool
	Restricted   bool // partial operation: sqrt, log, tan, division, mod, rational pow, ...
	Fn           Fn
}

var chapterTitles []string
var chapterOf = map[string]string{}
var declarations = map[string]*Declaration{}
var currentChapter string

// DeclareTitle opens a new documentation chapter; subsequent Declare
// calls are filed under it until the next DeclareTitle, exactly as
// scm.DeclareTitle groups the Scheme standard library.
func DeclareTitle(title string) {
	chapterTitles = append(chapterTitles, title)
	currentChapter = title
}

// Declare registers a primitive under the current chapter.
func Declare(d *Declaration) {
	chapterOf[d.Name] = currentChapter
	declarations[d.Name] = d
}

// Lookup finds a primitive by name, matched exactly as spelled in the
// relation. There is no alias table: a glyph spelling such as Γ or ψ
// is not mapped to gamma or digamma and is not found.
func Lookup(name string) (*Declaration, bool) {
	d, ok := declarations[name]
	return d, ok
}

// Help renders the documentation for one primitive, or for every
// primitive grouped by chapter when name is empty -- the engine's
// introspection surface, grounded on the teacher's declare.go/
// printer.go generated-docs traversal.
func Help(name string) string {
	if name != "" {
		d, ok := declarations[name]
		if !ok {
			return "no such function: " + name
		}
		return helpOne(d)
	}
	var b strings.Builder
	for _, chapter := range chapterTitles {
		var names []string
		for n, c := range chapterOf {
			if c == chapter {
				names = append(names, n)
			}
		}
		if len(names) == 0 {
			continue
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "# %s\n\n", chapter)
		for _, n := range names {
			b.WriteString(helpOne(declarations[n]))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func helpOne(d *Declaration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(", d.Name)
	for i, p := range d.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
	}
	fmt.Fprintf(&b, ") -- %s\n", d.Desc)
	for _, p := range d.Params {
		fmt.Fprintf(&b, "    %s: %s\n", p.Name, p.Desc)
	}
	return b.String()
}
