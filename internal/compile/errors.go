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
	"fmt"

	"github.com/mizuno-gsinet/inari-graph/internal/ast"
)

// TypeError reports a scalar/boolean mismatch or a Cartesian/polar
// register mix, per spec.md §7.
type TypeError struct {
	Src ast.SourceInfo
	Msg string
}

func (e *TypeError) Error() string { return fmt.Sprintf("%s: type error: %s", e.Src, e.Msg) }

// DomainError reports a statically-detectable partial-application
// misuse (spec.md §7): non-exact `a` to Γ(a,·), non-half-integer `n`
// to J(n,·)/Y(n,·)/I(n,·)/K(n,·).
type DomainError struct {
	Src ast.SourceInfo
	Msg string
}

func (e *DomainError) Error() string { return fmt.Sprintf("%s: domain error: %s", e.Src, e.Msg) }
