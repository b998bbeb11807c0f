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

import "sort"

// MaxComponents is k from spec.md §3: the maximum number of disjoint
// intervals a Set may carry before the two closest components are
// merged. Multi-branch primitives (odd-root of a negative base,
// atan2 across its cut, mod straddling zero) need more than one
// component to avoid losing the ability to prove emptiness across a
// branch cut; unbounded growth would make the evaluator's per-box
// work unbounded, hence the cap.
const MaxComponents = 8

// Set is a finite union of at most MaxComponents pairwise-disjoint,
// sorted-by-lower-endpoint intervals (invariant I2), carrying one
// decoration for the whole set.
type Set struct {
	Ivs []Interval
	Dec Decoration
}

// EmptySet is the set-valued image of nowhere: e.g. sqrt of a
// strictly-negative box.
var EmptySet = Set{Dec: Trv}

func Single(x Interval, dec Decoration) Set {
	if x.IsEmpty() {
		return Set{Dec: dec}
	}
	return Set{Ivs: []Interval{x}, Dec: dec}
}

func PointSet(v float64, dec Decoration) Set {
	return Single(Point(v), dec)
}

func (s Set) IsEmpty() bool {
	return len(s.Ivs) == 0
}

// Hull collapses a Set to its single enclosing interval, discarding
// gap information. Evaluation code uses it too (the comparison
// decision in internal/eval, rankedFn), where the lost gaps can hide
// a proof of emptiness across a branch.
func (s Set) Hull() Interval {
	if s.IsEmpty() {
		return Empty
	}
	result := s.Ivs[0]
	for _, iv := range s.Ivs[1:] {
		result = result.Union(iv)
	}
	return result
}

// Normalize sorts components, merges overlapping/touching ones, and
// then merges the two closest remaining components until at most
// MaxComponents remain -- a proved-sound loss of precision (spec.md
// §9), never of soundness: the result always still contains the
// union of the inputs.
func Normalize(dec Decoration, ivs ...Interval) Set {
	filtered := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		if !iv.IsEmpty() {
			filtered = append(filtered, iv)
		}
	}
	if len(filtered) == 0 {
		return Set{Dec: dec}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Lo < filtered[j].Lo })
	merged := filtered[:1]
	for _, iv := range filtered[1:] {
		last := &merged[len(merged)-1]
		if last.Overlaps(iv) || last.Hi == iv.Lo {
			*last = last.Union(iv)
		} else {
			merged = append(merged, iv)
		}
	}
	for len(merged) > MaxComponents {
		bestI := 0
		bestGap := merged[0].Gap(merged[1])
		for i := 1; i < len(merged)-1; i++ {
			g := merged[i].Gap(merged[i+1])
			if g < bestGap {
				bestGap = g
				bestI = i
			}
		}
		merged[bestI] = merged[bestI].Union(merged[bestI+1])
		merged = append(merged[:bestI+1], merged[bestI+2:]...)
	}
	return Set{Ivs: merged, Dec: dec}
}

// Union combines two sets, re-normalizing to at most MaxComponents
// components. The result decoration is the Meet of both inputs.
func Union(a, b Set) Set {
	all := append(append([]Interval{}, a.Ivs...), b.Ivs...)
	return Normalize(Meet(a.Dec, b.Dec), all...)
}

// Map applies f to every component independently and re-normalizes
// -- the standard shape for unary primitives that may be multivalued
// per-component (e.g. sqrt of a set already split across a domain
// boundary).
func (s Set) Map(f func(Interval) Interval) Set {
	out := make([]Interval, 0, len(s.Ivs))
	for _, iv := range s.Ivs {
		out = append(out, f(iv))
	}
	return Normalize(s.Dec, out...)
}

// Cartesian applies a binary primitive to every pair of components
// from a and b (the "Cartesian product of branches" of spec.md §4.4
// step 2), unioning the results back down to at most MaxComponents.
func Cartesian(a, b Set, dec Decoration, f func(x, y Interval) Interval) Set {
	out := make([]Interval, 0, len(a.Ivs)*len(b.Ivs))
	for _, x := range a.Ivs {
		for _, y := range b.Ivs {
			out = append(out, f(x, y))
		}
	}
	return Normalize(dec, out...)
}

// SignOf classifies the whole set relative to zero the way Interval.SignOf
// does for a single interval, used by the evaluator's 0-vs-f(B) test.
func (s Set) SignOf() int {
	if s.IsEmpty() {
		return SignZero // vacuously: no point to disagree with any sign
	}
	sign := s.Ivs[0].SignOf()
	for _, iv := range s.Ivs[1:] {
		if iv.SignOf() != sign {
			return SignStraddle
		}
	}
	return sign
}

func (s Set) ContainsZero() bool {
	for _, iv := range s.Ivs {
		if iv.ContainsZero() {
			return true
		}
	}
	return false
}
