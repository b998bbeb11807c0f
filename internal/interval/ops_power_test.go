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

import "testing"

// A non-integer exponent forces powFn through generalPow, whose sound
// image must cover the box's mixed corners, not just the (Lo,Lo)/
// (Hi,Hi) diagonal: pow(x,n) for x in [0.1,0.9], n in [1,1.5] peaks at
// (0.9,1) and bottoms out at (0.1,1.5).
func TestGeneralPowCoversMixedCorners(t *testing.T) {
	x := Single(Interval{0.1, 0.9}, Com)
	n := Single(Interval{1, 1.5}, Com)
	out := powFn(x, n)
	if out.IsEmpty() {
		t.Fatal("expected a non-empty image")
	}
	hull := out.Hull()
	if !hull.Contains(0.9) {
		t.Fatalf("image %v does not contain the corner (0.9,1)=0.9", hull)
	}
	if !hull.Contains(0.1) || hull.Lo > 0.1 {
		t.Fatalf("image %v does not bound the corner (0.1,1)=0.1", hull)
	}
}

func TestGeneralPowDiagonalOnlyWouldMissTheRoot(t *testing.T) {
	// pow(y,x) = 0.02 over y in [0.1,0.9], x in [1,2]: the true image
	// contains 0.02 (near the (0.1,2) corner), which a 2-corner
	// evaluation of Hull(pow(0.1,1), pow(0.9,2)) = [0.1,0.81] misses
	// entirely -- exactly the false-empty scenario this fix closes.
	x := Single(Interval{0.1, 0.9}, Com)
	n := Single(Interval{1, 2}, Com)
	out := powFn(x, n)
	hull := out.Hull()
	if !hull.Contains(0.02) {
		t.Fatalf("image %v unsoundly excludes 0.02, a real solution in the box", hull)
	}
}

func TestGeneralPowMonotoneAboveOne(t *testing.T) {
	x := Single(Interval{2, 3}, Com)
	n := Single(Interval{1, 2}, Com)
	out := powFn(x, n)
	hull := out.Hull()
	if hull.Lo > 2 || hull.Hi < 9 {
		t.Fatalf("expected image to span [2,9], got %v", hull)
	}
}
