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

package raster

import (
	"bytes"
	"sync"
	"testing"
)

func TestClearSubpixelTransitionsToEmpty(t *testing.T) {
	img := New(4, 4)
	for i := 0; i < 3; i++ {
		if !img.ClearSubpixel(1, 1, i) {
			t.Fatalf("ClearSubpixel(%d) rejected on a fresh pixel", i)
		}
		c, _ := img.Cell(1, 1)
		if c != CellUndecided {
			t.Fatalf("pixel turned %v after only %d of 4 quadrants cleared", c, i+1)
		}
	}
	if !img.ClearSubpixel(1, 1, 3) {
		t.Fatal("ClearSubpixel(3) rejected")
	}
	c, _ := img.Cell(1, 1)
	if c != CellEmpty {
		t.Fatalf("want CellEmpty after all 4 quadrants cleared, got %v", c)
	}
}

func TestMarkSolutionIsSticky(t *testing.T) {
	img := New(2, 2)
	if !img.MarkSolution(0, 0) {
		t.Fatal("first MarkSolution should succeed")
	}
	if img.ClearSubpixel(0, 0, 0) {
		t.Fatal("ClearSubpixel must not override a sticky Solution pixel")
	}
	c, _ := img.Cell(0, 0)
	if c != CellSolution {
		t.Fatalf("want CellSolution, got %v", c)
	}
}

func TestUndecidedCountAndDirtySnapshot(t *testing.T) {
	img := New(3, 1)
	if n := img.UndecidedCount(); n != 3 {
		t.Fatalf("want 3 undecided pixels initially, got %d", n)
	}
	img.MarkSolution(0, 0)
	for i := 0; i < 4; i++ {
		img.ClearSubpixel(2, 0, i)
	}
	if n := img.UndecidedCount(); n != 1 {
		t.Fatalf("want 1 undecided pixel remaining, got %d", n)
	}
	dirty := img.DirtySnapshot()
	if len(dirty) != 2 {
		t.Fatalf("want 2 dirty pixels, got %d", len(dirty))
	}
	if len(img.DirtySnapshot()) != 0 {
		t.Fatal("DirtySnapshot must drain the set")
	}
}

func TestEncodePNGProducesNonEmptyOutput(t *testing.T) {
	img := New(2, 2)
	img.MarkSolution(0, 0)
	var buf bytes.Buffer
	if err := img.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("EncodePNG wrote no bytes")
	}
}

func TestConcurrentClearSubpixelIsRaceFree(t *testing.T) {
	img := New(1, 1)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			img.ClearSubpixel(0, 0, i)
		}()
	}
	wg.Wait()
	c, _ := img.Cell(0, 0)
	if c != CellEmpty {
		t.Fatalf("want CellEmpty after all quadrants cleared concurrently, got %v", c)
	}
}
