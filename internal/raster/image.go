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

// Package raster holds the search's one piece of shared mutable state
// (spec.md §5): a W x H buffer of three-state pixels with a bounded
// undecided-subpixel bitmap each, and a dirty-set of pixels that
// reached a terminal state since the last DirtySnapshot call.
package raster

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/btree"
)

// Cell is one pixel's ternary classification (spec.md §3's "Image
// cell"). Processing is a transient UI-only state, never persisted.
type Cell uint32

const (
	CellUndecided Cell = iota
	CellSolution
	CellEmpty
	CellProcessing
)

// Bitmap tracks which of a pixel's undecided subpixel quadrants (the
// 2x2 grid of level-1 boxes; deeper levels have no bits of their own)
// remain live. Bit i is set while quadrant i is still
// undecided; the pixel as a whole is Undecided as long as any bit is
// set.
type Bitmap uint8

const fullBitmap Bitmap = 0b1111

func (b Bitmap) ClearBit(i int) Bitmap { return b &^ (1 << uint(i)) }
func (b Bitmap) TestBit(i int) bool    { return b&(1<<uint(i)) != 0 }
func (b Bitmap) IsEmpty() bool         { return b == 0 }

// packedCell packs Cell and Bitmap into one atomic word so a pixel's
// state transition (I3: Undecided -> {Solution, Empty}, sticky) is a
// single CAS, never partially observable.
type packedCell uint32

func pack(c Cell, b Bitmap) packedCell {
	return packedCell(uint32(c)<<8 | uint32(b))
}

func (p packedCell) cell() Cell     { return Cell(p >> 8) }
func (p packedCell) bitmap() Bitmap { return Bitmap(p & 0xff) }

// pixelKey orders pixels row-major for the dirty btree.
type pixelKey struct {
	X, Y int
}

func lessPixelKey(a, b pixelKey) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// Image3 is the shared buffer every search worker mutates
// concurrently. Reads/writes to individual pixels are lock-free (CAS
// loop). Only the dirty set is guarded by a mutex, taken for each
// dirty mark and for DirtySnapshot's drain; EncodePNG reads the pixels
// atomically without any lock.
type Image3 struct {
	W, H  int
	cells []atomic.Uint32

	dirtyMu sync.Mutex
	dirty   *btree.BTreeG[pixelKey]
}

// New allocates a W x H buffer with every pixel Undecided and all
// four subpixel quadrants live.
func New(w, h int) *Image3 {
	img := &Image3{
		W:     w,
		H:     h,
		cells: make([]atomic.Uint32, w*h),
		dirty: btree.NewG[pixelKey](32, lessPixelKey),
	}
	initial := uint32(pack(CellUndecided, fullBitmap))
	for i := range img.cells {
		img.cells[i].Store(initial)
	}
	return img
}

func (img *Image3) index(x, y int) int { return y*img.W + x }

// Cell reads the current state of pixel (x, y).
func (img *Image3) Cell(x, y int) (Cell, Bitmap) {
	p := packedCell(img.cells[img.index(x, y)].Load())
	return p.cell(), p.bitmap()
}

// ClearSubpixel drops quadrant i of pixel (x, y)'s undecided mask
// (search step 4, an FF result). If the mask becomes empty the pixel
// transitions to Empty. Returns false if the pixel had already
// reached a sticky terminal state (I3) -- the caller should simply
// drop the stale result.
func (img *Image3) ClearSubpixel(x, y, i int) bool {
	idx := img.index(x, y)
	for {
		old := img.cells[idx].Load()
		p := packedCell(old)
		if c := p.cell(); c != CellUndecided && c != CellProcessing {
			return false
		}
		nb := p.bitmap().ClearBit(i)
		nc := CellUndecided
		if nb.IsEmpty() {
			nc = CellEmpty
		}
		next := uint32(pack(nc, nb))
		if img.cells[idx].CompareAndSwap(old, next) {
			if nc != CellUndecided {
				img.markDirty(x, y)
			}
			return true
		}
	}
}

// MarkSolution transitions pixel (x, y) to Solution (search step 3, a
// TT result on any subpixel). Sticky: a pixel already at a terminal
// state is left alone.
func (img *Image3) MarkSolution(x, y int) bool {
	idx := img.index(x, y)
	for {
		old := img.cells[idx].Load()
		p := packedCell(old)
		if c := p.cell(); c != CellUndecided && c != CellProcessing {
			return false
		}
		next := uint32(pack(CellSolution, 0))
		if img.cells[idx].CompareAndSwap(old, next) {
			img.markDirty(x, y)
			return true
		}
	}
}

// MarkProcessing sets the transient UI-only Processing state without
// disturbing the bitmap, used only by --serve's live view; it never
// participates in I3 since it isn't sticky and is overwritten by the
// next real transition.
func (img *Image3) MarkProcessing(x, y int) {
	idx := img.index(x, y)
	old := img.cells[idx].Load()
	p := packedCell(old)
	if p.cell() != CellUndecided {
		return
	}
	img.cells[idx].CompareAndSwap(old, uint32(pack(CellProcessing, p.bitmap())))
}

func (img *Image3) markDirty(x, y int) {
	img.dirtyMu.Lock()
	img.dirty.ReplaceOrInsert(pixelKey{X: x, Y: y})
	img.dirtyMu.Unlock()
}

// UndecidedCount scans the buffer and counts pixels still Undecided
// or Processing, used for the final Progress report and BudgetExceeded
// completion.
func (img *Image3) UndecidedCount() int {
	n := 0
	for i := range img.cells {
		c := packedCell(img.cells[i].Load()).cell()
		if c == CellUndecided || c == CellProcessing {
			n++
		}
	}
	return n
}

// DirtySnapshot drains the dirty set in row-major order and clears it,
// for a sink to publish only what changed since the last call.
func (img *Image3) DirtySnapshot() []pixelKey {
	img.dirtyMu.Lock()
	defer img.dirtyMu.Unlock()
	out := make([]pixelKey, 0, img.dirty.Len())
	img.dirty.Ascend(func(k pixelKey) bool {
		out = append(out, k)
		return true
	})
	img.dirty.Clear(false)
	return out
}

// EncodePNG renders the buffer per spec.md §6's Image3 mapping:
// Solution -> black, Empty -> white, Undecided/Processing -> blue.
func (img *Image3) EncodePNG(w io.Writer) error {
	rgba := image.NewRGBA(image.Rect(0, 0, img.W, img.H))
	for y := 0; y < img.H; y++ {
		for x := 0; x < img.W; x++ {
			c, _ := img.Cell(x, y)
			rgba.Set(x, y, cellColor(c))
		}
	}
	return png.Encode(w, rgba)
}

func cellColor(c Cell) color.Color {
	switch c {
	case CellSolution:
		return color.Black
	case CellEmpty:
		return color.White
	default:
		return color.RGBA{R: 0x20, G: 0x40, B: 0xff, A: 0xff}
	}
}
