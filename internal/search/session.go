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

package search

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mizuno-gsinet/inari-graph/internal/eval"
	"github.com/mizuno-gsinet/inari-graph/internal/interval"
	"github.com/mizuno-gsinet/inari-graph/internal/raster"
	"github.com/mizuno-gsinet/inari-graph/internal/relprog"
	"github.com/mizuno-gsinet/inari-graph/internal/sink"
	"github.com/mizuno-gsinet/inari-graph/internal/ternary"
)

// PublishBatch is spec.md §4.5's N: after this many popped work items
// the current buffer is republished.
const PublishBatch = 10_000

// Config mirrors spec.md §6's engine-API Config, the plot() argument.
type Config struct {
	Bounds   [4]float64 // x0, x1, y0, y1
	Width    int
	Height   int
	Polar    bool
	MaxLevel int
	Deadline time.Duration // 0 means no deadline
	Sink     sink.Sink
	Snapshot sink.SnapshotBackend // nil disables periodic checkpointing
	Workers  int                  // 0 lets Pool pick runtime.NumCPU()
}

// Progress is spec.md §6's Session.step() return value.
type Progress struct {
	DonePixels  int
	TotalPixels int
	Elapsed     time.Duration
	Undecided   int
}

// Session is the Plotter-boundary implementation of spec.md §6's
// Session: it owns one raster.Image3 for its lifetime, drives one
// search.Pool over it, and publishes through Config.Sink every
// PublishBatch popped items.
type Session struct {
	ID      string
	program *relprog.Program
	cfg     Config
	img     *raster.Image3
	pool    *Pool
	start   time.Time

	published atomic.Int64 // items processed as of the last publish
	seq       int
	deadline  time.Time
}

// Plot compiles nothing itself (compile.Compile already ran); it
// seeds the search from program and Config and starts the worker
// pool running in the background. The returned Session is ready for
// Step/Cancel/Image immediately, matching spec.md §6's "plot(program,
// Config) -> Session" (never a hard error once compilation already
// succeeded -- an unplottable program is a TypeError raised earlier).
func Plot(program *relprog.Program, cfg Config) *Session {
	if cfg.Sink == nil {
		cfg.Sink = sink.NopSink{}
	}
	if cfg.MaxLevel <= 0 {
		cfg.MaxLevel = 15
	}
	s := &Session{
		ID:      uuid.NewString(),
		program: program,
		cfg:     cfg,
		img:     raster.New(cfg.Width, cfg.Height),
		start:   time.Now(),
	}
	if cfg.Deadline > 0 {
		s.deadline = s.start.Add(cfg.Deadline)
	}
	if cfg.Polar != (program.Mode == relprog.Polar) {
		log.Printf("session %s: --polar=%v but the relation's own register usage says otherwise; trusting the relation", s.ID, cfg.Polar)
	}
	s.pool = NewPool(cfg.Workers, s.handleItem)
	s.pool.Seed(s.seedItems())
	s.pool.Start(s.onItemDone)
	return s
}

// pixelBox computes the world-coordinate box of pixel (px, py) at
// level 0, honoring spec.md §4.5's half-open tie-breaking convention:
// a pixel owns its lower edges, and the rightmost/topmost pixel also
// owns the image's outer upper edge.
func (s *Session) pixelBox(px, py int) Box {
	x0, x1, y0, y1 := s.cfg.Bounds[0], s.cfg.Bounds[1], s.cfg.Bounds[2], s.cfg.Bounds[3]
	dx := (x1 - x0) / float64(s.cfg.Width)
	dy := (y1 - y0) / float64(s.cfg.Height)
	lo := x0 + float64(px)*dx
	hi := x0 + float64(px+1)*dx
	if px == s.cfg.Width-1 {
		hi = x1
	}
	// image row 0 is the top of the picture; world y grows upward.
	yhi := y1 - float64(py)*dy
	ylo := y1 - float64(py+1)*dy
	if py == s.cfg.Height-1 {
		ylo = y0
	}
	return Box{
		X: interval.Interval{Lo: lo, Hi: hi},
		Y: interval.Interval{Lo: ylo, Hi: yhi},
	}
}

// subBox narrows a pixel's box to one of its four level-1 subpixel
// quadrants, indexed the same way Box.Bisect orders its four
// children: 0 bottom-left, 1 bottom-right, 2 top-left, 3 top-right.
func subBox(b Box, quadrant int) Box {
	children := b.Bisect()
	return children[quadrant]
}

func (s *Session) seedItems() []workItem {
	items := make([]workItem, 0, s.cfg.Width*s.cfg.Height*4)
	for py := 0; py < s.cfg.Height; py++ {
		for px := 0; px < s.cfg.Width; px++ {
			pixel := s.pixelBox(px, py)
			for q := 0; q < 4; q++ {
				items = append(items, workItem{
					Box:      subBox(pixel, q),
					PixelX:   px,
					PixelY:   py,
					SubIndex: q,
					Level:    1,
				})
			}
		}
	}
	return items
}

// handleItem implements spec.md §4.5's per-item loop body: evaluate,
// then act on TT/FF/UU.
func (s *Session) handleItem(item workItem, push func(workItem)) {
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		return
	}
	finest := item.Level >= s.cfg.MaxLevel
	result := eval.Evaluate(s.program, item.Box, finest)
	switch result {
	case ternary.TT, ternary.TF:
		s.img.MarkSolution(item.PixelX, item.PixelY)
	case ternary.FF:
		// only a level-1 item covers its whole quadrant; an FF on a
		// deeper child says nothing about that child's siblings
		if item.Level == 1 {
			s.img.ClearSubpixel(item.PixelX, item.PixelY, item.SubIndex)
		}
	case ternary.UU:
		if finest {
			return // permanently undecided at this resolution
		}
		for _, child := range item.Box.Bisect() {
			push(workItem{
				Box:      child,
				PixelX:   item.PixelX,
				PixelY:   item.PixelY,
				SubIndex: item.SubIndex,
				Level:    item.Level + 1,
			})
		}
	}
}

func (s *Session) onItemDone() {
	n := s.published.Add(1)
	if n%PublishBatch == 0 {
		s.publish(false)
	}
}

func (s *Session) publish(final bool) {
	s.cfg.Sink.Publish(s.img)
	if s.cfg.Snapshot == nil {
		return
	}
	var buf pngBuffer
	if err := s.img.EncodePNG(&buf); err != nil {
		return
	}
	s.seq++
	if final {
		if s.img.UndecidedCount() > 0 {
			s.cfg.Snapshot.WriteFinal(s.ID, buf.Bytes())
		}
		return
	}
	s.cfg.Snapshot.WriteInterim(s.ID, s.seq, buf.Bytes())
}

// pngBuffer is a minimal bytes.Buffer stand-in kept local to this
// file so session.go doesn't need to import bytes just for one
// io.Writer implementation.
type pngBuffer struct {
	data []byte
}

func (b *pngBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *pngBuffer) Bytes() []byte { return b.data }

// Step reports current progress; it does not block waiting for more
// work (the pool already runs in its own goroutines started by Plot).
func (s *Session) Step() Progress {
	total := s.cfg.Width * s.cfg.Height
	undecided := s.img.UndecidedCount()
	return Progress{
		DonePixels:  total - undecided,
		TotalPixels: total,
		Elapsed:     time.Since(s.start),
		Undecided:   undecided,
	}
}

// Cancel requests cooperative shutdown per spec.md §5; surviving
// pixels retain their last ternary state.
func (s *Session) Cancel() {
	s.pool.Cancel()
}

// Wait blocks until every worker has exited (queue drained or
// cancelled), then performs the final publish. It returns
// *BudgetExceeded (spec.md §7: non-fatal) if the session was cancelled
// or ran past its deadline with pixels still undecided, nil otherwise
// (including a run that finished with pixels undecided at MaxLevel).
func (s *Session) Wait() error {
	s.pool.Wait()
	s.publish(true)
	budgetHit := s.pool.Cancelled() || (!s.deadline.IsZero() && time.Now().After(s.deadline))
	if n := s.img.UndecidedCount(); n > 0 && budgetHit {
		return &BudgetExceeded{SessionID: s.ID, UndecidedPixels: n, Elapsed: time.Since(s.start).Seconds()}
	}
	return nil
}

// Image returns the live buffer; callers must not mutate it.
func (s *Session) Image() *raster.Image3 { return s.img }
