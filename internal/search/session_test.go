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
	"testing"
	"time"

	"github.com/mizuno-gsinet/inari-graph/internal/compile"
	"github.com/mizuno-gsinet/inari-graph/internal/parse"
	"github.com/mizuno-gsinet/inari-graph/internal/relprog"
	"github.com/mizuno-gsinet/inari-graph/internal/sink"
)

func compileRelation(t *testing.T, src string) *relprog.Program {
	t.Helper()
	n, err := parse.Parse("test", src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	prog, err := compile.Compile(n)
	if err != nil {
		t.Fatalf("compile %q: %v", src, err)
	}
	return prog
}

func TestPlotUnambiguousCircleLeavesNoUndecidedPixels(t *testing.T) {
	prog := compileRelation(t, "x^2 + y^2 <= 1")
	cfg := Config{
		Bounds:   [4]float64{-3, 3, -3, 3},
		Width:    8,
		Height:   8,
		MaxLevel: 6,
		Sink:     sink.NopSink{},
		Workers:  2,
	}
	s := Plot(prog, cfg)
	waitDone(t, s)
	if got := s.Image().UndecidedCount(); got != 0 {
		t.Errorf("want every pixel decided away from the boundary at this resolution mix, got %d undecided", got)
	}
	if s.Step().DonePixels == 0 {
		t.Error("want Step().DonePixels > 0 after Wait")
	}
}

func TestPlotCancelStopsBeforeFullCompletion(t *testing.T) {
	prog := compileRelation(t, "x^2 + y^2 <= 1")
	cfg := Config{
		Bounds:   [4]float64{-3, 3, -3, 3},
		Width:    64,
		Height:   64,
		MaxLevel: 20,
		Sink:     sink.NopSink{},
		Workers:  4,
	}
	s := Plot(prog, cfg)
	s.Cancel()
	waitDone(t, s)
	// no correctness assertion beyond "it returns promptly" -- cancellation
	// only guarantees the pool stops, not any particular pixel count.
}

func TestPixelBoxHonorsHalfOpenTieBreak(t *testing.T) {
	s := &Session{cfg: Config{Bounds: [4]float64{0, 4, 0, 4}, Width: 4, Height: 4}}
	first := s.pixelBox(0, 3) // bottom-left pixel in world coordinates
	if first.X.Lo != 0 || first.X.Hi != 1 {
		t.Fatalf("pixel(0,3).X = %+v", first.X)
	}
	if first.Y.Lo != 0 || first.Y.Hi != 1 {
		t.Fatalf("pixel(0,3).Y = %+v", first.Y)
	}
	last := s.pixelBox(3, 0) // top-right pixel owns the outer edges
	if last.X.Hi != 4 || last.Y.Hi != 4 {
		t.Fatalf("pixel(3,0) should own the outer edges, got %+v", last)
	}
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("session did not finish within 10s")
	}
}
