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
	"sync/atomic"
	"testing"
	"time"
)

// countingHandler processes each item once and, if it still has
// budget, pushes one child at the next level -- enough fan-out to
// exercise pop/steal/allEmpty without ever growing unbounded.
func countingHandler(processed *atomic.Int64, maxLevel int) Handler {
	return func(item workItem, push func(workItem)) {
		processed.Add(1)
		if item.Level < maxLevel {
			push(workItem{Level: item.Level + 1, PixelX: item.PixelX})
		}
	}
}

func TestPoolDrainsAllSeededWork(t *testing.T) {
	var processed atomic.Int64
	p := NewPool(4, countingHandler(&processed, 3))
	seed := make([]workItem, 0, 20)
	for i := 0; i < 20; i++ {
		seed = append(seed, workItem{Level: 0, PixelX: i})
	}
	p.Seed(seed)

	done := make(chan struct{})
	go func() {
		p.Start(nil)
		p.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pool did not drain within 5s")
	}

	// each of the 20 seeds fans out to levels 0,1,2,3 -- 4 items each.
	if want := int64(20 * 4); processed.Load() != want {
		t.Fatalf("want %d processed items, got %d", want, processed.Load())
	}
}

func TestPoolCancelStopsWorkers(t *testing.T) {
	var processed atomic.Int64
	// a handler that never stops fanning out, to prove Cancel wins the race.
	handler := func(item workItem, push func(workItem)) {
		processed.Add(1)
		push(workItem{Level: item.Level + 1})
	}
	p := NewPool(2, handler)
	p.Seed([]workItem{{Level: 0}})
	p.Start(nil)
	p.Cancel()
	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled pool never exited")
	}
	if !p.Cancelled() {
		t.Fatal("Cancelled() should report true")
	}
}

func TestPoolRunHandlerRecoversPanics(t *testing.T) {
	ran := make(chan struct{}, 1)
	p := NewPool(1, func(item workItem, push func(workItem)) {
		defer func() { ran <- struct{}{} }()
		panic("boom")
	})
	p.Seed([]workItem{{Level: 0}})
	p.Start(nil)
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("handler never ran")
	}
	p.Cancel()
	p.Wait()
}
