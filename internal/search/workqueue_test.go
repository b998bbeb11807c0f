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

import "testing"

func TestWorkerQueuePopsCoarserLevelsFirst(t *testing.T) {
	wq := newWorkerQueue()
	wq.push(workItem{Level: 3, PixelX: 1})
	wq.push(workItem{Level: 1, PixelX: 2})
	wq.push(workItem{Level: 2, PixelX: 3})

	first, ok := wq.pop()
	if !ok || first.Level != 1 {
		t.Fatalf("want level 1 first, got %+v ok=%v", first, ok)
	}
	second, ok := wq.pop()
	if !ok || second.Level != 2 {
		t.Fatalf("want level 2 second, got %+v ok=%v", second, ok)
	}
	third, ok := wq.pop()
	if !ok || third.Level != 3 {
		t.Fatalf("want level 3 third, got %+v ok=%v", third, ok)
	}
	if _, ok := wq.pop(); ok {
		t.Fatal("queue should be empty")
	}
}

func TestWorkerQueueTiesBreakByInsertionOrder(t *testing.T) {
	wq := newWorkerQueue()
	wq.push(workItem{Level: 1, PixelX: 10})
	wq.push(workItem{Level: 1, PixelX: 20})

	first, _ := wq.pop()
	second, _ := wq.pop()
	if first.PixelX != 10 || second.PixelX != 20 {
		t.Fatalf("want FIFO order among equal levels, got %d then %d", first.PixelX, second.PixelX)
	}
}

func TestWorkerQueueStealTakesHalf(t *testing.T) {
	wq := newWorkerQueue()
	for i := 0; i < 6; i++ {
		wq.push(workItem{Level: i})
	}
	stolen, ok := wq.steal()
	if !ok {
		t.Fatal("steal should succeed on a non-empty queue")
	}
	if len(stolen) != 3 {
		t.Fatalf("want half (3) of 6 items stolen, got %d", len(stolen))
	}
	if wq.len() != 3 {
		t.Fatalf("want 3 items left behind, got %d", wq.len())
	}
}

func TestWorkerQueueStealOnSmallQueueFails(t *testing.T) {
	wq := newWorkerQueue()
	wq.push(workItem{Level: 0})
	if _, ok := wq.steal(); ok {
		t.Fatal("stealing half of 1 item should fail (n/2 == 0)")
	}
}
