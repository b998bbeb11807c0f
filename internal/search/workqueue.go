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

// Package search implements spec.md §4.5's subdivision loop: a
// priority queue of pixel/subpixel work items, a worker pool that
// shards the queue and steals when idle, and the Session/Plotter
// boundary of spec.md §6.
package search

import (
	"container/heap"
	"sync"

	"github.com/mizuno-gsinet/inari-graph/internal/eval"
)

// Box is the pixel/subpixel rectangle a work item covers -- the same
// type internal/eval already had to define (to avoid eval importing
// its own caller), re-exported here under the name spec.md's data
// model uses.
type Box = eval.Box

// workItem is one queued unit of the subdivision search: a candidate
// box within pixel (PixelX, PixelY), covering subpixel quadrant
// SubIndex of the pixel's current bitmap, at refinement Level.
// Priority is coarser level first, with no boundary-adjacency tier:
// lower Level sorts first, ties broken by a
// monotonic sequence number the way scm.Scheduler's taskHeap breaks
// runAt ties, so Less is always a strict order and heap.Interface
// never sees equal elements.
type workItem struct {
	Box      Box
	PixelX   int
	PixelY   int
	SubIndex int
	Level    int
	seq      uint64
}

// workHeap is a container/heap heap of workItem ordered by ascending
// Level (coarser first) then insertion order, grounded on
// scm.Scheduler's taskHeap: a heap.Interface on a plain slice with
// Push/Pop via the standard slice-truncation trick.
type workHeap []workItem

func (h workHeap) Len() int { return len(h) }

func (h workHeap) Less(i, j int) bool {
	if h[i].Level != h[j].Level {
		return h[i].Level < h[j].Level
	}
	return h[i].seq < h[j].seq
}

func (h workHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *workHeap) Push(x any) {
	*h = append(*h, x.(workItem))
}

func (h *workHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// workerQueue is one worker's private shard: a mutex-guarded workHeap
// plus a monotonic sequence counter for tie-breaking.
type workerQueue struct {
	mu   sync.Mutex
	h    workHeap
	next uint64
}

func newWorkerQueue() *workerQueue {
	wq := &workerQueue{}
	heap.Init(&wq.h)
	return wq
}

func (wq *workerQueue) push(item workItem) {
	wq.mu.Lock()
	item.seq = wq.next
	wq.next++
	heap.Push(&wq.h, item)
	wq.mu.Unlock()
}

func (wq *workerQueue) pop() (workItem, bool) {
	wq.mu.Lock()
	defer wq.mu.Unlock()
	if wq.h.Len() == 0 {
		return workItem{}, false
	}
	return heap.Pop(&wq.h).(workItem), true
}

// len reports the shard's current depth, used by stealing to pick the
// globally longest queue.
func (wq *workerQueue) len() int {
	wq.mu.Lock()
	defer wq.mu.Unlock()
	return wq.h.Len()
}

// steal removes and returns up to half of another shard's items,
// splitting a hot queue instead of taking a single item at a time.
func (wq *workerQueue) steal() ([]workItem, bool) {
	wq.mu.Lock()
	defer wq.mu.Unlock()
	n := wq.h.Len() / 2
	if n == 0 {
		return nil, false
	}
	stolen := make([]workItem, 0, n)
	for i := 0; i < n; i++ {
		stolen = append(stolen, heap.Pop(&wq.h).(workItem))
	}
	return stolen, true
}
