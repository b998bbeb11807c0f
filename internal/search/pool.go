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
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/jtolds/gls"
)

var workerMgr = gls.NewContextManager()

// workerLabel formats the trace-line prefix spec.md's design notes
// call for (internal/search's "worker=3 pixel=(120,44) level=6"); it
// reads the goroutine-local worker id gls.Go's context carries, or
// "?" if called from outside a pool worker (e.g. a test).
func workerLabel(item workItem) string {
	id, ok := workerMgr.GetValue("worker")
	if !ok {
		id = "?"
	}
	return fmt.Sprintf("worker=%v pixel=(%d,%d) level=%d", id, item.PixelX, item.PixelY, item.Level)
}

// Handler processes one popped work item and pushes any children it
// produces back onto push. It never blocks on I/O (spec.md §5: "No
// I/O occurs on the hot path").
type Handler func(item workItem, push func(workItem))

// Pool is the sharded, work-stealing executor of spec.md §4.5: W
// worker goroutines each own a private priority queue and steal from
// the globally longest shard when their own empties, adapted from the
// same N-independent-workers-plus-steal shape used for constraint-
// solving fan-out elsewhere in this codebase's sibling packages.
type Pool struct {
	shards  []*workerQueue
	handler Handler
	cancel  atomic.Bool
	done    atomic.Int64
	wg      sync.WaitGroup
}

// NewPool creates a pool with workers goroutines (defaulting to
// runtime.NumCPU() when workers <= 0) driving handler.
func NewPool(workers int, handler Handler) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &Pool{handler: handler}
	p.shards = make([]*workerQueue, workers)
	for i := range p.shards {
		p.shards[i] = newWorkerQueue()
	}
	return p
}

// Seed enqueues the initial work items, spread round-robin across
// shards so every worker starts with something to do.
func (p *Pool) Seed(items []workItem) {
	for i, item := range items {
		p.shards[i%len(p.shards)].push(item)
	}
}

// Start launches all worker goroutines and returns immediately; call
// Wait (or block on the Pool's owning Session.Wait) to know when
// every shard has drained or Cancel was called. done is invoked once
// per handled item (including one whose handler panicked and was
// recovered), used by Session to count towards
// its incremental-publish threshold. wg.Add happens here, synchronously,
// so a caller that immediately calls Wait never races an empty
// WaitGroup against workerLoop's own eventual Done call.
func (p *Pool) Start(done func()) {
	p.wg.Add(len(p.shards))
	for i := range p.shards {
		id := i
		gls.Go(func() {
			workerMgr.SetValues(gls.Values{"worker": id}, func() {
				p.workerLoop(id, done)
			})
		})
	}
}

// Wait blocks until every worker goroutine has exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) workerLoop(id int, done func()) {
	defer p.wg.Done()
	own := p.shards[id]
	for {
		if p.cancel.Load() {
			return
		}
		item, ok := own.pop()
		if !ok {
			stolen, stealOK := p.stealFrom(id)
			if !stealOK {
				if p.allEmpty() {
					return
				}
				continue
			}
			for _, s := range stolen[1:] {
				own.push(s)
			}
			item = stolen[0]
		}
		p.runHandler(item, own.push)
		p.done.Add(1)
		if done != nil {
			done()
		}
	}
}

// runHandler recovers a panicking handler so one bad box (spec.md
// §7's InternalError) can't take down a worker goroutine; it logs the
// worker/pixel/level trace line the design notes ask for and simply
// drops the item, leaving that subpixel undecided.
func (p *Pool) runHandler(item workItem, push func(workItem)) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("%s: panic: %v", workerLabel(item), r)
		}
	}()
	p.handler(item, push)
}

// stealFrom finds the longest shard other than id and takes half its
// backlog.
func (p *Pool) stealFrom(id int) ([]workItem, bool) {
	longest := -1
	longestLen := 0
	for i, s := range p.shards {
		if i == id {
			continue
		}
		if l := s.len(); l > longestLen {
			longest = i
			longestLen = l
		}
	}
	if longest < 0 {
		return nil, false
	}
	return p.shards[longest].steal()
}

func (p *Pool) allEmpty() bool {
	for _, s := range p.shards {
		if s.len() > 0 {
			return false
		}
	}
	return true
}

// Cancel sets the cooperative cancellation flag every worker checks
// between items (spec.md §5: "No work item is preempted
// mid-evaluation").
func (p *Pool) Cancel() { p.cancel.Store(true) }

// Cancelled reports whether Cancel has been called.
func (p *Pool) Cancelled() bool { return p.cancel.Load() }

// Processed returns the total number of items popped and handled so
// far, across all shards.
func (p *Pool) Processed() int64 { return p.done.Load() }
