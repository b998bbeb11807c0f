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

// Package cache memoizes compile.Compile results across REPL turns
// and --watch re-triggers, keyed by the exact source text, using
// NonLockingReadMap the way it is vendored in this codebase: reads
// (every REPL keystroke that repeats an earlier relation, every
// --watch re-save of an unchanged file) are the hot path, writes
// (a genuinely new relation) are rare.
package cache

import (
	"github.com/launix-de/NonLockingReadMap"

	"github.com/mizuno-gsinet/inari-graph/internal/relprog"
)

// entry adapts one compiled program to NonLockingReadMap's
// KeyGetter[string] interface, keyed by the exact source text
// compile.Compile was given.
type entry struct {
	source  string
	program *relprog.Program
}

func (e *entry) GetKey() string { return e.source }

// ComputeSize is a rough accounting of one cached program's memory
// footprint, not exact -- NonLockingReadMap only uses it to answer
// ComputeSize() on the map as a whole, which nothing here calls yet,
// but the interface requires an implementation.
func (e *entry) ComputeSize() uint {
	return uint(len(e.source)) + uint(len(e.program.Instructions))*32
}

// Cache is a compiled-program memo keyed by the exact relation text.
type Cache struct {
	m NonLockingReadMap.NonLockingReadMap[entry, string]
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{m: NonLockingReadMap.New[entry, string]()}
}

// Get returns the program compiled from source on a prior Put, or nil
// if source has never been cached.
func (c *Cache) Get(source string) *relprog.Program {
	e := c.m.Get(source)
	if e == nil {
		return nil
	}
	return (*e).program
}

// Put records the program compiled from source, replacing any earlier
// entry for the same text (compile.Compile is a pure function of its
// AST, so distinct entries for identical text can never disagree).
func (c *Cache) Put(source string, program *relprog.Program) {
	c.m.Set(&entry{source: source, program: program})
}

// Len reports how many distinct relations are currently cached.
func (c *Cache) Len() int {
	return len(c.m.GetAll())
}
