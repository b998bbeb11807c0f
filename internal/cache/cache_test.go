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

package cache

import (
	"testing"

	"github.com/mizuno-gsinet/inari-graph/internal/compile"
	"github.com/mizuno-gsinet/inari-graph/internal/parse"
)

func TestCacheMissThenHit(t *testing.T) {
	c := New()
	src := "x^2 + y^2 <= 1"
	if got := c.Get(src); got != nil {
		t.Fatal("expected miss on empty cache")
	}
	n, err := parse.Parse("test", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	prog, err := compile.Compile(n)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	c.Put(src, prog)
	if got := c.Get(src); got != prog {
		t.Fatalf("want cached program back, got %v", got)
	}
	if c.Len() != 1 {
		t.Fatalf("want 1 cached entry, got %d", c.Len())
	}
}

func TestCachePutOverwritesSameSource(t *testing.T) {
	c := New()
	src := "x < y"
	n, _ := parse.Parse("test", src)
	prog1, _ := compile.Compile(n)
	c.Put(src, prog1)

	n2, _ := parse.Parse("test", src)
	prog2, _ := compile.Compile(n2)
	c.Put(src, prog2)

	if c.Len() != 1 {
		t.Fatalf("re-Put of the same source text should not grow the cache, got %d entries", c.Len())
	}
	if got := c.Get(src); got != prog2 {
		t.Fatal("want the second Put to win")
	}
}

func TestCacheDistinctSourcesCoexist(t *testing.T) {
	c := New()
	for _, src := range []string{"x < y", "x > y", "x = y"} {
		n, err := parse.Parse("test", src)
		if err != nil {
			t.Fatalf("parse %q: %v", src, err)
		}
		prog, err := compile.Compile(n)
		if err != nil {
			t.Fatalf("compile %q: %v", src, err)
		}
		c.Put(src, prog)
	}
	if c.Len() != 3 {
		t.Fatalf("want 3 distinct entries, got %d", c.Len())
	}
}
