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

package sink

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mizuno-gsinet/inari-graph/internal/raster"
)

func TestFileSinkPublishAtomicRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	s := NewFileSink(path)
	img := raster.New(2, 2)
	img.MarkSolution(0, 0)
	if err := s.Publish(img); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file should have been renamed away")
	}
}

type failingSink struct{ err error }

func (f failingSink) Publish(*raster.Image3) error { return f.err }
func (f failingSink) Close() error                 { return f.err }

func TestMultiSinkStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	m := MultiSink{Sinks: []Sink{
		countingSinkFunc(&calls),
		failingSink{err: boom},
		countingSinkFunc(&calls),
	}}
	img := raster.New(1, 1)
	if err := m.Publish(img); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("want exactly 1 upstream sink to run before the failing one, got %d", calls)
	}
}

func countingSinkFunc(calls *int) Sink {
	return countingSink{calls: calls}
}

type countingSink struct{ calls *int }

func (c countingSink) Publish(*raster.Image3) error { *c.calls++; return nil }
func (c countingSink) Close() error                 { return nil }

func TestNopSinkNeverErrors(t *testing.T) {
	var s NopSink
	if err := s.Publish(raster.New(1, 1)); err != nil {
		t.Fatalf("NopSink.Publish returned %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("NopSink.Close returned %v", err)
	}
}

func TestFilesSnapshotBackendWritesCompressedFiles(t *testing.T) {
	dir := t.TempDir()
	b := NewFilesSnapshotBackend(dir)
	raw := []byte("hello checkpoint")
	if err := b.WriteInterim("session-1", 1, raw); err != nil {
		t.Fatalf("WriteInterim: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "session-1", "interim-000001.lz4")); err != nil {
		t.Fatalf("interim file missing: %v", err)
	}
	if err := b.WriteFinal("session-1", raw); err != nil {
		t.Fatalf("WriteFinal: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "session-1", "final.xz")); err != nil {
		t.Fatalf("final file missing: %v", err)
	}
}

func TestInterimKeyAndFinalKeyLayout(t *testing.T) {
	if got, want := interimKey("abc", 7), "abc/interim-000007.lz4"; got != want {
		t.Fatalf("interimKey: got %q want %q", got, want)
	}
	if got, want := finalKey("abc"), "abc/final.xz"; got != want {
		t.Fatalf("finalKey: got %q want %q", got, want)
	}
}
