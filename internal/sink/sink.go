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

// Package sink implements spec.md §4.5's "publish the current image
// buffer to the output sink" step, plus the periodic-checkpoint
// SnapshotBackend a long-running --timeout session persists to.
package sink

import (
	"os"
	"sync"

	"github.com/mizuno-gsinet/inari-graph/internal/raster"
)

// Sink is the boundary spec.md §6's Config.image_sink names: a
// destination for a freshly-published Image3.
type Sink interface {
	Publish(img *raster.Image3) error
	Close() error
}

// NopSink discards every publish, used when no -o/--serve flag is
// given but the caller still wants Session.Step to run to completion.
type NopSink struct{}

func (NopSink) Publish(*raster.Image3) error { return nil }
func (NopSink) Close() error                 { return nil }

// FileSink PNG-encodes every publish to the same path, overwriting
// the previous snapshot -- the batch/-o use case, grounded on
// storage.FileStorage's plain os.Create-per-write shape.
type FileSink struct {
	path string
	mu   sync.Mutex
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Publish(img *raster.Image3) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := img.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileSink) Close() error { return nil }

// MultiSink fans a publish out to several sinks (batch PNG plus a
// live --serve socket, say), stopping at the first error.
type MultiSink struct {
	Sinks []Sink
}

func (m MultiSink) Publish(img *raster.Image3) error {
	for _, s := range m.Sinks {
		if err := s.Publish(img); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Close() error {
	var first error
	for _, s := range m.Sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
