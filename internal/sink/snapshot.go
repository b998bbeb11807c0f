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
	"bytes"
	"fmt"

	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// SnapshotBackend persists periodic raster checkpoints of a
// long-running session, independent of the batch/-o PNG output, so a
// hard --timeout run can be resumed or inspected mid-flight. Shaped
// after storage.PersistenceEngine's Read/Write-by-key surface, cut
// down to what a write-mostly checkpoint stream needs.
type SnapshotBackend interface {
	// WriteInterim stores one lz4-compressed checkpoint, keyed by
	// session id and sequence number. Called on every publish of a
	// session that has a snapshot backend configured.
	WriteInterim(sessionID string, seq int, raw []byte) error
	// WriteFinal stores one xz-compressed archival copy of the final
	// image, keyed by session id only. Called once, only when the
	// session ended with a nonzero undecided count.
	WriteFinal(sessionID string, raw []byte) error
	Close() error
}

// interimKey/finalKey are shared across backends so the on-disk/
// object-store layout is consistent regardless of which backend is
// selected by --snapshot-backend.
func interimKey(sessionID string, seq int) string {
	return fmt.Sprintf("%s/interim-%06d.lz4", sessionID, seq)
}

func finalKey(sessionID string) string {
	return fmt.Sprintf("%s/final.xz", sessionID)
}

func compressLz4(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func compressXz(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
