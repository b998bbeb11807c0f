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
	"os"
	"path/filepath"
)

// FilesSnapshotBackend writes checkpoints under a base directory,
// grounded on storage.FileStorage's plain os.Create-per-write shape
// (MkdirAll then Create, no locking beyond the filesystem's own).
type FilesSnapshotBackend struct {
	Basepath string
}

func NewFilesSnapshotBackend(basepath string) *FilesSnapshotBackend {
	return &FilesSnapshotBackend{Basepath: basepath}
}

func (b *FilesSnapshotBackend) WriteInterim(sessionID string, seq int, raw []byte) error {
	compressed, err := compressLz4(raw)
	if err != nil {
		return err
	}
	return b.write(interimKey(sessionID, seq), compressed)
}

func (b *FilesSnapshotBackend) WriteFinal(sessionID string, raw []byte) error {
	compressed, err := compressXz(raw)
	if err != nil {
		return err
	}
	return b.write(finalKey(sessionID), compressed)
}

func (b *FilesSnapshotBackend) write(key string, data []byte) error {
	path := filepath.Join(b.Basepath, key)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0640)
}

func (b *FilesSnapshotBackend) Close() error { return nil }
