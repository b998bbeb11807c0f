//go:build ceph

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
	"path"
	"sync"

	"github.com/ceph/go-ceph/rados"
)

// CephSnapshotBackend stores checkpoints as RADOS objects, one write
// per publish, mirroring storage.CephStorage.ensureOpen's lazy
// connect-then-open-pool sequence.
type CephSnapshotBackend struct {
	UserName    string
	ClusterName string
	ConfFile    string
	Pool        string
	Prefix      string

	mu     sync.Mutex
	conn   *rados.Conn
	ioctx  *rados.IOContext
	opened bool
}

func (b *CephSnapshotBackend) ensureOpen() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.opened {
		return nil
	}
	conn, err := rados.NewConnWithClusterAndUser(b.ClusterName, b.UserName)
	if err != nil {
		return err
	}
	if b.ConfFile != "" {
		if err := conn.ReadConfigFile(b.ConfFile); err != nil {
			return err
		}
	} else {
		_ = conn.ReadDefaultConfigFile()
	}
	if err := conn.Connect(); err != nil {
		return err
	}
	ioctx, err := conn.OpenIOContext(b.Pool)
	if err != nil {
		conn.Shutdown()
		return err
	}
	b.conn = conn
	b.ioctx = ioctx
	b.opened = true
	return nil
}

func (b *CephSnapshotBackend) obj(key string) string {
	return path.Join(b.Prefix, key)
}

func (b *CephSnapshotBackend) WriteInterim(sessionID string, seq int, raw []byte) error {
	if err := b.ensureOpen(); err != nil {
		return err
	}
	compressed, err := compressLz4(raw)
	if err != nil {
		return err
	}
	return b.ioctx.WriteFull(b.obj(interimKey(sessionID, seq)), compressed)
}

func (b *CephSnapshotBackend) WriteFinal(sessionID string, raw []byte) error {
	if err := b.ensureOpen(); err != nil {
		return err
	}
	compressed, err := compressXz(raw)
	if err != nil {
		return err
	}
	return b.ioctx.WriteFull(b.obj(finalKey(sessionID)), compressed)
}

func (b *CephSnapshotBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.opened {
		b.ioctx.Destroy()
		b.conn.Shutdown()
		b.opened = false
	}
	return nil
}
