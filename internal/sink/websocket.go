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
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mizuno-gsinet/inari-graph/internal/raster"
)

// WebSocketSink pushes each publish as a binary PNG frame to every
// connected --serve client, grounded on scm/network.go's "websocket"
// HTTPServe builtin (same Upgrader shape, same one-mutex-per-
// connection guard around WriteMessage since gorilla's Conn forbids
// concurrent writers).
type WebSocketSink struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]*sync.Mutex
}

func NewWebSocketSink() *WebSocketSink {
	return &WebSocketSink{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// ServeHTTP upgrades an incoming request to a websocket and registers
// it as a publish subscriber until it disconnects.
func (s *WebSocketSink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns[conn] = &sync.Mutex{}
	s.mu.Unlock()
	go func() {
		defer s.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *WebSocketSink) drop(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

// Publish PNG-encodes img once and fans the bytes out to every
// connected client as a binary frame.
func (s *WebSocketSink) Publish(img *raster.Image3) error {
	var buf bytes.Buffer
	if err := img.EncodePNG(&buf); err != nil {
		return err
	}
	payload := buf.Bytes()

	s.mu.Lock()
	targets := make([]*websocket.Conn, 0, len(s.conns))
	locks := make([]*sync.Mutex, 0, len(s.conns))
	for c, l := range s.conns {
		targets = append(targets, c)
		locks = append(locks, l)
	}
	s.mu.Unlock()

	for i, conn := range targets {
		locks[i].Lock()
		err := conn.WriteMessage(websocket.BinaryMessage, payload)
		locks[i].Unlock()
		if err != nil {
			s.drop(conn)
		}
	}
	return nil
}

func (s *WebSocketSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.Close()
	}
	s.conns = make(map[*websocket.Conn]*sync.Mutex)
	return nil
}
