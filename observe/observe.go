//
// FrankyGo - UCI chess engine in GO for learning purposes
//
// MIT License
//
// Copyright (c) 2018-2020 Frank Kopp
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//

// Package observe exposes the search's info stream (depth, seldepth,
// score, nodes, nps, pv) described in spec.md §6 to collaborators other
// than the UCI text protocol - a GUI or a remote spectator - over a
// plain websocket instead of requiring them to speak UCI. It never
// drives the search; it only polls the read-only getters a pool.Pool
// already exposes (Statistics, NodesVisited, LastSearchResult,
// IsSearching) on a timer and broadcasts a snapshot to every connected
// client.
package observe

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/op/go-logging"

	myLogging "github.com/kpkoski/gambitcore/logging"
	"github.com/kpkoski/gambitcore/pool"
	"github.com/kpkoski/gambitcore/util"
)

// Snapshot is one broadcast frame of search progress.
type Snapshot struct {
	Searching bool   `json:"searching"`
	Depth     int    `json:"depth"`
	SelDepth  int    `json:"seldepth"`
	Nodes     uint64 `json:"nodes"`
	Nps       uint64 `json:"nps"`
	BestMove  string `json:"bestmove"`
	BestValue string `json:"value"`
	Pv        string `json:"pv"`
}

// Hub fans out Snapshots of a pool.Pool's progress to every currently
// connected websocket client.
type Hub struct {
	log      *logging.Logger
	upgrader websocket.Upgrader
	pool     *pool.Pool

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	searchStart time.Time
}

// NewHub creates a Hub watching p. CheckOrigin is left permissive since
// this is a local spectator endpoint, not a public API.
func NewHub(p *pool.Pool) *Hub {
	return &Hub{
		log:     myLogging.GetLog(),
		pool:    p,
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request to a websocket and registers the
// connection until the client disconnects. Mount at any path, e.g.
// http.Handle("/observe", hub).
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warningf("observe: websocket upgrade failed: %s", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	h.log.Debugf("observe: client connected (%d total)", len(h.clients))

	// Drain and discard anything the client sends; this also detects
	// disconnects so the client can be unregistered promptly.
	go func() {
		defer h.unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// broadcast writes snap to every connected client, dropping any that
// error out on write; a dead connection's own read loop unregisters it.
func (h *Hub) broadcast(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(snap); err != nil {
			h.log.Debugf("observe: dropping client after write error: %s", err)
			go h.unregister(conn)
		}
	}
}

// snapshot reads the pool's current state into a Snapshot. Safe to call
// whether or not a search is currently running.
func (h *Hub) snapshot() Snapshot {
	searching := h.pool.IsSearching()
	if searching && h.searchStart.IsZero() {
		h.searchStart = time.Now()
	} else if !searching {
		h.searchStart = time.Time{}
	}

	stats := h.pool.Statistics()
	result := h.pool.LastSearchResult()
	nodes := h.pool.NodesVisited()

	var nps uint64
	if !h.searchStart.IsZero() {
		nps = util.Nps(nodes, time.Since(h.searchStart))
	}

	return Snapshot{
		Searching: searching,
		Depth:     stats.CurrentSearchDepth,
		SelDepth:  stats.CurrentExtraSearchDepth,
		Nodes:     nodes,
		Nps:       nps,
		BestMove:  result.BestMove.StringUci(),
		BestValue: result.BestValue.String(),
		Pv:        result.Pv.StringUci(),
	}
}

// Run polls the pool every interval until ctx is done, broadcasting a
// Snapshot on every tick so a client that connects while idle still sees
// a consistent frame rather than waiting for the next search to start.
func (h *Hub) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.broadcast(h.snapshot())
		}
	}
}
