/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package router is the optional pre-pipeline seam that hands a freshly
// accepted connection to a sibling worker instead of handling it locally.
// It is specified only at its interface boundary: callers decide what
// "routing bytes" mean for their protocol and what a Worker actually does
// with a routed connection.
package router

import (
	"hash/fnv"
	"net"
)

// Worker is one sibling an accepted connection can be routed to.
type Worker interface {
	// Name identifies this worker for registry lookups and logging.
	Name() string
	// Dispatch hands the connection (and whatever routing bytes were
	// already peeked off it) to this worker for further handling.
	Dispatch(conn net.Conn, peeked []byte)
}

// Handler decides which Worker an accepted connection belongs to, and how
// many bytes (if any) it needs peeked off the connection first to make that
// decision.
type Handler interface {
	// BytesRequired is how many application-layer bytes to peek before
	// Route is called. Zero means route without peeking.
	BytesRequired() int
	// Route picks the Worker that should handle this connection.
	Route(conn net.Conn, peeked []byte, workers []Worker) Worker
}

// Registry is a named collection of Workers with the usual
// Walk/Load/Store/Delete pool shape.
type Registry struct {
	workers map[string]Worker
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{workers: make(map[string]Worker)}
}

// Store registers or replaces a Worker under its own Name().
func (r *Registry) Store(w Worker) {
	r.workers[w.Name()] = w
}

// Delete removes a Worker by name.
func (r *Registry) Delete(name string) {
	delete(r.workers, name)
}

// Load returns the Worker registered under name, if any.
func (r *Registry) Load(name string) (Worker, bool) {
	w, ok := r.workers[name]
	return w, ok
}

// Walk calls f for every registered Worker, in no particular order; f
// returning false stops the walk early.
func (r *Registry) Walk(f func(Worker) bool) {
	for _, w := range r.workers {
		if !f(w) {
			return
		}
	}
}

// Snapshot returns every registered Worker, ordered by name, for
// implementations (like ConsistentHashHandler) that need a stable slice to
// hash against.
func (r *Registry) Snapshot() []Worker {
	names := make([]string, 0, len(r.workers))
	for name := range r.workers {
		names = append(names, name)
	}
	sortStrings(names)

	out := make([]Worker, 0, len(names))
	for _, name := range names {
		out = append(out, r.workers[name])
	}
	return out
}

// sortStrings is a tiny insertion sort: the registry is expected to hold a
// handful of sibling workers, not a large set, so pulling in "sort" for one
// call site isn't worth it either way; written out here to keep the
// dependency-free default implementation self-contained.
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// ConsistentHashHandler is the default Handler: it routes purely on the
// remote address, without peeking any application bytes, by hashing the
// address into the worker list. It exists so the routing seam is
// exercisable in tests; real deployments are expected to supply a
// protocol-aware Handler.
type ConsistentHashHandler struct{}

// NewConsistentHashHandler builds the default hash-by-remote-address Handler.
func NewConsistentHashHandler() *ConsistentHashHandler {
	return &ConsistentHashHandler{}
}

func (h *ConsistentHashHandler) BytesRequired() int {
	return 0
}

func (h *ConsistentHashHandler) Route(conn net.Conn, peeked []byte, workers []Worker) Worker {
	if len(workers) == 0 {
		return nil
	}

	key := conn.RemoteAddr().String()

	sum := fnv.New32a()
	_, _ = sum.Write([]byte(key))

	return workers[sum.Sum32()%uint32(len(workers))]
}
