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

// Package secctx selects a handshake helper for a freshly-accepted,
// not-yet-classified connection by peeking its first bytes.
package secctx

import liberr "github.com/sabouaram/netacceptor/errors"

// Helper is whatever a PeekCallback hands back once it recognizes a
// connection; the handshake manager drives it from there. Left opaque here
// so this package stays independent of the handshake state machine.
type Helper interface{}

// PeekCallback declares how many bytes it needs to see before it can decide
// whether it recognizes a connection, and builds a Helper once it does.
type PeekCallback interface {
	BytesRequired() int
	GetHelper(peeked []byte) (Helper, bool)
}

// Manager holds an ordered registry of PeekCallback and computes the
// effective peek length across all of them.
type Manager struct {
	peekers []PeekCallback
}

// New returns an empty Manager.
func New() *Manager {
	return &Manager{}
}

// AddPeeker appends p to the registry. Order matters: more specific
// detectors should be added before more permissive fallbacks, since
// Select tries callbacks in registration order.
func (m *Manager) AddPeeker(p PeekCallback) {
	m.peekers = append(m.peekers, p)
}

// GetPeekBytes returns the largest BytesRequired across all registered
// callbacks, or 0 if none are registered.
func (m *Manager) GetPeekBytes() int {
	max := 0
	for _, p := range m.peekers {
		if n := p.BytesRequired(); n > max {
			max = n
		}
	}
	return max
}

// Select walks the registry in order and returns the first Helper produced
// by a callback that recognizes peeked. If none recognize it, it returns
// ErrorUnrecognizedProtocol.
func (m *Manager) Select(peeked []byte) (Helper, liberr.Error) {
	for _, p := range m.peekers {
		if h, ok := p.GetHelper(peeked); ok {
			return h, nil
		}
	}

	return nil, ErrorUnrecognizedProtocol.Error()
}
