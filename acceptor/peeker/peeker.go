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

// Package peeker reads the first N bytes of a connection without consuming
// them from the next reader's point of view.
package peeker

import (
	"errors"
	"io"
	"net"
	"sync"
)

// Callback receives the outcome of a peek attempt.
type Callback interface {
	PeekSuccess(data []byte)
	PeekError(err error)
}

// PreReceiveConn wraps a net.Conn so that bytes already read off the wire
// (the peeked bytes) are replayed to the next reader before the
// underlying connection is read from again. net.Conn has no native
// pre-received-data primitive, so the buffer-and-inject wrapper stands in.
type PreReceiveConn struct {
	net.Conn

	mu      sync.Mutex
	pending []byte
}

// NewPreReceiveConn wraps conn, with data prepended ahead of conn's own
// bytes for the next Read call.
func NewPreReceiveConn(conn net.Conn, data []byte) *PreReceiveConn {
	return &PreReceiveConn{
		Conn:    conn,
		pending: append([]byte(nil), data...),
	}
}

// Read satisfies net.Conn, taking precedence over the embedded Conn's Read.
// Real errors, including io.EOF, are passed through unaltered once the
// prepended bytes have been drained.
func (p *PreReceiveConn) Read(b []byte) (int, error) {
	p.mu.Lock()
	if len(p.pending) > 0 {
		n := copy(b, p.pending)
		p.pending = p.pending[n:]
		p.mu.Unlock()
		return n, nil
	}
	p.mu.Unlock()

	return p.Conn.Read(b)
}

// Peeker reads exactly N bytes from conn, reports them via cb, and leaves
// them available to the next reader by wrapping conn in a PreReceiveConn.
type Peeker struct {
	conn     net.Conn
	cb       Callback
	numBytes int

	mu   sync.Mutex
	buf  []byte
	read int
	done bool
}

// New builds a Peeker for numBytes bytes off conn.
func New(conn net.Conn, cb Callback, numBytes int) *Peeker {
	return &Peeker{
		conn:     conn,
		cb:       cb,
		numBytes: numBytes,
		buf:      make([]byte, numBytes),
	}
}

// Start begins peeking. If numBytes is zero, it succeeds synchronously with
// an empty buffer.
func (p *Peeker) Start() {
	if p.numBytes == 0 {
		p.finishSuccess(nil)
		return
	}

	go p.pump()
}

func (p *Peeker) pump() {
	for {
		p.mu.Lock()
		if p.done {
			p.mu.Unlock()
			return
		}
		target := p.buf[p.read:]
		p.mu.Unlock()

		n, err := p.conn.Read(target)

		p.mu.Lock()
		if p.done {
			p.mu.Unlock()
			return
		}
		p.read += n
		complete := p.read == p.numBytes
		p.mu.Unlock()

		if n > 0 && complete {
			p.finishSuccess(append([]byte(nil), p.buf...))
			return
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				p.finishError(ErrorEOF.Error())
			} else {
				p.finishError(ErrorRead.Error(err))
			}
			return
		}
	}
}

func (p *Peeker) finishSuccess(data []byte) {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.done = true
	p.mu.Unlock()

	p.cb.PeekSuccess(data)
}

func (p *Peeker) finishError(err error) {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.done = true
	p.mu.Unlock()

	p.cb.PeekError(err)
}

// Stop uninstalls the in-flight peek: a no-op if the peek has already
// completed.
func (p *Peeker) Stop() {
	p.mu.Lock()
	p.done = true
	p.mu.Unlock()
}
