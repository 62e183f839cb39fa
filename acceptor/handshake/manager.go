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

// Package handshake drives a freshly-accepted connection from raw socket to
// an application-ready transport: peek the first bytes, pick a protocol
// helper, and hand off once it reports success or failure.
package handshake

import (
	"net"
	"sync"
	"time"

	"github.com/sabouaram/netacceptor/acceptor/connmgr"
	"github.com/sabouaram/netacceptor/acceptor/evloop"
	"github.com/sabouaram/netacceptor/acceptor/peeker"
	"github.com/sabouaram/netacceptor/acceptor/secctx"
)

// State is a Manager's position in its Started -> ... -> Ready/Failed
// state machine.
type State int

const (
	Started State = iota
	Peeking
	Selecting
	Handshaking
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Started:
		return "started"
	case Peeking:
		return "peeking"
	case Selecting:
		return "selecting"
	case Handshaking:
		return "handshaking"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Acceptor is the subset of the Acceptor's responsibilities a Manager needs
// to call back into: delivering the terminal outcome and releasing the
// concurrent-handshake admission slot it was granted at construction.
type Acceptor interface {
	SSLConnectionReady(transport net.Conn, clientAddr net.Addr, nextProtocol string, secure bool, tinfo *TransportInfo)
	SSLConnectionError(err error)
	DecrementPendingHandshakes()
}

// Manager is a per-connection handshake state machine. It is itself a
// connmgr.Conn so the handshake timeout is governed by the same Connection
// Manager as application connections.
type Manager struct {
	acceptor   Acceptor
	clientAddr net.Addr
	acceptTime time.Time
	tinfo      *TransportInfo

	secctx   *secctx.Manager
	numBytes int

	handshakeTimeout time.Duration

	gd evloop.Guarded

	mu      sync.Mutex
	state   State
	conn    net.Conn
	peeker  *peeker.Peeker
	helper  Helper
	timer   *time.Timer
	mgrList *connmgr.Manager
	hnd     *connmgr.Handle
}

// Track records the Connection Manager registration this handshake holds,
// so the terminal transition can erase it again.
func (m *Manager) Track(l *connmgr.Manager, h *connmgr.Handle) {
	m.mu.Lock()
	m.mgrList = l
	m.hnd = h
	m.mu.Unlock()
}

// detach erases this handshake from its Connection Manager. Idempotent:
// the registration is cleared on first use.
func (m *Manager) detach() {
	m.mu.Lock()
	l, h := m.mgrList, m.hnd
	m.mgrList, m.hnd = nil, nil
	m.mu.Unlock()

	if l != nil && h != nil {
		_ = l.Remove(h)
	}
}

// New builds a Manager that will peek numBytes bytes (as reported by sc's
// GetPeekBytes) before consulting sc to select a Helper.
func New(acceptor Acceptor, clientAddr net.Addr, acceptTime time.Time, tinfo *TransportInfo, sc *secctx.Manager, handshakeTimeout time.Duration) *Manager {
	m := &Manager{
		acceptor:         acceptor,
		clientAddr:       clientAddr,
		acceptTime:       acceptTime,
		tinfo:            tinfo,
		secctx:           sc,
		numBytes:         sc.GetPeekBytes(),
		handshakeTimeout: handshakeTimeout,
		state:            Started,
	}

	m.gd.OnDestroy(m.detach)

	return m
}

// Start takes ownership of conn: begins the handshake timeout, then starts
// peeking.
func (m *Manager) Start(conn net.Conn) {
	m.mu.Lock()
	m.conn = conn
	m.timer = time.AfterFunc(m.handshakeTimeout, m.onTimeout)
	m.state = Peeking
	m.mu.Unlock()

	p := peeker.New(conn, m, m.numBytes)

	m.mu.Lock()
	m.peeker = p
	m.mu.Unlock()

	p.Start()
}

// PeekSuccess implements peeker.Callback.
func (m *Manager) PeekSuccess(data []byte) {
	g := m.gd.Guard()
	defer g.Release()

	m.mu.Lock()
	if m.state != Peeking {
		m.mu.Unlock()
		return
	}
	m.state = Selecting
	m.peeker = nil
	conn := m.conn
	m.mu.Unlock()

	helper, err := m.secctx.Select(data)
	if err != nil {
		m.finishError(ErrorUnrecognizedProtocol.Error(err))
		return
	}

	h, ok := helper.(Helper)
	if !ok {
		m.finishError(ErrorUnrecognizedProtocol.Error())
		return
	}

	wrapped := peeker.NewPreReceiveConn(conn, data)

	m.mu.Lock()
	if m.state != Selecting {
		m.mu.Unlock()
		return
	}
	m.state = Handshaking
	m.helper = h
	m.mu.Unlock()

	h.Start(wrapped, m)
}

// PeekError implements peeker.Callback.
func (m *Manager) PeekError(err error) {
	g := m.gd.Guard()
	defer g.Release()

	m.finishError(err)
}

// ConnectionReady implements Callback.
func (m *Manager) ConnectionReady(transport net.Conn, nextProtocol string, secure bool, err error) {
	g := m.gd.Guard()
	defer g.Release()

	if err != nil {
		m.finishError(err)
		return
	}

	m.mu.Lock()
	if m.state != Handshaking {
		m.mu.Unlock()
		return
	}
	m.state = Ready
	m.stopTimer()
	m.mu.Unlock()

	m.gd.RequestDestroy()
	m.acceptor.DecrementPendingHandshakes()
	m.acceptor.SSLConnectionReady(transport, m.clientAddr, nextProtocol, secure, m.tinfo)
}

// ConnectionError implements Callback.
func (m *Manager) ConnectionError(err error) {
	g := m.gd.Guard()
	defer g.Release()

	m.finishError(err)
}

// finishError is the terminal failure transition: it tears down whatever is
// in flight (peeker, helper, or the bare socket), then reports err. The
// transport is always closed on this path, either by the active helper's
// DropConnection or directly.
func (m *Manager) finishError(err error) {
	m.mu.Lock()
	if m.state == Ready || m.state == Failed {
		m.mu.Unlock()
		return
	}
	m.state = Failed
	m.stopTimer()

	h := m.helper
	p := m.peeker
	conn := m.conn
	m.mu.Unlock()

	if p != nil {
		p.Stop()
	}

	if h != nil {
		h.DropConnection(err.Error())
	} else if conn != nil {
		_ = conn.Close()
	}

	m.gd.RequestDestroy()
	m.acceptor.DecrementPendingHandshakes()
	m.acceptor.SSLConnectionError(err)
}

func (m *Manager) onTimeout() {
	g := m.gd.Guard()
	defer g.Release()

	m.finishError(ErrorTimeout.Error())
}

func (m *Manager) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
	}
}

// State returns the Manager's current state, for tests and diagnostics.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// NotifyPendingShutdown implements connmgr.Conn. A handshake in progress has
// nothing graceful to do; it only reacts to CloseWhenIdle/DropConnection.
func (m *Manager) NotifyPendingShutdown() {}

// CloseWhenIdle implements connmgr.Conn by dropping the in-progress
// handshake outright, since a handshake is never considered idle.
func (m *Manager) CloseWhenIdle() {
	m.DropConnection("closing on drain")
}

// DropConnection implements connmgr.Conn: closes the underlying socket (or
// asks the active helper to) and reports failure.
func (m *Manager) DropConnection(reason string) {
	g := m.gd.Guard()
	defer g.Release()

	m.finishError(ErrorDropped.Error())
}
