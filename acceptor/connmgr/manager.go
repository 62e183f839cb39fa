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

// Package connmgr tracks the live connections of one worker: idle-timer
// integration, LRU-style early eviction under pressure, and the two-phase
// graceful drain protocol.
package connmgr

import (
	"math"
	"sync"
	"time"

	"github.com/sabouaram/netacceptor/acceptor/evloop"
	liberr "github.com/sabouaram/netacceptor/errors"
)

// Conn is anything the manager can track. Implementations decide what
// "busy" means for themselves; the manager only needs to be told when that
// changes (OnActivated/OnDeactivated) and to be able to deliver the three
// lifecycle notifications below.
type Conn interface {
	// NotifyPendingShutdown tells the connection a drain has begun.
	NotifyPendingShutdown()
	// CloseWhenIdle tells the connection to close itself once it next goes
	// idle (or immediately, if it already is).
	CloseWhenIdle()
	// DropConnection forcibly and immediately tears the connection down.
	DropConnection(reason string)
}

type drainPhase int

const (
	phaseNone drainPhase = iota
	phaseNotifyPending
	phaseNotifyPendingComplete
	phaseCloseWhenIdle
	phaseCloseWhenIdleComplete
)

// connNode is one intrusive list entry. Manager never exposes it; callers
// hold a *Handle instead, so the connection and its list node stay glued
// together without the connection type embedding list pointers itself.
type connNode struct {
	prev, next *connNode
	conn       Conn
	mgr        *Manager
	idle       bool
	idleSince  time.Time
	timer      *time.Timer
}

// Handle is the token returned by Add; pass it back into Remove,
// OnActivated, OnDeactivated and Touch.
type Handle struct {
	node *connNode
}

// Manager is a per-worker registry of live connections, ordered as a
// [busy prefix | idle suffix] list with an idle cursor marking the boundary
// and a drain cursor tracking graceful-shutdown progress.
type Manager struct {
	mu sync.Mutex

	head, tail *connNode
	idleCursor *connNode
	size       int

	idleTimeout        time.Duration
	earlyDropThreshold time.Duration
	drainBatchSize     int

	onEmpty func()
	loop    *evloop.Loop

	drainPhase  drainPhase
	drainCursor *connNode
}

// New builds a Manager. idleTimeout arms per-connection idle timers when
// Add is called with armTimeout=true; earlyDropThreshold gates
// DropIdleConnections. drainBatchSize is the per-iteration quantum for
// graceful drain (0 defaults to 64).
func New(l *evloop.Loop, idleTimeout, earlyDropThreshold time.Duration, drainBatchSize int) *Manager {
	if drainBatchSize <= 0 {
		drainBatchSize = 64
	}

	return &Manager{
		loop:               l,
		idleTimeout:        idleTimeout,
		earlyDropThreshold: earlyDropThreshold,
		drainBatchSize:     drainBatchSize,
	}
}

// SetOnEmpty registers the callback fired exactly once per transition from
// non-empty to empty.
func (m *Manager) SetOnEmpty(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onEmpty = f
}

// Len returns the current number of tracked connections.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.size
}

func (m *Manager) pushFront(n *connNode) {
	n.prev = nil
	n.next = m.head

	if m.head != nil {
		m.head.prev = n
	}

	m.head = n

	if m.tail == nil {
		m.tail = n
	}
}

func (m *Manager) pushBack(n *connNode) {
	n.next = nil
	n.prev = m.tail

	if m.tail != nil {
		m.tail.next = n
	}

	m.tail = n

	if m.head == nil {
		m.head = n
	}
}

func (m *Manager) unlink(n *connNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		m.head = n.next
	}

	if n.next != nil {
		n.next.prev = n.prev
	} else {
		m.tail = n.prev
	}

	n.prev, n.next = nil, nil
}

// Add registers conn at the busy front of the list. If conn was previously
// added to this same manager, it is first atomically removed (cross-manager
// reparenting is the caller's responsibility per the documented-not-enforced
// contract). If armTimeout, an idle timer is scheduled at the configured
// idle timeout. If a graceful shutdown has already reached the
// notify-pending phase, the notification is delivered immediately; if it
// has reached close-when-idle, the delivery is deferred to the loop so the
// node is fully linked first.
func (m *Manager) Add(conn Conn, armTimeout bool) *Handle {
	m.mu.Lock()

	n := &connNode{conn: conn, mgr: m}
	m.pushFront(n)
	m.size++

	if armTimeout && m.idleTimeout > 0 {
		n.timer = time.AfterFunc(m.idleTimeout, func() {
			m.onIdleTimeout(n)
		})
	}

	phase := m.drainPhase
	m.mu.Unlock()

	switch phase {
	case phaseNotifyPending, phaseNotifyPendingComplete:
		conn.NotifyPendingShutdown()
	case phaseCloseWhenIdle, phaseCloseWhenIdleComplete:
		if m.loop != nil {
			m.loop.RunInLoop(func() { conn.CloseWhenIdle() })
		} else {
			conn.CloseWhenIdle()
		}
	}

	return &Handle{node: n}
}

func (m *Manager) onIdleTimeout(n *connNode) {
	m.mu.Lock()
	if n.mgr != m {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	n.conn.DropConnection("idle timeout")
}

// Remove cancels the timer, advances any cursor referencing conn, and
// erases it. A silent no-op if conn is not managed by this Manager.
func (m *Manager) Remove(h *Handle) liberr.Error {
	if h == nil || h.node == nil {
		return ErrorParamsEmpty.Error(nil)
	}

	m.mu.Lock()

	n := h.node
	if n.mgr != m {
		m.mu.Unlock()
		return ErrorNotManaged.Error(nil)
	}

	if n.timer != nil {
		n.timer.Stop()
	}

	if m.idleCursor == n {
		m.idleCursor = n.next
	}

	if m.drainCursor == n {
		m.drainCursor = n.next
	}

	m.unlink(n)
	n.mgr = nil
	m.size--

	empty := m.size == 0
	cb := m.onEmpty
	m.mu.Unlock()

	if empty && cb != nil {
		cb()
	}

	return nil
}

// OnActivated moves conn to the busy front, per the MRU-of-busy invariant.
func (m *Manager) OnActivated(h *Handle) {
	if h == nil || h.node == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n := h.node
	if n.mgr != m || !n.idle {
		return
	}

	if m.idleCursor == n {
		m.idleCursor = n.next
	}

	m.unlink(n)
	n.idle = false
	m.pushFront(n)
}

// OnDeactivated moves conn to the idle back, per the MRU-of-idle invariant.
func (m *Manager) OnDeactivated(h *Handle) {
	if h == nil || h.node == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n := h.node
	if n.mgr != m || n.idle {
		return
	}

	m.unlink(n)
	n.idle = true
	n.idleSince = time.Now()
	m.pushBack(n)

	if m.idleCursor == nil {
		m.idleCursor = n
	}
}

// Touch resets conn's idle timer, as if it had just become active again.
func (m *Manager) Touch(h *Handle) {
	if h == nil || h.node == nil || m.idleTimeout <= 0 {
		return
	}

	m.mu.Lock()
	n := h.node
	if n.mgr != m {
		m.mu.Unlock()
		return
	}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(m.idleTimeout, func() { m.onIdleTimeout(n) })
	m.mu.Unlock()
}

// DropAllConnections synchronously forces every tracked connection closed.
// Must be called from the manager's event-loop context.
func (m *Manager) DropAllConnections() {
	m.mu.Lock()
	nodes := make([]*connNode, 0, m.size)
	for n := m.head; n != nil; n = n.next {
		nodes = append(nodes, n)
	}
	m.mu.Unlock()

	for _, n := range nodes {
		n.conn.DropConnection("drop all connections")
	}
}

// DropConnections forcibly drops the front fraction (busy-first,
// most-recent-first) of the list. Safe to request from any thread; the
// actual drop runs on the manager's event loop if one is set.
func (m *Manager) DropConnections(fraction float64) {
	do := func() {
		m.mu.Lock()
		n := m.size
		cnt := int(math.Min(float64(n), math.Ceil(float64(n)*fraction)))
		nodes := make([]*connNode, 0, cnt)

		cur := m.head
		for i := 0; i < cnt && cur != nil; i++ {
			nodes = append(nodes, cur)
			cur = cur.next
		}
		m.mu.Unlock()

		for _, nd := range nodes {
			nd.conn.DropConnection("load shed drop")
		}
	}

	if m.loop != nil {
		m.loop.RunInLoop(do)
	} else {
		do()
	}
}

// DropIdleConnections walks the idle suffix from the idle cursor and drops
// connections whose idle duration strictly exceeds earlyDropThreshold,
// stopping at the first connection that does not qualify (idle durations
// are non-increasing from the cursor onward by construction, so the first
// rejection is final). Returns the number actually dropped.
func (m *Manager) DropIdleConnections(n int) int {
	if m.earlyDropThreshold >= m.idleTimeout {
		return 0
	}

	dropped := 0

	for dropped < n {
		m.mu.Lock()
		cur := m.idleCursor
		if cur == nil {
			m.mu.Unlock()
			break
		}

		if time.Since(cur.idleSince) <= m.earlyDropThreshold {
			m.mu.Unlock()
			break
		}

		m.idleCursor = cur.next
		m.mu.Unlock()

		cur.conn.DropConnection("early idle drop")
		dropped++
	}

	return dropped
}

// InitiateGracefulShutdown starts a full, idempotent two-phase drain over
// every tracked connection.
func (m *Manager) InitiateGracefulShutdown(idleGrace time.Duration) {
	m.startDrain(1.0, idleGrace)
}

// DrainConnections starts a two-phase drain restricted to the tail fraction
// of the list (the oldest ceil(size*fraction) busy connections). A no-op if
// a drain is already running.
func (m *Manager) DrainConnections(fraction float64, idleGrace time.Duration) {
	m.startDrain(fraction, idleGrace)
}

func (m *Manager) startDrain(fraction float64, idleGrace time.Duration) {
	m.mu.Lock()
	if m.drainPhase != phaseNone {
		m.mu.Unlock()
		return
	}

	m.drainPhase = phaseNotifyPending

	skip := m.size - int(math.Ceil(float64(m.size)*fraction))
	if skip < 0 {
		skip = 0
	}

	cur := m.head
	for i := 0; i < skip && cur != nil; i++ {
		cur = cur.next
	}
	m.drainCursor = cur
	start := cur
	m.mu.Unlock()

	m.runNotifyPass(start, func() {
		m.mu.Lock()
		m.drainPhase = phaseNotifyPendingComplete
		m.mu.Unlock()

		if idleGrace <= 0 {
			m.beginCloseWhenIdle(start)
			return
		}

		time.AfterFunc(idleGrace, func() {
			m.beginCloseWhenIdle(start)
		})
	})
}

func (m *Manager) runNotifyPass(start *connNode, done func()) {
	var step func(*connNode, int)

	step = func(cur *connNode, budget int) {
		for cur != nil && budget > 0 {
			m.mu.Lock()
			next := cur.next
			m.drainCursor = next
			m.mu.Unlock()

			cur.conn.NotifyPendingShutdown()
			cur = next
			budget--
		}

		if cur == nil {
			done()
			return
		}

		if m.loop != nil {
			m.loop.RunInLoop(func() { step(cur, m.drainBatchSize) })
		} else {
			step(cur, m.drainBatchSize)
		}
	}

	step(start, m.drainBatchSize)
}

func (m *Manager) beginCloseWhenIdle(start *connNode) {
	m.mu.Lock()
	m.drainPhase = phaseCloseWhenIdle
	m.drainCursor = start
	m.mu.Unlock()

	var step func(*connNode, int)

	step = func(cur *connNode, budget int) {
		for cur != nil && budget > 0 {
			m.mu.Lock()
			next := cur.next
			m.drainCursor = next
			m.mu.Unlock()

			cur.conn.CloseWhenIdle()
			cur = next
			budget--
		}

		if cur == nil {
			m.mu.Lock()
			m.drainPhase = phaseCloseWhenIdleComplete
			m.mu.Unlock()
			return
		}

		if m.loop != nil {
			m.loop.RunInLoop(func() { step(cur, m.drainBatchSize) })
		} else {
			step(cur, m.drainBatchSize)
		}
	}

	step(start, m.drainBatchSize)
}

// DrainInProgress reports whether a graceful drain has been started and has
// not yet finished its close-when-idle pass.
func (m *Manager) DrainInProgress() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.drainPhase != phaseNone && m.drainPhase != phaseCloseWhenIdleComplete
}
