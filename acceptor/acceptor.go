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

// Package acceptor is the per-VIP connection front door: it admits or sheds
// new TCP connections, drives TLS/plaintext handshake detection through the
// security-protocol context manager, and hands ready connections off to an
// application-supplied hook while a Connection Manager governs their
// lifetime and a graceful drain sequence.
package acceptor

import (
	"net"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/sabouaram/netacceptor/acceptor/config"
	"github.com/sabouaram/netacceptor/acceptor/connmgr"
	"github.com/sabouaram/netacceptor/acceptor/evloop"
	"github.com/sabouaram/netacceptor/acceptor/handshake"
	"github.com/sabouaram/netacceptor/acceptor/secctx"
	libatm "github.com/sabouaram/netacceptor/atomic"
	liberr "github.com/sabouaram/netacceptor/errors"
	liblog "github.com/sabouaram/netacceptor/logger"
)

// ConnectionReadyFunc is the application hook invoked once a connection has
// cleared admission and, for secure VIPs, completed its handshake.
type ConnectionReadyFunc func(conn net.Conn, clientAddr net.Addr, nextProtocol string, secure bool, tinfo *handshake.TransportInfo)

// DrainedFunc is invoked exactly once, after drainAllConnections has
// observed zero live connections and zero pending handshakes.
type DrainedFunc func()

// Acceptor owns one VIP's listening socket lifecycle: admission, the
// plaintext/TLS handshake race, and graceful drain. It is the Go analogue
// of a single worker's Acceptor instance; a process running several VIPs
// constructs one per ServerSocketConfig.
type Acceptor struct {
	name string

	socketConfig *config.ServerSocketConfig
	loadShed     *config.LoadShed

	stateValue    libatm.Value[int32]
	contextsValue libatm.Value[*contextRegistry]
	ticketsValue  libatm.Value[[][32]byte]

	sniNoMatch SNINoMatchFunc

	connMgr *connmgr.Manager
	secCtx  *secctx.Manager
	loop    *evloop.Loop

	handshakeSem *semaphore.Weighted

	numPendingHandshakes int32
	rejects              rejectSampler

	connCounter ConnectionCounter

	onConnectionReady  ConnectionReadyFunc
	onConnectionsDrain DrainedFunc

	listener net.Listener
}

// New builds an Acceptor for one VIP. The Acceptor is inert until Listen is
// called; socketCfg.Validate() is the caller's responsibility, keeping
// config objects validated before they are handed over.
func New(name string, socketCfg *config.ServerSocketConfig, loadShed *config.LoadShed, loop *evloop.Loop, onReady ConnectionReadyFunc) *Acceptor {
	a := &Acceptor{
		name:              name,
		socketConfig:      socketCfg,
		loadShed:          loadShed,
		stateValue:        newStateValue(),
		contextsValue:     newContextsValue(),
		ticketsValue:      libatm.NewValue[[][32]byte](),
		loop:              loop,
		secCtx:            secctx.New(),
		onConnectionReady: onReady,
	}

	a.contextsValue.Store(buildContextRegistry(nil, ""))
	a.UpdateTicketSeeds(socketCfg.InitialTicketSeeds)

	maxHandshakes := socketCfg.MaxConcurrentHandshakes
	if maxHandshakes <= 0 {
		maxHandshakes = config.DefaultMaxConcurrentHandshakes
	}
	a.handshakeSem = semaphore.NewWeighted(maxHandshakes)

	a.connMgr = connmgr.New(loop, socketCfg.ConnectionIdleTimeout.Time(), socketCfg.EarlyDropThreshold().Time(), socketCfg.DrainBatchSize)
	a.connMgr.SetOnEmpty(a.checkDrained)

	a.resetSSLContextConfigs(socketCfg.SSLContextConfigs, "")
	a.wireSecurityProtocols()

	return a
}

// SetConnectionCounter installs the live-connection counter consulted by
// canAccept. Without one, admission is unconditional.
func (a *Acceptor) SetConnectionCounter(c ConnectionCounter) {
	a.connCounter = c
}

// SetOnConnectionsDrained registers the callback fired once drain completes.
func (a *Acceptor) SetOnConnectionsDrained(f DrainedFunc) {
	a.onConnectionsDrain = f
}

// wireSecurityProtocols registers the two built-in PeekCallbacks:
// a plaintext detector that declines on a TLS ClientHello, and a
// default-to-TLS fallback that always matches. Plaintext is only offered on
// VIPs explicitly configured to allow it.
func (a *Acceptor) wireSecurityProtocols() {
	if a.socketConfig.AllowInsecureOnSecure || !a.socketConfig.IsSSL() {
		a.secCtx.AddPeeker(secctx.NewPlaintextDetector(1, func(peeked []byte) secctx.Helper {
			return handshake.NewPlaintextHelper()
		}))
	}

	if a.socketConfig.IsSSL() {
		a.secCtx.AddPeeker(secctx.NewDefaultTLSCallback(func(peeked []byte) secctx.Helper {
			return handshake.NewTLSHelper(a.tlsConfigFor(""))
		}))
	}
}

// Listen opens the VIP's listening socket. Init must be called before Serve.
func (a *Acceptor) Listen() liberr.Error {
	if a.state() != StateInit {
		return ErrorAlreadyRunning.Error(nil)
	}

	if a.socketConfig == nil || a.socketConfig.BindAddress == "" {
		return ErrorNoListener.Error(nil)
	}

	l, err := net.Listen("tcp", a.socketConfig.BindAddress)
	if err != nil {
		return ErrorNoListener.Error(err)
	}

	a.listener = l
	a.setState(StateRunning)
	return nil
}

// Serve runs the accept loop until the listener is closed by Stop or
// ForceStop. It is meant to run on its own goroutine.
func (a *Acceptor) Serve() {
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			if a.state() == StateRunning {
				liblog.ErrorLevel.Logf("acceptor %q: accept failed: %s", a.name, err.Error())
				a.acceptStopped()
			}
			return
		}

		a.connectionAccepted(conn)
	}
}

// connectionAccepted runs admission, then branches the connection into the
// plaintext-ready path or the handshake path depending on whether this VIP
// has any TLS context configured at all.
func (a *Acceptor) connectionAccepted(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()

	if !a.canAccept(remoteAddr) {
		rejectWithReset(conn)
		return
	}

	a.applySocketOptions(conn)

	if !a.socketConfig.IsSSL() {
		a.plaintextConnectionReady(conn)
		return
	}

	if !a.handshakeSem.TryAcquire(1) {
		liblog.WarnLevel.Logf("acceptor %q: rejecting %s, too many concurrent handshakes", a.name, remoteAddr)
		_ = conn.Close()
		return
	}

	a.incrementPendingHandshakes()
	tinfo := &handshake.TransportInfo{AcceptTime: time.Now()}
	hm := handshake.New(a, conn.RemoteAddr(), tinfo.AcceptTime, tinfo, a.secCtx, a.socketConfig.SSLHandshakeTimeout.Time())
	hm.Track(a.connMgr, a.connMgr.Add(hm, true))
	hm.Start(conn)
}

// plaintextConnectionReady is the fast path for VIPs with no TLS context at
// all: no peeking, no handshake manager, straight to the application.
func (a *Acceptor) plaintextConnectionReady(conn net.Conn) {
	tinfo := &handshake.TransportInfo{AcceptTime: time.Now()}
	populateTransportInfo(conn, tinfo)

	tc := a.trackConnection(conn)
	if a.onConnectionReady != nil {
		a.onConnectionReady(tc, conn.RemoteAddr(), "", false, tinfo)
	}
}

// trackConnection registers an application-facing transport with the
// Connection Manager and wraps it so its Close erases the registration.
func (a *Acceptor) trackConnection(conn net.Conn) *trackedConn {
	tc := &trackedConn{Conn: conn, mgr: a.connMgr}
	tc.hnd = a.connMgr.Add(tc, true)
	return tc
}

// trackedConn adapts an application transport to connmgr.Conn: closing it,
// from either side, erases its Connection Manager registration.
type trackedConn struct {
	net.Conn

	mgr  *connmgr.Manager
	hnd  *connmgr.Handle
	once sync.Once
}

func (t *trackedConn) Close() error {
	var err error

	t.once.Do(func() {
		err = t.Conn.Close()
		if t.mgr != nil && t.hnd != nil {
			_ = t.mgr.Remove(t.hnd)
		}
	})

	return err
}

func (t *trackedConn) NotifyPendingShutdown() {}
func (t *trackedConn) CloseWhenIdle()         { _ = t.Close() }
func (t *trackedConn) DropConnection(string)  { _ = t.Close() }

// SSLConnectionReady implements handshake.Acceptor: a handshake completed,
// releasing one semaphore slot, moving the transport under Connection
// Manager tracking, and handing it to the application.
// numPendingHandshakes/globalPendingHandshakes are decremented by
// DecrementPendingHandshakes before this is called.
func (a *Acceptor) SSLConnectionReady(transport net.Conn, clientAddr net.Addr, nextProtocol string, secure bool, tinfo *handshake.TransportInfo) {
	a.handshakeSem.Release(1)

	populateTransportInfo(transport, tinfo)
	tc := a.trackConnection(transport)

	if a.onConnectionReady != nil {
		a.onConnectionReady(tc, clientAddr, nextProtocol, secure, tinfo)
	}
}

// SSLConnectionError implements handshake.Acceptor: the handshake failed or
// was dropped before completion.
func (a *Acceptor) SSLConnectionError(err error) {
	a.handshakeSem.Release(1)
	liblog.WarnLevel.Logf("acceptor %q: handshake failed: %s", a.name, err.Error())
	a.checkDrained()
}

// drainAllConnections begins the graceful shutdown sequence: stop accepting,
// tell every live connection a drain has begun, and let the Connection
// Manager's two-phase protocol carry them to close-on-idle. checkDrained
// fires onConnectionsDrain once both the Connection Manager and the
// in-flight handshake count reach zero.
func (a *Acceptor) drainAllConnections(gracefulTimeout time.Duration) {
	if a.state() != StateRunning {
		return
	}

	a.setState(StateDraining)

	if a.listener != nil {
		_ = a.listener.Close()
	}

	a.connMgr.DrainConnections(1.0, gracefulTimeout)
	a.checkDrained()
}

// DrainAllConnections begins the graceful shutdown sequence with the given
// grace period; onConnectionsDrained fires once everything has gone.
func (a *Acceptor) DrainAllConnections(gracefulTimeout time.Duration) {
	a.drainAllConnections(gracefulTimeout)
}

// ForceStop tears the Acceptor down immediately. Safe from any thread: the
// teardown is posted to the Acceptor's event loop.
func (a *Acceptor) ForceStop() {
	if a.loop != nil {
		a.loop.RunInLoop(a.forceStop)
		return
	}

	a.forceStop()
}

// DropConnections forcibly drops the front fraction of the connection
// list. Safe from any thread.
func (a *Acceptor) DropConnections(fraction float64) {
	a.dropConnections(fraction)
}

// DropIdleConnections evicts up to n connections idle beyond the early-drop
// threshold and returns how many were actually dropped.
func (a *Acceptor) DropIdleConnections(n int) int {
	return a.connMgr.DropIdleConnections(n)
}

// acceptStopped runs when the accept loop terminates: if the Acceptor was
// still running, it moves to draining and checks whether the drain is
// already trivially complete.
func (a *Acceptor) acceptStopped() {
	if a.state() == StateRunning {
		a.setState(StateDraining)
	}

	a.checkDrained()
}

// forceStop tears everything down immediately: stop listening, drop every
// live connection without waiting for idle, and move straight to done.
func (a *Acceptor) forceStop() {
	if a.listener != nil {
		_ = a.listener.Close()
	}

	a.connMgr.DropAllConnections()
	a.setState(StateDone)
}

// dropAllConnections forcibly closes every connection this worker is
// tracking, handshakes included (the handshake manager is itself a
// connmgr.Conn, so DropAllConnections reaches it transparently).
func (a *Acceptor) dropAllConnections() {
	a.connMgr.DropAllConnections()
}

// dropConnections forcibly closes a fraction of this worker's idle
// connections, oldest-idle first, per the Connection Manager's eviction
// order.
func (a *Acceptor) dropConnections(fraction float64) {
	a.connMgr.DropConnections(fraction)
}

// checkDrained fires onConnectionsDrain exactly once, the first time both
// the Connection Manager and the in-flight handshake count reach zero while
// draining.
func (a *Acceptor) checkDrained() {
	if a.state() != StateDraining {
		return
	}

	if a.connMgr.Len() != 0 || a.NumPendingHandshakes() != 0 {
		return
	}

	a.setState(StateDone)

	if a.onConnectionsDrain != nil {
		a.onConnectionsDrain()
	}
}

// CheckDrained is the exported hook consulted by DecrementPendingHandshakes,
// which lives in a different file within this package but outside any
// method that already holds state to re-check.
func (a *Acceptor) CheckDrained() {
	a.checkDrained()
}

// State returns the Acceptor's current lifecycle state.
func (a *Acceptor) State() State {
	return a.state()
}

// Name returns the VIP name this Acceptor was constructed with.
func (a *Acceptor) Name() string {
	return a.name
}
