/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2023 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package socket holds the shared contracts of the network clients and
// servers implemented in the client and server subpackages: connection
// lifecycle states, handler signatures and the error filter applied to
// teardown noise.
package socket

import (
	"context"
	"errors"
	"net"
)

// DefaultBufferSize is the read buffer size applied to stream handlers
// when the caller does not size one explicitly.
const DefaultBufferSize = 32 * 1024

// EOL terminates line-oriented exchanges.
const EOL byte = '\n'

// FuncError receives the asynchronous errors of a client or server.
type FuncError func(e ...error)

// FuncInfo traces a connection lifecycle transition.
type FuncInfo func(local, remote net.Addr, state ConnState)

// ConnState tags one step of a connection's lifecycle, from dial or
// accept to close, for FuncInfo tracing.
type ConnState uint8

const (
	// ConnectionDial is emitted by clients before dialing the endpoint.
	ConnectionDial ConnState = iota
	// ConnectionNew is emitted once a connection is established.
	ConnectionNew
	// ConnectionRead is emitted before reading the incoming stream.
	ConnectionRead
	// ConnectionCloseRead is emitted when the read side is shut down.
	ConnectionCloseRead
	// ConnectionHandler is emitted before running the handler.
	ConnectionHandler
	// ConnectionWrite is emitted before writing the outgoing stream.
	ConnectionWrite
	// ConnectionCloseWrite is emitted when the write side is shut down.
	ConnectionCloseWrite
	// ConnectionClose is emitted once the connection is fully closed.
	ConnectionClose
)

// String implements fmt.Stringer.
func (s ConnState) String() string {
	switch s {
	case ConnectionDial:
		return "Dial Connection"
	case ConnectionNew:
		return "New Connection"
	case ConnectionRead:
		return "Read Incoming Stream"
	case ConnectionCloseRead:
		return "Close Incoming Stream"
	case ConnectionHandler:
		return "Run HandlerFunc"
	case ConnectionWrite:
		return "Write Outgoing Steam"
	case ConnectionCloseWrite:
		return "Close Outgoing Stream"
	case ConnectionClose:
		return "Close Connection"
	}

	return "unknown connection state"
}

// ErrorFilter drops the teardown noise of a closing socket: the exact
// net.ErrClosed message reported when an accept or read races a Close.
// Any other error, including wrapped or contextualised variants of the
// same message, passes through untouched.
func ErrorFilter(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, net.ErrClosed) || err.Error() == net.ErrClosed.Error() {
		return nil
	}

	return err
}

// Context is the per-connection view handed to a HandlerFunc: the
// connection's stream plus the server context governing its lifetime.
type Context interface {
	context.Context

	// IsConnected reports whether the underlying connection is usable.
	IsConnected() bool

	// LocalHost returns the local address of the connection.
	LocalHost() string

	// RemoteHost returns the remote address of the connection.
	RemoteHost() string

	// Read reads from the incoming stream.
	Read(p []byte) (n int, err error)

	// Write writes to the outgoing stream.
	Write(p []byte) (n int, err error)

	// Close tears the connection down.
	Close() error
}

// HandlerFunc processes one established connection. It runs in its own
// goroutine; returning ends the exchange and closes the connection.
type HandlerFunc func(ctx Context)

// Server is a protocol-bound listener dispatching accepted connections
// to a HandlerFunc.
type Server interface {
	// Listen binds the configured address and serves until the context
	// ends or Shutdown / Close is called.
	Listen(ctx context.Context) error

	// Shutdown stops accepting and closes the listener, waiting at most
	// until ctx expires for in-flight handlers.
	Shutdown(ctx context.Context) error

	// Close is Shutdown without a grace period.
	Close() error

	// IsRunning reports whether Listen is active.
	IsRunning() bool

	// RegisterFuncError installs the asynchronous error callback.
	RegisterFuncError(f FuncError)

	// RegisterFuncInfo installs the lifecycle trace callback.
	RegisterFuncInfo(f FuncInfo)
}

// Client is a protocol-bound dialer exposing the established connection
// as an io.ReadWriteCloser.
type Client interface {
	// Connect dials the configured endpoint, replacing any previous
	// connection.
	Connect(ctx context.Context) error

	// IsConnected reports whether a connection is established.
	IsConnected() bool

	// Read reads from the current connection.
	Read(p []byte) (n int, err error)

	// Write writes to the current connection.
	Write(p []byte) (n int, err error)

	// Close closes the current connection.
	Close() error

	// RegisterFuncError installs the asynchronous error callback.
	RegisterFuncError(f FuncError)

	// RegisterFuncInfo installs the lifecycle trace callback.
	RegisterFuncInfo(f FuncInfo)
}
