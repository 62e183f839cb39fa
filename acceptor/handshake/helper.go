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

package handshake

import (
	"crypto/tls"
	"net"
)

// Callback receives the outcome of a Helper's handshake attempt.
type Callback interface {
	ConnectionReady(transport net.Conn, nextProtocol string, secure bool, err error)
	ConnectionError(err error)
}

// Helper drives a recognized connection from raw socket to an
// application-ready transport, or reports why it could not.
type Helper interface {
	Start(conn net.Conn, cb Callback)
	DropConnection(reason string)
}

// TLSHelper performs a server-side TLS handshake using cfg, then reports the
// negotiated ALPN protocol.
type TLSHelper struct {
	cfg  *tls.Config
	conn net.Conn
}

// NewTLSHelper builds a TLSHelper that will handshake with cfg once started.
func NewTLSHelper(cfg *tls.Config) *TLSHelper {
	return &TLSHelper{cfg: cfg}
}

func (h *TLSHelper) Start(conn net.Conn, cb Callback) {
	h.conn = conn

	tlsConn := tls.Server(conn, h.cfg)
	go func() {
		if err := tlsConn.Handshake(); err != nil {
			cb.ConnectionError(ErrorHandshake.Error(err))
			return
		}

		cb.ConnectionReady(tlsConn, tlsConn.ConnectionState().NegotiatedProtocol, true, nil)
	}()
}

func (h *TLSHelper) DropConnection(string) {
	if h.conn != nil {
		_ = h.conn.Close()
	}
}

// PlaintextHelper hands the connection straight through with no handshake.
type PlaintextHelper struct {
	conn net.Conn
}

// NewPlaintextHelper builds a PlaintextHelper.
func NewPlaintextHelper() *PlaintextHelper {
	return &PlaintextHelper{}
}

func (h *PlaintextHelper) Start(conn net.Conn, cb Callback) {
	h.conn = conn
	cb.ConnectionReady(conn, "", false, nil)
}

func (h *PlaintextHelper) DropConnection(string) {
	if h.conn != nil {
		_ = h.conn.Close()
	}
}
