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

package server

import (
	"bytes"
	"context"
	"io"
	"net"
	"sync/atomic"

	libsck "github.com/sabouaram/netacceptor/socket"
)

// cnnCtx is the stream-connection view handed to the handler.
type cnnCtx struct {
	context.Context

	cnn net.Conn
	cls atomic.Bool
}

func newConnContext(ctx context.Context, cnn net.Conn) libsck.Context {
	return &cnnCtx{
		Context: ctx,
		cnn:     cnn,
	}
}

func (o *cnnCtx) IsConnected() bool {
	return !o.cls.Load() && o.Err() == nil
}

func (o *cnnCtx) LocalHost() string {
	return o.cnn.LocalAddr().String()
}

func (o *cnnCtx) RemoteHost() string {
	return o.cnn.RemoteAddr().String()
}

func (o *cnnCtx) Read(p []byte) (int, error) {
	if o.cls.Load() {
		return 0, net.ErrClosed
	}

	return o.cnn.Read(p)
}

func (o *cnnCtx) Write(p []byte) (int, error) {
	if o.cls.Load() {
		return 0, net.ErrClosed
	}

	return o.cnn.Write(p)
}

func (o *cnnCtx) Close() error {
	if !o.cls.CompareAndSwap(false, true) {
		return nil
	}

	return libsck.ErrorFilter(o.cnn.Close())
}

// dgmCtx is the one-shot datagram view: reads drain the received
// payload, writes reply to the peer through the shared packet conn.
type dgmCtx struct {
	context.Context

	pck net.PacketConn
	adr net.Addr
	buf *bytes.Reader
	cls atomic.Bool
}

func newDatagramContext(ctx context.Context, pck net.PacketConn, adr net.Addr, dat []byte) libsck.Context {
	return &dgmCtx{
		Context: ctx,
		pck:     pck,
		adr:     adr,
		buf:     bytes.NewReader(dat),
	}
}

func (o *dgmCtx) IsConnected() bool {
	return !o.cls.Load() && o.Err() == nil
}

func (o *dgmCtx) LocalHost() string {
	return o.pck.LocalAddr().String()
}

func (o *dgmCtx) RemoteHost() string {
	return o.adr.String()
}

func (o *dgmCtx) Read(p []byte) (int, error) {
	if o.cls.Load() {
		return 0, io.EOF
	}

	return o.buf.Read(p)
}

func (o *dgmCtx) Write(p []byte) (int, error) {
	if o.cls.Load() {
		return 0, net.ErrClosed
	}

	return o.pck.WriteTo(p, o.adr)
}

func (o *dgmCtx) Close() error {
	o.cls.Store(true)
	return nil
}
