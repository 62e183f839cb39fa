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
	"context"
	"crypto/tls"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	libptc "github.com/sabouaram/netacceptor/network/protocol"
	libsck "github.com/sabouaram/netacceptor/socket"
	sckcfg "github.com/sabouaram/netacceptor/socket/config"
)

type srv struct {
	m   sync.Mutex
	cfg sckcfg.Server
	hdl libsck.HandlerFunc

	fe libsck.FuncError
	fi libsck.FuncInfo

	run atomic.Bool
	cnl context.CancelFunc
	lis net.Listener
	wg  sync.WaitGroup
}

func (o *srv) fctError(e ...error) {
	o.m.Lock()
	f := o.fe
	o.m.Unlock()

	if f == nil {
		return
	}

	lst := make([]error, 0, len(e))
	for _, err := range e {
		if err != nil {
			lst = append(lst, err)
		}
	}

	if len(lst) > 0 {
		f(lst...)
	}
}

func (o *srv) fctInfo(local, remote net.Addr, state libsck.ConnState) {
	o.m.Lock()
	f := o.fi
	o.m.Unlock()

	if f != nil {
		f(local, remote, state)
	}
}

func (o *srv) RegisterFuncError(f libsck.FuncError) {
	o.m.Lock()
	defer o.m.Unlock()

	o.fe = f
}

func (o *srv) RegisterFuncInfo(f libsck.FuncInfo) {
	o.m.Lock()
	defer o.m.Unlock()

	o.fi = f
}

func (o *srv) IsRunning() bool {
	return o.run.Load()
}

func (o *srv) Listen(ctx context.Context) error {
	if !o.run.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	defer o.run.Store(false)

	x, n := context.WithCancel(ctx)
	defer n()

	o.m.Lock()
	o.cnl = n
	o.m.Unlock()

	switch o.cfg.Network {
	case libptc.NetworkUDP, libptc.NetworkUDP4, libptc.NetworkUDP6, libptc.NetworkUnixGram:
		return o.listenPacket(x)
	}

	return o.listenStream(x)
}

func (o *srv) listenStream(ctx context.Context) error {
	var (
		lsc net.ListenConfig
		lis net.Listener
		err error
	)

	lis, err = lsc.Listen(ctx, o.cfg.Network.Code(), o.cfg.Address)
	if err != nil {
		o.fctError(err)
		return err
	}

	if e := o.applyUnixPerm(); e != nil {
		_ = lis.Close()
		o.fctError(e)
		return e
	}

	if ssl, cfg := o.cfg.GetTLS(); ssl {
		lis = tls.NewListener(lis, cfg.TLS(""))
	}

	o.m.Lock()
	o.lis = lis
	o.m.Unlock()

	go func() {
		<-ctx.Done()
		_ = lis.Close()
	}()

	defer func() {
		_ = lis.Close()
		o.cleanUnixPath()
		o.wg.Wait()
	}()

	for {
		cnn, err := lis.Accept()

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			if err = libsck.ErrorFilter(err); err == nil {
				return nil
			}

			o.fctError(err)
			return err
		}

		o.fctInfo(cnn.LocalAddr(), cnn.RemoteAddr(), libsck.ConnectionNew)

		o.wg.Add(1)
		go o.handle(ctx, cnn)
	}
}

// listenPacket serves datagram networks: each inbound datagram is
// handed to the handler as a one-shot connection replying to its peer.
func (o *srv) listenPacket(ctx context.Context) error {
	var (
		lsc net.ListenConfig
		pck net.PacketConn
		err error
	)

	pck, err = lsc.ListenPacket(ctx, o.cfg.Network.Code(), o.cfg.Address)
	if err != nil {
		o.fctError(err)
		return err
	}

	if e := o.applyUnixPerm(); e != nil {
		_ = pck.Close()
		o.fctError(e)
		return e
	}

	go func() {
		<-ctx.Done()
		_ = pck.Close()
	}()

	defer func() {
		_ = pck.Close()
		o.cleanUnixPath()
		o.wg.Wait()
	}()

	buf := make([]byte, libsck.DefaultBufferSize)

	for {
		n, adr, err := pck.ReadFrom(buf)

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			if err = libsck.ErrorFilter(err); err == nil {
				return nil
			}

			o.fctError(err)
			return err
		}

		dat := make([]byte, n)
		copy(dat, buf[:n])

		o.fctInfo(pck.LocalAddr(), adr, libsck.ConnectionNew)

		o.wg.Add(1)
		go o.handleDatagram(ctx, pck, adr, dat)
	}
}

func (o *srv) handle(ctx context.Context, cnn net.Conn) {
	defer o.wg.Done()

	defer func() {
		o.fctInfo(cnn.LocalAddr(), cnn.RemoteAddr(), libsck.ConnectionClose)
		_ = cnn.Close()
	}()

	if d := o.cfg.ConIdleTimeout.Time(); d > 0 {
		_ = cnn.SetDeadline(time.Now().Add(d))
	}

	o.fctInfo(cnn.LocalAddr(), cnn.RemoteAddr(), libsck.ConnectionHandler)
	o.hdl(newConnContext(ctx, cnn))
}

func (o *srv) handleDatagram(ctx context.Context, pck net.PacketConn, adr net.Addr, dat []byte) {
	defer o.wg.Done()

	o.fctInfo(pck.LocalAddr(), adr, libsck.ConnectionHandler)
	o.hdl(newDatagramContext(ctx, pck, adr, dat))
}

// applyUnixPerm chowns / chmods a unix socket path once it is bound.
func (o *srv) applyUnixPerm() error {
	switch o.cfg.Network {
	case libptc.NetworkUnix, libptc.NetworkUnixGram:
	default:
		return nil
	}

	if p := o.cfg.PermFile.FileMode(); p != 0 {
		if e := os.Chmod(o.cfg.Address, p); e != nil {
			return e
		}
	}

	if g := o.cfg.GroupPerm; g >= 0 {
		if e := os.Chown(o.cfg.Address, -1, int(g)); e != nil {
			return e
		}
	}

	return nil
}

func (o *srv) cleanUnixPath() {
	switch o.cfg.Network {
	case libptc.NetworkUnix, libptc.NetworkUnixGram:
		_ = os.Remove(o.cfg.Address)
	}
}

func (o *srv) Shutdown(ctx context.Context) error {
	o.m.Lock()
	n := o.cnl
	l := o.lis
	o.m.Unlock()

	if n != nil {
		n()
	}

	if l != nil {
		_ = l.Close()
	}

	fin := make(chan struct{})

	go func() {
		o.wg.Wait()
		close(fin)
	}()

	select {
	case <-fin:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *srv) Close() error {
	o.m.Lock()
	n := o.cnl
	l := o.lis
	o.m.Unlock()

	if n != nil {
		n()
	}

	if l != nil {
		return libsck.ErrorFilter(l.Close())
	}

	return nil
}
