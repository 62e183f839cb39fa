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

package client

import (
	"context"
	"crypto/tls"
	"net"
	"sync"

	libsck "github.com/sabouaram/netacceptor/socket"
	sckcfg "github.com/sabouaram/netacceptor/socket/config"
)

type cli struct {
	m   sync.Mutex
	cfg sckcfg.Client
	cnn net.Conn

	fe libsck.FuncError
	fi libsck.FuncInfo
}

func (o *cli) fctError(e ...error) {
	if o.fe == nil {
		return
	}

	lst := make([]error, 0, len(e))
	for _, err := range e {
		if err != nil {
			lst = append(lst, err)
		}
	}

	if len(lst) > 0 {
		o.fe(lst...)
	}
}

func (o *cli) fctInfo(local, remote net.Addr, state libsck.ConnState) {
	if o.fi != nil {
		o.fi(local, remote, state)
	}
}

func (o *cli) RegisterFuncError(f libsck.FuncError) {
	o.m.Lock()
	defer o.m.Unlock()

	o.fe = f
}

func (o *cli) RegisterFuncInfo(f libsck.FuncInfo) {
	o.m.Lock()
	defer o.m.Unlock()

	o.fi = f
}

func (o *cli) Connect(ctx context.Context) error {
	o.m.Lock()
	defer o.m.Unlock()

	if o.cnn != nil {
		_ = o.cnn.Close()
		o.cnn = nil
	}

	o.fctInfo(nil, nil, libsck.ConnectionDial)

	var (
		dia net.Dialer
		cnn net.Conn
		err error
	)

	cnn, err = dia.DialContext(ctx, o.cfg.Network.Code(), o.cfg.Address)
	if err != nil {
		o.fctError(err)
		return err
	}

	if ssl, cfg, srv := o.cfg.GetTLS(); ssl {
		tcn := tls.Client(cnn, cfg.TLS(srv))

		if err = tcn.HandshakeContext(ctx); err != nil {
			_ = cnn.Close()
			o.fctError(err)
			return err
		}

		cnn = tcn
	}

	o.cnn = cnn
	o.fctInfo(cnn.LocalAddr(), cnn.RemoteAddr(), libsck.ConnectionNew)

	return nil
}

func (o *cli) IsConnected() bool {
	o.m.Lock()
	defer o.m.Unlock()

	return o.cnn != nil
}

func (o *cli) Read(p []byte) (int, error) {
	o.m.Lock()
	cnn := o.cnn
	o.m.Unlock()

	if cnn == nil {
		return 0, ErrNotConnected
	}

	o.fctInfo(cnn.LocalAddr(), cnn.RemoteAddr(), libsck.ConnectionRead)
	return cnn.Read(p)
}

func (o *cli) Write(p []byte) (int, error) {
	o.m.Lock()
	cnn := o.cnn
	o.m.Unlock()

	if cnn == nil {
		return 0, ErrNotConnected
	}

	o.fctInfo(cnn.LocalAddr(), cnn.RemoteAddr(), libsck.ConnectionWrite)
	return cnn.Write(p)
}

func (o *cli) Close() error {
	o.m.Lock()
	defer o.m.Unlock()

	if o.cnn == nil {
		return nil
	}

	o.fctInfo(o.cnn.LocalAddr(), o.cnn.RemoteAddr(), libsck.ConnectionClose)

	err := o.cnn.Close()
	o.cnn = nil

	return libsck.ErrorFilter(err)
}
