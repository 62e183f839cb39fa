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

// Package client dials one endpoint described by a socket/config Client
// and exposes the connection through the socket.Client contract, with
// optional TLS layering for tcp networks.
package client

import (
	"errors"

	libtls "github.com/sabouaram/netacceptor/certificates"
	libsck "github.com/sabouaram/netacceptor/socket"
	sckcfg "github.com/sabouaram/netacceptor/socket/config"
)

// ErrNotConnected is returned by Read / Write before Connect succeeded
// or after Close.
var ErrNotConnected = errors.New("client not connected")

// New validates the configuration and returns an inert client: no
// network activity happens before Connect. def, when not nil, is the
// base TLS configuration merged under the client's own TLS tuning.
func New(cfg sckcfg.Client, def libtls.TLSConfig) (libsck.Client, error) {
	if e := cfg.Validate(); e != nil {
		return nil, e
	}

	if def != nil {
		cfg.DefaultTLS(def)
	}

	return &cli{
		cfg: cfg,
	}, nil
}
