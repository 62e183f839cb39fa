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

// Package server binds one endpoint described by a socket/config Server
// and dispatches every accepted connection (or datagram peer) to a
// socket.HandlerFunc, with optional TLS layering for tcp networks.
package server

import (
	"errors"

	libsck "github.com/sabouaram/netacceptor/socket"
	sckcfg "github.com/sabouaram/netacceptor/socket/config"
)

var (
	// ErrInvalidHandler is returned by New when no handler is given.
	ErrInvalidHandler = errors.New("invalid handler")

	// ErrAlreadyRunning is returned by Listen when the server already
	// serves its endpoint.
	ErrAlreadyRunning = errors.New("server already running")
)

// New validates the configuration and returns an inert server: the
// endpoint is bound when Listen is called.
func New(hdl libsck.HandlerFunc, cfg sckcfg.Server) (libsck.Server, error) {
	if hdl == nil {
		return nil, ErrInvalidHandler
	}

	if e := cfg.Validate(); e != nil {
		return nil, e
	}

	return &srv{
		cfg: cfg,
		hdl: hdl,
	}, nil
}
