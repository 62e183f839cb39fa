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

// Package config defines the serializable client and server socket
// configurations shared by the socket/client and socket/server
// packages: network protocol, endpoint address, unix-socket ownership
// and the optional TLS layer.
package config

import (
	"errors"
	"runtime"

	libptc "github.com/sabouaram/netacceptor/network/protocol"
)

var (
	// ErrInvalidProtocol flags a network protocol the socket layer
	// cannot serve (unknown value, or unix sockets on windows).
	ErrInvalidProtocol = errors.New("invalid protocol")

	// ErrInvalidTLSConfig flags a TLS layer that cannot be applied:
	// enabled on a datagram or unix network, missing certificates on a
	// server, or a missing server name on a client.
	ErrInvalidTLSConfig = errors.New("invalid TLS config")

	// ErrInvalidGroup flags a unix-socket group id outside [−1, MaxGID].
	ErrInvalidGroup = errors.New("invalid unix group")
)

// MaxGID is the highest unix group id accepted for socket ownership.
const MaxGID int32 = 32767

func isTCP(p libptc.NetworkProtocol) bool {
	switch p {
	case libptc.NetworkTCP, libptc.NetworkTCP4, libptc.NetworkTCP6:
		return true
	}

	return false
}

func isUDP(p libptc.NetworkProtocol) bool {
	switch p {
	case libptc.NetworkUDP, libptc.NetworkUDP4, libptc.NetworkUDP6:
		return true
	}

	return false
}

func isUnix(p libptc.NetworkProtocol) bool {
	switch p {
	case libptc.NetworkUnix, libptc.NetworkUnixGram:
		return true
	}

	return false
}

func unixSupported() bool {
	return runtime.GOOS != "windows"
}
