/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
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

// Package protocol exposes the NetworkProtocol enum shared by every component
// that dials or listens on a network: a strict mapping of the golang net
// package's network names ("tcp", "udp", "unix", ...) onto a compact,
// serializable constant usable in json / yaml / toml / cbor config files.
package protocol

import (
	"math"
	"strings"
)

// NetworkProtocol identifies one of the network kinds accepted by the
// golang net package dial / listen functions. The zero value is
// NetworkEmpty and never matches a real network.
type NetworkProtocol uint8

const (
	// NetworkEmpty is the zero value: no protocol defined.
	NetworkEmpty NetworkProtocol = iota
	// NetworkUnix is a unix stream socket (net "unix").
	NetworkUnix
	// NetworkTCP is a tcp socket, IPv4 or IPv6 (net "tcp").
	NetworkTCP
	// NetworkTCP4 is a tcp socket restricted to IPv4 (net "tcp4").
	NetworkTCP4
	// NetworkTCP6 is a tcp socket restricted to IPv6 (net "tcp6").
	NetworkTCP6
	// NetworkUDP is a udp socket, IPv4 or IPv6 (net "udp").
	NetworkUDP
	// NetworkUDP4 is a udp socket restricted to IPv4 (net "udp4").
	NetworkUDP4
	// NetworkUDP6 is a udp socket restricted to IPv6 (net "udp6").
	NetworkUDP6
	// NetworkIP is a raw ip socket (net "ip").
	NetworkIP
	// NetworkIP4 is a raw ip socket restricted to IPv4 (net "ip4").
	NetworkIP4
	// NetworkIP6 is a raw ip socket restricted to IPv6 (net "ip6").
	NetworkIP6
	// NetworkUnixGram is a unix datagram socket (net "unixgram").
	NetworkUnixGram
)

// unquote removes at most one matching pair of surrounding quotes.
// Nested or mismatched quoting is left alone so that a single config
// layer's quoting is absorbed without guessing deeper.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}

	switch s[0] {
	case '"', '\'', '`':
		if s[len(s)-1] == s[0] {
			return s[1 : len(s)-1]
		}
	}

	return s
}

// Parse returns the NetworkProtocol matching the given string, ignoring
// case, surrounding whitespace and one level of quoting. Unknown values
// return NetworkEmpty.
func Parse(s string) NetworkProtocol {
	s = unquote(strings.TrimSpace(s))

	switch strings.ToLower(strings.TrimSpace(s)) {
	case NetworkUnix.Code():
		return NetworkUnix
	case NetworkTCP.Code():
		return NetworkTCP
	case NetworkTCP4.Code():
		return NetworkTCP4
	case NetworkTCP6.Code():
		return NetworkTCP6
	case NetworkUDP.Code():
		return NetworkUDP
	case NetworkUDP4.Code():
		return NetworkUDP4
	case NetworkUDP6.Code():
		return NetworkUDP6
	case NetworkIP.Code():
		return NetworkIP
	case NetworkIP4.Code():
		return NetworkIP4
	case NetworkIP6.Code():
		return NetworkIP6
	case NetworkUnixGram.Code():
		return NetworkUnixGram
	}

	return NetworkEmpty
}

// ParseBytes is Parse over a raw byte slice.
func ParseBytes(p []byte) NetworkProtocol {
	return Parse(string(p))
}

// ParseInt64 returns the NetworkProtocol whose numeric value is i, or
// NetworkEmpty if i is out of the defined range.
func ParseInt64(i int64) NetworkProtocol {
	if i <= 0 || i > math.MaxUint8 {
		return NetworkEmpty
	}

	p := NetworkProtocol(uint8(i))
	if p > NetworkUnixGram {
		return NetworkEmpty
	}

	return p
}
