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

package protocol

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// String returns the golang net package network name for the protocol,
// or an empty string if the protocol is empty or undefined.
func (p NetworkProtocol) String() string {
	switch p {
	case NetworkUnix:
		return "unix"
	case NetworkTCP:
		return "tcp"
	case NetworkTCP4:
		return "tcp4"
	case NetworkTCP6:
		return "tcp6"
	case NetworkUDP:
		return "udp"
	case NetworkUDP4:
		return "udp4"
	case NetworkUDP6:
		return "udp6"
	case NetworkIP:
		return "ip"
	case NetworkIP4:
		return "ip4"
	case NetworkIP6:
		return "ip6"
	case NetworkUnixGram:
		return "unixgram"
	}

	return ""
}

// Code returns the canonical lowercase code of the protocol. The network
// names are already lowercase so Code is an alias for String.
func (p NetworkProtocol) Code() string {
	return p.String()
}

// Int returns the numeric value of the protocol, or 0 if undefined.
func (p NetworkProtocol) Int() int {
	if p > NetworkUnixGram {
		return 0
	}

	return int(p)
}

// Int64 returns the numeric value of the protocol, or 0 if undefined.
func (p NetworkProtocol) Int64() int64 {
	return int64(p.Int())
}

// Uint returns the numeric value of the protocol, or 0 if undefined.
func (p NetworkProtocol) Uint() uint {
	return uint(p.Int())
}

// Uint64 returns the numeric value of the protocol, or 0 if undefined.
func (p NetworkProtocol) Uint64() uint64 {
	return uint64(p.Int())
}

// MarshalJSON implements json.Marshaler. Undefined protocols marshal to
// an empty json string, never to an error.
func (p NetworkProtocol) MarshalJSON() ([]byte, error) {
	s := p.Code()
	b := make([]byte, 0, len(s)+2)
	b = append(b, '"')
	b = append(b, []byte(s)...)
	b = append(b, '"')
	return b, nil
}

// UnmarshalJSON implements json.Unmarshaler. Unknown values silently
// decode to NetworkEmpty.
func (p *NetworkProtocol) UnmarshalJSON(b []byte) error {
	*p = ParseBytes(b)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (p NetworkProtocol) MarshalYAML() (interface{}, error) {
	return p.Code(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler for yaml.v3 nodes.
func (p *NetworkProtocol) UnmarshalYAML(value *yaml.Node) error {
	*p = Parse(value.Value)
	return nil
}

// MarshalTOML marshals the protocol to its raw toml value.
func (p NetworkProtocol) MarshalTOML() ([]byte, error) {
	return []byte(p.Code()), nil
}

// UnmarshalTOML accepts the string or []byte value handed over by the
// toml decoder; any other input type is rejected.
func (p *NetworkProtocol) UnmarshalTOML(i interface{}) error {
	switch v := i.(type) {
	case []byte:
		*p = ParseBytes(v)
		return nil
	case string:
		*p = Parse(v)
		return nil
	}

	return fmt.Errorf("network protocol: value is not in valid format")
}

// MarshalText implements encoding.TextMarshaler.
func (p NetworkProtocol) MarshalText() ([]byte, error) {
	return []byte(p.Code()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown values
// silently decode to NetworkEmpty.
func (p *NetworkProtocol) UnmarshalText(b []byte) error {
	*p = ParseBytes(b)
	return nil
}

// MarshalCBOR marshals the protocol to its raw code bytes.
func (p NetworkProtocol) MarshalCBOR() ([]byte, error) {
	return []byte(p.Code()), nil
}

// UnmarshalCBOR decodes raw code bytes produced by MarshalCBOR.
func (p *NetworkProtocol) UnmarshalCBOR(b []byte) error {
	*p = ParseBytes(b)
	return nil
}
