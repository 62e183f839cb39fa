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

package size

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// MarshalJSON implements json.Marshaler using the human-readable form.
func (s Size) MarshalJSON() ([]byte, error) {
	v := s.String()
	b := make([]byte, 0, len(v)+2)
	b = append(b, '"')
	b = append(b, []byte(v)...)
	b = append(b, '"')
	return b, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Size) UnmarshalJSON(b []byte) error {
	v, e := ParseByte(b)
	if e != nil {
		return e
	}

	*s = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Size) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler for yaml.v3 nodes.
func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	v, e := Parse(value.Value)
	if e != nil {
		return e
	}

	*s = v
	return nil
}

// MarshalTOML marshals the size to its raw toml value.
func (s Size) MarshalTOML() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalTOML accepts the string or []byte value handed over by the
// toml decoder; any other input type is rejected.
func (s *Size) UnmarshalTOML(i interface{}) error {
	switch v := i.(type) {
	case []byte:
		r, e := ParseByte(v)
		if e != nil {
			return e
		}
		*s = r
		return nil

	case string:
		r, e := Parse(v)
		if e != nil {
			return e
		}
		*s = r
		return nil
	}

	return fmt.Errorf("size: value is not in valid format")
}

// MarshalText implements encoding.TextMarshaler.
func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Size) UnmarshalText(b []byte) error {
	v, e := ParseByte(b)
	if e != nil {
		return e
	}

	*s = v
	return nil
}

// MarshalCBOR implements cbor.Marshaler over the human-readable form.
func (s Size) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(s.String())
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (s *Size) UnmarshalCBOR(b []byte) error {
	var v string

	if e := cbor.Unmarshal(b, &v); e != nil {
		return e
	}

	r, e := Parse(v)
	if e != nil {
		return e
	}

	*s = r
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler as a fixed 8-byte
// big-endian byte count.
func (s Size) MarshalBinary() ([]byte, error) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(s))
	return b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Size) UnmarshalBinary(b []byte) error {
	if len(b) != 8 {
		return fmt.Errorf("size: invalid binary length '%d'", len(b))
	}

	*s = Size(binary.BigEndian.Uint64(b))
	return nil
}
