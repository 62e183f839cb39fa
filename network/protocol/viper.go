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
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// ViperDecoderHook returns a mapstructure decode hook allowing viper to
// decode a NetworkProtocol field from either its string code or its
// numeric value. Data that does not type-assert to the declared source
// kind is passed through untouched so other hooks can have a try.
func ViperDecoderHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		var ref NetworkProtocol

		if to != reflect.TypeOf(ref) {
			return data, nil
		}

		switch from.Kind() {
		case reflect.String:
			if s, k := data.(string); k {
				return Parse(s), nil
			}

		case reflect.Int:
			if i, k := data.(int); k {
				return numProtocol(int64(i))
			}

		case reflect.Int8:
			if i, k := data.(int8); k {
				return numProtocol(int64(i))
			}

		case reflect.Int16:
			if i, k := data.(int16); k {
				return numProtocol(int64(i))
			}

		case reflect.Int32:
			if i, k := data.(int32); k {
				return numProtocol(int64(i))
			}

		case reflect.Int64:
			if i, k := data.(int64); k {
				return numProtocol(i)
			}

		case reflect.Uint:
			if i, k := data.(uint); k {
				return numProtocolUnsigned(uint64(i))
			}

		case reflect.Uint8:
			if i, k := data.(uint8); k {
				return numProtocolUnsigned(uint64(i))
			}

		case reflect.Uint16:
			if i, k := data.(uint16); k {
				return numProtocolUnsigned(uint64(i))
			}

		case reflect.Uint32:
			if i, k := data.(uint32); k {
				return numProtocolUnsigned(uint64(i))
			}

		case reflect.Uint64:
			if i, k := data.(uint64); k {
				return numProtocolUnsigned(i)
			}

		case reflect.Slice:
			if b, k := data.([]byte); k {
				return ParseBytes(b), nil
			}
		}

		return data, nil
	}
}

func numProtocol(i int64) (interface{}, error) {
	p := ParseInt64(i)
	if p == NetworkEmpty {
		return nil, fmt.Errorf("network protocol: invalid value '%d'", i)
	}

	return p, nil
}

func numProtocolUnsigned(i uint64) (interface{}, error) {
	if i > math.MaxUint16 {
		return nil, fmt.Errorf("network protocol: invalid value '%d'", i)
	}

	return numProtocol(int64(i))
}
