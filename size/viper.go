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
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// ViperDecoderHook returns a mapstructure decode hook allowing viper to
// decode a Size field from a human-readable string, a raw numeric byte
// count, or a byte slice. Data that does not type-assert to the declared
// source kind is passed through untouched.
func ViperDecoderHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		var ref Size

		if to != reflect.TypeOf(ref) {
			return data, nil
		}

		switch from.Kind() {
		case reflect.String:
			if s, k := data.(string); k {
				return Parse(s)
			}

		case reflect.Int:
			if i, k := data.(int); k {
				return ParseInt64(int64(i)), nil
			}

		case reflect.Int8:
			if i, k := data.(int8); k {
				return ParseInt64(int64(i)), nil
			}

		case reflect.Int16:
			if i, k := data.(int16); k {
				return ParseInt64(int64(i)), nil
			}

		case reflect.Int32:
			if i, k := data.(int32); k {
				return ParseInt64(int64(i)), nil
			}

		case reflect.Int64:
			if i, k := data.(int64); k {
				return ParseInt64(i), nil
			}

		case reflect.Uint:
			if i, k := data.(uint); k {
				return ParseUint64(uint64(i)), nil
			}

		case reflect.Uint8:
			if i, k := data.(uint8); k {
				return ParseUint64(uint64(i)), nil
			}

		case reflect.Uint16:
			if i, k := data.(uint16); k {
				return ParseUint64(uint64(i)), nil
			}

		case reflect.Uint32:
			if i, k := data.(uint32); k {
				return ParseUint64(uint64(i)), nil
			}

		case reflect.Uint64:
			if i, k := data.(uint64); k {
				return ParseUint64(i), nil
			}

		case reflect.Float32:
			if f, k := data.(float32); k {
				return ParseFloat64(float64(f)), nil
			}

		case reflect.Float64:
			if f, k := data.(float64); k {
				return ParseFloat64(f), nil
			}

		case reflect.Slice:
			if b, k := data.([]byte); k {
				return ParseByte(b)
			}
		}

		return data, nil
	}
}
