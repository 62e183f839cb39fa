/*
 *  MIT License
 *
 *  Copyright (c) 2020 Nicolas JUHEL
 *
 *  Permission is hereby granted, free of charge, to any person obtaining a copy
 *  of this software and associated documentation files (the "Software"), to deal
 *  in the Software without restriction, including without limitation the rights
 *  to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *  copies of the Software, and to permit persons to whom the Software is
 *  furnished to do so, subject to the following conditions:
 *
 *  The above copyright notice and this permission notice shall be included in all
 *  copies or substantial portions of the Software.
 *
 *  THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *  IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *  FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *  AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *  LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *  OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *  SOFTWARE.
 *
 */

package bufferReadCloser

import (
	"bufio"
	"io"
)

// rdr is the internal implementation of the Reader interface.
// It wraps a bufio.Reader with optional close functionality.
type rdr struct {
	b *bufio.Reader
	f FuncClose
}

// Read reads data from the underlying bufio.Reader into p.
func (o *rdr) Read(p []byte) (n int, err error) {
	return o.b.Read(p)
}

// WriteTo writes buffered data to w until there's no more data to write or an error occurs.
func (o *rdr) WriteTo(w io.Writer) (n int64, err error) {
	return o.b.WriteTo(w)
}

// Close resets the reader (releases buffered data) and calls the custom close function if provided.
// Returns any error from the custom close function.
func (o *rdr) Close() error {
	o.b.Reset(nil)

	if o.f != nil {
		return o.f()
	}

	return nil
}
