/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package secctx

const (
	tlsRecordTypeHandshake = 0x16
	tlsMajorVersionSSL3Up  = 0x03
)

// PlaintextDetector recognizes connections whose first byte is not a TLS
// handshake record, and hands back a caller-supplied helper for them. It
// declares a non-zero BytesRequired so it gets first refusal over the
// default-to-TLS callback.
type PlaintextDetector struct {
	bytesRequired int
	newHelper     func(peeked []byte) Helper
}

// NewPlaintextDetector builds a PlaintextDetector that needs bytesRequired
// peeked bytes before deciding, and delegates helper construction to
// newHelper once it recognizes a non-TLS connection.
func NewPlaintextDetector(bytesRequired int, newHelper func(peeked []byte) Helper) *PlaintextDetector {
	return &PlaintextDetector{bytesRequired: bytesRequired, newHelper: newHelper}
}

func (d *PlaintextDetector) BytesRequired() int {
	return d.bytesRequired
}

func (d *PlaintextDetector) GetHelper(peeked []byte) (Helper, bool) {
	if looksLikeTLSClientHello(peeked) {
		return nil, false
	}

	return d.newHelper(peeked), true
}

// DefaultTLSCallback always matches; it requires zero peeked bytes and is
// meant to be registered last as the catch-all.
type DefaultTLSCallback struct {
	newHelper func(peeked []byte) Helper
}

// NewDefaultTLSCallback builds a DefaultTLSCallback delegating helper
// construction to newHelper.
func NewDefaultTLSCallback(newHelper func(peeked []byte) Helper) *DefaultTLSCallback {
	return &DefaultTLSCallback{newHelper: newHelper}
}

func (d *DefaultTLSCallback) BytesRequired() int {
	return 0
}

func (d *DefaultTLSCallback) GetHelper(peeked []byte) (Helper, bool) {
	return d.newHelper(peeked), true
}

// looksLikeTLSClientHello is a coarse sniff: a ClientHello opens with a
// handshake record (0x16) followed by an SSLv3-or-later major version
// byte (0x03).
func looksLikeTLSClientHello(peeked []byte) bool {
	if len(peeked) < 2 {
		return false
	}

	return peeked[0] == tlsRecordTypeHandshake && peeked[1] == tlsMajorVersionSSL3Up
}
