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

package acceptor

import (
	"net"

	liblog "github.com/sabouaram/netacceptor/logger"
)

// rejectWithReset closes a shed connection with an RST rather than a FIN:
// SO_LINGER{on,0} frees the kernel buffers immediately instead of parking
// the socket in TIME_WAIT.
func rejectWithReset(conn net.Conn) {
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetLinger(0)
	}

	_ = conn.Close()
}

// applySocketOptions sets the per-connection socket options from the VIP
// configuration on a freshly accepted connection, filtered by the
// connection's address family. Failures are logged and swallowed: a missing
// tuning option is not worth the connection.
func (a *Acceptor) applySocketOptions(conn net.Conn) {
	opts := a.socketConfig.SocketOptions
	if len(opts) == 0 {
		return
	}

	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}

	raw, err := tcp.SyscallConn()
	if err != nil {
		liblog.WarnLevel.Logf("acceptor %q: cannot reach raw connection for socket options: %s", a.name, err.Error())
		return
	}

	network := "tcp4"
	if addr, k := tcp.LocalAddr().(*net.TCPAddr); k && addr.IP.To4() == nil {
		network = "tcp6"
	}

	_ = raw.Control(func(fd uintptr) {
		for _, o := range opts {
			if !o.AppliesTo(network) {
				continue
			}

			if e := setSockoptInt(fd, o.Level, o.Name, o.Value); e != nil {
				liblog.WarnLevel.Logf("acceptor %q: setsockopt(%d,%d)=%d failed: %s", a.name, o.Level, o.Name, o.Value, e.Error())
			}
		}
	})
}
