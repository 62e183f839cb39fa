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

//go:build linux

package acceptor

import (
	"crypto/tls"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"github.com/sabouaram/netacceptor/acceptor/handshake"
)

// populateTransportInfo fills tinfo with the kernel's TCP_INFO readout for
// conn, best effort: a transport that is not a plain TCP socket, or a
// getsockopt failure, just leaves the fields zeroed.
func populateTransportInfo(conn net.Conn, tinfo *handshake.TransportInfo) {
	if tinfo == nil {
		return
	}

	if tc, ok := conn.(*tls.Conn); ok {
		conn = tc.NetConn()
	}

	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}

	raw, err := tcp.SyscallConn()
	if err != nil {
		return
	}

	_ = raw.Control(func(fd uintptr) {
		ti, e := unix.GetsockoptTCPInfo(int(fd), unix.IPPROTO_TCP, unix.TCP_INFO)
		if e != nil {
			return
		}

		tinfo.RTT = time.Duration(ti.Rtt) * time.Microsecond
		tinfo.Retransmits = ti.Total_retrans
		tinfo.MSS = ti.Snd_mss
		tinfo.CongestionWin = ti.Snd_cwnd
		tinfo.SlowStartThresh = ti.Snd_ssthresh
	})
}
