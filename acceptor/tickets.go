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
	"crypto/sha256"
	"crypto/tls"

	"github.com/sabouaram/netacceptor/acceptor/config"
)

// UpdateTicketSeeds swaps the live TLS session-ticket key set derived from
// the given rotation triple. Tickets are encrypted under the first current
// seed; tickets issued under any seed of the triple stay decryptable for
// the rotation window. An empty triple clears the key set, leaving the TLS
// stack's own per-process keys in charge.
func (a *Acceptor) UpdateTicketSeeds(seeds config.TicketSeeds) {
	ordered := make([]string, 0, len(seeds.Current)+len(seeds.New)+len(seeds.Old))
	ordered = append(ordered, seeds.Current...)
	ordered = append(ordered, seeds.New...)
	ordered = append(ordered, seeds.Old...)

	keys := make([][32]byte, 0, len(ordered))
	for _, s := range ordered {
		keys = append(keys, sha256.Sum256([]byte(s)))
	}

	a.ticketsValue.Store(keys)
}

// applyTicketKeys installs the live ticket key set on cfg, if any seeds
// have been configured.
func (a *Acceptor) applyTicketKeys(cfg *tls.Config) {
	if cfg == nil {
		return
	}

	if keys := a.ticketsValue.Load(); len(keys) > 0 {
		cfg.SetSessionTicketKeys(keys)
	}
}
