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
	"crypto/tls"
	"strings"

	"github.com/sabouaram/netacceptor/acceptor/config"
	libatm "github.com/sabouaram/netacceptor/atomic"
	liblog "github.com/sabouaram/netacceptor/logger"
)

func newContextsValue() libatm.Value[*contextRegistry] {
	return libatm.NewValue[*contextRegistry]()
}

// contextRegistry is an immutable snapshot of every configured TLS context,
// indexed for SNI selection: case-insensitive
// exact match, then a single one-level-up wildcard lookup, then a
// strength-ranked pick among whatever structurally matched.
type contextRegistry struct {
	exact      map[string][]*config.TLSContextEntry
	wildcard   map[string][]*config.TLSContextEntry
	defaultCtx *config.TLSContextEntry
}

func buildContextRegistry(entries []config.TLSContextEntry, defaultName string) *contextRegistry {
	r := &contextRegistry{
		exact:    make(map[string][]*config.TLSContextEntry),
		wildcard: make(map[string][]*config.TLSContextEntry),
	}

	for i := range entries {
		e := &entries[i]
		for _, name := range e.SNINames {
			name = strings.ToLower(name)
			if strings.HasPrefix(name, "*.") {
				suffix := name[2:]
				r.wildcard[suffix] = append(r.wildcard[suffix], e)
			} else {
				r.exact[name] = append(r.exact[name], e)
			}
		}

		if strings.EqualFold(e.Name, defaultName) {
			r.defaultCtx = e
		}
	}

	return r
}

// strongest returns the highest-Strength entry in candidates, or nil.
func strongest(candidates []*config.TLSContextEntry) *config.TLSContextEntry {
	var best *config.TLSContextEntry
	for _, c := range candidates {
		if best == nil || c.Strength > best.Strength {
			best = c
		}
	}
	return best
}

// selectByName applies the exact -> one-level-up wildcard -> default
// fallback chain.
func (r *contextRegistry) selectByName(sni string) *config.TLSContextEntry {
	if r == nil {
		return nil
	}

	if sni == "" {
		return r.defaultCtx
	}

	name := strings.ToLower(sni)

	if hit := strongest(r.exact[name]); hit != nil {
		return hit
	}

	if dot := strings.IndexByte(name, '.'); dot >= 0 {
		if hit := strongest(r.wildcard[name[dot+1:]]); hit != nil {
			return hit
		}
	}

	return r.defaultCtx
}

// SNINoMatchFunc may supply a just-in-time TLS context for an SNI value no
// registered context answers for. It is consulted at most once per
// handshake, and a non-nil result is folded into the live context set.
type SNINoMatchFunc func(sni string) *config.TLSContextEntry

// SetSNINoMatchFunc installs the lazy-addition callback consulted when SNI
// selection finds no structural match and no default context exists.
func (a *Acceptor) SetSNINoMatchFunc(f SNINoMatchFunc) {
	a.sniNoMatch = f
}

// tlsConfigFor builds the *tls.Config consulted by the TLS handshake helper
// for a given SNI, using the standard library's GetConfigForClient hook so
// selection happens per-handshake rather than once at listener setup.
func (a *Acceptor) tlsConfigFor(defaultServerName string) *tls.Config {
	base := &tls.Config{}
	if entry := a.contexts().selectByName(defaultServerName); entry != nil {
		base = entry.TLS.TlsConfig(defaultServerName)
	}

	a.applyTicketKeys(base)

	base.GetConfigForClient = func(hello *tls.ClientHelloInfo) (*tls.Config, error) {
		entry := a.contexts().selectByName(hello.ServerName)

		if entry == nil && a.sniNoMatch != nil {
			if added := a.sniNoMatch(hello.ServerName); added != nil {
				a.addSSLContextConfig(*added)
				entry = a.contexts().selectByName(hello.ServerName)
			}
		}

		if entry == nil {
			return nil, nil
		}

		cfg := entry.TLS.TlsConfig(hello.ServerName)
		a.applyTicketKeys(cfg)
		return cfg, nil
	}

	return base
}

// addSSLContextConfig folds one extra context entry into the live set,
// swapping the registry snapshot atomically.
func (a *Acceptor) addSSLContextConfig(entry config.TLSContextEntry) {
	cur := a.contexts()

	entries := make([]config.TLSContextEntry, 0, 1)
	entries = append(entries, entry)

	added := buildContextRegistry(entries, "")
	merged := &contextRegistry{
		exact:      make(map[string][]*config.TLSContextEntry),
		wildcard:   make(map[string][]*config.TLSContextEntry),
		defaultCtx: cur.defaultCtx,
	}

	for k, v := range cur.exact {
		merged.exact[k] = v
	}
	for k, v := range cur.wildcard {
		merged.wildcard[k] = v
	}
	for k, v := range added.exact {
		merged.exact[k] = append(merged.exact[k], v...)
	}
	for k, v := range added.wildcard {
		merged.wildcard[k] = append(merged.wildcard[k], v...)
	}

	a.contextsValue.Store(merged)
}

func (a *Acceptor) contexts() *contextRegistry {
	return a.contextsValue.Load()
}

// resetSSLContextConfigs rebuilds the TLS context set atomically. On
// failure the previous configuration is retained and the error is logged;
// there is no partially-reconfigured state exposed externally.
func (a *Acceptor) resetSSLContextConfigs(entries []config.TLSContextEntry, defaultName string) {
	registry := buildContextRegistry(entries, defaultName)

	if registry.defaultCtx == nil && defaultName != "" {
		liblog.ErrorLevel.Logf("tls context reset: no entry named %q found for %q, keeping previous configuration", defaultName, a.name)
		return
	}

	a.contextsValue.Store(registry)
}
