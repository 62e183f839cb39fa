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
	"context"
	"time"

	libctx "github.com/sabouaram/netacceptor/context"
	liberr "github.com/sabouaram/netacceptor/errors"
)

// Registry is a process-wide named collection of Acceptors, one per VIP,
// backed by a libctx.Config[string] store with the usual
// Walk/Load/Store/Delete shape.
type Registry struct {
	cfg libctx.Config[string]
}

// NewRegistry builds an empty multi-VIP registry.
func NewRegistry(ctx context.Context) *Registry {
	return &Registry{cfg: libctx.New[string](ctx)}
}

// Register adds an Acceptor under its own Name(). ErrorAlreadyRunning is
// returned if a VIP with that name is already registered.
func (r *Registry) Register(a *Acceptor) liberr.Error {
	if _, ok := r.cfg.Load(a.Name()); ok {
		return ErrorAlreadyRunning.Error(nil)
	}

	r.cfg.Store(a.Name(), a)
	return nil
}

// Unregister removes a VIP from the registry by name.
func (r *Registry) Unregister(name string) {
	r.cfg.Delete(name)
}

// Get returns the Acceptor registered under name, if any.
func (r *Registry) Get(name string) (*Acceptor, bool) {
	v, ok := r.cfg.Load(name)
	if !ok {
		return nil, false
	}

	a, ok := v.(*Acceptor)
	return a, ok
}

// Walk calls f for every registered Acceptor; f returning false stops the
// walk early.
func (r *Registry) Walk(f func(a *Acceptor) bool) {
	r.cfg.Walk(func(_ string, val interface{}) bool {
		a, ok := val.(*Acceptor)
		if !ok {
			return true
		}
		return f(a)
	})
}

// DrainAll begins a graceful drain on every registered VIP.
func (r *Registry) DrainAll(gracefulTimeout time.Duration) {
	r.Walk(func(a *Acceptor) bool {
		a.drainAllConnections(gracefulTimeout)
		return true
	})
}

// ForceStopAll tears down every registered VIP immediately.
func (r *Registry) ForceStopAll() {
	r.Walk(func(a *Acceptor) bool {
		a.forceStop()
		return true
	})
}
