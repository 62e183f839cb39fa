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

package config

import (
	"strings"

	"github.com/go-playground/validator/v10"

	libtls "github.com/sabouaram/netacceptor/certificates"
	libdur "github.com/sabouaram/netacceptor/duration"
	liberr "github.com/sabouaram/netacceptor/errors"
)

// Default tuning values, per the admission config defaults table.
const (
	DefaultAcceptBacklog            = 1024
	DefaultMaxPendingConnPerWorker  = 1024
	DefaultIdleTimeout              = libdur.Duration(600e9)
	DefaultHandshakeTimeout         = libdur.Duration(60e9)
	DefaultMaxConcurrentHandshakes  = 30720
	DefaultMaxReadsPerEvent         = 16
	DefaultDrainBatchSize           = 64
	DefaultGracefulShutdownTimeout  = libdur.Duration(5e9)
	DefaultFastOpenQueueSize        = 100
	DefaultSessionCacheSize         = 20480
	DefaultSessionCacheLifetime     = libdur.Duration(200e9)
)

// SocketOptions is a named, address-family-aware bag of setsockopt tunables
// applied to a listener's or a per-connection file descriptor. An option
// tagged for IPv6 is a no-op on an IPv4 socket and vice-versa.
type SocketOptions struct {
	Level    int
	Name     int
	Value    int
	ApplyTo4 bool
	ApplyTo6 bool
}

// AppliesTo reports whether this option should be set for the given address
// family ("tcp4" or "tcp6" network strings, as returned by net.Listener).
func (o SocketOptions) AppliesTo(network string) bool {
	switch {
	case strings.HasSuffix(network, "4"):
		return o.ApplyTo4
	case strings.HasSuffix(network, "6"):
		return o.ApplyTo6
	default:
		return o.ApplyTo4 || o.ApplyTo6
	}
}

// SessionCacheOptions groups TLS session cache sizing and lifetime,
// independent of any one TLS context.
type SessionCacheOptions struct {
	MaxCacheSize    int             `mapstructure:"max_cache_size" json:"max_cache_size" yaml:"max_cache_size"`
	SessionLifetime libdur.Duration `mapstructure:"session_lifetime" json:"session_lifetime" yaml:"session_lifetime"`
}

// TicketSeeds is the rotation triple consumed by resetSSLContextConfigs-style
// reseeding: the seed retired this cycle, the seed currently live, and the
// seed about to become live, so a ticket encrypted under any of the three can
// still be decrypted during the rotation window.
type TicketSeeds struct {
	Old     []string
	Current []string
	New     []string
}

// TLSContextEntry is one SNI-addressable TLS context: certificate material,
// the SNI name(s) it answers for (exact or one-level wildcard), and a
// strength rank used to break ties when more than one context structurally
// matches an SNI value.
type TLSContextEntry struct {
	Name          string `validate:"required"`
	SNINames      []string
	Strength      int
	AllowInsecure bool
	TLS           libtls.TLSConfig
}

// IsWildcard reports whether this entry's primary SNI name is a one-level
// wildcard of the form "*.example.com".
func (e TLSContextEntry) IsWildcard(name string) bool {
	return strings.HasPrefix(name, "*.")
}

// ServerSocketConfig is the immutable per-VIP configuration record described
// by the data model: bind address, backlog, per-connection ceilings, TLS
// context set, and the assorted knobs governing admission and handshakes.
type ServerSocketConfig struct {
	Name                              string          `mapstructure:"name" json:"name" yaml:"name" validate:"required"`
	BindAddress                       string          `mapstructure:"bind_address" json:"bind_address" yaml:"bind_address" validate:"required,hostname_port"`
	AcceptBacklog                     int             `mapstructure:"accept_backlog" json:"accept_backlog" yaml:"accept_backlog"`
	MaxNumPendingConnectionsPerWorker int             `mapstructure:"max_pending_connections_per_worker" json:"max_pending_connections_per_worker" yaml:"max_pending_connections_per_worker"`
	ConnectionIdleTimeout             libdur.Duration `mapstructure:"connection_idle_timeout" json:"connection_idle_timeout" yaml:"connection_idle_timeout"`
	SSLHandshakeTimeout               libdur.Duration `mapstructure:"ssl_handshake_timeout" json:"ssl_handshake_timeout" yaml:"ssl_handshake_timeout"`
	SSLCacheOptions                   SessionCacheOptions
	InitialTicketSeeds                TicketSeeds
	AllowInsecureOnSecure             bool `mapstructure:"allow_insecure_connections_on_secure_server" json:"allow_insecure_connections_on_secure_server" yaml:"allow_insecure_connections_on_secure_server"`
	SSLContextConfigs                 []TLSContextEntry
	StrictSSL                         bool `mapstructure:"strict_ssl" json:"strict_ssl" yaml:"strict_ssl"`
	MaxConcurrentHandshakes           int64 `mapstructure:"max_concurrent_handshakes" json:"max_concurrent_handshakes" yaml:"max_concurrent_handshakes"`
	EnableTCPFastOpen                 bool  `mapstructure:"enable_tcp_fast_open" json:"enable_tcp_fast_open" yaml:"enable_tcp_fast_open"`
	FastOpenQueueSize                 int   `mapstructure:"fast_open_queue_size" json:"fast_open_queue_size" yaml:"fast_open_queue_size"`
	SocketOptions                     []SocketOptions
	MaxReadsPerEvent                  int             `mapstructure:"max_reads_per_event" json:"max_reads_per_event" yaml:"max_reads_per_event"`
	DrainBatchSize                    int             `mapstructure:"drain_batch_size" json:"drain_batch_size" yaml:"drain_batch_size"`
	GracefulShutdownTimeout           libdur.Duration `mapstructure:"graceful_shutdown_timeout" json:"graceful_shutdown_timeout" yaml:"graceful_shutdown_timeout"`
}

// NewServerSocketConfig returns a ServerSocketConfig pre-filled with the
// admission defaults, leaving only Name, BindAddress and the TLS context
// set for the caller to fill in.
func NewServerSocketConfig() *ServerSocketConfig {
	return &ServerSocketConfig{
		AcceptBacklog:                     DefaultAcceptBacklog,
		MaxNumPendingConnectionsPerWorker: DefaultMaxPendingConnPerWorker,
		ConnectionIdleTimeout:             DefaultIdleTimeout,
		SSLHandshakeTimeout:               DefaultHandshakeTimeout,
		SSLCacheOptions: SessionCacheOptions{
			MaxCacheSize:    DefaultSessionCacheSize,
			SessionLifetime: DefaultSessionCacheLifetime,
		},
		StrictSSL:               true,
		MaxConcurrentHandshakes: DefaultMaxConcurrentHandshakes,
		FastOpenQueueSize:       DefaultFastOpenQueueSize,
		MaxReadsPerEvent:        DefaultMaxReadsPerEvent,
		DrainBatchSize:          DefaultDrainBatchSize,
		GracefulShutdownTimeout: DefaultGracefulShutdownTimeout,
	}
}

// IsSSL reports whether this VIP has at least one TLS context configured.
func (c *ServerSocketConfig) IsSSL() bool {
	return c != nil && len(c.SSLContextConfigs) > 0
}

// EarlyDropThreshold is idleTimeout/2, the pressure-eviction cutoff used by
// the Connection Manager's dropIdleConnections.
func (c *ServerSocketConfig) EarlyDropThreshold() libdur.Duration {
	return libdur.Duration(c.ConnectionIdleTimeout.Time() / 2)
}

// Validate runs struct-tag validation plus the cross-field checks a tag alone
// cannot express (at least one TLS context if IsSSL is implied by the
// caller, reasonable positive ceilings).
func (c *ServerSocketConfig) Validate() liberr.Error {
	if c == nil {
		return ErrorParamsEmpty.Error(nil)
	}

	if err := validator.New().Struct(c); err != nil {
		return ErrorValidate.Error(err)
	}

	if c.MaxConcurrentHandshakes <= 0 {
		return ErrorLoadShedRange.Error(nil)
	}

	return nil
}
