/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2023 Nicolas JUHEL
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

package config

import (
	"fmt"
	"net"

	libtls "github.com/sabouaram/netacceptor/certificates"
	libdur "github.com/sabouaram/netacceptor/duration"
	libprm "github.com/sabouaram/netacceptor/file/perm"
	libptc "github.com/sabouaram/netacceptor/network/protocol"
)

// TLSServer is the server-side TLS layer: enabled only for tcp
// networks, and requiring at least one certificate.
type TLSServer struct {
	// Enabled turns the TLS layer on.
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled" toml:"enabled"`

	// Enable is the legacy spelling of Enabled, still honoured when set
	// by older config files.
	Enable bool `mapstructure:"enable,omitempty" json:"enable,omitempty" yaml:"enable,omitempty" toml:"enable,omitempty"`

	// Config is the TLS tuning applied to the listener; it must carry
	// at least one certificate.
	Config libtls.Config `mapstructure:"config" json:"config" yaml:"config" toml:"config"`
}

func (o TLSServer) isEnable() bool {
	return o.Enabled || o.Enable
}

// Server is the listening configuration of one socket server.
type Server struct {
	// Network is the protocol to listen on.
	Network libptc.NetworkProtocol `mapstructure:"network" json:"network" yaml:"network" toml:"network"`

	// Address is the bind endpoint: host:port for inet networks, a
	// filesystem path for unix networks.
	Address string `mapstructure:"address" json:"address" yaml:"address" toml:"address"`

	// PermFile is the file mode applied to a unix socket path.
	PermFile libprm.Perm `mapstructure:"permFile" json:"permFile" yaml:"permFile" toml:"permFile"`

	// GroupPerm is the unix group owning the socket path; negative
	// values keep the process group.
	GroupPerm int32 `mapstructure:"groupPerm" json:"groupPerm" yaml:"groupPerm" toml:"groupPerm"`

	// ConIdleTimeout closes connections idle longer than this; zero or
	// negative disables the idle eviction.
	ConIdleTimeout libdur.Duration `mapstructure:"conIdleTimeout" json:"conIdleTimeout" yaml:"conIdleTimeout" toml:"conIdleTimeout"`

	// TLS is the optional server TLS layer.
	TLS TLSServer `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`

	tlsDefault libtls.TLSConfig
}

// Validate checks the protocol / address pair, the unix ownership
// bounds and the coherence of the TLS layer.
func (o *Server) Validate() error {
	switch {
	case isTCP(o.Network):
		if _, e := net.ResolveTCPAddr(o.Network.Code(), o.Address); e != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProtocol, e)
		}

		if o.TLS.isEnable() && len(o.TLS.Config.Certs) < 1 {
			return fmt.Errorf("%w: missing certificates", ErrInvalidTLSConfig)
		}

	case isUDP(o.Network):
		if _, e := net.ResolveUDPAddr(o.Network.Code(), o.Address); e != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProtocol, e)
		}

		if o.TLS.isEnable() {
			return fmt.Errorf("%w: TLS is restricted to tcp networks", ErrInvalidTLSConfig)
		}

	case isUnix(o.Network):
		if !unixSupported() {
			return fmt.Errorf("%w: unix sockets are not supported on this platform", ErrInvalidProtocol)
		}

		if _, e := net.ResolveUnixAddr(o.Network.Code(), o.Address); e != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProtocol, e)
		}

		if o.GroupPerm > MaxGID {
			return fmt.Errorf("%w: gid '%d' exceeds '%d'", ErrInvalidGroup, o.GroupPerm, MaxGID)
		}

		if o.TLS.isEnable() {
			return fmt.Errorf("%w: TLS is restricted to tcp networks", ErrInvalidTLSConfig)
		}

	default:
		return fmt.Errorf("%w: '%s'", ErrInvalidProtocol, o.Network.Code())
	}

	return nil
}

// DefaultTLS registers a base TLS configuration merged under the
// server's own TLS tuning when GetTLS builds the final configuration.
func (o *Server) DefaultTLS(d libtls.TLSConfig) {
	o.tlsDefault = d
}

// GetTLS returns the effective TLS layer: whether it is enabled and
// the merged TLS configuration.
func (o Server) GetTLS() (bool, libtls.TLSConfig) {
	if !o.TLS.isEnable() {
		return false, nil
	}

	cfg := o.TLS.Config

	if o.tlsDefault != nil {
		return true, cfg.NewFrom(o.tlsDefault)
	}

	return true, cfg.New()
}
