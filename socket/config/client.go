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
	libptc "github.com/sabouaram/netacceptor/network/protocol"
)

// TLSClient is the client-side TLS layer: enabled only for tcp
// networks, and requiring the server name to verify against.
type TLSClient struct {
	// Enabled turns the TLS layer on.
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled" toml:"enabled"`

	// ServerName is the expected certificate name of the endpoint.
	ServerName string `mapstructure:"serverName" json:"serverName" yaml:"serverName" toml:"serverName"`

	// Config is the TLS tuning applied to the dialer.
	Config libtls.Config `mapstructure:"config" json:"config" yaml:"config" toml:"config"`
}

// Client is the dialing configuration of one socket client.
type Client struct {
	// Network is the protocol to dial.
	Network libptc.NetworkProtocol `mapstructure:"network" json:"network" yaml:"network" toml:"network"`

	// Address is the endpoint to dial: host:port for inet networks, a
	// filesystem path for unix networks.
	Address string `mapstructure:"address" json:"address" yaml:"address" toml:"address"`

	// TLS is the optional client TLS layer.
	TLS TLSClient `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`

	tlsDefault libtls.TLSConfig
}

// Validate checks the protocol / address pair and the coherence of the
// TLS layer.
func (o *Client) Validate() error {
	switch {
	case isTCP(o.Network):
		if _, e := net.ResolveTCPAddr(o.Network.Code(), o.Address); e != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProtocol, e)
		}

		if o.TLS.Enabled && o.TLS.ServerName == "" {
			return fmt.Errorf("%w: missing server name", ErrInvalidTLSConfig)
		}

	case isUDP(o.Network):
		if _, e := net.ResolveUDPAddr(o.Network.Code(), o.Address); e != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProtocol, e)
		}

		if o.TLS.Enabled {
			return fmt.Errorf("%w: TLS is restricted to tcp networks", ErrInvalidTLSConfig)
		}

	case isUnix(o.Network):
		if !unixSupported() {
			return fmt.Errorf("%w: unix sockets are not supported on this platform", ErrInvalidProtocol)
		}

		if _, e := net.ResolveUnixAddr(o.Network.Code(), o.Address); e != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProtocol, e)
		}

		if o.TLS.Enabled {
			return fmt.Errorf("%w: TLS is restricted to tcp networks", ErrInvalidTLSConfig)
		}

	default:
		return fmt.Errorf("%w: '%s'", ErrInvalidProtocol, o.Network.Code())
	}

	return nil
}

// DefaultTLS registers a base TLS configuration merged under the
// client's own TLS tuning when GetTLS builds the final configuration.
func (o *Client) DefaultTLS(d libtls.TLSConfig) {
	o.tlsDefault = d
}

// GetTLS returns the effective TLS layer: whether it is enabled, the
// merged TLS configuration, and the server name to verify.
func (o Client) GetTLS() (bool, libtls.TLSConfig, string) {
	if !o.TLS.Enabled {
		return false, nil, ""
	}

	cfg := o.TLS.Config

	if o.tlsDefault != nil {
		return true, cfg.NewFrom(o.tlsDefault), o.TLS.ServerName
	}

	return true, cfg.New(), o.TLS.ServerName
}
