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

// Package config describes the immutable, validated configuration snapshots
// consumed by the acceptor: per-VIP socket tuning and the load-shed thresholds
// that gate admission.
package config

import (
	"net"
	"strings"

	"github.com/go-playground/validator/v10"

	liberr "github.com/sabouaram/netacceptor/errors"
	libdur "github.com/sabouaram/netacceptor/duration"
)

// LoadShed is the immutable load-shed configuration snapshot. Built once via
// NewLoadShed and never mutated; callers needing a change build a fresh one.
type LoadShed struct {
	MaxConnections               uint64        `mapstructure:"max_connections" json:"max_connections" yaml:"max_connections"`
	MaxActiveConnections         uint64        `mapstructure:"max_active_connections" json:"max_active_connections" yaml:"max_active_connections"`
	AcceptPauseOnQueueSize       uint64        `mapstructure:"accept_pause_on_queue_size" json:"accept_pause_on_queue_size" yaml:"accept_pause_on_queue_size"`
	AcceptResumeOnQueueSize      uint64        `mapstructure:"accept_resume_on_queue_size" json:"accept_resume_on_queue_size" yaml:"accept_resume_on_queue_size"`
	MinFreeMemBytes              uint64        `mapstructure:"min_free_mem_bytes" json:"min_free_mem_bytes" yaml:"min_free_mem_bytes"`
	MaxMemUsageRatio             float64       `mapstructure:"max_mem_usage_ratio" json:"max_mem_usage_ratio" yaml:"max_mem_usage_ratio" validate:"gte=0,lte=1"`
	MaxCPUUsageRatio             float64       `mapstructure:"max_cpu_usage_ratio" json:"max_cpu_usage_ratio" yaml:"max_cpu_usage_ratio" validate:"gte=0,lte=1"`
	MinCPUIdleRatio              float64       `mapstructure:"min_cpu_idle_ratio" json:"min_cpu_idle_ratio" yaml:"min_cpu_idle_ratio" validate:"gte=0,lte=1"`
	CPUUsageExceedWindow         uint32        `mapstructure:"cpu_usage_exceed_window" json:"cpu_usage_exceed_window" yaml:"cpu_usage_exceed_window"`
	Period                       libdur.Duration `mapstructure:"period" json:"period" yaml:"period"`
	Enabled                      bool          `mapstructure:"enabled" json:"enabled" yaml:"enabled"`

	whitelistAddr map[string]struct{}
	whitelistNets []*net.IPNet
}

// NewLoadShed builds an empty, disabled load-shed configuration. Whitelist
// entries are added with AddWhitelist before Validate is called.
func NewLoadShed() *LoadShed {
	return &LoadShed{
		whitelistAddr: make(map[string]struct{}),
	}
}

// AddWhitelist registers one whitelist entry, either a bare IP ("127.0.0.1")
// or a CIDR ("10.0.0.0/8"). The exact-match set only ever compares IPs,
// never ports.
func (l *LoadShed) AddWhitelist(entry string) liberr.Error {
	if entry == "" {
		return ErrorParamsEmpty.Error(nil)
	}

	if strings.Contains(entry, "/") {
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return ErrorWhitelistParse.Error(err)
		}

		l.whitelistNets = append(l.whitelistNets, ipNet)
		return nil
	}

	ip := net.ParseIP(entry)
	if ip == nil {
		return ErrorWhitelistParse.Error(nil)
	}

	if l.whitelistAddr == nil {
		l.whitelistAddr = make(map[string]struct{})
	}

	l.whitelistAddr[ip.String()] = struct{}{}
	return nil
}

// IsWhitelisted reports whether addr (an IP, or an "ip:port" pair) is
// whitelisted: exact-IP lookup first, then a CIDR-containment walk.
func (l *LoadShed) IsWhitelisted(addr string) bool {
	ip := addrToIP(addr)
	if ip == nil {
		return false
	}

	if _, ok := l.whitelistAddr[ip.String()]; ok {
		return true
	}

	for _, n := range l.whitelistNets {
		if n.Contains(ip) {
			return true
		}
	}

	return false
}

func addrToIP(addr string) net.IP {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return net.ParseIP(host)
	}

	return net.ParseIP(addr)
}

// Validate runs the go-playground struct-tag validation and the additional
// range/consistency checks that a validator tag cannot express.
func (l *LoadShed) Validate() liberr.Error {
	if l == nil {
		return ErrorParamsEmpty.Error(nil)
	}

	if err := validator.New().Struct(l); err != nil {
		return ErrorValidate.Error(err)
	}

	return l.checkIsSane()
}

func (l *LoadShed) checkIsSane() liberr.Error {
	if !l.Enabled {
		return nil
	}

	if l.MaxActiveConnections > 0 && l.MaxConnections > 0 && l.MaxActiveConnections > l.MaxConnections {
		return ErrorLoadShedSanity.Error(nil)
	}

	if l.CPUUsageExceedWindow == 0 {
		return ErrorLoadShedSanity.Error(nil)
	}

	if l.MinCPUIdleRatio > 0 && l.MaxCPUUsageRatio > 0 {
		if 1-l.MinCPUIdleRatio < l.MaxCPUUsageRatio {
			return ErrorLoadShedRange.Error(nil)
		}
	}

	return nil
}
