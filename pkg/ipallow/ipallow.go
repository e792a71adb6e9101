// Copyright 2025 VeloxVoIP
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ipallow matches source addresses against an allow list of IPs and
// CIDR prefixes. Used to gate the HTTP control surface.
package ipallow

import (
	"fmt"
	"net"
	"net/netip"
	"strings"
)

// Matcher holds a parsed allow list. An empty list allows everything.
type Matcher struct {
	prefixes []netip.Prefix
}

// New parses a list of entries, each a single IP ("10.0.0.1") or a CIDR
// prefix ("10.0.0.0/8"). Whitespace around entries is ignored, empty entries
// are skipped.
func New(allowed []string) (*Matcher, error) {
	m := &Matcher{}
	for _, entry := range allowed {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid IP/CIDR %q: %w", entry, err)
			}
			m.prefixes = append(m.prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid IP address %q: %w", entry, err)
		}
		m.prefixes = append(m.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return m, nil
}

// Allowed reports whether the address is covered by the allow list. Accepts
// "host:port" form (as in http.Request.RemoteAddr) as well as a bare IP.
// Unparsable input is not allowed.
func (m *Matcher) Allowed(remote string) bool {
	if len(m.prefixes) == 0 {
		return true
	}
	host := remote
	if h, _, err := net.SplitHostPort(remote); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(host))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range m.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Prefixes returns the parsed allow list, for logging.
func (m *Matcher) Prefixes() []string {
	out := make([]string, len(m.prefixes))
	for i, p := range m.prefixes {
		out[i] = p.String()
	}
	return out
}
