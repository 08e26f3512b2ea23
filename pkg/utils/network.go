// Package utils provides small helpers shared by the HTTP and application layers.
package utils

import (
	"net"
	"strings"

	"github.com/prismstudio/certverify/pkg/constants"
)

// ResolveClientAddress picks the client address from forwarding headers.
// Precedence: first X-Forwarded-For entry, then X-Real-IP, else the loopback default.
func ResolveClientAddress(forwardedFor, realIP string) string {
	if forwardedFor != "" {
		first := strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
		if first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(realIP); ip != "" {
		return ip
	}
	return constants.DefaultClientAddress
}

// MaskIPAddress replaces the last IPv4 octet (or the last IPv6 group) with the mask token.
// A port suffix ("1.2.3.4:5678", "[::1]:443") is dropped. Values that are not IP
// addresses are fully masked.
func MaskIPAddress(address string) string {
	if host, _, err := net.SplitHostPort(address); err == nil {
		address = host
	}
	ip := net.ParseIP(address)
	if ip == nil {
		return constants.IPMaskToken
	}

	if ip.To4() != nil {
		idx := strings.LastIndex(address, ".")
		return address[:idx+1] + constants.IPMaskToken
	}

	idx := strings.LastIndex(address, ":")
	return address[:idx+1] + constants.IPMaskToken
}

//Personal.AI order the ending
