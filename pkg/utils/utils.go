package utils

import (
	"errors"
	"net"
	"regexp"
)

var (
	ErrNoAddressFound = errors.New("no IPv4 address found")

	ipv4Pattern = regexp.MustCompile(`(\d{1,3}\.){3}\d{1,3}`)
)

// ExtractIPv4 returns the first valid dotted-quad address found in s,
// typically the output of an interface configuration query.
func ExtractIPv4(s string) (string, error) {
	for _, candidate := range ipv4Pattern.FindAllString(s, -1) {
		if ip := net.ParseIP(candidate); ip != nil && ip.To4() != nil {
			return candidate, nil
		}
	}

	return "", ErrNoAddressFound
}
