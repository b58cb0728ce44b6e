package models

import (
	"fmt"
	"strings"
)

const (
	NetworkModeDHCP   = "dhcp"
	NetworkModeStatic = "static"

	DefaultNIC = "eth0"
)

// Network is the guest network attachment configuration. Mode is derived
// from the ip setting: the literal "dhcp" selects DHCP, anything else is
// treated as a static CIDR.
type Network struct {
	Bridge  string `mapstructure:"bridge"`
	IP      string `mapstructure:"ip"`
	Gateway string `mapstructure:"gateway"`
}

func (n Network) Mode() string {
	if strings.EqualFold(n.IP, NetworkModeDHCP) {
		return NetworkModeDHCP
	}

	return NetworkModeStatic
}

// Descriptor synthesizes the net0 attachment string for container creation.
// DHCP mode never emits a gateway clause; static mode emits the gateway
// clause only when a gateway is configured.
func (n Network) Descriptor() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "name=%s,bridge=%s", DefaultNIC, n.Bridge)

	if n.Mode() == NetworkModeDHCP {
		b.WriteString(",ip=dhcp")
		return b.String()
	}

	fmt.Fprintf(b, ",ip=%s", n.IP)
	if n.Gateway != "" {
		fmt.Fprintf(b, ",gw=%s", n.Gateway)
	}

	return b.String()
}

// Address returns the configured static address without its prefix length,
// or an empty string in DHCP mode.
func (n Network) Address() string {
	if n.Mode() == NetworkModeDHCP {
		return ""
	}

	address, _, _ := strings.Cut(n.IP, "/")

	return address
}
