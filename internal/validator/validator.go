package validator

import (
	"errors"
	"fmt"
	"net"

	"github.com/meadow-cloud/sitectl/internal/models"
)

var (
	ErrEmptyHostname   = errors.New("hostname must not be empty")
	ErrInvalidResource = errors.New("resource limits must be positive")
	ErrInvalidCIDR     = errors.New("static address must be a valid CIDR")
	ErrInvalidGateway  = errors.New("gateway must be a valid IP address")
	ErrEmptyRepo       = errors.New("site repository URL must not be empty")
)

// Validate checks the assembled provision record before the pipeline runs.
func Validate(cfg models.Provision) error {
	if cfg.Hostname == "" {
		return ErrEmptyHostname
	}

	if cfg.MemoryMB <= 0 || cfg.DiskGB <= 0 || cfg.Cores <= 0 {
		return ErrInvalidResource
	}

	if cfg.Site.RepoURL == "" {
		return ErrEmptyRepo
	}

	if err := validateNetwork(cfg.Network); err != nil {
		return fmt.Errorf("failed to validate network: %w", err)
	}

	return nil
}

func validateNetwork(network models.Network) error {
	if network.Mode() == models.NetworkModeDHCP {
		return nil
	}

	if _, _, err := net.ParseCIDR(network.IP); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCIDR, network.IP)
	}

	if network.Gateway != "" && net.ParseIP(network.Gateway) == nil {
		return fmt.Errorf("%w: %q", ErrInvalidGateway, network.Gateway)
	}

	return nil
}
