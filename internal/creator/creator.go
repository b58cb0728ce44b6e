// Package creator materializes the container from a resolved template.
package creator

import (
	"context"
	"fmt"

	"github.com/meadow-cloud/sitectl/internal/models"
	"github.com/meadow-cloud/sitectl/internal/proxmox"
)

// Manager is the container manager surface the creator consumes.
type Manager interface {
	CreateContainer(ctx context.Context, cfg proxmox.CreateConfig) error
}

type Creator struct {
	manager Manager
	cfg     models.Provision
}

// Create invokes the container manager with the configured resource limits
// and a synthesized network descriptor. Creation failure is fatal to the
// run; the container is deliberately not started here so that the creation
// exit status is independent of guest boot health.
func (c *Creator) Create(ctx context.Context, vmid int, template models.Template) error {
	createConfig := proxmox.CreateConfig{
		VMID:     vmid,
		Template: template.VolID,
		Hostname: c.cfg.Hostname,
		MemoryMB: c.cfg.MemoryMB,
		DiskGB:   c.cfg.DiskGB,
		Cores:    c.cfg.Cores,
		Storage:  c.cfg.Storage,
		Net0:     c.cfg.Network.Descriptor(),
	}

	if err := c.manager.CreateContainer(ctx, createConfig); err != nil {
		return fmt.Errorf("failed to create container %d: %w", vmid, err)
	}

	return nil
}

func New(manager Manager, cfg models.Provision) *Creator {
	return &Creator{manager: manager, cfg: cfg}
}
