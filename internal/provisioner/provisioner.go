// Package provisioner wires the pipeline stages into one sequential run:
// preflight, identifier allocation, template resolution, creation, guest
// configuration, summary.
package provisioner

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/meadow-cloud/sitectl/internal/models"
)

// ErrAborted reports an operator "no" at the confirmation prompt, before
// any mutating action. Callers treat it as a clean exit.
var ErrAborted = errors.New("provisioning aborted by operator")

type (
	Preflight interface {
		Check() error
	}

	IdentifierAllocator interface {
		Allocate(ctx context.Context) (int, error)
	}

	TemplateResolver interface {
		Resolve(ctx context.Context) (models.Template, error)
	}

	ContainerCreator interface {
		Create(ctx context.Context, vmid int, template models.Template) error
	}

	GuestConfigurator interface {
		Configure(ctx context.Context, vmid int) error
	}

	SummaryReporter interface {
		Report(ctx context.Context, vmid int, template models.Template) error
	}

	Confirmer interface {
		Confirm(question string) (bool, error)
	}
)

type Config struct {
	Provision   models.Provision
	SkipConfirm bool
	Logger      *log.Logger
}

type Provisioner struct {
	preflight    Preflight
	allocator    IdentifierAllocator
	resolver     TemplateResolver
	creator      ContainerCreator
	configurator GuestConfigurator
	reporter     SummaryReporter
	confirmer    Confirmer

	cfg         models.Provision
	skipConfirm bool
	logger      *log.Logger
}

// Run drives the pipeline top to bottom. There is no rollback: once the
// container exists, later failures leave it in place for inspection.
func (p *Provisioner) Run(ctx context.Context) error {
	if err := p.preflight.Check(); err != nil {
		return fmt.Errorf("failed preflight checks: %w", err)
	}

	vmid := p.cfg.VMID
	if vmid == 0 {
		allocated, err := p.allocator.Allocate(ctx)
		if err != nil {
			return fmt.Errorf("failed to allocate container identifier: %w", err)
		}

		vmid = allocated
		p.logger.Info("allocated container identifier", "vmid", vmid)
	}

	if !p.skipConfirm {
		question := fmt.Sprintf(
			"Create container %d (%s, %dMB RAM, %dGB disk, %d cores, net %s)?",
			vmid, p.cfg.Hostname, p.cfg.MemoryMB, p.cfg.DiskGB, p.cfg.Cores, p.cfg.Network.Descriptor(),
		)

		confirmed, err := p.confirmer.Confirm(question)
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}

		if !confirmed {
			return ErrAborted
		}
	}

	template, err := p.resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve template: %w", err)
	}
	p.logger.Info("resolved template", "template", template.VolID)

	if err := p.creator.Create(ctx, vmid, template); err != nil {
		return err
	}
	p.logger.Info("container created", "vmid", vmid)

	if err := p.configurator.Configure(ctx, vmid); err != nil {
		return fmt.Errorf("failed to configure guest: %w", err)
	}

	if err := p.reporter.Report(ctx, vmid, template); err != nil {
		return fmt.Errorf("failed to report summary: %w", err)
	}

	return nil
}

func New(
	preflight Preflight,
	allocator IdentifierAllocator,
	resolver TemplateResolver,
	creator ContainerCreator,
	configurator GuestConfigurator,
	reporter SummaryReporter,
	confirmer Confirmer,
	cfg Config,
) *Provisioner {
	p := &Provisioner{
		preflight:    preflight,
		allocator:    allocator,
		resolver:     resolver,
		creator:      creator,
		configurator: configurator,
		reporter:     reporter,
		confirmer:    confirmer,
		cfg:          cfg.Provision,
		skipConfirm:  cfg.SkipConfirm,
		logger:       cfg.Logger,
	}

	if p.logger == nil {
		p.logger = log.Default()
	}

	return p
}
