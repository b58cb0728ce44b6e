// Package guest configures the started container: waits for outbound
// connectivity, installs packages, clones the site and wires up nginx.
package guest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/meadow-cloud/sitectl/internal/models"
	"github.com/meadow-cloud/sitectl/pkg/constants"
)

const (
	BootSettleDelay = 5 * time.Second
	PollInterval    = 5 * time.Second
	MaxPollAttempts = 30

	heredocMarker = "SITECTL_EOF"
)

var ErrNetworkTimeout = errors.New("guest network did not become reachable")

// Manager is the container manager surface the configurator consumes.
type Manager interface {
	StartContainer(ctx context.Context, vmid int) error
	Exec(ctx context.Context, vmid int, command string) (string, error)
}

// Probe checks outbound connectivity from inside the guest. The default
// probe pings the configured probe host; tests and callers with different
// reachability notions inject their own.
type Probe func(ctx context.Context, vmid int) error

// SleepFunc suspends between poll attempts; injectable for tests.
type SleepFunc func(d time.Duration)

type Config struct {
	Site      models.Site
	ProbeHost string

	// Optional overrides, default when nil/zero.
	Probe       Probe
	Sleep       SleepFunc
	Interval    time.Duration
	MaxAttempts int
	Logger      *log.Logger
}

type Configurator struct {
	manager     Manager
	site        models.Site
	probe       Probe
	sleep       SleepFunc
	interval    time.Duration
	maxAttempts int
	logger      *log.Logger
}

// Configure runs the guest setup sequence in strict order with no rollback
// on partial failure: a half-configured container is left in place for
// operator inspection.
func (c *Configurator) Configure(ctx context.Context, vmid int) error {
	if err := c.manager.StartContainer(ctx, vmid); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}

	c.logger.Info("container started, waiting for boot to settle", "vmid", vmid)
	c.sleep(BootSettleDelay)

	if err := c.waitForNetwork(ctx, vmid); err != nil {
		return err
	}

	capabilities, err := c.detectCapabilities(ctx, vmid)
	if err != nil {
		return err
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"refresh package index", func() error {
			return c.exec(ctx, vmid, capabilities.RefreshCommand)
		}},
		{"install packages", func() error {
			return c.exec(ctx, vmid, capabilities.InstallCommand)
		}},
		{"clear web root", func() error {
			return c.exec(ctx, vmid, "rm -rf "+capabilities.WebRoot)
		}},
		{"clone site repository", func() error {
			return c.exec(ctx, vmid, cloneCommand(c.site, capabilities.WebRoot))
		}},
		{"write web server configuration", func() error {
			config, err := RenderVhostConfig(capabilities)
			if err != nil {
				return err
			}

			return c.writeGuestFile(ctx, vmid, capabilities.VhostPath, config)
		}},
		{"remove default site", func() error {
			if capabilities.DefaultSitePath == "" {
				return nil
			}

			return c.exec(ctx, vmid, "rm -f "+capabilities.DefaultSitePath)
		}},
		{"enable web server", func() error {
			return c.exec(ctx, vmid, capabilities.ServiceEnableCommand)
		}},
		{"start web server", func() error {
			return c.exec(ctx, vmid, capabilities.ServiceStartCommand)
		}},
		{"install update helper", func() error {
			script, err := RenderUpdateScript(capabilities)
			if err != nil {
				return err
			}

			if err := c.writeGuestFile(ctx, vmid, constants.UpdateScriptPath, script); err != nil {
				return err
			}

			return c.exec(ctx, vmid, "chmod +x "+constants.UpdateScriptPath)
		}},
	}

	for _, step := range steps {
		c.logger.Info(step.name, "vmid", vmid)

		if err := step.run(); err != nil {
			return fmt.Errorf("failed to %s: %w", step.name, err)
		}
	}

	return nil
}

// WebRoot reports the web root the configurator installed into, for the
// summary reporter.
func (c *Configurator) WebRoot() string {
	return constants.WebRoot
}

// waitForNetwork polls the reachability probe at a constant interval until
// it succeeds or the attempt budget is exhausted.
func (c *Configurator) waitForNetwork(ctx context.Context, vmid int) error {
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.probe(ctx, vmid); err == nil {
			c.logger.Info("guest network is reachable", "vmid", vmid, "attempt", attempt)
			return nil
		}

		if attempt < c.maxAttempts {
			c.sleep(c.interval)
		}
	}

	return fmt.Errorf("%w after %d attempts", ErrNetworkTimeout, c.maxAttempts)
}

func (c *Configurator) detectCapabilities(ctx context.Context, vmid int) (Capabilities, error) {
	osRelease, err := c.manager.Exec(ctx, vmid, "cat /etc/os-release")
	if err != nil {
		return Capabilities{}, fmt.Errorf("failed to read guest os-release: %w", err)
	}

	return CapabilitiesFor(DetectFamily(osRelease))
}

func (c *Configurator) exec(ctx context.Context, vmid int, command string) error {
	_, err := c.manager.Exec(ctx, vmid, command)

	return err
}

func (c *Configurator) writeGuestFile(ctx context.Context, vmid int, path, content string) error {
	command := fmt.Sprintf("cat > %s << '%s'\n%s\n%s", path, heredocMarker, strings.TrimRight(content, "\n"), heredocMarker)

	return c.exec(ctx, vmid, command)
}

func cloneCommand(site models.Site, webRoot string) string {
	b := &strings.Builder{}
	b.WriteString("git clone")

	if site.Branch != "" {
		fmt.Fprintf(b, " --branch %s", site.Branch)
	}

	fmt.Fprintf(b, " %s %s", site.RepoURL, webRoot)

	return b.String()
}

func New(manager Manager, cfg Config) *Configurator {
	c := &Configurator{
		manager:     manager,
		site:        cfg.Site,
		probe:       cfg.Probe,
		sleep:       cfg.Sleep,
		interval:    cfg.Interval,
		maxAttempts: cfg.MaxAttempts,
		logger:      cfg.Logger,
	}

	if c.probe == nil {
		c.probe = func(ctx context.Context, vmid int) error {
			_, err := manager.Exec(ctx, vmid, fmt.Sprintf("ping -c 1 -W 2 %s", cfg.ProbeHost))

			return err
		}
	}

	if c.sleep == nil {
		c.sleep = time.Sleep
	}

	if c.interval == 0 {
		c.interval = PollInterval
	}

	if c.maxAttempts == 0 {
		c.maxAttempts = MaxPollAttempts
	}

	if c.logger == nil {
		c.logger = log.Default()
	}

	return c
}
