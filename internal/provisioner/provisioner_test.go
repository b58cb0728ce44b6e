package provisioner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/meadow-cloud/sitectl/internal/allocator"
	"github.com/meadow-cloud/sitectl/internal/creator"
	"github.com/meadow-cloud/sitectl/internal/guest"
	"github.com/meadow-cloud/sitectl/internal/models"
	"github.com/meadow-cloud/sitectl/internal/preflight"
	"github.com/meadow-cloud/sitectl/internal/prompt"
	"github.com/meadow-cloud/sitectl/internal/proxmox"
	"github.com/meadow-cloud/sitectl/internal/report"
	"github.com/meadow-cloud/sitectl/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hostRunner fakes the Proxmox command surface for end-to-end pipeline runs.
type hostRunner struct {
	invocations []string
	occupied    map[string]bool
	cached      string
}

func (h *hostRunner) Execute(_ context.Context, command string, args ...string) (string, error) {
	invocation := command + " " + strings.Join(args, " ")
	h.invocations = append(h.invocations, invocation)

	switch {
	case strings.HasPrefix(invocation, "pct status"):
		if h.occupied[args[1]] {
			return "status: stopped", nil
		}
		return "", errors.New("Configuration file does not exist")

	case strings.HasPrefix(invocation, "pvesm status"):
		return "Name  Type  Status  Total  Used  Available  %\nlocal  dir  active  1  1  1  1%\n", nil

	case strings.HasPrefix(invocation, "pveam list"):
		return "NAME  SIZE\n" + h.cached, nil

	case strings.Contains(invocation, "os-release"):
		return "ID=debian\n", nil

	case strings.Contains(invocation, "ip -4 addr show"):
		return "inet 192.168.1.123/24 brd 192.168.1.255 scope global dynamic eth0\n", nil
	}

	return "", nil
}

func newPipeline(t *testing.T, cfg models.Provision, runner *hostRunner, answers string, out *bytes.Buffer) *Provisioner {
	t.Helper()

	client := proxmox.New(runner)
	terminal := prompt.NewWithStreams(strings.NewReader(answers), &bytes.Buffer{})
	noSleep := func(time.Duration) {}

	return New(
		preflight.NewWithLookups(func() int { return 0 }, func(file string) (string, error) { return "/usr/sbin/" + file, nil }),
		allocator.New(client),
		resolver.New(client, terminal, resolver.Config{TemplateStorage: cfg.TemplateStorage}),
		creator.New(client, cfg),
		guest.New(client, guest.Config{Site: cfg.Site, ProbeHost: cfg.ProbeHost, Sleep: noSleep}),
		report.New(client, cfg, report.Config{Out: out}),
		terminal,
		Config{Provision: cfg},
	)
}

func defaultConfig() models.Provision {
	return models.Provision{
		Hostname:        "websrv",
		MemoryMB:        512,
		DiskGB:          8,
		Cores:           1,
		Storage:         "local-lvm",
		TemplateStorage: "local",
		Network:         models.Network{Bridge: "vmbr0", IP: "dhcp"},
		Site:            models.Site{RepoURL: "https://github.com/example/site.git"},
		ProbeHost:       "deb.debian.org",
	}
}

func Test_Run_DHCPDefaults(t *testing.T) {
	runner := &hostRunner{
		occupied: map[string]bool{"100": true, "101": true},
		cached:   "local:vztmpl/debian-12-standard_12.7-1_amd64.tar.zst  126.36MB\n",
	}
	out := &bytes.Buffer{}

	// select defaults: confirm "y", template selection empty
	err := newPipeline(t, defaultConfig(), runner, "y\n\n", out).Run(context.Background())
	require.NoError(t, err)

	joined := strings.Join(runner.invocations, "\n")

	// allocation walked past the occupied identifiers
	assert.Contains(t, joined, "pct status 100")
	assert.Contains(t, joined, "pct status 102")

	// created with the dhcp descriptor and default limits, then started
	assert.Contains(t, joined, "pct create 102 local:vztmpl/debian-12-standard_12.7-1_amd64.tar.zst")
	assert.Contains(t, joined, "--net0 name=eth0,bridge=vmbr0,ip=dhcp")
	assert.Contains(t, joined, "--memory 512")
	assert.Contains(t, joined, "pct start 102")

	// guest configuration ran
	assert.Contains(t, joined, "apt-get update")
	assert.Contains(t, joined, "git clone https://github.com/example/site.git /var/www/html")
	assert.Contains(t, joined, "systemctl enable nginx")

	// no download was needed
	assert.NotContains(t, joined, "pveam download")

	// summary carries the dotted-quad address from the guest
	assert.Contains(t, out.String(), "192.168.1.123")
}

func Test_Run_StaticNetwork(t *testing.T) {
	cfg := defaultConfig()
	cfg.VMID = 210
	cfg.Network = models.Network{Bridge: "vmbr0", IP: "192.168.1.50/24", Gateway: "192.168.1.1"}

	runner := &hostRunner{
		cached: "local:vztmpl/debian-12-standard_12.7-1_amd64.tar.zst  126.36MB\n",
	}
	out := &bytes.Buffer{}

	err := newPipeline(t, cfg, runner, "y\n\n", out).Run(context.Background())
	require.NoError(t, err)

	joined := strings.Join(runner.invocations, "\n")

	// both clauses appear verbatim in the created descriptor
	assert.Contains(t, joined, "--net0 name=eth0,bridge=vmbr0,ip=192.168.1.50/24,gw=192.168.1.1")

	// preset identifier skips allocation
	assert.NotContains(t, joined, "pct status")

	// static address is reported without its prefix and without a guest query
	assert.Contains(t, out.String(), "192.168.1.50")
	assert.NotContains(t, joined, "ip -4 addr show")
}

func Test_Run_DeclinedConfirmation(t *testing.T) {
	runner := &hostRunner{}

	err := newPipeline(t, defaultConfig(), runner, "n\n", &bytes.Buffer{}).Run(context.Background())
	assert.ErrorIs(t, err, ErrAborted)

	// nothing was created, downloaded, or started
	joined := strings.Join(runner.invocations, "\n")
	assert.NotContains(t, joined, "pct create")
	assert.NotContains(t, joined, "pveam")
	assert.NotContains(t, joined, "pct start")
}

func Test_Run_PreflightFailure(t *testing.T) {
	cfg := defaultConfig()
	runner := &hostRunner{}
	client := proxmox.New(runner)
	terminal := prompt.NewWithStreams(strings.NewReader(""), &bytes.Buffer{})

	p := New(
		preflight.NewWithLookups(func() int { return 1000 }, func(string) (string, error) { return "", nil }),
		allocator.New(client),
		resolver.New(client, terminal, resolver.Config{TemplateStorage: "local"}),
		creator.New(client, cfg),
		guest.New(client, guest.Config{Sleep: func(time.Duration) {}}),
		report.New(client, cfg, report.Config{Out: &bytes.Buffer{}}),
		terminal,
		Config{Provision: cfg},
	)

	err := p.Run(context.Background())
	assert.ErrorIs(t, err, preflight.ErrNotRoot)
	assert.Empty(t, runner.invocations)
}
