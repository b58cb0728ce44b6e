// Package report prints the operator-facing summary of a completed run.
package report

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/meadow-cloud/sitectl/internal/models"
	"github.com/meadow-cloud/sitectl/pkg/constants"
	"github.com/meadow-cloud/sitectl/pkg/utils"
	"gopkg.in/yaml.v3"
)

const (
	AddressUnknown = "unknown"

	FormatText = "text"
	FormatYAML = "yaml"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	labelStyle = lipgloss.NewStyle().Bold(true).Width(10)
	hintStyle  = lipgloss.NewStyle().Faint(true)
)

// Execer runs a command inside the guest.
type Execer interface {
	Exec(ctx context.Context, vmid int, command string) (string, error)
}

type Config struct {
	Out    io.Writer
	Format string
	Logger *log.Logger
}

type Reporter struct {
	exec   Execer
	cfg    models.Provision
	out    io.Writer
	format string
	logger *log.Logger
}

// Report re-queries the guest address and prints connection and maintenance
// instructions. An undeterminable address is reported as unknown, never as
// a failure of an otherwise successful run.
func (r *Reporter) Report(ctx context.Context, vmid int, template models.Template) error {
	summary := models.Summary{
		VMID:     vmid,
		Hostname: r.cfg.Hostname,
		Address:  r.resolveAddress(ctx, vmid),
		Template: template.VolID,
		Repo:     r.cfg.Site.RepoURL,
		WebRoot:  constants.WebRoot,
	}

	if r.format == FormatYAML {
		out, err := yaml.Marshal(summary)
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}

		fmt.Fprint(r.out, string(out))

		return nil
	}

	r.printText(summary)

	return nil
}

func (r *Reporter) resolveAddress(ctx context.Context, vmid int) string {
	if r.cfg.Network.Mode() == models.NetworkModeStatic {
		return r.cfg.Network.Address()
	}

	out, err := r.exec.Exec(ctx, vmid, "ip -4 addr show "+models.DefaultNIC)
	if err != nil {
		r.logger.Warn("could not query guest address", "vmid", vmid, "error", err)
		return AddressUnknown
	}

	address, err := utils.ExtractIPv4(out)
	if err != nil {
		r.logger.Warn("could not parse guest address", "vmid", vmid, "error", err)
		return AddressUnknown
	}

	return address
}

func (r *Reporter) printText(summary models.Summary) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, titleStyle.Render("Container provisioned"))
	fmt.Fprintln(r.out)

	rows := []struct{ label, value string }{
		{"VMID", fmt.Sprintf("%d", summary.VMID)},
		{"Hostname", summary.Hostname},
		{"Address", summary.Address},
		{"Template", summary.Template},
		{"Repo", summary.Repo},
		{"Web root", summary.WebRoot},
	}

	for _, row := range rows {
		fmt.Fprintf(r.out, "%s %s\n", labelStyle.Render(row.label), row.value)
	}

	fmt.Fprintln(r.out)
	if summary.Address != AddressUnknown {
		fmt.Fprintf(r.out, "Site: http://%s/\n", summary.Address)
	}
	fmt.Fprintln(r.out, hintStyle.Render(fmt.Sprintf("Update the site later with: pct exec %d -- %s", summary.VMID, constants.UpdateScriptPath)))
}

func New(exec Execer, cfg models.Provision, reportCfg Config) *Reporter {
	r := &Reporter{
		exec:   exec,
		cfg:    cfg,
		out:    reportCfg.Out,
		format: reportCfg.Format,
		logger: reportCfg.Logger,
	}

	if r.format == "" {
		r.format = FormatText
	}

	if r.logger == nil {
		r.logger = log.Default()
	}

	return r
}
