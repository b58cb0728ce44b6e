// Package proxmox wraps the Proxmox VE command surface (pct, pveam, pvesm)
// used to manage LXC containers and their template images.
package proxmox

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/meadow-cloud/sitectl/internal/models"
)

const (
	PctCommand   = "pct"
	PveamCommand = "pveam"
	PvesmCommand = "pvesm"

	TemplateContent = "vztmpl"
	CatalogSection  = "system"
)

// Runner executes a host command and returns its standard output.
type Runner interface {
	Execute(ctx context.Context, command string, args ...string) (string, error)
}

type Client struct {
	runner Runner
}

// CreateConfig holds the parameters of a pct create invocation.
type CreateConfig struct {
	VMID     int
	Template string
	Hostname string
	MemoryMB int
	DiskGB   int
	Cores    int
	Storage  string
	Net0     string
}

// ContainerExists probes the container status at the given identifier.
// A "does not exist" response from the manager is not an error.
func (c *Client) ContainerExists(ctx context.Context, vmid int) (bool, error) {
	if _, err := c.runner.Execute(ctx, PctCommand, "status", strconv.Itoa(vmid)); err != nil {
		if strings.Contains(err.Error(), "does not exist") {
			return false, nil
		}

		return false, fmt.Errorf("failed to query container status: %w", err)
	}

	return true, nil
}

// CreateContainer materializes a container from a template. The container is
// unprivileged, has nesting enabled, boots with the host, and is explicitly
// not started so that creation failures surface independently of boot health.
func (c *Client) CreateContainer(ctx context.Context, cfg CreateConfig) error {
	args := []string{
		"create", strconv.Itoa(cfg.VMID), cfg.Template,
		"--hostname", cfg.Hostname,
		"--memory", strconv.Itoa(cfg.MemoryMB),
		"--cores", strconv.Itoa(cfg.Cores),
		"--rootfs", fmt.Sprintf("%s:%d", cfg.Storage, cfg.DiskGB),
		"--net0", cfg.Net0,
		"--unprivileged", "1",
		"--features", "nesting=1",
		"--onboot", "1",
		"--start", "0",
	}

	if _, err := c.runner.Execute(ctx, PctCommand, args...); err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}

	return nil
}

func (c *Client) StartContainer(ctx context.Context, vmid int) error {
	if _, err := c.runner.Execute(ctx, PctCommand, "start", strconv.Itoa(vmid)); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}

	return nil
}

// Exec runs a shell command inside the guest and returns its output.
func (c *Client) Exec(ctx context.Context, vmid int, command string) (string, error) {
	out, err := c.runner.Execute(ctx, PctCommand, "exec", strconv.Itoa(vmid), "--", "sh", "-c", command)
	if err != nil {
		return out, fmt.Errorf("failed to exec in container: %w", err)
	}

	return out, nil
}

// StorageBackends lists the active storage backends capable of holding
// template images.
func (c *Client) StorageBackends(ctx context.Context) ([]models.StorageBackend, error) {
	out, err := c.runner.Execute(ctx, PvesmCommand, "status", "--content", TemplateContent)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage backends: %w", err)
	}

	return parseStorageStatus(out), nil
}

// CachedTemplates lists the template images cached on a storage backend.
func (c *Client) CachedTemplates(ctx context.Context, storage string) ([]models.Template, error) {
	out, err := c.runner.Execute(ctx, PveamCommand, "list", storage)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached templates: %w", err)
	}

	return parseTemplateList(storage, out), nil
}

// AvailableTemplates queries the remote catalog of downloadable system
// templates.
func (c *Client) AvailableTemplates(ctx context.Context) ([]models.CatalogEntry, error) {
	out, err := c.runner.Execute(ctx, PveamCommand, "available", "--section", CatalogSection)
	if err != nil {
		return nil, fmt.Errorf("failed to list available templates: %w", err)
	}

	return parseCatalog(out), nil
}

// DownloadTemplate fetches a catalog template into the given storage backend
// and returns the resulting template reference.
func (c *Client) DownloadTemplate(ctx context.Context, storage, name string) (models.Template, error) {
	if _, err := c.runner.Execute(ctx, PveamCommand, "download", storage, name); err != nil {
		return models.Template{}, fmt.Errorf("failed to download template: %w", err)
	}

	template := models.Template{
		Storage: storage,
		VolID:   fmt.Sprintf("%s:%s/%s", storage, TemplateContent, name),
	}

	return template, nil
}

func New(runner Runner) *Client {
	return &Client{runner: runner}
}

func parseStorageStatus(out string) []models.StorageBackend {
	var backends []models.StorageBackend

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[0] == "Name" {
			continue
		}

		backends = append(backends, models.StorageBackend{
			Name:   fields[0],
			Type:   fields[1],
			Active: fields[2] == "active",
		})
	}

	return backends
}

func parseTemplateList(storage, out string) []models.Template {
	var templates []models.Template

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] == "NAME" {
			continue
		}

		templates = append(templates, models.Template{
			Storage: storage,
			VolID:   fields[0],
		})
	}

	return templates
}

func parseCatalog(out string) []models.CatalogEntry {
	var entries []models.CatalogEntry

	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		entries = append(entries, models.CatalogEntry{
			Section: fields[0],
			Name:    fields[1],
		})
	}

	return entries
}
