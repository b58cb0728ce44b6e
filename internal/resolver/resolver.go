// Package resolver locates a usable OS template image, falling back to the
// remote catalog when the host has no cached templates.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/meadow-cloud/sitectl/internal/models"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

const (
	MaxConcurrentListings = 3
	MaxCatalogEntries     = 20

	LocalSelectionHeader   = "Cached templates"
	CatalogSelectionHeader = "Downloadable templates"
)

var (
	ErrNoTemplates      = errors.New("no templates cached locally and none available for download")
	ErrInvalidSelection = errors.New("selection must be a number within the listed range")
)

// TemplateProvider is the container manager surface the resolver consumes.
type TemplateProvider interface {
	StorageBackends(ctx context.Context) ([]models.StorageBackend, error)
	CachedTemplates(ctx context.Context, storage string) ([]models.Template, error)
	AvailableTemplates(ctx context.Context) ([]models.CatalogEntry, error)
	DownloadTemplate(ctx context.Context, storage, name string) (models.Template, error)
}

// Prompter reads a raw selection line from the operator.
type Prompter interface {
	Select(header string, options []string) (string, error)
}

type Config struct {
	TemplateStorage string
}

type Resolver struct {
	provider        TemplateProvider
	prompter        Prompter
	templateStorage string
}

// Resolve aggregates the cached templates of every active storage backend
// and has the operator pick one. With nothing cached it falls back to the
// remote catalog and downloads the chosen entry into the template storage.
func (r *Resolver) Resolve(ctx context.Context) (models.Template, error) {
	backends, err := r.provider.StorageBackends(ctx)
	if err != nil {
		return models.Template{}, fmt.Errorf("failed to enumerate storage backends: %w", err)
	}

	activeBackends := lo.Filter(backends, func(backend models.StorageBackend, _ int) bool {
		return backend.Active
	})

	templates, err := r.listCachedTemplates(ctx, activeBackends)
	if err != nil {
		return models.Template{}, fmt.Errorf("failed to list cached templates: %w", err)
	}

	if len(templates) > 0 {
		options := lo.Map(templates, func(template models.Template, _ int) string {
			return template.VolID
		})

		index, err := r.selectIndex(LocalSelectionHeader, options)
		if err != nil {
			return models.Template{}, err
		}

		return templates[index-1], nil
	}

	return r.resolveFromCatalog(ctx)
}

func (r *Resolver) resolveFromCatalog(ctx context.Context) (models.Template, error) {
	entries, err := r.provider.AvailableTemplates(ctx)
	if err != nil {
		return models.Template{}, fmt.Errorf("failed to query template catalog: %w", err)
	}

	if len(entries) == 0 {
		return models.Template{}, ErrNoTemplates
	}

	entries = lo.Slice(entries, 0, MaxCatalogEntries)

	options := lo.Map(entries, func(entry models.CatalogEntry, _ int) string {
		return entry.Name
	})

	index, err := r.selectIndex(CatalogSelectionHeader, options)
	if err != nil {
		return models.Template{}, err
	}

	template, err := r.provider.DownloadTemplate(ctx, r.templateStorage, entries[index-1].Name)
	if err != nil {
		return models.Template{}, fmt.Errorf("failed to download selected template: %w", err)
	}

	return template, nil
}

// listCachedTemplates queries backends with bounded concurrency while
// keeping the aggregate in backend order.
func (r *Resolver) listCachedTemplates(ctx context.Context, backends []models.StorageBackend) ([]models.Template, error) {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(MaxConcurrentListings)

	perBackend := make([][]models.Template, len(backends))
	for i, backend := range backends {
		i, backend := i, backend

		eg.Go(func() error {
			templates, err := r.provider.CachedTemplates(ctx, backend.Name)
			if err != nil {
				return err
			}

			perBackend[i] = templates

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return lo.Flatten(perBackend), nil
}

func (r *Resolver) selectIndex(header string, options []string) (int, error) {
	input, err := r.prompter.Select(header, options)
	if err != nil {
		return 0, fmt.Errorf("failed to read selection: %w", err)
	}

	return ParseSelection(input, len(options))
}

// ParseSelection validates a raw selection over [1, bound]. Empty input
// defaults to the first entry; anything non-numeric or out of range is a
// hard error.
func ParseSelection(input string, bound int) (int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 1, nil
	}

	index, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSelection, trimmed)
	}

	if index < 1 || index > bound {
		return 0, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidSelection, index, bound)
	}

	return index, nil
}

func New(provider TemplateProvider, prompter Prompter, cfg Config) *Resolver {
	return &Resolver{
		provider:        provider,
		prompter:        prompter,
		templateStorage: cfg.TemplateStorage,
	}
}
