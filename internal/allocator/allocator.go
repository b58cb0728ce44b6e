// Package allocator finds the first free container identifier on the host.
package allocator

import (
	"context"
	"errors"
	"fmt"
)

const (
	DefaultBase   = 100
	DefaultWindow = 1000
)

var ErrWindowExhausted = errors.New("no free container identifier in search window")

// StatusProber reports whether a container identifier is already in use.
type StatusProber interface {
	ContainerExists(ctx context.Context, vmid int) (bool, error)
}

type Allocator struct {
	prober StatusProber
	base   int
	window int
}

// Allocate probes identifiers sequentially from the base value and returns
// the first one the container manager does not know about. The scan is
// bounded: a dense run of occupied identifiers longer than the window is a
// distinct error instead of an endless loop.
func (a *Allocator) Allocate(ctx context.Context) (int, error) {
	for vmid := a.base; vmid < a.base+a.window; vmid++ {
		exists, err := a.prober.ContainerExists(ctx, vmid)
		if err != nil {
			return 0, fmt.Errorf("failed to probe container %d: %w", vmid, err)
		}

		if !exists {
			return vmid, nil
		}
	}

	return 0, ErrWindowExhausted
}

func New(prober StatusProber) *Allocator {
	return &Allocator{prober: prober, base: DefaultBase, window: DefaultWindow}
}

func NewWithBounds(prober StatusProber, base, window int) *Allocator {
	return &Allocator{prober: prober, base: base, window: window}
}
