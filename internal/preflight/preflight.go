// Package preflight verifies host privileges and tooling before any
// mutating action.
package preflight

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

var (
	ErrNotRoot     = errors.New("must run as root on the hypervisor host")
	ErrToolMissing = errors.New("required host tool not found")

	RequiredTools = []string{"pct", "pveam", "pvesm"}
)

type Checker struct {
	euid     func() int
	lookPath func(file string) (string, error)
}

// Check fails fast on the first missing precondition.
func (c *Checker) Check() error {
	if c.euid() != 0 {
		return ErrNotRoot
	}

	for _, tool := range RequiredTools {
		if _, err := c.lookPath(tool); err != nil {
			return fmt.Errorf("%w: %s", ErrToolMissing, tool)
		}
	}

	return nil
}

func New() *Checker {
	return &Checker{euid: os.Geteuid, lookPath: exec.LookPath}
}

func NewWithLookups(euid func() int, lookPath func(file string) (string, error)) *Checker {
	return &Checker{euid: euid, lookPath: lookPath}
}
