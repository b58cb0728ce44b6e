package models

import "strings"

// StorageBackend is a host storage capable of holding template images.
type StorageBackend struct {
	Name   string
	Type   string
	Active bool
}

// Template references an OS template image cached on a storage backend,
// identified by its volume id, e.g. "local:vztmpl/debian-12-standard_12.7-1_amd64.tar.zst".
type Template struct {
	Storage string
	VolID   string
}

// Name returns the bare template file name without storage and content prefix.
func (t Template) Name() string {
	_, name, found := strings.Cut(t.VolID, "/")
	if !found {
		return t.VolID
	}

	return name
}

// CatalogEntry is a template available for download from the remote catalog.
type CatalogEntry struct {
	Section string
	Name    string
}
