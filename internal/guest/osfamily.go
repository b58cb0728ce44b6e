package guest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/meadow-cloud/sitectl/pkg/constants"
)

type Family string

const (
	FamilyDebian  Family = "debian"
	FamilyAlpine  Family = "alpine"
	FamilyUnknown Family = "unknown"
)

var ErrUnsupportedFamily = errors.New("unsupported guest OS family")

// Capabilities maps a guest OS family to the commands and paths needed to
// configure it. The table is selected once after detection and reused for
// every guest step.
type Capabilities struct {
	RefreshCommand       string
	InstallCommand       string
	ServiceEnableCommand string
	ServiceStartCommand  string
	ServiceReloadCommand string
	VhostPath            string
	DefaultSitePath      string
	WebRoot              string
}

var capabilitiesByFamily = map[Family]Capabilities{
	FamilyDebian: {
		RefreshCommand:       "apt-get update",
		InstallCommand:       "DEBIAN_FRONTEND=noninteractive apt-get install -y nginx git",
		ServiceEnableCommand: "systemctl enable nginx",
		ServiceStartCommand:  "systemctl restart nginx",
		ServiceReloadCommand: "systemctl reload nginx",
		VhostPath:            "/etc/nginx/conf.d/static-site.conf",
		DefaultSitePath:      "/etc/nginx/sites-enabled/default",
		WebRoot:              constants.WebRoot,
	},
	FamilyAlpine: {
		RefreshCommand:       "apk update",
		InstallCommand:       "apk add nginx git",
		ServiceEnableCommand: "rc-update add nginx default",
		ServiceStartCommand:  "rc-service nginx restart",
		ServiceReloadCommand: "rc-service nginx reload",
		VhostPath:            "/etc/nginx/http.d/static-site.conf",
		DefaultSitePath:      "/etc/nginx/http.d/default.conf",
		WebRoot:              constants.WebRoot,
	},
}

// DetectFamily classifies the guest from its /etc/os-release contents,
// falling back to ID_LIKE for derivatives.
func DetectFamily(osRelease string) Family {
	ids := make([]string, 0, 2)

	for _, line := range strings.Split(osRelease, "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), "=")
		if !found {
			continue
		}

		if key == "ID" || key == "ID_LIKE" {
			ids = append(ids, strings.Fields(strings.Trim(value, `"`))...)
		}
	}

	for _, id := range ids {
		switch id {
		case "debian", "ubuntu":
			return FamilyDebian
		case "alpine":
			return FamilyAlpine
		}
	}

	return FamilyUnknown
}

// CapabilitiesFor returns the command table for a detected family.
func CapabilitiesFor(family Family) (Capabilities, error) {
	capabilities, ok := capabilitiesByFamily[family]
	if !ok {
		return Capabilities{}, fmt.Errorf("%w: %s", ErrUnsupportedFamily, family)
	}

	return capabilities, nil
}
