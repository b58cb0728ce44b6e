package guest

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/meadow-cloud/sitectl/pkg/constants"
)

const (
	VhostTemplate        = "static-site.conf"
	UpdateScriptTemplate = "update-site.sh"
)

//go:embed assets
var assetsFS embed.FS

var assets = template.Must(template.ParseFS(assetsFS, "assets/*"+constants.TemplateExtension))

// RenderVhostConfig renders the nginx virtual host serving the cloned site
// with 7-day caching for static assets and compression for text-like types.
func RenderVhostConfig(capabilities Capabilities) (string, error) {
	return render(VhostTemplate, map[string]any{"WebRoot": capabilities.WebRoot})
}

// RenderUpdateScript renders the guest-resident helper that re-pulls the
// site repository and reloads the web server.
func RenderUpdateScript(capabilities Capabilities) (string, error) {
	return render(UpdateScriptTemplate, map[string]any{
		"WebRoot":       capabilities.WebRoot,
		"ReloadCommand": capabilities.ServiceReloadCommand,
	})
}

func render(name string, data any) (string, error) {
	buf := &strings.Builder{}
	if err := assets.ExecuteTemplate(buf, name+constants.TemplateExtension, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}

	return buf.String(), nil
}
