package guest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RenderVhostConfig(t *testing.T) {
	capabilities, err := CapabilitiesFor(FamilyDebian)
	require.NoError(t, err)

	config, err := RenderVhostConfig(capabilities)
	require.NoError(t, err)

	assert.Contains(t, config, "root /var/www/html;")
	assert.Contains(t, config, "listen 80 default_server;")
	assert.Contains(t, config, "expires 7d;")
	assert.Contains(t, config, "gzip on;")
	assert.Contains(t, config, "gzip_types text/plain text/css")
	assert.NotContains(t, config, "{{", "unexpanded template action")
}

func Test_RenderUpdateScript(t *testing.T) {
	testCases := []struct {
		name   string
		family Family
		reload string
	}{
		{name: "debian", family: FamilyDebian, reload: "systemctl reload nginx"},
		{name: "alpine", family: FamilyAlpine, reload: "rc-service nginx reload"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			capabilities, err := CapabilitiesFor(tc.family)
			require.NoError(t, err)

			script, err := RenderUpdateScript(capabilities)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(script, "#!/bin/sh\n"))
			assert.Contains(t, script, "cd /var/www/html")
			assert.Contains(t, script, "git pull --ff-only")
			assert.Contains(t, script, tc.reload)
		})
	}
}
