package guest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DetectFamily(t *testing.T) {
	testCases := []struct {
		name      string
		osRelease string
		expected  Family
	}{
		{
			name:      "debian",
			osRelease: "PRETTY_NAME=\"Debian GNU/Linux 12 (bookworm)\"\nID=debian\nVERSION_CODENAME=bookworm\n",
			expected:  FamilyDebian,
		},
		{
			name:      "ubuntu maps to debian family",
			osRelease: "ID=ubuntu\nID_LIKE=debian\n",
			expected:  FamilyDebian,
		},
		{
			name:      "derivative via id_like",
			osRelease: "ID=raspbian\nID_LIKE=\"debian\"\n",
			expected:  FamilyDebian,
		},
		{
			name:      "alpine",
			osRelease: "NAME=\"Alpine Linux\"\nID=alpine\n",
			expected:  FamilyAlpine,
		},
		{
			name:      "unknown",
			osRelease: "ID=plan9\n",
			expected:  FamilyUnknown,
		},
		{
			name:      "empty",
			osRelease: "",
			expected:  FamilyUnknown,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DetectFamily(tc.osRelease))
		})
	}
}

func Test_CapabilitiesFor(t *testing.T) {
	t.Run("debian", func(t *testing.T) {
		capabilities, err := CapabilitiesFor(FamilyDebian)
		require.NoError(t, err)
		assert.Equal(t, "apt-get update", capabilities.RefreshCommand)
		assert.Equal(t, "/var/www/html", capabilities.WebRoot)
	})

	t.Run("alpine", func(t *testing.T) {
		capabilities, err := CapabilitiesFor(FamilyAlpine)
		require.NoError(t, err)
		assert.Equal(t, "rc-service nginx reload", capabilities.ServiceReloadCommand)
	})

	t.Run("unknown is fatal", func(t *testing.T) {
		_, err := CapabilitiesFor(FamilyUnknown)
		assert.ErrorIs(t, err, ErrUnsupportedFamily)
	})
}
