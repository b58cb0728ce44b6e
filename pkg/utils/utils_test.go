package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ExtractIPv4(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name: "ip addr output",
			input: `2: eth0@if14: <BROADCAST,MULTICAST,UP,LOWER_UP> mtu 1500 qdisc noqueue state UP
    inet 192.168.1.123/24 brd 192.168.1.255 scope global dynamic eth0
       valid_lft 86257sec preferred_lft 86257sec
`,
			expected: "192.168.1.123",
		},
		{
			name:     "bare address",
			input:    "10.0.0.5",
			expected: "10.0.0.5",
		},
		{
			name:    "invalid octets skipped",
			input:   "inet 999.999.999.999/24",
			wantErr: true,
		},
		{
			name:    "no address",
			input:   "eth0: no addresses",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := ExtractIPv4(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrNoAddressFound)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}
