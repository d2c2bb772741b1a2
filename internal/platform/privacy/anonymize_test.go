package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"ipv4", "192.168.1.47", "192.168.1.0"},
		{"ipv4 already anonymous", "10.0.0.0", "10.0.0.0"},
		{"ipv6", "2001:db8:85a3::8a2e:370:7334", "2001:0db8:85a3::"},
		{"empty", "", "unknown"},
		{"unknown passthrough", "unknown", "unknown"},
		{"garbage", "not-an-ip", "invalid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AnonymizeIP(tc.in))
		})
	}
}
