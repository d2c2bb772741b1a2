package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeDesktopChrome(t *testing.T) {
	got := Describe("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.Contains(t, got, "Chrome")
	assert.Contains(t, got, " on ")
}

func TestDescribeEmptyHeader(t *testing.T) {
	assert.Equal(t, "Unknown Device", Describe(""))
}

func TestDescribeNeverEmpty(t *testing.T) {
	for _, ua := range []string{
		"curl/8.4.0",
		"definitely not a user agent",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
	} {
		assert.NotEmpty(t, Describe(ua))
	}
}
