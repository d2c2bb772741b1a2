// Package device derives a short human-readable description of the client
// device from the User-Agent header. The description is stamped on print
// requests so the badge queue shows where a request came from.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Describe returns "Browser on OS" (e.g. "Chrome on macOS", "Safari on iOS").
func Describe(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgentString)

	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}

	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}

	return strings.TrimSpace(browser + " on " + os)
}
