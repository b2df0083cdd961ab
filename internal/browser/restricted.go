package browser

import "strings"

var restrictedPrefixes = []string{
	"chrome://",
	"chrome-extension://",
	"chrome-search://",
	"edge://",
	"about:",
	"view-source:",
	"devtools://",
	"https://chrome.google.com/webstore",
	"https://chromewebstore.google.com",
}

// IsRestrictedURL reports whether the host refuses scripts on url.
func IsRestrictedURL(url string) bool {
	u := strings.ToLower(strings.TrimSpace(url))
	for _, prefix := range restrictedPrefixes {
		if strings.HasPrefix(u, prefix) {
			return true
		}
	}
	return false
}
