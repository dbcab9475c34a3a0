package validator

import (
	"net/url"
	"strings"
)

// ValidateURL reports whether mediaURL is a plausible http(s) media URL. An
// empty allowedDomains accepts any host.
func ValidateURL(mediaURL string, allowedDomains []string) bool {
	u, err := url.Parse(strings.TrimSpace(mediaURL))
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	// Normalize host to lowercase for comparison
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	host = strings.TrimPrefix(host, "www.")

	if len(allowedDomains) == 0 {
		return true
	}

	for _, domain := range allowedDomains {
		cleanDomain := strings.ToLower(strings.TrimSpace(domain))
		if len(cleanDomain) == 0 {
			continue
		}

		if host == cleanDomain || strings.HasSuffix(host, "."+cleanDomain) {
			return true
		}
	}

	return false
}

// SanitizeFilename removes dangerous characters from filename
func SanitizeFilename(filename string) string {
	dangerousChars := []string{"<", ">", ":", "\"", "/", "\\", "|", "?", "*", "\x00", "\r", "\n", ";"}
	result := filename
	for _, char := range dangerousChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	return result
}
