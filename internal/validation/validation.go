package validation

import (
	"net"
	"net/url"
	"strings"
)

const (
	maxCommentLength = 5000
	maxAuthorName    = 200
)

// ValidateArticleID checks that an article id is present and sane.
func ValidateArticleID(id string) (bool, string) {
	if id == "" {
		return false, "Article id is required"
	}
	if len(id) > 200 {
		return false, "Article id is too long"
	}
	return true, ""
}

// ValidateAuthor checks the caller-supplied identity attached to a
// suggestion or comment. Identity is trusted upstream; this only rejects
// obviously malformed input.
func ValidateAuthor(id, name string) (bool, string) {
	if id == "" {
		return false, "Author id is required"
	}
	if name == "" {
		return false, "Author name is required"
	}
	if len(name) > maxAuthorName {
		return false, "Author name is too long"
	}
	return true, ""
}

// ValidateCommentText checks a review comment body.
func ValidateCommentText(text string) (bool, string) {
	if strings.TrimSpace(text) == "" {
		return false, "Comment text is required"
	}
	if len(text) > maxCommentLength {
		return false, "Comment text is too long"
	}
	return true, ""
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// IsPrivateIP checks if an IP address is in a private/reserved range.
// Used to prevent SSRF attacks against internal networks.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}

	if ip.IsLoopback() {
		return true
	}

	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}

	if ip.IsPrivate() {
		return true
	}

	if ip.IsUnspecified() {
		return true
	}

	// Cloud metadata endpoints: 169.254.169.254 (AWS, GCP) and
	// 168.63.129.16 (Azure).
	if ip.Equal(net.ParseIP("169.254.169.254")) || ip.Equal(net.ParseIP("168.63.129.16")) {
		return true
	}

	return false
}

// IsPrivateHost checks if a hostname resolves to a private IP address.
// Returns true if the host is private/blocked, false if it's safe to access.
func IsPrivateHost(host string) (bool, error) {
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		// If we can't resolve, be conservative and block.
		return true, err
	}

	for _, ip := range ips {
		if IsPrivateIP(ip) {
			return true, nil
		}
	}

	return false, nil
}

// ValidateFetchURL validates a URL is safe for server-side fetching.
// Blocks private IPs, localhost, and cloud metadata endpoints.
func ValidateFetchURL(urlStr string) (bool, string) {
	valid, msg := ValidateURL(urlStr)
	if !valid {
		return false, msg
	}

	u, _ := url.Parse(urlStr)

	isPrivate, err := IsPrivateHost(u.Host)
	if err != nil {
		return false, "Cannot resolve hostname"
	}
	if isPrivate {
		return false, "URL points to a private or reserved IP address"
	}

	return true, ""
}
