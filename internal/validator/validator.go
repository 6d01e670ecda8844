package validator

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/darkodi/shortstore/internal/errors"
)

// URLValidator validates URL inputs
type URLValidator struct {
	maxLength       int
	allowedSchemes  []string
	blockedDomains  []string
	blockPrivateIPs bool
}

// NewURLValidator creates a validator with default settings
func NewURLValidator() *URLValidator {
	return &URLValidator{
		maxLength:      2048,
		allowedSchemes: []string{"http", "https"},
		blockedDomains: []string{},
	}
}

// ValidateURL validates a URL string. Every failure is an InvalidInput AppError.
func (v *URLValidator) ValidateURL(rawURL string) error {
	// Check if empty
	if strings.TrimSpace(rawURL) == "" {
		return errors.InvalidInput("url is empty")
	}

	// Check length
	if len(rawURL) > v.maxLength {
		return errors.InvalidURL(fmt.Sprintf("URL exceeds maximum length of %d characters", v.maxLength))
	}

	// Parse URL
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return errors.InvalidURL("URL could not be parsed")
	}

	// Check scheme
	if !v.isAllowedScheme(parsedURL.Scheme) {
		return errors.InvalidURL("URL must use http or https scheme")
	}

	// Check host exists
	if parsedURL.Hostname() == "" {
		return errors.InvalidURL("URL must have a valid host")
	}

	// Check for blocked domains
	if v.isBlockedDomain(parsedURL.Hostname()) {
		return errors.InvalidURL("This domain is not allowed")
	}

	// Check for private/local IPs
	if v.blockPrivateIPs && isPrivateHost(parsedURL.Hostname()) {
		return errors.InvalidURL("URLs pointing to private IPs are not allowed")
	}

	return nil
}

// ============================================================
// HELPER METHODS
// ============================================================

func (v *URLValidator) isAllowedScheme(scheme string) bool {
	scheme = strings.ToLower(scheme)
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

// isBlockedDomain matches the domain itself and its subdomains.
func (v *URLValidator) isBlockedDomain(host string) bool {
	host = strings.ToLower(host)
	for _, blocked := range v.blockedDomains {
		blocked = strings.ToLower(strings.TrimSpace(blocked))
		if blocked == "" {
			continue
		}
		if host == blocked || strings.HasSuffix(host, "."+blocked) {
			return true
		}
	}
	return false
}

func isPrivateHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsLinkLocalUnicast()
}

// ============================================================
// CONFIGURATION METHODS
// ============================================================

// WithMaxLength sets maximum URL length
func (v *URLValidator) WithMaxLength(length int) *URLValidator {
	if length > 0 {
		v.maxLength = length
	}
	return v
}

// WithBlockedDomains adds domains to block list
func (v *URLValidator) WithBlockedDomains(domains ...string) *URLValidator {
	v.blockedDomains = append(v.blockedDomains, domains...)
	return v
}

// WithBlockPrivateIPs rejects loopback, private and link-local hosts
func (v *URLValidator) WithBlockPrivateIPs(block bool) *URLValidator {
	v.blockPrivateIPs = block
	return v
}
