package protectlist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker provides functionality to check if sender domains are protected
// from unsubscribe recommendations
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new protected-domain checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	// Normalize domains (lowercase)
	normalizedDomains := make([]string, len(domains))
	for i, domain := range domains {
		normalizedDomains[i] = strings.ToLower(strings.TrimSpace(domain))
	}

	if len(normalizedDomains) > 0 && logger != nil {
		logger.Info("Initialized protected-domain checker", zap.Strings("domains", normalizedDomains))
	}

	return &Checker{
		domains: normalizedDomains,
		logger:  logger,
	}
}

// IsProtected checks if the sender's domain is on the protected list
func (c *Checker) IsProtected(from string) bool {
	if len(c.domains) == 0 {
		return false
	}

	// Extract domain from email address
	parts := strings.Split(from, "@")
	if len(parts) != 2 {
		return false
	}
	domain := strings.ToLower(strings.TrimSuffix(parts[1], ">"))

	for _, protected := range c.domains {
		if protected == domain {
			if c.logger != nil {
				c.logger.Debug("Domain is protected",
					zap.String("domain", domain),
					zap.String("email", from))
			}
			return true
		}
	}

	return false
}

// Domains returns the normalized protected domains
func (c *Checker) Domains() []string {
	return c.domains
}
