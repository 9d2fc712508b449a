package service

import (
	"strings"

	"github.com/phrazzld/baike-api/internal/domain"
)

// URLPolicy is the allow-list guard applied before any network access.
type URLPolicy struct {
	prefixes []string
}

// NewURLPolicy creates a policy accepting URLs that begin with any of prefixes.
func NewURLPolicy(prefixes []string) *URLPolicy {
	return &URLPolicy{prefixes: append([]string(nil), prefixes...)}
}

// Check returns a *domain.ValidationError for field "url" when raw is empty or
// does not begin with an allowed prefix.
func (p *URLPolicy) Check(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return domain.NewValidationError("url", "is required", nil)
	}
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(raw, prefix) {
			return nil
		}
	}
	return domain.NewValidationError("url", "must start with "+strings.Join(p.prefixes, " or "), nil)
}
