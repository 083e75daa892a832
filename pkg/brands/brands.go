package brands

import (
	"fmt"
	"sort"
	"strings"
)

// Registry holds the brand identifiers configured at startup. Brand values are
// deployment configuration, not a compile-time enum.
type Registry struct {
	valid map[string]struct{}
}

// NewRegistry normalizes and dedupes the configured brand identifiers.
func NewRegistry(ids []string) (*Registry, error) {
	valid := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		trimmed := strings.ToLower(strings.TrimSpace(id))
		if trimmed == "" {
			continue
		}
		valid[trimmed] = struct{}{}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("at least one brand identifier is required")
	}
	return &Registry{valid: valid}, nil
}

// IsValid reports whether the brand is configured.
func (r *Registry) IsValid(brand string) bool {
	if r == nil {
		return false
	}
	_, ok := r.valid[strings.ToLower(strings.TrimSpace(brand))]
	return ok
}

// All returns the configured brands in stable order.
func (r *Registry) All() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.valid))
	for id := range r.valid {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
