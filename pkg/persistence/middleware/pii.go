package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/tendril/pkg/model"
	"github.com/aretw0/tendril/pkg/ports"
)

type piiAdapter struct {
	next     ports.PersistenceAdapter
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks values of attribute keys
// matching the patterns before they are written. Reads pass through, so
// masked values come back masked.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.PersistenceAdapter) ports.PersistenceAdapter {
		return &piiAdapter{next: next, patterns: patterns}
	}
}

func (a *piiAdapter) SaveAttributes(ctx context.Context, envelope *model.RequestEnvelope, attributes map[string]any) error {
	// Deep clone so masking never leaks into the live attribute map the
	// handlers keep working with.
	cloned := deepCopyMap(attributes)
	maskMap(cloned, a.patterns)
	return a.next.SaveAttributes(ctx, envelope, cloned)
}

func (a *piiAdapter) GetAttributes(ctx context.Context, envelope *model.RequestEnvelope) (map[string]any, bool, error) {
	return a.next.GetAttributes(ctx, envelope)
}

func (a *piiAdapter) DeleteAttributes(ctx context.Context, envelope *model.RequestEnvelope) error {
	return a.next.DeleteAttributes(ctx, envelope)
}

// Helpers

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		// Handle nested maps
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v // shallow copy of value
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		// Check key against patterns
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = "***"
				break
			}
		}

		// Recurse if map
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
