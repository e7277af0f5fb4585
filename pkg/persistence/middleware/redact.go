package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/rewind/pkg/domain"
	"github.com/aretw0/rewind/pkg/ports"
)

// Mask replaces redacted values in stored sessions.
const Mask = "***"

type redactMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks the values of keys matching
// any of the patterns, in every document of the timeline and at any depth.
// Redaction is one way: loading returns the masked values.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Save(ctx context.Context, sessionID string, session *domain.Session) error {
	// Documents are shared with the caller's in-memory history; mask copies.
	cloned := session.Snapshot()
	for i, doc := range cloned.Timeline.States {
		masked := deepCopyMap(doc)
		maskMap(masked, m.patterns)
		cloned.Timeline.States[i] = masked
	}
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if matchesAny(k, patterns) {
			m[k] = Mask
			continue
		}
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
