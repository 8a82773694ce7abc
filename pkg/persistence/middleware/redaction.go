package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/turning/pkg/domain"
	"github.com/aretw0/turning/pkg/ports"
)

// Mask replaces every redacted match.
const Mask = "***"

type redactionMiddleware struct {
	next     ports.ReportStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks matches of the patterns
// in recorded failure messages before they reach the store.
// Failure messages often echo values from the system under test.
func NewRedactionMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.ReportStore) ports.ReportStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactionMiddleware) Save(ctx context.Context, suite string, report *domain.Report) error {
	// The caller keeps its unmasked report.
	cloned := report.Clone()
	for i := range cloned.Cases {
		for j, msg := range cloned.Cases[i].Errors {
			cloned.Cases[i].Errors[j] = m.mask(msg)
		}
	}
	return m.next.Save(ctx, suite, cloned)
}

func (m *redactionMiddleware) mask(msg string) string {
	for _, p := range m.patterns {
		msg = p.ReplaceAllString(msg, Mask)
	}
	return msg
}

func (m *redactionMiddleware) Load(ctx context.Context, suite string) (*domain.Report, error) {
	return m.next.Load(ctx, suite)
}

func (m *redactionMiddleware) Delete(ctx context.Context, suite string) error {
	return m.next.Delete(ctx, suite)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
