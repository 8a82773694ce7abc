// Package pattern compiles glob-like state patterns into anchored regular expressions.
//
// Supported syntax:
//
//	{a,b}    alternation, nestable, empty alternatives allowed
//	\x       literal x
//	!p       negation, only meaningful inside a pattern list
//	**       any substring, including the empty one
//	*        one segment (anything except ':' and '/')
package pattern

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	segment   = `[^:/]+`
	anyString = `.*`
)

// SyntaxError reports a malformed pattern.
type SyntaxError struct {
	Pattern string
	Offset  int
	Reason  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid state pattern %q: %s at offset %d", e.Pattern, e.Reason, e.Offset)
}

// Matcher compiles and memoizes patterns. It is safe for concurrent use.
type Matcher struct {
	mu    sync.RWMutex
	cache map[string]*regexp.Regexp
}

// NewMatcher creates an empty Matcher.
func NewMatcher() *Matcher {
	return &Matcher{cache: make(map[string]*regexp.Regexp)}
}

// Default is the shared matcher used when callers do not provide one.
var Default = NewMatcher()

// Compile returns the anchored expression for a positive pattern.
// A leading '!' is not interpreted here; see Filter.
func (m *Matcher) Compile(pattern string) (*regexp.Regexp, error) {
	m.mu.RLock()
	re, ok := m.cache[pattern]
	m.mu.RUnlock()
	if ok {
		return re, nil
	}

	src, err := Translate(pattern)
	if err != nil {
		return nil, err
	}
	re, err = regexp.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to compile state pattern %q: %w", pattern, err)
	}

	m.mu.Lock()
	m.cache[pattern] = re
	m.mu.Unlock()
	return re, nil
}

// Reset drops every memoized expression.
func (m *Matcher) Reset() {
	m.mu.Lock()
	m.cache = make(map[string]*regexp.Regexp)
	m.mu.Unlock()
}

// Len reports how many patterns are memoized.
func (m *Matcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cache)
}

// Match reports whether state matches the positive pattern.
func (m *Matcher) Match(state, pattern string) (bool, error) {
	re, err := m.Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(state), nil
}

// MatchAny reports whether at least one state matches the pattern.
func (m *Matcher) MatchAny(states []string, pattern string) (bool, error) {
	re, err := m.Compile(pattern)
	if err != nil {
		return false, err
	}
	for _, s := range states {
		if re.MatchString(s) {
			return true, nil
		}
	}
	return false, nil
}

// Filter builds a predicate from a pattern list. Patterns prefixed with '!'
// exclude; a state passes when no negation matches and, if any positive
// pattern is present, at least one positive pattern matches.
func (m *Matcher) Filter(patterns ...string) (func(string) bool, error) {
	var positives, negatives []*regexp.Regexp
	for _, p := range patterns {
		negate := strings.HasPrefix(p, "!")
		if negate {
			p = p[1:]
		}
		re, err := m.Compile(p)
		if err != nil {
			return nil, err
		}
		if negate {
			negatives = append(negatives, re)
		} else {
			positives = append(positives, re)
		}
	}

	return func(state string) bool {
		for _, re := range negatives {
			if re.MatchString(state) {
				return false
			}
		}
		if len(positives) == 0 {
			return true
		}
		for _, re := range positives {
			if re.MatchString(state) {
				return true
			}
		}
		return false
	}, nil
}

// Exclude returns the states that match none of the patterns, preserving order.
func (m *Matcher) Exclude(states []string, patterns []string) ([]string, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := m.Compile(p)
		if err != nil {
			return nil, err
		}
		res = append(res, re)
	}

	kept := make([]string, 0, len(states))
outer:
	for _, s := range states {
		for _, re := range res {
			if re.MatchString(s) {
				continue outer
			}
		}
		kept = append(kept, s)
	}
	return kept, nil
}

// Escape quotes every character with special meaning so the result matches s literally.
func Escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '{', '}', ',', '\\', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Translate converts a pattern into the source of an anchored regular expression.
func Translate(pattern string) (string, error) {
	p := &parser{src: pattern}
	body, err := p.sequence(false)
	if err != nil {
		return "", err
	}
	return "^" + body + "$", nil
}

type parser struct {
	src string
	pos int
}

// sequence consumes input until the end, or until ',' or '}' when inside braces.
func (p *parser) sequence(inBraces bool) (string, error) {
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\\':
			if p.pos+1 >= len(p.src) {
				return "", &SyntaxError{Pattern: p.src, Offset: p.pos, Reason: "dangling escape"}
			}
			r, size := utf8.DecodeRuneInString(p.src[p.pos+1:])
			b.WriteString(regexp.QuoteMeta(string(r)))
			p.pos += 1 + size
		case c == '*':
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '*' {
				b.WriteString(anyString)
				p.pos += 2
			} else {
				b.WriteString(segment)
				p.pos++
			}
		case c == '{':
			alt, err := p.alternation()
			if err != nil {
				return "", err
			}
			b.WriteString(alt)
		case inBraces && (c == ',' || c == '}'):
			return b.String(), nil
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteString(regexp.QuoteMeta(string(r)))
			p.pos += size
		}
	}
	return b.String(), nil
}

func (p *parser) alternation() (string, error) {
	open := p.pos
	p.pos++

	var alts []string
	for {
		alt, err := p.sequence(true)
		if err != nil {
			return "", err
		}
		alts = append(alts, alt)
		if p.pos >= len(p.src) {
			return "", &SyntaxError{Pattern: p.src, Offset: open, Reason: "unmatched '{'"}
		}
		c := p.src[p.pos]
		p.pos++
		if c == '}' {
			break
		}
	}
	return "(?:" + strings.Join(alts, "|") + ")", nil
}
