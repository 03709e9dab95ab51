// Package intercept implements the interception proxy core: a rule
// engine evaluated against every captured request, and the
// hold-for-release protocol for exchanges awaiting manual action.
package intercept

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/seclab/seclab/pkg/exchange"
	"github.com/seclab/seclab/pkg/regexcache"
)

// Dimension selects which part of a request a rule matches against.
type Dimension string

const (
	DimURL    Dimension = "url"
	DimHost   Dimension = "host"
	DimPath   Dimension = "path"
	DimMethod Dimension = "method"
	DimHeader Dimension = "header"
	DimBody   Dimension = "body"
)

// IsValid reports whether d is a recognized dimension.
func (d Dimension) IsValid() bool {
	switch d {
	case DimURL, DimHost, DimPath, DimMethod, DimHeader, DimBody:
		return true
	}
	return false
}

// Action is what a matching rule does with the request.
type Action string

const (
	// ActionIntercept holds the request for manual release.
	ActionIntercept Action = "intercept"
	// ActionDrop discards the request; it is never forwarded.
	ActionDrop Action = "drop"
	// ActionForward passes the request through unchanged.
	ActionForward Action = "forward"
)

// IsValid reports whether a is a recognized action.
func (a Action) IsValid() bool {
	switch a {
	case ActionIntercept, ActionDrop, ActionForward:
		return true
	}
	return false
}

var (
	// ErrBadPattern is returned when a rule pattern fails to compile.
	// Patterns are rejected at rule-creation time so matching itself
	// never fails.
	ErrBadPattern = errors.New("intercept: invalid rule pattern")

	// ErrBadDimension is returned for an unrecognized match dimension.
	ErrBadDimension = errors.New("intercept: invalid rule dimension")

	// ErrBadAction is returned for an unrecognized rule action.
	ErrBadAction = errors.New("intercept: invalid rule action")

	// ErrUnknownRule is returned when no rule has the given ID.
	ErrUnknownRule = errors.New("intercept: unknown rule")
)

// Rule is one intercept rule. Matching is case-insensitive regular
// expression matching against the selected dimension.
type Rule struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Dimension Dimension `json:"dimension"`
	Pattern   string    `json:"pattern"`
	Action    Action    `json:"action"`
	Enabled   bool      `json:"enabled"`

	re *regexp.Regexp
}

// compileRule validates and compiles a rule definition.
func compileRule(name string, dim Dimension, pattern string, action Action) (Rule, error) {
	if !dim.IsValid() {
		return Rule{}, ErrBadDimension
	}
	if !action.IsValid() {
		return Rule{}, ErrBadAction
	}
	re, err := regexcache.Get("(?i)" + pattern)
	if err != nil {
		return Rule{}, ErrBadPattern
	}
	return Rule{
		ID:        uuid.New().String(),
		Name:      name,
		Dimension: dim,
		Pattern:   pattern,
		Action:    action,
		Enabled:   true,
		re:        re,
	}, nil
}

// matches reports whether the rule structurally matches the request.
// For the header dimension a rule matches if either a header name or
// its value matches. An unmatched rule simply does not apply.
func (r *Rule) matches(req *exchange.Request) bool {
	switch r.Dimension {
	case DimURL:
		return r.re.MatchString(req.URL())
	case DimHost:
		return r.re.MatchString(req.Host)
	case DimPath:
		return r.re.MatchString(req.Path)
	case DimMethod:
		return r.re.MatchString(req.Method)
	case DimHeader:
		for _, h := range req.Headers {
			if r.re.MatchString(h.Name) || r.re.MatchString(h.Value) {
				return true
			}
		}
		return false
	case DimBody:
		return len(req.Body) > 0 && r.re.Match(req.Body)
	}
	return false
}

// normalizeName trims and lowercases a rule name for upsert matching.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
