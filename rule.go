package urlwasher

import (
	"fmt"
	"sort"
	"strings"
)

// Rule associates a set of hosts, and optionally a path shape, with the
// programs used to wash URLs pointing at them.
type Rule struct {
	Name        string
	Domains     []string
	PathPattern []PathSegment
	Programs    []Program
}

// PathSegment matches a single path segment. The zero value is the literal
// empty segment; use AnySegment for a wildcard.
type PathSegment struct {
	literal  string
	wildcard bool
}

// AnySegment matches any value at its position.
var AnySegment = PathSegment{wildcard: true}

// Literal matches exactly the given segment.
func Literal(segment string) PathSegment {
	return PathSegment{literal: segment}
}

func (s PathSegment) String() string {
	if s.wildcard {
		return "*"
	}
	return s.literal
}

// matchesPath checks the segments of an escaped path against the pattern.
// Segments past the end of the pattern are not constrained, but the path
// needs at least as many segments as the pattern has.
func (r *Rule) matchesPath(path string) bool {
	if len(r.PathPattern) == 0 {
		return true
	}
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(segments) < len(r.PathPattern) {
		return false
	}
	for i, pattern := range r.PathPattern {
		if !pattern.wildcard && pattern.literal != segments[i] {
			return false
		}
	}
	return true
}

func (r *Rule) resolvesRedirects() bool {
	for _, p := range r.Programs {
		if p.kind == resolveRedirection {
			return true
		}
	}
	return false
}

func (r *Rule) String() string {
	programs := make([]string, 0, len(r.Programs))
	for _, p := range r.Programs {
		programs = append(programs, p.String())
	}
	s := fmt.Sprintf("%v [%v]", r.Name, strings.Join(r.Domains, ", "))
	if len(r.PathPattern) > 0 {
		segments := make([]string, 0, len(r.PathPattern))
		for _, seg := range r.PathPattern {
			segments = append(segments, seg.String())
		}
		s += " /" + strings.Join(segments, "/")
	}
	return s + ": " + strings.Join(programs, " -> ")
}

type programKind int

const (
	resolveRedirection programKind = iota
	removeParams
	removeAllParams
)

// Program is a single washing step. Programs of a rule run in order, each
// one consuming the URL produced by the previous one.
type Program struct {
	kind   programKind
	params map[string]bool
}

// ResolveRedirection replaces the URL with its redirect target, depending on
// the RedirectPolicy configured for the rule.
func ResolveRedirection() Program {
	return Program{kind: resolveRedirection}
}

// RemoveParams drops the named query parameters.
func RemoveParams(names ...string) Program {
	params := make(map[string]bool, len(names))
	for _, name := range names {
		params[name] = true
	}
	return Program{kind: removeParams, params: params}
}

// RemoveAllParams drops the whole query.
func RemoveAllParams() Program {
	return Program{kind: removeAllParams}
}

func (p Program) String() string {
	switch p.kind {
	case resolveRedirection:
		return "resolve redirection"
	case removeAllParams:
		return "remove all params"
	default:
		names := make([]string, 0, len(p.params))
		for name := range p.params {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Sprintf("remove params %v", names)
	}
}
