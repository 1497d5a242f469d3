package socketaddr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	nameRegex    = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)
	indexedRegex = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_-]*)\[(\d+)\]$`)
)

// Parse creates an Address from its textual form.
func Parse(raw string) (Address, error) {
	if raw == "" {
		return Address{}, fmt.Errorf("socket address cannot be empty")
	}

	segments := strings.Split(raw, ".")
	for _, s := range segments {
		if s == "" {
			return Address{}, fmt.Errorf("socket address %q contains an empty segment", raw)
		}
	}

	scope := ScopeNode
	switch Scope(segments[0]) {
	case ScopeNode, ScopeGroup:
		scope = Scope(segments[0])
		segments = segments[1:]
	}

	switch len(segments) {
	case 1:
		m := indexedRegex.FindStringSubmatch(segments[0])
		if m == nil {
			return Address{}, fmt.Errorf("socket address %q names no socket", raw)
		}
		index, err := strconv.Atoi(m[2])
		if err != nil {
			return Address{}, fmt.Errorf("socket address %q: %w", raw, err)
		}
		return NewIndexed(scope, m[1], index), nil
	case 2:
		for _, s := range segments {
			if !nameRegex.MatchString(s) {
				return Address{}, fmt.Errorf("invalid segment %q in socket address %q", s, raw)
			}
		}
		return New(scope, segments[0], segments[1]), nil
	default:
		return Address{}, fmt.Errorf("socket address %q has %d segments, want scope.name.socket", raw, len(segments))
	}
}

// MustParse is like Parse but panics on error. It is meant for tests and
// package-level tables.
func MustParse(raw string) Address {
	a, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return a
}
