// Package permission holds the permission vocabulary of the manager and the
// registry that maps manager route names to the permissions required to call them.
package permission

import (
	"sort"
	"strings"
)

// Key identifies a permission by its string key (e.g. "edit_template").
// Role assignments reference permissions by Key, never by numeric id.
type Key string

// String implements fmt.Stringer.
func (k Key) String() string {
	return string(k)
}

// Set is an unordered collection of permission keys.
type Set map[Key]struct{}

// NewSet builds a set from the given keys. Empty keys are dropped.
func NewSet(keys ...Key) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}

		s[k] = struct{}{}
	}

	return s
}

// ParseKeys converts raw strings into a Set, trimming whitespace.
func ParseKeys(raw []string) Set {
	s := make(Set, len(raw))
	for _, r := range raw {
		if k := Key(strings.TrimSpace(r)); k != "" {
			s[k] = struct{}{}
		}
	}

	return s
}

// Has reports whether k is in the set.
func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// HasAny reports whether s and other share at least one key.
// An empty other never matches.
func (s Set) HasAny(other Set) bool {
	small, big := s, other
	if len(big) < len(small) {
		small, big = big, small
	}

	for k := range small {
		if big.Has(k) {
			return true
		}
	}

	return false
}

// HasAll reports whether every key of other is in s.
// An empty other always matches.
func (s Set) HasAll(other Set) bool {
	for k := range other {
		if !s.Has(k) {
			return false
		}
	}

	return true
}

// Len returns the number of keys.
func (s Set) Len() int {
	return len(s)
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}

	return out
}

// Keys returns the keys in lexical order.
func (s Set) Keys() []Key {
	out := make([]Key, 0, len(s))
	for k := range s {
		out = append(out, k)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Strings returns the keys as sorted plain strings.
func (s Set) Strings() []string {
	keys := s.Keys()

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}

	return out
}
