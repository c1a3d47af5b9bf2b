package permission

import (
	"errors"
	"fmt"
	"sort"
)

// Mode tells how the keys of a Policy are combined.
type Mode int

const (
	// ModePublic requires no permission at all.
	ModePublic Mode = iota
	// ModeAnyOf requires at least one of the listed keys.
	ModeAnyOf
	// ModeAllOf requires every listed key.
	ModeAllOf
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModePublic:
		return "public"
	case ModeAnyOf:
		return "any"
	case ModeAllOf:
		return "all"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ErrEmptyRoute is returned when a registry entry has no route name.
var ErrEmptyRoute = errors.New("route name can not be empty")

// Policy is the permission requirement of one route.
type Policy struct {
	Mode Mode
	Keys []Key
}

// Public returns a policy that lets every authenticated caller through.
func Public() Policy {
	return Policy{Mode: ModePublic}
}

// AnyOf returns a policy satisfied by any one of keys.
// Without keys the route is public.
func AnyOf(keys ...Key) Policy {
	return normalize(ModeAnyOf, keys)
}

// AllOf returns a policy satisfied only by holding every key.
// Without keys the route is public.
func AllOf(keys ...Key) Policy {
	return normalize(ModeAllOf, keys)
}

func normalize(mode Mode, keys []Key) Policy {
	set := NewSet(keys...)
	if set.Len() == 0 {
		return Public()
	}

	return Policy{Mode: mode, Keys: set.Keys()}
}

// IsPublic reports whether the policy requires nothing.
func (p Policy) IsPublic() bool {
	return p.Mode == ModePublic || len(p.Keys) == 0
}

// Required returns the policy keys as a Set.
func (p Policy) Required() Set {
	return NewSet(p.Keys...)
}

// SatisfiedBy reports whether granted meets the policy.
func (p Policy) SatisfiedBy(granted Set) bool {
	if p.IsPublic() {
		return true
	}

	if p.Mode == ModeAllOf {
		return granted.HasAll(p.Required())
	}

	return granted.HasAny(p.Required())
}

// Registry maps route names to policies. It is read-only once built
// and safe for concurrent use.
type Registry struct {
	routes map[string]Policy
}

// NewRegistry builds a registry from the given entries.
func NewRegistry(entries map[string]Policy) (*Registry, error) {
	r := &Registry{routes: make(map[string]Policy, len(entries))}

	for route, p := range entries {
		if route == "" {
			return nil, ErrEmptyRoute
		}

		if p.Mode == ModePublic {
			p = Public()
		} else {
			p = normalize(p.Mode, p.Keys)
		}

		r.routes[route] = p
	}

	return r, nil
}

// Lookup returns the policy of route. The bool is false if the route is not mapped.
func (r *Registry) Lookup(route string) (Policy, bool) {
	p, ok := r.routes[route]
	return p, ok
}

// RequiredPermissions returns the keys required by route.
// Public and unmapped routes both yield an empty set; ok tells them apart.
func (r *Registry) RequiredPermissions(route string) (required Set, ok bool) {
	p, ok := r.routes[route]
	if !ok {
		return Set{}, false
	}

	return p.Required(), true
}

// Routes returns the mapped route names in lexical order.
func (r *Registry) Routes() []string {
	out := make([]string, 0, len(r.routes))
	for route := range r.routes {
		out = append(out, route)
	}

	sort.Strings(out)

	return out
}

// Len returns the number of mapped routes.
func (r *Registry) Len() int {
	return len(r.routes)
}
