// Package gate decides whether a manager request may proceed.
//
// A decision combines three checks, in order: the route policy from the
// permission registry, the role of the caller, and, when row-level
// permissions are enabled and a resource is named, the document groups of
// that resource. Whether row-level permissions are enabled is an input of
// every request; the gate never reads settings itself.
package gate

import (
	"context"

	"github.com/evocms-community/evo-authz/internal/auth"
	"github.com/evocms-community/evo-authz/internal/permission"
)

// Reason explains a denial.
type Reason string

// Deny reasons.
const (
	ReasonNoRole             Reason = "no_role"
	ReasonMissingPermission  Reason = "missing_permission"
	ReasonResourceRestricted Reason = "resource_restricted"
	ReasonUnknownRoute       Reason = "unknown_route"
)

// PermissionChecker answers role permission questions.
type PermissionChecker interface {
	UserHasAny(ctx context.Context, sub auth.Subject, required permission.Set) (bool, error)
	UserHasAll(ctx context.Context, sub auth.Subject, required permission.Set) (bool, error)
}

// GroupResolver answers document group questions.
type GroupResolver interface {
	GroupsForUser(ctx context.Context, userID uint64) ([]uint, error)
	IsResourceVisible(ctx context.Context, resourceID uint64, allowed []uint) (bool, error)
}

// Request is one authorization question.
type Request struct {
	UserID uint64
	RoleID uint
	Route  string
	// ResourceID names the resource the route acts on, if any.
	ResourceID *uint64
	// UseRowLevel enables the document group check.
	UseRowLevel bool
}

// Decision is the answer to a Request.
type Decision struct {
	Allowed      bool     `json:"allowed"`
	Reason       Reason   `json:"reason,omitempty"`
	Route        string   `json:"route"`
	Required     []string `json:"required,omitempty"`
	UnknownRoute bool     `json:"unknownRoute,omitempty"`
}

// Err returns nil for an allowed decision and a *DenyError otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}

	return &DenyError{Decision: d}
}

// Gate evaluates requests against a registry.
type Gate struct {
	registry *permission.Registry
	perms    PermissionChecker
	groups   GroupResolver
	strict   bool
}

// Option configures a Gate.
type Option func(*Gate)

// WithStrictRoutes denies routes missing from the registry instead of letting them through.
func WithStrictRoutes(strict bool) Option {
	return func(g *Gate) {
		g.strict = strict
	}
}

// New creates a gate. A nil registry means permission.Default().
func New(registry *permission.Registry, perms PermissionChecker, groups GroupResolver, opts ...Option) *Gate {
	if registry == nil {
		registry = permission.Default()
	}

	g := &Gate{
		registry: registry,
		perms:    perms,
		groups:   groups,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Registry returns the registry the gate evaluates.
func (g *Gate) Registry() *permission.Registry {
	return g.registry
}

// Authorize evaluates req. Store failures are returned as errors, never as denials.
func (g *Gate) Authorize(ctx context.Context, req Request) (Decision, error) {
	d, err := g.decide(ctx, req)
	if err != nil {
		return Decision{}, err
	}

	observe(d)

	return d, nil
}

// Check returns nil when req is allowed and the deny error otherwise.
func (g *Gate) Check(ctx context.Context, req Request) error {
	d, err := g.Authorize(ctx, req)
	if err != nil {
		return err
	}

	return d.Err()
}

func (g *Gate) decide(ctx context.Context, req Request) (Decision, error) {
	d := Decision{Route: req.Route}

	policy, ok := g.registry.Lookup(req.Route)
	if !ok {
		d.UnknownRoute = true

		if g.strict {
			d.Reason = ReasonUnknownRoute
			return d, nil
		}

		d.Allowed = true

		return d, nil
	}

	if policy.IsPublic() {
		d.Allowed = true
		return d, nil
	}

	required := policy.Required()
	d.Required = required.Strings()

	if req.RoleID == 0 {
		d.Reason = ReasonNoRole
		return d, nil
	}

	sub := auth.Subject{UserID: req.UserID, RoleID: req.RoleID}

	check := g.perms.UserHasAny
	if policy.Mode == permission.ModeAllOf {
		check = g.perms.UserHasAll
	}

	granted, err := check(ctx, sub, required)
	if err != nil {
		return Decision{}, err
	}

	if !granted {
		d.Reason = ReasonMissingPermission
		return d, nil
	}

	if req.ResourceID != nil && req.UseRowLevel {
		allowed, err := g.groups.GroupsForUser(ctx, req.UserID)
		if err != nil {
			return Decision{}, err
		}

		visible, err := g.groups.IsResourceVisible(ctx, *req.ResourceID, allowed)
		if err != nil {
			return Decision{}, err
		}

		if !visible {
			d.Reason = ReasonResourceRestricted
			return d, nil
		}
	}

	d.Allowed = true

	return d, nil
}
