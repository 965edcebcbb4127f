// Package authz resolves the role of a caller and checks it against an
// allow-list.
package authz

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"

	"airwise-backend/config"
	"airwise-backend/internal/apperr"
	"airwise-backend/internal/model"
	"airwise-backend/internal/store"
	"airwise-backend/internal/validate"
)

// Gate looks up user roles. Roles are cached for a short time; Forget must
// be called when a user changes.
type Gate struct {
	store     store.Store
	sys       config.SystemConfig
	validator *validate.Validator
	roles     *cache.Cache
}

func NewGate(s store.Store, sys config.SystemConfig, ttl time.Duration) *Gate {
	return &Gate{
		store:     s,
		sys:       sys,
		validator: validate.New(sys),
		roles:     cache.New(ttl, 2*ttl),
	}
}

// Role returns the role of the user identified by systemID and email.
func (g *Gate) Role(ctx context.Context, systemID, email string) (model.Role, error) {
	if !g.validator.SystemID(systemID) {
		return "", apperr.InvalidInput("systemID is invalid")
	}
	if !validate.Email(email) {
		return "", apperr.InvalidInput("email is invalid")
	}

	key := g.sys.Join(systemID, email)
	if role, ok := g.roles.Get(key); ok {
		return role.(model.Role), nil
	}

	user, err := g.store.FindUser(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return "", apperr.Unauthorized("unauthorized action")
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up user %s: %w", key, err)
	}

	g.roles.SetDefault(key, user.Role)
	return user.Role, nil
}

// EnsureRole reports whether the user holds one of the allowed roles.
// Unknown users fail with an Unauthorized error rather than false.
func (g *Gate) EnsureRole(ctx context.Context, systemID, email string, allowed ...model.Role) (bool, error) {
	role, err := g.Role(ctx, systemID, email)
	if err != nil {
		return false, err
	}
	return slices.Contains(allowed, role), nil
}

// Require is EnsureRole that turns a missing role into an Unauthorized error.
func (g *Gate) Require(ctx context.Context, systemID, email string, allowed ...model.Role) error {
	ok, err := g.EnsureRole(ctx, systemID, email, allowed...)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Unauthorized("unauthorized action")
	}
	return nil
}

// Forget drops a cached role.
func (g *Gate) Forget(systemID, email string) {
	g.roles.Delete(g.sys.Join(systemID, email))
}

// ForgetAll drops every cached role.
func (g *Gate) ForgetAll() {
	g.roles.Flush()
}
