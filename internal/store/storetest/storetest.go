// Package storetest builds throwaway stores on in-memory sqlite for tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"airwise-backend/config"
	"airwise-backend/internal/db"
	"airwise-backend/internal/model"
	"airwise-backend/internal/store"
)

// Sys is the system configuration used by every test fixture.
var Sys = config.SystemConfig{SystemID: "test.airwise", IDSeparator: config.DefaultIDSeparator}

// New opens a fresh migrated in-memory database.
func New(t testing.TB) (store.Store, *gorm.DB) {
	t.Helper()
	gormDB, err := db.Init(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return store.NewGormStore(gormDB), gormDB
}

// SeedUser stores a user with the given email and role.
func SeedUser(t testing.TB, s store.Store, email string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{ID: Sys.Key(email), Role: role, Username: email, Avatar: "avatar"}
	require.NoError(t, s.SaveUser(context.Background(), user))
	return user
}

// ObjectOption customizes a seeded object.
type ObjectOption func(*model.Object)

func WithParent(parent *model.Object) ObjectOption {
	return func(o *model.Object) { o.ParentID = &parent.ID }
}

func WithDetails(details map[string]any) ObjectOption {
	return func(o *model.Object) { o.Details = model.CloneDetails(details) }
}

func WithStatus(status string) ObjectOption {
	return func(o *model.Object) { o.Status = status }
}

func WithCreatedAt(ts time.Time) ObjectOption {
	return func(o *model.Object) { o.CreatedAt = ts }
}

func WithCreator(userID string) ObjectOption {
	return func(o *model.Object) { o.CreatedBy = userID }
}

func Inactive() ObjectOption {
	return func(o *model.Object) { o.Active = false }
}

// SeedObject stores an active object of the given type and alias.
func SeedObject(t testing.TB, s store.Store, typ, alias string, opts ...ObjectOption) *model.Object {
	t.Helper()
	obj := &model.Object{
		ID:        Sys.Key(uuid.NewString()),
		Type:      typ,
		Alias:     alias,
		Status:    "active",
		Active:    true,
		CreatedAt: time.Now(),
		CreatedBy: Sys.Key("operator@airwise.com"),
	}
	for _, opt := range opts {
		opt(obj)
	}
	require.NoError(t, s.SaveObject(context.Background(), obj))
	return obj
}

// Reload fetches the current stored state of obj.
func Reload(t testing.TB, s store.Store, obj *model.Object) *model.Object {
	t.Helper()
	fresh, err := s.FindObject(context.Background(), obj.ID)
	require.NoError(t, err)
	return fresh
}
