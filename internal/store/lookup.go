package store

import (
	"context"
	"errors"
	"strings"

	"airwise-backend/internal/model"
)

// LatestActiveByAlias returns the newest active object with the given alias.
// Tenants are looked up this way by user email and settings by
// "Settings-<tenant id>".
func LatestActiveByAlias(ctx context.Context, s Store, alias string) (*model.Object, error) {
	objects, err := s.FindObjects(ctx, ObjectQuery{Alias: alias, ActiveOnly: true}, First)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, ErrNotFound
	}
	return &objects[0], nil
}

// Parent returns the parent of obj, in any state.
func Parent(ctx context.Context, s Store, obj *model.Object) (*model.Object, error) {
	if obj.ParentID == nil || *obj.ParentID == "" {
		return nil, ErrNotFound
	}
	return s.FindObject(ctx, *obj.ParentID)
}

// EnsureUser returns the stored user with the given id, creating it from
// the template when it does not exist yet.
func EnsureUser(ctx context.Context, s Store, template model.User) (*model.User, error) {
	user, err := s.FindUser(ctx, template.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err := s.SaveUser(ctx, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

// Children returns the children of parentID whose type matches typ,
// ignoring case. An empty typ matches every child.
func Children(ctx context.Context, s Store, parentID, typ string, activeOnly bool) ([]model.Object, error) {
	all, err := s.FindObjects(ctx, ObjectQuery{ParentID: parentID, ActiveOnly: activeOnly}, Unpaged)
	if err != nil {
		return nil, err
	}
	if typ == "" {
		return all, nil
	}
	matched := all[:0]
	for _, child := range all {
		if strings.EqualFold(child.Type, typ) {
			matched = append(matched, child)
		}
	}
	return matched, nil
}
