// Package objects is the administration surface of the object graph:
// creating, updating, binding and searching objects.
package objects

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"airwise-backend/config"
	"airwise-backend/internal/apperr"
	"airwise-backend/internal/authz"
	"airwise-backend/internal/model"
	"airwise-backend/internal/store"
	"airwise-backend/internal/validate"
)

// Service implements the object operations. Operators see every object,
// end users only active ones.
type Service struct {
	store     store.Store
	sys       config.SystemConfig
	gate      *authz.Gate
	validator *validate.Validator
	clock     clockwork.Clock
	log       *zap.Logger
}

func NewService(s store.Store, sys config.SystemConfig, gate *authz.Gate, clock clockwork.Clock, log *zap.Logger) *Service {
	return &Service{store: s, sys: sys, gate: gate, validator: validate.New(sys), clock: clock, log: log}
}

// Create stores a new object with a fresh id. Only operators may create.
func (s *Service) Create(ctx context.Context, ob model.ObjectBoundary) (model.ObjectBoundary, error) {
	creator := ob.CreatedBy.UserID
	if err := s.gate.Require(ctx, creator.SystemID, creator.Email, model.RoleOperator); err != nil {
		return model.ObjectBoundary{}, err
	}
	if err := s.validator.ObjectBoundary(ob); err != nil {
		return model.ObjectBoundary{}, err
	}

	obj := &model.Object{
		ID:        s.sys.Key(uuid.NewString()),
		Type:      ob.Type,
		Alias:     ob.Alias,
		Status:    ob.Status,
		Active:    ob.Active == nil || *ob.Active,
		CreatedAt: s.clock.Now(),
		CreatedBy: s.sys.Join(creator.SystemID, creator.Email),
		Details:   model.CloneDetails(ob.ObjectDetails),
	}
	if err := s.store.SaveObject(ctx, obj); err != nil {
		return model.ObjectBoundary{}, err
	}

	s.log.Info("object created", zap.String("id", obj.ID), zap.String("type", obj.Type), zap.String("alias", obj.Alias))
	return model.ObjectToBoundary(s.sys, obj), nil
}

// Update overwrites the non-blank fields of update on an existing object.
// Details are replaced as a whole; active is copied when given.
func (s *Service) Update(ctx context.Context, systemID, objectID string, update model.ObjectBoundary, userSystemID, userEmail string) error {
	if err := s.gate.Require(ctx, userSystemID, userEmail, model.RoleOperator); err != nil {
		return err
	}
	id, err := s.objectKey(systemID, objectID)
	if err != nil {
		return err
	}

	obj, err := s.find(ctx, id, false)
	if err != nil {
		return err
	}
	if strings.TrimSpace(update.Alias) != "" {
		obj.Alias = update.Alias
	}
	if strings.TrimSpace(update.Type) != "" {
		obj.Type = update.Type
	}
	if strings.TrimSpace(update.Status) != "" {
		obj.Status = update.Status
	}
	if update.ObjectDetails != nil {
		obj.Details = model.CloneDetails(update.ObjectDetails)
	}
	if update.Active != nil {
		obj.Active = *update.Active
	}
	return s.store.SaveObject(ctx, obj)
}

// Get returns one object.
func (s *Service) Get(ctx context.Context, systemID, objectID, userSystemID, userEmail string) (model.ObjectBoundary, error) {
	id, err := s.objectKey(systemID, objectID)
	if err != nil {
		return model.ObjectBoundary{}, err
	}
	activeOnly, err := s.visibility(ctx, userSystemID, userEmail)
	if err != nil {
		return model.ObjectBoundary{}, err
	}
	obj, err := s.find(ctx, id, activeOnly)
	if err != nil {
		return model.ObjectBoundary{}, err
	}
	return model.ObjectToBoundary(s.sys, obj), nil
}

// List pages through every visible object.
func (s *Service) List(ctx context.Context, userSystemID, userEmail string, size, page int) ([]model.ObjectBoundary, error) {
	return s.search(ctx, store.ObjectQuery{}, "no objects found", userSystemID, userEmail, size, page)
}

// Bind makes child a child of parent. Only operators may bind.
func (s *Service) Bind(ctx context.Context, parentSystemID, parentID, childSystemID, childID, userSystemID, userEmail string) error {
	if err := s.gate.Require(ctx, userSystemID, userEmail, model.RoleOperator); err != nil {
		return err
	}
	childKey, err := s.objectKey(childSystemID, childID)
	if err != nil {
		return err
	}
	parentKey, err := s.objectKey(parentSystemID, parentID)
	if err != nil {
		return err
	}
	if childKey == parentKey {
		return apperr.InvalidInput("an object cannot be its own parent")
	}

	parent, err := s.find(ctx, parentKey, false)
	if err != nil {
		return err
	}
	child, err := s.find(ctx, childKey, false)
	if err != nil {
		return err
	}
	child.ParentID = &parent.ID
	return s.store.SaveObject(ctx, child)
}

// Children pages through the visible children of a parent.
func (s *Service) Children(ctx context.Context, parentSystemID, parentID, userSystemID, userEmail string, size, page int) ([]model.ObjectBoundary, error) {
	if err := validate.Pagination(size, page); err != nil {
		return nil, err
	}
	parentKey, err := s.objectKey(parentSystemID, parentID)
	if err != nil {
		return nil, err
	}
	activeOnly, err := s.visibility(ctx, userSystemID, userEmail)
	if err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, parentKey, false); err != nil {
		return nil, err
	}

	children, err := s.store.FindObjects(ctx, store.ObjectQuery{ParentID: parentKey, ActiveOnly: activeOnly}, store.Page{Size: size, Page: page})
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, apperr.NotFound("no children found for object %s", parentID)
	}
	return model.ObjectsToBoundaries(s.sys, children), nil
}

// Parents returns the parent of a visible child as a one element page.
func (s *Service) Parents(ctx context.Context, childSystemID, childID, userSystemID, userEmail string, size, page int) ([]model.ObjectBoundary, error) {
	if err := validate.Pagination(size, page); err != nil {
		return nil, err
	}
	childKey, err := s.objectKey(childSystemID, childID)
	if err != nil {
		return nil, err
	}
	activeOnly, err := s.visibility(ctx, userSystemID, userEmail)
	if err != nil {
		return nil, err
	}

	child, err := s.find(ctx, childKey, activeOnly)
	if err != nil {
		return nil, err
	}
	parent, err := store.Parent(ctx, s.store, child)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("no parents found for object %s", childID)
	}
	if err != nil {
		return nil, err
	}
	return []model.ObjectBoundary{model.ObjectToBoundary(s.sys, parent)}, nil
}

func (s *Service) SearchByAlias(ctx context.Context, alias, userSystemID, userEmail string, size, page int) ([]model.ObjectBoundary, error) {
	if alias == "" {
		return nil, apperr.InvalidInput("alias cannot be empty")
	}
	return s.search(ctx, store.ObjectQuery{Alias: alias}, "no objects found with alias "+alias, userSystemID, userEmail, size, page)
}

// SearchByAliasPattern matches aliases containing pattern.
func (s *Service) SearchByAliasPattern(ctx context.Context, pattern, userSystemID, userEmail string, size, page int) ([]model.ObjectBoundary, error) {
	if pattern == "" {
		return nil, apperr.InvalidInput("pattern cannot be empty")
	}
	return s.search(ctx, store.ObjectQuery{AliasLike: pattern}, "no objects found matching "+pattern, userSystemID, userEmail, size, page)
}

func (s *Service) SearchByType(ctx context.Context, typ, userSystemID, userEmail string, size, page int) ([]model.ObjectBoundary, error) {
	if typ == "" {
		return nil, apperr.InvalidInput("type cannot be empty")
	}
	return s.search(ctx, store.ObjectQuery{Type: typ}, "no objects found with type "+typ, userSystemID, userEmail, size, page)
}

func (s *Service) SearchByStatus(ctx context.Context, status, userSystemID, userEmail string, size, page int) ([]model.ObjectBoundary, error) {
	if status == "" {
		return nil, apperr.InvalidInput("status cannot be empty")
	}
	return s.search(ctx, store.ObjectQuery{Status: status}, "no objects found with status "+status, userSystemID, userEmail, size, page)
}

func (s *Service) SearchByTypeAndStatus(ctx context.Context, typ, status, userSystemID, userEmail string, size, page int) ([]model.ObjectBoundary, error) {
	if typ == "" || status == "" {
		return nil, apperr.InvalidInput("type and status cannot be empty")
	}
	return s.search(ctx, store.ObjectQuery{Type: typ, Status: status},
		"no objects found with type "+typ+" and status "+status, userSystemID, userEmail, size, page)
}

// DeleteAll removes every object. Only admins may do it.
func (s *Service) DeleteAll(ctx context.Context, userSystemID, userEmail string) error {
	if err := s.gate.Require(ctx, userSystemID, userEmail, model.RoleAdmin); err != nil {
		return err
	}
	return s.store.DeleteAllObjects(ctx)
}

// search runs q for the caller. An end user with no matches gets
// ObjectNotFound carrying notFound; an operator gets an empty page.
func (s *Service) search(ctx context.Context, q store.ObjectQuery, notFound, userSystemID, userEmail string, size, page int) ([]model.ObjectBoundary, error) {
	if err := validate.Pagination(size, page); err != nil {
		return nil, err
	}
	activeOnly, err := s.visibility(ctx, userSystemID, userEmail)
	if err != nil {
		return nil, err
	}

	q.ActiveOnly = activeOnly
	found, err := s.store.FindObjects(ctx, q, store.Page{Size: size, Page: page})
	if err != nil {
		return nil, err
	}
	if activeOnly && len(found) == 0 {
		return nil, apperr.NotFound("%s", notFound)
	}
	return model.ObjectsToBoundaries(s.sys, found), nil
}

// visibility reports whether the caller is restricted to active objects.
func (s *Service) visibility(ctx context.Context, userSystemID, userEmail string) (activeOnly bool, err error) {
	role, err := s.gate.Role(ctx, userSystemID, userEmail)
	if err != nil {
		return false, err
	}
	switch role {
	case model.RoleOperator:
		return false, nil
	case model.RoleEndUser:
		return true, nil
	}
	return false, apperr.Unauthorized("role %s may not read objects", role)
}

func (s *Service) objectKey(systemID, objectID string) (string, error) {
	if !s.validator.ObjectID(model.ObjectID{SystemID: systemID, ObjectID: objectID}) {
		return "", apperr.InvalidInput("object id %s/%s is invalid", systemID, objectID)
	}
	return s.sys.Join(systemID, objectID), nil
}

func (s *Service) find(ctx context.Context, id string, activeOnly bool) (*model.Object, error) {
	find := s.store.FindObject
	if activeOnly {
		find = s.store.FindActiveObject
	}
	obj, err := find(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		_, local := s.sys.Split(id)
		return nil, apperr.NotFound("object %s not found", local)
	}
	return obj, err
}
