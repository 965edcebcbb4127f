// Package users manages accounts. There are no credentials: a user is
// identified by system id and email.
package users

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"airwise-backend/config"
	"airwise-backend/internal/apperr"
	"airwise-backend/internal/authz"
	"airwise-backend/internal/model"
	"airwise-backend/internal/store"
	"airwise-backend/internal/validate"
)

type Service struct {
	store     store.Store
	sys       config.SystemConfig
	gate      *authz.Gate
	validator *validate.Validator
	log       *zap.Logger
}

func NewService(s store.Store, sys config.SystemConfig, gate *authz.Gate, log *zap.Logger) *Service {
	return &Service{store: s, sys: sys, gate: gate, validator: validate.New(sys), log: log}
}

// Create registers a user in this system. Registering an existing email
// overwrites that account.
func (s *Service) Create(ctx context.Context, nu model.NewUserBoundary) (model.UserBoundary, error) {
	if !validate.Role(nu.Role) {
		return model.UserBoundary{}, apperr.InvalidInput("invalid role %q", nu.Role)
	}
	if !validate.Email(nu.Email) {
		return model.UserBoundary{}, apperr.InvalidInput("invalid email %q", nu.Email)
	}
	if strings.TrimSpace(nu.Username) == "" {
		return model.UserBoundary{}, apperr.InvalidInput("username cannot be blank")
	}
	if strings.TrimSpace(nu.Avatar) == "" {
		return model.UserBoundary{}, apperr.InvalidInput("avatar cannot be blank")
	}

	user := &model.User{
		ID:       s.sys.Key(nu.Email),
		Role:     model.Role(nu.Role),
		Username: nu.Username,
		Avatar:   nu.Avatar,
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return model.UserBoundary{}, err
	}
	s.gate.Forget(s.sys.SystemID, nu.Email)

	s.log.Info("user created", zap.String("id", user.ID), zap.String("role", string(user.Role)))
	return model.UserToBoundary(s.sys, user), nil
}

// Login returns the account for systemID and email.
func (s *Service) Login(ctx context.Context, systemID, email string) (model.UserBoundary, error) {
	user, err := s.find(ctx, systemID, email)
	if err != nil {
		return model.UserBoundary{}, err
	}
	return model.UserToBoundary(s.sys, user), nil
}

// Update copies the valid role and non-blank username and avatar of update.
func (s *Service) Update(ctx context.Context, systemID, email string, update model.UserBoundary) error {
	user, err := s.find(ctx, systemID, email)
	if err != nil {
		return err
	}

	if validate.Role(update.Role) {
		user.Role = model.Role(update.Role)
	}
	if strings.TrimSpace(update.Username) != "" {
		user.Username = update.Username
	}
	if strings.TrimSpace(update.Avatar) != "" {
		user.Avatar = update.Avatar
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return err
	}
	s.gate.Forget(systemID, email)
	return nil
}

// List pages through every user. Only admins may do it.
func (s *Service) List(ctx context.Context, userSystemID, userEmail string, size, page int) ([]model.UserBoundary, error) {
	if err := validate.Pagination(size, page); err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, userSystemID, userEmail, model.RoleAdmin); err != nil {
		return nil, err
	}

	users, err := s.store.ListUsers(ctx, store.UserQuery{}, store.Page{Size: size, Page: page})
	if err != nil {
		return nil, err
	}
	out := make([]model.UserBoundary, 0, len(users))
	for i := range users {
		out = append(out, model.UserToBoundary(s.sys, &users[i]))
	}
	return out, nil
}

// DeleteAll removes every user. Only admins may do it.
func (s *Service) DeleteAll(ctx context.Context, userSystemID, userEmail string) error {
	if err := s.gate.Require(ctx, userSystemID, userEmail, model.RoleAdmin); err != nil {
		return err
	}
	if err := s.store.DeleteAllUsers(ctx); err != nil {
		return err
	}
	s.gate.ForgetAll()
	return nil
}

func (s *Service) find(ctx context.Context, systemID, email string) (*model.User, error) {
	if !s.validator.SystemID(systemID) {
		return nil, apperr.InvalidInput("system id %q is invalid", systemID)
	}
	if !validate.Email(email) {
		return nil, apperr.InvalidInput("email %q is invalid", email)
	}
	user, err := s.store.FindUser(ctx, s.sys.Join(systemID, email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("user %s not found", email)
	}
	return user, err
}
