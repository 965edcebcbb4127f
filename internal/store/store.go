package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"airwise-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	// Transaction runs fn against a Store bound to a single database
	// transaction. Every read and write inside fn must go through the
	// Store it receives.
	Transaction(ctx context.Context, fn func(Store) error) error

	FindObject(ctx context.Context, id string) (*model.Object, error)
	FindActiveObject(ctx context.Context, id string) (*model.Object, error)
	SaveObject(ctx context.Context, obj *model.Object) error
	FindObjects(ctx context.Context, q ObjectQuery, p Page) ([]model.Object, error)
	DeleteAllObjects(ctx context.Context) error

	FindUser(ctx context.Context, id string) (*model.User, error)
	SaveUser(ctx context.Context, user *model.User) error
	ListUsers(ctx context.Context, q UserQuery, p Page) ([]model.User, error)
	DeleteAllUsers(ctx context.Context) error

	SaveCommand(ctx context.Context, cmd *model.Command) error
	ListCommands(ctx context.Context, p Page) ([]model.Command, error)
	DeleteAllCommands(ctx context.Context) error

	SaveSubscription(ctx context.Context, sub *model.PushSubscription) error
	FindSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	ListSubscriptions(ctx context.Context, userID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// --- Objects ---

func (s *gormStore) FindObject(ctx context.Context, id string) (*model.Object, error) {
	var obj model.Object
	if err := s.db.WithContext(ctx).First(&obj, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &obj, nil
}

func (s *gormStore) FindActiveObject(ctx context.Context, id string) (*model.Object, error) {
	var obj model.Object
	if err := s.db.WithContext(ctx).Where("active = ?", true).First(&obj, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &obj, nil
}

// SaveObject inserts the object or overwrites every column of an existing
// row with the same id. There is no version check; the last write wins.
func (s *gormStore) SaveObject(ctx context.Context, obj *model.Object) error {
	if obj.Details == nil {
		obj.Details = datatypes.JSONMap{}
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(obj).Error; err != nil {
		return fmt.Errorf("failed to save object %s: %w", obj.ID, err)
	}
	return nil
}

// FindObjects returns the objects matching q, newest first with the id as
// tie breaker.
func (s *gormStore) FindObjects(ctx context.Context, q ObjectQuery, p Page) ([]model.Object, error) {
	tx := s.db.WithContext(ctx).Model(&model.Object{})
	if q.Alias != "" {
		tx = tx.Where("alias = ?", q.Alias)
	}
	if q.AliasLike != "" {
		tx = tx.Where("alias LIKE ? ESCAPE '\\'", "%"+escapeLike(q.AliasLike)+"%")
	}
	if q.Type != "" {
		tx = tx.Where("type = ?", q.Type)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.ParentID != "" {
		tx = tx.Where("parent_id = ?", q.ParentID)
	}
	if q.ActiveOnly {
		tx = tx.Where("active = ?", true)
	}

	var objects []model.Object
	if err := paginate(tx.Order("created_at DESC").Order("id DESC"), p).Find(&objects).Error; err != nil {
		return nil, fmt.Errorf("failed to query objects: %w", err)
	}
	return objects, nil
}

func (s *gormStore) DeleteAllObjects(ctx context.Context) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Object{}).Error
}

// --- Users ---

func (s *gormStore) FindUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *gormStore) SaveUser(ctx context.Context, user *model.User) error {
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(user).Error; err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}
	return nil
}

func (s *gormStore) ListUsers(ctx context.Context, q UserQuery, p Page) ([]model.User, error) {
	tx := s.db.WithContext(ctx).Model(&model.User{})
	if q.Role != "" {
		tx = tx.Where("role = ?", q.Role)
	}
	var users []model.User
	if err := paginate(tx.Order("id ASC"), p).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	return users, nil
}

func (s *gormStore) DeleteAllUsers(ctx context.Context) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.User{}).Error
}

// --- Commands ---

func (s *gormStore) SaveCommand(ctx context.Context, cmd *model.Command) error {
	if cmd.Attributes == nil {
		cmd.Attributes = datatypes.JSONMap{}
	}
	if err := s.db.WithContext(ctx).Create(cmd).Error; err != nil {
		return fmt.Errorf("failed to save command %s: %w", cmd.ID, err)
	}
	return nil
}

func (s *gormStore) ListCommands(ctx context.Context, p Page) ([]model.Command, error) {
	var commands []model.Command
	tx := s.db.WithContext(ctx).Order("invocation_timestamp DESC").Order("id DESC")
	if err := paginate(tx, p).Find(&commands).Error; err != nil {
		return nil, fmt.Errorf("failed to query commands: %w", err)
	}
	return commands, nil
}

func (s *gormStore) DeleteAllCommands(ctx context.Context) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Command{}).Error
}

// --- Push subscriptions ---

func (s *gormStore) SaveSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "user_id"}),
	}).Create(sub).Error
}

func (s *gormStore) FindSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		return nil, notFound(err)
	}
	return &sub, nil
}

func (s *gormStore) ListSubscriptions(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions for %s: %w", userID, err)
	}
	return subs, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

// --- Helpers ---

func paginate(tx *gorm.DB, p Page) *gorm.DB {
	if p.Size <= 0 {
		return tx
	}
	return tx.Limit(p.Size).Offset(p.Page * p.Size)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
