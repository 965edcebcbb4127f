package objects

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"airwise-backend/internal/apperr"
	"airwise-backend/internal/authz"
	"airwise-backend/internal/model"
	"airwise-backend/internal/store"
	"airwise-backend/internal/store/storetest"
)

const (
	operator = "op@example.com"
	endUser  = "user@example.com"
	admin    = "admin@example.com"
)

var sysID = storetest.Sys.SystemID

func newService(t *testing.T) (*Service, store.Store, *clockwork.FakeClock) {
	s, _ := storetest.New(t)
	storetest.SeedUser(t, s, operator, model.RoleOperator)
	storetest.SeedUser(t, s, endUser, model.RoleEndUser)
	storetest.SeedUser(t, s, admin, model.RoleAdmin)
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))
	gate := authz.NewGate(s, storetest.Sys, time.Hour)
	return NewService(s, storetest.Sys, gate, clock, zap.NewNop()), s, clock
}

func newBoundary(creator string) model.ObjectBoundary {
	return model.ObjectBoundary{
		Type:          "Room",
		Alias:         "living room",
		Status:        "ok",
		CreatedBy:     model.UserRef{UserID: model.UserID{SystemID: sysID, Email: creator}},
		ObjectDetails: map[string]any{"floor": 2.0},
	}
}

func TestCreate(t *testing.T) {
	svc, s, clock := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, newBoundary(operator))
	require.NoError(t, err)
	assert.Equal(t, sysID, created.ID.SystemID)
	assert.NotEmpty(t, created.ID.ObjectID)
	require.NotNil(t, created.Active)
	assert.True(t, *created.Active)
	assert.True(t, clock.Now().Equal(*created.CreationTimestamp))
	assert.Equal(t, operator, created.CreatedBy.UserID.Email)

	stored, err := s.FindObject(ctx, storetest.Sys.Key(created.ID.ObjectID))
	require.NoError(t, err)
	assert.Equal(t, "living room", stored.Alias)
	assert.Equal(t, 2.0, stored.Detail("floor"))

	inactive := false
	ob := newBoundary(operator)
	ob.Active = &inactive
	created, err = svc.Create(ctx, ob)
	require.NoError(t, err)
	assert.False(t, *created.Active)
}

func TestCreate_Rejects(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, newBoundary(endUser))
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = svc.Create(ctx, newBoundary("stranger@example.com"))
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	ob := newBoundary(operator)
	ob.Alias = " "
	_, err = svc.Create(ctx, ob)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestUpdate(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()
	obj := storetest.SeedObject(t, s, "Room", "kitchen", storetest.WithDetails(map[string]any{"a": 1.0}))
	_, local := storetest.Sys.Split(obj.ID)

	inactive := false
	update := model.ObjectBoundary{Alias: "big kitchen", Status: "", Active: &inactive, ObjectDetails: map[string]any{"b": 2.0}}
	require.NoError(t, svc.Update(ctx, sysID, local, update, sysID, operator))

	got := storetest.Reload(t, s, obj)
	assert.Equal(t, "big kitchen", got.Alias)
	assert.Equal(t, "Room", got.Type)
	assert.Equal(t, "active", got.Status)
	assert.False(t, got.Active)
	assert.Nil(t, got.Detail("a"))
	assert.Equal(t, 2.0, got.Detail("b"))

	assert.ErrorIs(t, svc.Update(ctx, sysID, local, update, sysID, endUser), apperr.ErrUnauthorized)
	assert.ErrorIs(t, svc.Update(ctx, sysID, "missing", update, sysID, operator), apperr.ErrObjectNotFound)
	assert.ErrorIs(t, svc.Update(ctx, "other", local, update, sysID, operator), apperr.ErrInvalidInput)
}

func TestGet_Visibility(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()
	active := storetest.SeedObject(t, s, "Site", "home")
	hidden := storetest.SeedObject(t, s, "Site", "old home", storetest.Inactive())
	_, activeID := storetest.Sys.Split(active.ID)
	_, hiddenID := storetest.Sys.Split(hidden.ID)

	got, err := svc.Get(ctx, sysID, activeID, sysID, endUser)
	require.NoError(t, err)
	assert.Equal(t, "home", got.Alias)

	_, err = svc.Get(ctx, sysID, hiddenID, sysID, endUser)
	assert.ErrorIs(t, err, apperr.ErrObjectNotFound)

	got, err = svc.Get(ctx, sysID, hiddenID, sysID, operator)
	require.NoError(t, err)
	assert.False(t, *got.Active)

	_, err = svc.Get(ctx, sysID, activeID, sysID, admin)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestBindChildrenParents(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()
	site := storetest.SeedObject(t, s, "Site", "home")
	room := storetest.SeedObject(t, s, "Room", "bedroom")
	closet := storetest.SeedObject(t, s, "Room", "closet", storetest.Inactive())
	_, siteID := storetest.Sys.Split(site.ID)
	_, roomID := storetest.Sys.Split(room.ID)
	_, closetID := storetest.Sys.Split(closet.ID)

	assert.ErrorIs(t, svc.Bind(ctx, sysID, siteID, sysID, roomID, sysID, endUser), apperr.ErrUnauthorized)
	assert.ErrorIs(t, svc.Bind(ctx, sysID, siteID, sysID, siteID, sysID, operator), apperr.ErrInvalidInput)
	assert.ErrorIs(t, svc.Bind(ctx, sysID, "missing", sysID, roomID, sysID, operator), apperr.ErrObjectNotFound)

	_, err := svc.Children(ctx, sysID, siteID, sysID, operator, 10, 0)
	assert.ErrorIs(t, err, apperr.ErrObjectNotFound, "no children yet")

	require.NoError(t, svc.Bind(ctx, sysID, siteID, sysID, roomID, sysID, operator))
	require.NoError(t, svc.Bind(ctx, sysID, siteID, sysID, closetID, sysID, operator))

	children, err := svc.Children(ctx, sysID, siteID, sysID, operator, 10, 0)
	require.NoError(t, err)
	assert.Len(t, children, 2)

	children, err = svc.Children(ctx, sysID, siteID, sysID, endUser, 10, 0)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "bedroom", children[0].Alias)

	parents, err := svc.Parents(ctx, sysID, roomID, sysID, endUser, 10, 0)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, siteID, parents[0].ID.ObjectID)

	_, err = svc.Parents(ctx, sysID, siteID, sysID, operator, 10, 0)
	assert.ErrorIs(t, err, apperr.ErrObjectNotFound)
	_, err = svc.Parents(ctx, sysID, closetID, sysID, endUser, 10, 0)
	assert.ErrorIs(t, err, apperr.ErrObjectNotFound)
}

func TestSearch(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()
	storetest.SeedObject(t, s, "AirConditioner", "SN-100", storetest.WithStatus("TURN_ON"))
	storetest.SeedObject(t, s, "AirConditioner", "SN-200", storetest.WithStatus("TURN_OFF"))
	storetest.SeedObject(t, s, "AirConditioner", "SN-300", storetest.WithStatus("TURN_ON"), storetest.Inactive())

	found, err := svc.SearchByAlias(ctx, "SN-100", sysID, endUser, 10, 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = svc.SearchByAliasPattern(ctx, "SN-", sysID, endUser, 10, 0)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = svc.SearchByType(ctx, "AirConditioner", sysID, operator, 10, 0)
	require.NoError(t, err)
	assert.Len(t, found, 3)

	found, err = svc.SearchByStatus(ctx, "TURN_ON", sysID, endUser, 10, 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = svc.SearchByTypeAndStatus(ctx, "AirConditioner", "TURN_ON", sysID, operator, 10, 0)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = svc.List(ctx, sysID, operator, 2, 1)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	t.Run("no match", func(t *testing.T) {
		_, err := svc.SearchByAlias(ctx, "SN-300", sysID, endUser, 10, 0)
		assert.ErrorIs(t, err, apperr.ErrObjectNotFound)

		found, err := svc.SearchByAlias(ctx, "nothing", sysID, operator, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("bad input", func(t *testing.T) {
		_, err := svc.SearchByType(ctx, "", sysID, operator, 10, 0)
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		_, err = svc.List(ctx, sysID, operator, 0, 0)
		assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		_, err = svc.List(ctx, sysID, admin, 10, 0)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})
}

func TestDeleteAll(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()
	storetest.SeedObject(t, s, "Site", "home")

	assert.ErrorIs(t, svc.DeleteAll(ctx, sysID, operator), apperr.ErrUnauthorized)
	require.NoError(t, svc.DeleteAll(ctx, sysID, admin))

	found, err := svc.List(ctx, sysID, operator, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, found)
}
