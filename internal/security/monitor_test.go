package security

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"airwise-backend/config"
	"airwise-backend/internal/acapi"
	"airwise-backend/internal/apperr"
	"airwise-backend/internal/model"
	"airwise-backend/internal/notification"
	"airwise-backend/internal/store"
	"airwise-backend/internal/store/storetest"
)

type fakeGateway struct {
	mu     sync.Mutex
	motion map[string]bool
	down   map[string]bool
	reads  []string
}

func (g *fakeGateway) GetState(_ context.Context, serial string) (*acapi.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reads = append(g.reads, serial)
	if g.down[serial] {
		return nil, apperr.ExternalAPI("timeout")
	}
	return &acapi.Response{Code: 200, ACState: &acapi.State{Serial: serial, Motion: g.motion[serial]}}, nil
}

func (g *fakeGateway) SetState(context.Context, string, acapi.Setting) (*acapi.Response, error) {
	return nil, apperr.ExternalAPI("not supported")
}

type fixture struct {
	ctx     context.Context
	s       store.Store
	gw      *fakeGateway
	clock   *clockwork.FakeClock
	monitor *Monitor
	tenant  *model.Object
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, _ := storetest.New(t)
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC))
	gw := &fakeGateway{motion: map[string]bool{}, down: map[string]bool{}}
	notifier := notification.NewNotifier(s, storetest.Sys, clock, nil, zap.NewNop())
	cfg := config.SecurityConfig{Enabled: true, Interval: time.Minute, Cooldown: 30 * time.Minute}
	monitor := NewMonitor(cfg, s, storetest.Sys, gw, notifier, clock, zap.NewNop())

	user := storetest.SeedUser(t, s, "tenant@example.com", model.RoleEndUser)
	tenant := storetest.SeedObject(t, s, model.TypeTenant, "tenant@example.com", storetest.WithCreator(user.ID))
	return &fixture{ctx: context.Background(), s: s, gw: gw, clock: clock, monitor: monitor, tenant: tenant}
}

func (f *fixture) site(t *testing.T, alias string, inSite bool, serials ...string) {
	site := storetest.SeedObject(t, f.s, model.TypeSite, alias,
		storetest.WithParent(f.tenant), storetest.WithDetails(map[string]any{"inSite": inSite}))
	room := storetest.SeedObject(t, f.s, model.TypeRoom, alias+" room", storetest.WithParent(site))
	for _, serial := range serials {
		storetest.SeedObject(t, f.s, model.TypeAirConditioner, serial, storetest.WithParent(room))
	}
}

func (f *fixture) alerts(t *testing.T) []model.Object {
	_, local := storetest.Sys.Split(f.tenant.ID)
	objs, err := f.s.FindObjects(f.ctx, store.ObjectQuery{Alias: "alert-notification-" + local}, store.Unpaged)
	require.NoError(t, err)
	return objs
}

func TestRunOnce_AlertsOnMotionWhileAway(t *testing.T) {
	f := newFixture(t)
	f.site(t, "Beach House", false, "SN-1")
	f.gw.motion["SN-1"] = true

	f.monitor.RunOnce(f.ctx)

	alerts := f.alerts(t)
	require.Len(t, alerts, 1)
	assert.Equal(t, notification.StatusWarning, alerts[0].Status)
	assert.Equal(t, "Security Alert: Motion Detected", alerts[0].Detail("title"))
	assert.Equal(t,
		"Motion detected in your Site: Beach House, while marked as 'Away'. Please check immediately.",
		alerts[0].Detail("message"))
}

func TestRunOnce_IgnoresOccupiedSitesAndQuietACs(t *testing.T) {
	f := newFixture(t)
	f.site(t, "Home", true, "SN-HOME")
	f.site(t, "Cabin", false, "SN-QUIET")
	f.gw.motion["SN-HOME"] = true

	f.monitor.RunOnce(f.ctx)

	assert.Empty(t, f.alerts(t))
	assert.Equal(t, []string{"SN-QUIET"}, f.gw.reads)
}

func TestRunOnce_Cooldown(t *testing.T) {
	f := newFixture(t)
	f.site(t, "Cabin", false, "SN-1", "SN-2")
	f.gw.motion["SN-1"] = true
	f.gw.motion["SN-2"] = true

	f.monitor.RunOnce(f.ctx)
	assert.Len(t, f.alerts(t), 1, "second AC is within the cooldown")

	f.clock.Advance(29 * time.Minute)
	f.monitor.RunOnce(f.ctx)
	assert.Len(t, f.alerts(t), 1)

	f.clock.Advance(time.Minute)
	f.monitor.RunOnce(f.ctx)
	assert.Len(t, f.alerts(t), 2)
}

func TestRunOnce_SkipsUsersWithoutTenantAndFailingACs(t *testing.T) {
	f := newFixture(t)
	storetest.SeedUser(t, f.s, "nohome@example.com", model.RoleEndUser)
	storetest.SeedUser(t, f.s, "admin@example.com", model.RoleAdmin)
	storetest.SeedObject(t, f.s, model.TypeRoom, "admin@example.com")
	f.site(t, "Cabin", false, "SN-DOWN", "SN-1")
	f.gw.down["SN-DOWN"] = true
	f.gw.motion["SN-1"] = true

	f.monitor.RunOnce(f.ctx)
	assert.Len(t, f.alerts(t), 1)
}

func TestRunOnce_AliasOwnedByNonTenant(t *testing.T) {
	f := newFixture(t)
	f.site(t, "Cabin", false, "SN-1")
	f.gw.motion["SN-1"] = true
	storetest.SeedObject(t, f.s, model.TypeRoom, "tenant@example.com", storetest.WithCreatedAt(time.Now().Add(time.Hour)))

	f.monitor.RunOnce(f.ctx)
	assert.Empty(t, f.alerts(t))
}

func TestRun_TicksEveryInterval(t *testing.T) {
	f := newFixture(t)
	f.site(t, "Cabin", false, "SN-1")

	ctx, cancel := context.WithCancel(f.ctx)
	done := make(chan struct{})
	go func() {
		f.monitor.Run(ctx)
		close(done)
	}()

	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	f.clock.Advance(time.Minute)
	require.Eventually(t, func() bool {
		f.gw.mu.Lock()
		defer f.gw.mu.Unlock()
		return len(f.gw.reads) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
