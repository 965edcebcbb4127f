// Package security watches the ACs of sites whose tenant is away and
// raises an alert when one of them reports motion.
package security

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"airwise-backend/config"
	"airwise-backend/internal/acapi"
	"airwise-backend/internal/model"
	"airwise-backend/internal/parse"
	"airwise-backend/internal/store"
)

const alertTitle = "Security Alert: Motion Detected"

// Alerter stores a rate limited alert for a user.
type Alerter interface {
	Alert(ctx context.Context, email, title, message string, cooldown time.Duration) (bool, error)
}

// Monitor polls the AC gateway for motion in away sites.
type Monitor struct {
	cfg     config.SecurityConfig
	store   store.Store
	sys     config.SystemConfig
	gateway acapi.Gateway
	alerts  Alerter
	clock   clockwork.Clock
	log     *zap.Logger
}

func NewMonitor(cfg config.SecurityConfig, s store.Store, sys config.SystemConfig, gateway acapi.Gateway, alerts Alerter, clock clockwork.Clock, log *zap.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Monitor{cfg: cfg, store: s, sys: sys, gateway: gateway, alerts: alerts, clock: clock, log: log}
}

// Run checks every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	if !m.cfg.Enabled {
		m.log.Info("security monitor is disabled, not starting")
		return
	}
	m.log.Info("starting security monitor", zap.Duration("interval", m.cfg.Interval))

	timer := m.clock.NewTimer(m.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("security monitor shutting down")
			return
		case <-timer.Chan():
			m.RunOnce(ctx)
			timer.Reset(m.cfg.Interval)
		}
	}
}

// RunOnce checks every end user's away sites once.
func (m *Monitor) RunOnce(ctx context.Context) {
	users, err := m.store.ListUsers(ctx, store.UserQuery{Role: string(model.RoleEndUser)}, store.Unpaged)
	if err != nil {
		m.log.Error("loading end users failed", zap.Error(err))
		return
	}

	for _, user := range users {
		_, email := m.sys.Split(user.ID)
		if err := m.checkUser(ctx, email); err != nil {
			m.log.Warn("security check failed", zap.String("user", email), zap.Error(err))
		}
	}
}

func (m *Monitor) checkUser(ctx context.Context, email string) error {
	tenant, err := store.LatestActiveByAlias(ctx, m.store, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if tenant.Type != model.TypeTenant {
		return nil
	}

	sites, err := store.Children(ctx, m.store, tenant.ID, model.TypeSite, true)
	if err != nil {
		return err
	}
	for i := range sites {
		site := &sites[i]
		if parse.Bool(site.Detail("inSite")) {
			continue
		}
		rooms, err := store.Children(ctx, m.store, site.ID, model.TypeRoom, true)
		if err != nil {
			return err
		}
		for _, room := range rooms {
			acs, err := store.Children(ctx, m.store, room.ID, model.TypeAirConditioner, true)
			if err != nil {
				return err
			}
			for j := range acs {
				m.checkMotion(ctx, email, site, &acs[j])
			}
		}
	}
	return nil
}

func (m *Monitor) checkMotion(ctx context.Context, email string, site, ac *model.Object) {
	resp, err := m.gateway.GetState(ctx, ac.Alias)
	if err != nil {
		m.log.Warn("reading AC state failed", zap.String("serial", ac.Alias), zap.Error(err))
		return
	}
	if !resp.OK() || resp.ACState == nil || !resp.ACState.Motion {
		return
	}

	m.log.Info("motion detected in away site",
		zap.String("user", email), zap.String("site", site.ID), zap.String("serial", ac.Alias))
	message := "Motion detected in your Site: " + site.Alias + ", while marked as 'Away'. Please check immediately."
	if _, err := m.alerts.Alert(ctx, email, alertTitle, message, m.cfg.Cooldown); err != nil {
		m.log.Warn("creating security alert failed", zap.String("user", email), zap.Error(err))
	}
}
