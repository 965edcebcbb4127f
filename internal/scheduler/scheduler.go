// Package scheduler fires scheduled AC tasks. Every minute it switches the
// ACs of due tasks on or off; at midnight it re-arms recurring tasks.
package scheduler

import (
	"context"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"airwise-backend/config"
	"airwise-backend/internal/apperr"
	"airwise-backend/internal/model"
	"airwise-backend/internal/parse"
	"airwise-backend/internal/store"
)

// ACController applies a state change to an AC on behalf of a user.
type ACController interface {
	ApplyACState(ctx context.Context, ac *model.Object, attrs map[string]any, invoker model.UserID) error
}

// Service polls the store for due tasks.
type Service struct {
	cfg   config.SchedulerConfig
	store store.Store
	sys   config.SystemConfig
	ac    ACController
	clock clockwork.Clock
	loc   *time.Location
	log   *zap.Logger
}

// NewService fails when the configured timezone is unknown. An empty
// timezone means the local one.
func NewService(cfg config.SchedulerConfig, s store.Store, sys config.SystemConfig, ac ACController, clock clockwork.Clock, log *zap.Logger) (*Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Service{cfg: cfg, store: s, sys: sys, ac: ac, clock: clock, loc: loc, log: log}, nil
}

// Run fires due tasks on every interval boundary until ctx is done. The
// first tick of a new day re-arms recurring tasks before firing.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		s.log.Info("task scheduler is disabled, not starting")
		return
	}
	s.log.Info("starting task scheduler", zap.Duration("interval", s.cfg.Interval), zap.String("timezone", s.loc.String()))

	lastDay := s.now().YearDay()
	timer := s.clock.NewTimer(s.untilNextTick())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("task scheduler shutting down")
			return
		case <-timer.Chan():
			if day := s.now().YearDay(); day != lastDay {
				lastDay = day
				s.ResetRecurring(ctx)
			}
			s.RunDue(ctx)
			timer.Reset(s.untilNextTick())
		}
	}
}

func (s *Service) now() time.Time {
	return s.clock.Now().In(s.loc)
}

func (s *Service) untilNextTick() time.Duration {
	now := s.now()
	return now.Truncate(s.cfg.Interval).Add(s.cfg.Interval).Sub(now)
}

// RunDue fires every scheduled task whose start or end time is the current
// minute and whose repeat pattern allows today. Failing tasks are logged
// and skipped.
func (s *Service) RunDue(ctx context.Context) {
	now := s.now()
	tasks, err := s.store.FindObjects(ctx, store.ObjectQuery{
		Type:       model.TypeTask,
		Status:     model.TaskScheduled,
		ActiveOnly: true,
	}, store.Unpaged)
	if err != nil {
		s.log.Error("loading scheduled tasks failed", zap.Error(err))
		return
	}

	for i := range tasks {
		task := &tasks[i]
		fire, endEdge := due(task, now)
		if !fire {
			continue
		}
		if err := s.runTask(ctx, task, endEdge, now); err != nil {
			s.log.Warn("scheduled task failed", zap.String("task", task.ID), zap.Error(err))
			continue
		}
		s.log.Info("scheduled task fired", zap.String("task", task.ID), zap.Bool("end", endEdge))
	}
}

// due reports whether task fires at now and whether now is its end time.
func due(task *model.Object, now time.Time) (fire, endEdge bool) {
	if task.Detail("startTime") == nil || task.Detail("action") == nil {
		return false, false
	}
	action, ok := model.ParseActionType(parse.String(task.Detail("action")))
	if !ok {
		return false, false
	}
	if action == model.ActionTurnOn && task.Detail("endTime") == nil {
		return false, false
	}
	repeat, ok := model.ParseRepeatPattern(parse.String(task.Detail("repeat")))
	if !ok {
		return false, false
	}

	minute := now.Hour()*60 + now.Minute()
	start, err := parse.Clock(task.Detail("startTime"))
	if err != nil {
		return false, false
	}
	if action == model.ActionTurnOn {
		end, err := parse.Clock(task.Detail("endTime"))
		if err != nil {
			return false, false
		}
		endEdge = minute == end
		fire = minute == start || endEdge
	} else {
		fire = minute == start
	}
	if !fire || !runsOn(repeat, now.Weekday()) {
		return false, false
	}
	return true, endEdge
}

func runsOn(repeat model.RepeatPattern, day time.Weekday) bool {
	switch repeat {
	case model.RepeatEveryWeekday:
		return day >= time.Monday && day <= time.Friday
	case model.RepeatWeekends:
		return day == time.Saturday || day == time.Sunday
	}
	return true
}

// runTask switches the task's AC as the owner of the tenant above it.
// The task becomes EXECUTED once the AC has been switched off.
func (s *Service) runTask(ctx context.Context, task *model.Object, endEdge bool, now time.Time) error {
	ac, err := store.Parent(ctx, s.store, task)
	if err != nil || !strings.EqualFold(ac.Type, model.TypeAirConditioner) {
		return apperr.InvalidInput("scheduled task must be linked to an AirConditioner")
	}

	action, _ := model.ParseActionType(parse.String(task.Detail("action")))
	power := action == model.ActionTurnOn && !endEdge
	attrs := map[string]any{
		"power":       power,
		"temperature": parse.Float(task.Detail("temperature")),
		"mode":        parse.String(task.Detail("mode")),
		"fanSpeed":    parse.String(task.Detail("fanSpeed")),
	}

	tenant, err := s.tenantOf(ctx, ac)
	if err != nil {
		return err
	}
	if _, err := s.store.FindUser(ctx, s.sys.Key(tenant.Alias)); err != nil {
		return apperr.NotFound("user not found for email %s", tenant.Alias)
	}
	systemID, email := s.sys.Split(tenant.CreatedBy)

	if err := s.ac.ApplyACState(ctx, ac, attrs, model.UserID{SystemID: systemID, Email: email}); err != nil {
		return err
	}

	if !power {
		task.Status = model.TaskExecuted
	}
	task.SetDetail("lastExecution", parse.FormatTimestamp(now))
	return s.store.SaveObject(ctx, task)
}

// tenantOf walks AC, room, site, tenant.
func (s *Service) tenantOf(ctx context.Context, ac *model.Object) (*model.Object, error) {
	obj := ac
	for i := 0; i < 3; i++ {
		parent, err := store.Parent(ctx, s.store, obj)
		if err != nil {
			return nil, apperr.InvalidInput("tenant information is missing for AC %s", ac.ID)
		}
		obj = parent
	}
	if obj.CreatedBy == "" {
		return nil, apperr.InvalidInput("tenant information is missing for AC %s", ac.ID)
	}
	return obj, nil
}

// ResetRecurring moves executed recurring tasks back to SCHEDULED.
func (s *Service) ResetRecurring(ctx context.Context) {
	tasks, err := s.store.FindObjects(ctx, store.ObjectQuery{
		Type:       model.TypeTask,
		Status:     model.TaskExecuted,
		ActiveOnly: true,
	}, store.Unpaged)
	if err != nil {
		s.log.Error("loading executed tasks failed", zap.Error(err))
		return
	}

	reset := 0
	for i := range tasks {
		task := &tasks[i]
		repeat, ok := model.ParseRepeatPattern(parse.String(task.Detail("repeat")))
		if !ok || repeat == model.RepeatOnce {
			continue
		}
		task.Status = model.TaskScheduled
		if err := s.store.SaveObject(ctx, task); err != nil {
			s.log.Warn("re-arming task failed", zap.String("task", task.ID), zap.Error(err))
			continue
		}
		reset++
	}
	s.log.Info("recurring tasks re-armed", zap.Int("count", reset))
}
