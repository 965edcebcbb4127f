package command

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"airwise-backend/internal/model"
	"airwise-backend/internal/parse"
	"airwise-backend/internal/store"
)

// PowerLogsKey is the site detail holding the per-day consumption log.
const PowerLogsKey = "powerConsumptionLogs"

const dateLayout = "2006-01-02"

// PowerLog is the consumption of one site on one calendar day.
type PowerLog struct {
	Date    string  `json:"date"`
	Runtime float64 `json:"runtime"` // minutes
	Kwh     float64 `json:"kwh"`
	Cost    float64 `json:"cost"`
}

// Rates prices a running interval.
type Rates struct {
	Watts      float64
	CostPerKwh float64
	VATRate    float64 // percent
}

// Accrue adds the interval [start, end) to logs, split by calendar day in
// start's location, and returns the logs sorted newest first. Both ends
// are truncated to the minute.
func Accrue(logs []PowerLog, start, end time.Time, r Rates) []PowerLog {
	start = start.Truncate(time.Minute)
	end = end.Truncate(time.Minute).In(start.Location())

	byDate := make(map[string]*PowerLog, len(logs))
	for i := range logs {
		l := logs[i]
		byDate[l.Date] = &l
	}

	vat := r.VATRate / 100
	for day := midnight(start); !day.After(midnight(end)); day = day.AddDate(0, 0, 1) {
		next := day.AddDate(0, 0, 1)

		sliceStart := day
		if start.After(day) {
			sliceStart = start
		}
		sliceEnd := next
		if end.Before(next) {
			sliceEnd = end
		}

		minutes := float64(int64(sliceEnd.Sub(sliceStart) / time.Minute))
		if minutes <= 0 {
			continue
		}

		kwh := r.Watts * minutes / 1000
		cost := (kwh * (r.CostPerKwh / 60)) * (1 + vat)

		key := day.Format(dateLayout)
		l, ok := byDate[key]
		if !ok {
			l = &PowerLog{Date: key}
			byDate[key] = l
		}
		l.Runtime += minutes
		l.Kwh += kwh
		l.Cost += cost
	}

	out := make([]PowerLog, 0, len(byDate))
	for _, l := range byDate {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DecodePowerLogs reads the log list from a site detail value. Entries
// that do not decode are dropped.
func DecodePowerLogs(v any, log *zap.Logger) []PowerLog {
	raw, ok := v.([]any)
	if !ok {
		if typed, ok := v.([]PowerLog); ok {
			return typed
		}
		return nil
	}

	logs := make([]PowerLog, 0, len(raw))
	for _, entry := range raw {
		b, err := json.Marshal(entry)
		if err == nil {
			var l PowerLog
			if err = json.Unmarshal(b, &l); err == nil && l.Date != "" {
				logs = append(logs, l)
				continue
			}
		}
		log.Warn("dropping malformed power consumption log entry", zap.Any("entry", entry), zap.Error(err))
	}
	return logs
}

// accruePower charges the interval [started, ended) to the site of ac at
// the invoker's tenant rates. Missing or unusable inputs skip the accrual.
func (e *Engine) accruePower(ctx context.Context, s store.Store, ac *model.Object, invoker model.UserID, started, ended string) error {
	skip := func(reason string, fields ...zap.Field) error {
		e.log.Warn("skipping power consumption accrual: "+reason, append(fields, zap.String("ac", ac.ID))...)
		return nil
	}

	if _, err := s.FindUser(ctx, e.sys.Join(invoker.SystemID, invoker.Email)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return skip("invoker not found", zap.String("user", invoker.Email))
		}
		return err
	}

	tenant, err := store.LatestActiveByAlias(ctx, s, invoker.Email)
	if errors.Is(err, store.ErrNotFound) {
		return skip("no tenant", zap.String("user", invoker.Email))
	} else if err != nil {
		return err
	}

	room, err := store.Parent(ctx, s, ac)
	if errors.Is(err, store.ErrNotFound) {
		return skip("AC has no room")
	} else if err != nil {
		return err
	}
	site, err := store.Parent(ctx, s, room)
	if errors.Is(err, store.ErrNotFound) {
		return skip("room has no site", zap.String("room", room.ID))
	} else if err != nil {
		return err
	}

	_, tenantLocal := e.sys.Split(tenant.ID)
	settings, err := store.LatestActiveByAlias(ctx, s, "Settings-"+tenantLocal)
	if errors.Is(err, store.ErrNotFound) {
		return skip("no settings", zap.String("tenant", tenant.ID))
	} else if err != nil {
		return err
	}

	rates := Rates{
		Watts:      parse.Float(ac.Detail("watts")),
		CostPerKwh: parse.Float(settings.Detail("costPerKwh")),
		VATRate:    parse.Float(settings.Detail("vatRate")),
	}
	if rates.Watts <= 0 || rates.CostPerKwh <= 0 {
		return skip("invalid rates", zap.Float64("watts", rates.Watts), zap.Float64("costPerKwh", rates.CostPerKwh))
	}

	start, err := parse.Timestamp(started)
	if err != nil {
		return skip("no start time", zap.Error(err))
	}
	end, err := parse.Timestamp(ended)
	if err != nil {
		return skip("no end time", zap.Error(err))
	}
	if end.Before(start) {
		return skip("end before start", zap.Time("start", start), zap.Time("end", end))
	}

	logs := Accrue(DecodePowerLogs(site.Detail(PowerLogsKey), e.log), start, end, rates)
	site.SetDetail(PowerLogsKey, logs)
	if err := s.SaveObject(ctx, site); err != nil {
		return err
	}

	e.log.Info("power consumption recorded",
		zap.String("site", site.ID), zap.String("ac", ac.ID),
		zap.Time("start", start), zap.Time("end", end))
	return nil
}
