package command

import (
	"context"

	"go.uber.org/zap"

	"airwise-backend/internal/acapi"
	"airwise-backend/internal/apperr"
	"airwise-backend/internal/model"
	"airwise-backend/internal/notification"
	"airwise-backend/internal/parse"
	"airwise-backend/internal/store"
	"airwise-backend/internal/validate"
)

func (e *Engine) updateACStateCommand(ctx context.Context, inv *invocation) error {
	return e.applyACState(ctx, inv.store, inv.notifier, inv.target, inv.cmd.Attributes, inv.invoker)
}

// ApplyACState runs UPDATE_AC_STATE on ac outside of a user invocation. The
// command is not audited. invoker is charged for the power consumed and
// receives the notification.
func (e *Engine) ApplyACState(ctx context.Context, ac *model.Object, attrs map[string]any, invoker model.UserID) error {
	return e.store.Transaction(ctx, func(tx store.Store) error {
		return e.applyACState(ctx, tx, e.notifier.With(tx), ac, attrs, invoker)
	})
}

// applyACState pushes the requested setting to the vendor and mirrors it
// on the AC. Switching off closes the running interval and accrues its
// power consumption on the site.
func (e *Engine) applyACState(ctx context.Context, s store.Store, n *notification.Notifier, ac *model.Object, attrs map[string]any, invoker model.UserID) error {
	if err := validate.ACState(attrs); err != nil {
		return err
	}

	mode, _ := model.ParseAcMode(parse.String(attrs["mode"]))
	fanSpeed, _ := model.ParseFanSpeed(parse.String(attrs["fanSpeed"]))
	setting := acapi.Setting{
		Power:       parse.Bool(attrs["power"]),
		Temperature: parse.Float(attrs["temperature"]),
		Mode:        string(mode),
		FanSpeed:    string(fanSpeed),
	}

	resp, err := e.gateway.SetState(ctx, ac.Alias, setting)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return apperr.ExternalAPI("AC %s rejected %s: %s", ac.Alias, setting, resp.Message)
	}

	ac.Status = powerStatus(setting.Power)
	ac.SetDetail("power", setting.Power)
	ac.SetDetail("temperature", setting.Temperature)
	ac.SetDetail("mode", setting.Mode)
	ac.SetDetail("fanSpeed", setting.FanSpeed)

	now := parse.FormatTimestamp(e.now())
	var started string
	if setting.Power {
		if parse.String(ac.Detail("startDateTime")) == "" {
			ac.SetDetail("startDateTime", now)
		}
	} else {
		started = parse.String(ac.Detail("startDateTime"))
		ac.SetDetail("startDateTime", nil)
		ac.SetDetail("endDateTime", nil)
	}

	if err := s.SaveObject(ctx, ac); err != nil {
		return err
	}

	if !setting.Power {
		if err := e.accruePower(ctx, s, ac, invoker, started, now); err != nil {
			e.log.Warn("power consumption not recorded", zap.String("ac", ac.ID), zap.Error(err))
		}
	}

	e.notify(ctx, n, invoker, "AC State Updated", resp.Message)
	return nil
}
