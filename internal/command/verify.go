package command

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"airwise-backend/internal/apperr"
	"airwise-backend/internal/model"
	"airwise-backend/internal/notification"
	"airwise-backend/internal/parse"
	"airwise-backend/internal/store"
	"airwise-backend/internal/validate"
)

// verifyACBySerial checks a serial with the vendor and adds the AC to the
// target room, seeded from the room defaults and then from its live state.
func (e *Engine) verifyACBySerial(ctx context.Context, inv *invocation) error {
	room := inv.target
	if !strings.EqualFold(room.Type, model.TypeRoom) {
		return apperr.InvalidInput("%s can only be invoked on Room objects", model.CommandVerifyACBySerial)
	}

	attrs := inv.cmd.Attributes
	serial := strings.TrimSpace(parse.String(attrs["serial"]))
	if serial == "" {
		return apperr.InvalidInput("AC serial number is missing in command attributes")
	}
	manufacturer := strings.TrimSpace(parse.String(attrs["manufacturer"]))
	if manufacturer == "" {
		return apperr.InvalidInput("AC manufacturer is missing in command attributes")
	}
	watts := parse.Int(attrs["wattsOfDevice"])
	if watts <= 0 {
		return apperr.InvalidInput("AC wattsOfDevice is invalid in command attributes")
	}

	existing, err := store.Children(ctx, inv.store, room.ID, model.TypeAirConditioner, true)
	if err != nil {
		return err
	}
	for _, ac := range existing {
		if parse.String(ac.Detail("serial")) == serial {
			return apperr.InvalidInput("AC serial number %s already exists in the selected room", serial)
		}
	}

	resp, err := e.gateway.GetState(ctx, serial)
	if err != nil {
		if errors.Is(err, apperr.ErrObjectNotFound) {
			return apperr.NotFound("AC %s not found in external system", serial)
		}
		return apperr.ExternalAPI("failed to verify AC %s: %v", serial, err)
	}
	if resp == nil || resp.ACState == nil || !resp.OK() {
		return apperr.NotFound("AC %s not found in external system", serial)
	}

	details := map[string]any{
		"serial":       serial,
		"manufacturer": manufacturer,
		"watts":        watts,
		"power":        false,
		"temperature":  parse.Float(room.Detail("temperature")),
		"mode":         parse.String(room.Detail("mode")),
		"fanSpeed":     parse.String(room.Detail("fanSpeed")),
	}
	if err := validate.ACState(details); err != nil {
		return err
	}

	operator, err := notification.SystemOperator(ctx, inv.store, e.sys)
	if err != nil {
		return err
	}

	live := resp.ACState
	details["power"] = live.Power
	details["temperature"] = live.Temperature
	details["mode"] = live.Mode
	details["fanSpeed"] = live.FanSpeed

	ac := &model.Object{
		ID:        e.sys.Key(uuid.NewString()),
		Type:      model.TypeAirConditioner,
		Alias:     serial,
		Status:    powerStatus(live.Power),
		Active:    true,
		CreatedAt: e.clock.Now(),
		CreatedBy: operator.ID,
		Details:   model.CloneDetails(details),
		ParentID:  &room.ID,
	}
	if live.Power {
		ac.SetDetail("startDateTime", parse.FormatTimestamp(e.now()))
	}
	if err := inv.store.SaveObject(ctx, ac); err != nil {
		return err
	}

	e.log.Info("AC verified and added",
		zap.String("serial", serial), zap.String("room", room.ID), zap.String("ac", ac.ID))
	e.notify(ctx, inv.notifier, inv.invoker, "AC Verified And Added to Room",
		"AC '"+serial+"' verified and added to room successfully. Latest state of AC has been updated.")
	return nil
}

func powerStatus(power bool) string {
	if power {
		return string(model.ActionTurnOn)
	}
	return string(model.ActionTurnOff)
}
