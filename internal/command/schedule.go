package command

import (
	"context"
	"strings"

	"airwise-backend/internal/apperr"
	"airwise-backend/internal/model"
	"airwise-backend/internal/parse"
	"airwise-backend/internal/store"
	"airwise-backend/internal/validate"
)

// scheduleTask arms the target Task with the requested schedule. The AC
// preferences are fixed now: the AC's current ones when requested or when
// the task only switches the AC off, the provided ones otherwise.
func (e *Engine) scheduleTask(ctx context.Context, inv *invocation) error {
	task := inv.target
	attrs := inv.cmd.Attributes
	if err := validate.ScheduleTask(attrs); err != nil {
		return err
	}

	ac, err := store.Parent(ctx, inv.store, task)
	if err != nil || !strings.EqualFold(ac.Type, model.TypeAirConditioner) {
		return apperr.InvalidInput("scheduled task must be linked to an AirConditioner")
	}

	action, _ := model.ParseActionType(parse.String(attrs["action"]))
	repeat, _ := model.ParseRepeatPattern(parse.String(attrs["repeat"]))
	useCurrent, _ := validate.UseCurrentPreferences(attrs)

	prefs := attrs
	if useCurrent || action == model.ActionTurnOff {
		prefs = ac.Details
	}
	temperature := parse.Float(prefs["temperature"])
	mode := parse.String(prefs["mode"])
	fanSpeed := parse.String(prefs["fanSpeed"])

	if !useCurrent && action != model.ActionTurnOff {
		err := validate.ACState(map[string]any{
			"power":       action == model.ActionTurnOn,
			"temperature": temperature,
			"mode":        mode,
			"fanSpeed":    fanSpeed,
		})
		if err != nil {
			return err
		}
	}

	taskName := parse.String(attrs["taskName"])
	startTime := parse.String(attrs["startTime"])
	details := map[string]any{
		"taskName":    taskName,
		"action":      string(action),
		"startTime":   startTime,
		"repeat":      string(repeat),
		"temperature": temperature,
		"mode":        mode,
		"fanSpeed":    fanSpeed,
	}
	if end := attrs["endTime"]; end != nil {
		details["endTime"] = parse.String(end)
	}

	task.Status = model.TaskScheduled
	task.Active = true
	task.Details = model.CloneDetails(details)
	if err := inv.store.SaveObject(ctx, task); err != nil {
		return err
	}

	e.notify(ctx, inv.notifier, inv.invoker, "Scheduled Task Confirmed",
		"Your task '"+taskName+"' has been scheduled to start at "+startTime)
	return nil
}
