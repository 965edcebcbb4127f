package validate

import (
	"airwise-backend/internal/apperr"
	"airwise-backend/internal/model"
	"airwise-backend/internal/parse"
)

// ACState checks an UPDATE_AC_STATE payload.
func ACState(attrs map[string]any) error {
	for _, key := range []string{"power", "temperature", "mode", "fanSpeed"} {
		if _, ok := attrs[key]; !ok {
			return apperr.InvalidInput("fields required: [power, temperature, mode, fanSpeed]")
		}
	}
	if _, ok := attrs["power"].(bool); !ok {
		return apperr.InvalidInput("invalid value for 'power': expected boolean")
	}
	return preferences(attrs)
}

// ScheduleTask checks a SCHEDULE_TASK payload.
func ScheduleTask(attrs map[string]any) error {
	for _, key := range []string{"taskName", "action", "startTime", "repeat"} {
		if attrs[key] == nil {
			return apperr.InvalidInput("missing required fields: taskName, action, startTime, repeat")
		}
	}

	actionRaw, ok := attrs["action"].(string)
	if !ok {
		return apperr.InvalidInput("action must be a string")
	}
	action, ok := model.ParseActionType(actionRaw)
	if !ok {
		return apperr.InvalidInput("invalid action: %s", actionRaw)
	}

	repeatRaw, ok := attrs["repeat"].(string)
	if !ok {
		return apperr.InvalidInput("repeat must be a string")
	}
	if _, ok := model.ParseRepeatPattern(repeatRaw); !ok {
		return apperr.InvalidInput("invalid repeat pattern: %s", repeatRaw)
	}

	start, err := parse.Clock(attrs["startTime"])
	if err != nil {
		return apperr.InvalidInput("invalid format for startTime, expected HH:mm")
	}
	if action == model.ActionTurnOn {
		end, err := parse.Clock(attrs["endTime"])
		if err != nil {
			return apperr.InvalidInput("invalid format for endTime, expected HH:mm")
		}
		if end <= start {
			return apperr.InvalidInput("end time must be after start time")
		}
	}

	useCurrent, err := UseCurrentPreferences(attrs)
	if err != nil {
		return err
	}
	if useCurrent {
		return nil
	}
	for _, key := range []string{"temperature", "mode", "fanSpeed"} {
		if attrs[key] == nil {
			return apperr.InvalidInput("missing custom preferences: temperature, mode, fanSpeed")
		}
	}
	return preferences(attrs)
}

// UseCurrentPreferences reads the useCurrentPreferences flag, which
// defaults to true.
func UseCurrentPreferences(attrs map[string]any) (bool, error) {
	raw, present := attrs["useCurrentPreferences"]
	if !present || raw == nil {
		return true, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, apperr.InvalidInput("useCurrentPreferences must be a boolean")
	}
	return b, nil
}

// preferences validates temperature, mode and fanSpeed.
func preferences(attrs map[string]any) error {
	temperature := parse.Float(attrs["temperature"])
	if temperature < MinTemperature || temperature > MaxTemperature {
		return apperr.InvalidInput("temperature must be between %d and %d", MinTemperature, MaxTemperature)
	}

	mode, ok := attrs["mode"].(string)
	if !ok {
		return apperr.InvalidInput("invalid value for 'mode': expected string")
	}
	if _, ok := model.ParseAcMode(mode); !ok {
		return apperr.InvalidInput("invalid AC mode: %s", mode)
	}

	fanSpeed, ok := attrs["fanSpeed"].(string)
	if !ok {
		return apperr.InvalidInput("invalid value for 'fanSpeed': expected string")
	}
	if _, ok := model.ParseFanSpeed(fanSpeed); !ok {
		return apperr.InvalidInput("invalid fan speed: %s", fanSpeed)
	}
	return nil
}
