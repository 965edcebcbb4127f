package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"airwise-backend/config"
	"airwise-backend/internal/apperr"
	"airwise-backend/internal/model"
)

func newValidator() *Validator {
	return New(config.SystemConfig{SystemID: "sys", IDSeparator: "#::#"})
}

func TestValidator_IDs(t *testing.T) {
	v := newValidator()

	assert.True(t, v.SystemID("sys"))
	assert.False(t, v.SystemID("other"))
	assert.False(t, v.SystemID(" "))

	assert.True(t, v.ObjectID(model.ObjectID{SystemID: "sys", ObjectID: "abc"}))
	assert.False(t, v.ObjectID(model.ObjectID{SystemID: "sys", ObjectID: "  "}))

	assert.True(t, v.UserID(model.UserID{SystemID: "sys", Email: "Jane.Doe@Example.com"}))
	assert.False(t, v.UserID(model.UserID{SystemID: "sys", Email: "jane@"}))
	assert.False(t, v.UserID(model.UserID{SystemID: "x", Email: "jane@example.com"}))
}

func TestRoleAndPagination(t *testing.T) {
	assert.True(t, Role("END_USER"))
	assert.False(t, Role("end_user"))
	assert.False(t, Role(""))

	assert.NoError(t, Pagination(10, 0))
	assert.ErrorIs(t, Pagination(0, 0), apperr.ErrInvalidInput)
	assert.ErrorIs(t, Pagination(10, -1), apperr.ErrInvalidInput)
}

func TestValidator_CommandRequest(t *testing.T) {
	v := newValidator()
	valid := model.CommandBoundary{
		Command:      model.CommandUpdateACState,
		TargetObject: model.TargetObject{ID: model.ObjectID{SystemID: "sys", ObjectID: "ac"}},
		InvokedBy:    model.UserRef{UserID: model.UserID{SystemID: "sys", Email: "user@airwise.com"}},
	}
	assert.NoError(t, v.CommandRequest(valid))

	noName := valid
	noName.Command = " "
	assert.ErrorIs(t, v.CommandRequest(noName), apperr.ErrInvalidInput)

	badTarget := valid
	badTarget.TargetObject.ID.SystemID = "other"
	assert.ErrorIs(t, v.CommandRequest(badTarget), apperr.ErrInvalidInput)

	badInvoker := valid
	badInvoker.InvokedBy.UserID.Email = "nope"
	assert.ErrorIs(t, v.CommandRequest(badInvoker), apperr.ErrInvalidInput)
}

func TestValidator_ObjectBoundary(t *testing.T) {
	v := newValidator()
	obj := model.ObjectBoundary{
		Type:      model.TypeSite,
		Alias:     "Home",
		Status:    "active",
		CreatedBy: model.UserRef{UserID: model.UserID{SystemID: "sys", Email: "op@airwise.com"}},
	}
	assert.NoError(t, v.ObjectBoundary(obj))

	obj.Status = ""
	assert.ErrorIs(t, v.ObjectBoundary(obj), apperr.ErrInvalidInput)
}

func TestACState(t *testing.T) {
	testCases := []struct {
		name      string
		attrs     map[string]any
		expectErr bool
	}{
		{
			name:  "valid",
			attrs: map[string]any{"power": true, "temperature": 24.0, "mode": "cool", "fanSpeed": "LOW"},
		},
		{
			name:  "temperature as string",
			attrs: map[string]any{"power": false, "temperature": "16", "mode": "HEAT", "fanSpeed": "AUTO"},
		},
		{
			name:      "missing fan speed",
			attrs:     map[string]any{"power": true, "temperature": 24.0, "mode": "COOL"},
			expectErr: true,
		},
		{
			name:      "power not boolean",
			attrs:     map[string]any{"power": "true", "temperature": 24.0, "mode": "COOL", "fanSpeed": "LOW"},
			expectErr: true,
		},
		{
			name:      "too hot",
			attrs:     map[string]any{"power": true, "temperature": 31.0, "mode": "COOL", "fanSpeed": "LOW"},
			expectErr: true,
		},
		{
			name:      "unknown mode",
			attrs:     map[string]any{"power": true, "temperature": 20.0, "mode": "TURBO", "fanSpeed": "LOW"},
			expectErr: true,
		},
		{
			name:      "unknown fan speed",
			attrs:     map[string]any{"power": true, "temperature": 20.0, "mode": "DRY", "fanSpeed": "MAX"},
			expectErr: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ACState(tc.attrs)
			if tc.expectErr {
				assert.True(t, errors.Is(err, apperr.ErrInvalidInput), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScheduleTask(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"taskName":  "Morning",
			"action":    "TURN_ON",
			"startTime": "07:00",
			"endTime":   "08:00",
			"repeat":    "EVERY_DAY",
		}
	}

	assert.NoError(t, ScheduleTask(base()))

	off := base()
	off["action"] = "turn_off"
	delete(off, "endTime")
	assert.NoError(t, ScheduleTask(off))

	noEnd := base()
	delete(noEnd, "endTime")
	assert.ErrorIs(t, ScheduleTask(noEnd), apperr.ErrInvalidInput)

	endBeforeStart := base()
	endBeforeStart["endTime"] = "07:00"
	assert.ErrorIs(t, ScheduleTask(endBeforeStart), apperr.ErrInvalidInput)

	badRepeat := base()
	badRepeat["repeat"] = "MONTHLY"
	assert.ErrorIs(t, ScheduleTask(badRepeat), apperr.ErrInvalidInput)

	missing := base()
	delete(missing, "taskName")
	assert.ErrorIs(t, ScheduleTask(missing), apperr.ErrInvalidInput)

	custom := base()
	custom["useCurrentPreferences"] = false
	assert.ErrorIs(t, ScheduleTask(custom), apperr.ErrInvalidInput, "custom preferences are required")

	custom["temperature"] = 22.0
	custom["mode"] = "COOL"
	custom["fanSpeed"] = "HIGH"
	assert.NoError(t, ScheduleTask(custom))

	custom["temperature"] = 12.0
	assert.ErrorIs(t, ScheduleTask(custom), apperr.ErrInvalidInput)
}
