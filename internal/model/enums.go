package model

import "strings"

// Role is the access level of a user.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleOperator Role = "OPERATOR"
	RoleEndUser  Role = "END_USER"
)

// ParseRole reports whether s names a known role.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleOperator, RoleEndUser:
		return r, true
	}
	return "", false
}

// AcMode is the operating mode of an air conditioner.
type AcMode string

const (
	ModeAuto AcMode = "AUTO"
	ModeCool AcMode = "COOL"
	ModeHeat AcMode = "HEAT"
	ModeFan  AcMode = "FAN"
	ModeDry  AcMode = "DRY"
)

// ParseAcMode is case-insensitive.
func ParseAcMode(s string) (AcMode, bool) {
	switch m := AcMode(strings.ToUpper(strings.TrimSpace(s))); m {
	case ModeAuto, ModeCool, ModeHeat, ModeFan, ModeDry:
		return m, true
	}
	return "", false
}

// FanSpeed of an air conditioner.
type FanSpeed string

const (
	FanAuto   FanSpeed = "AUTO"
	FanLow    FanSpeed = "LOW"
	FanMedium FanSpeed = "MEDIUM"
	FanHigh   FanSpeed = "HIGH"
)

func ParseFanSpeed(s string) (FanSpeed, bool) {
	switch f := FanSpeed(strings.ToUpper(strings.TrimSpace(s))); f {
	case FanAuto, FanLow, FanMedium, FanHigh:
		return f, true
	}
	return "", false
}

// ActionType is what a scheduled task does to its air conditioner.
type ActionType string

const (
	ActionTurnOn  ActionType = "TURN_ON"
	ActionTurnOff ActionType = "TURN_OFF"
)

func ParseActionType(s string) (ActionType, bool) {
	switch a := ActionType(strings.ToUpper(strings.TrimSpace(s))); a {
	case ActionTurnOn, ActionTurnOff:
		return a, true
	}
	return "", false
}

// RepeatPattern decides on which days a scheduled task fires.
type RepeatPattern string

const (
	RepeatOnce         RepeatPattern = "ONCE"
	RepeatEveryDay     RepeatPattern = "EVERY_DAY"
	RepeatEveryWeekday RepeatPattern = "EVERY_WEEKDAY"
	RepeatWeekends     RepeatPattern = "WEEKENDS"
)

// ParseRepeatPattern accepts "every day" as well as "EVERY_DAY".
func ParseRepeatPattern(s string) (RepeatPattern, bool) {
	normalized := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), " ", "_")
	switch p := RepeatPattern(normalized); p {
	case RepeatOnce, RepeatEveryDay, RepeatEveryWeekday, RepeatWeekends:
		return p, true
	}
	return "", false
}
