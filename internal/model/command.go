package model

import (
	"time"

	"gorm.io/datatypes"
)

// Command names accepted by the dispatch engine.
const (
	CommandVerifyACBySerial   = "VERIFY_AC_BY_SERIAL_THEN_ADD"
	CommandUpdateACState      = "UPDATE_AC_STATE"
	CommandScheduleTask       = "SCHEDULE_TASK"
	CommandRoomACsControl     = "ROOM_ACS_CONTROL"
	CommandDeleteWithChildren = "DELETE_ENTITY_WITH_CHILDREN"
)

// Command is the audit record of an invoked command.
type Command struct {
	ID                  string            `gorm:"primaryKey;size:255"`
	Command             string            `gorm:"size:64;not null"`
	TargetObject        string            `gorm:"index;size:255;not null"`
	InvokedBy           string            `gorm:"index;size:255;not null"`
	InvocationTimestamp time.Time         `gorm:"index;not null"`
	Attributes          datatypes.JSONMap `gorm:"not null"`
}
