package model

import (
	"time"

	"gorm.io/datatypes"
)

// Object types with behaviour attached to them.
const (
	TypeTenant         = "Tenant"
	TypeSite           = "Site"
	TypeRoom           = "Room"
	TypeAirConditioner = "AirConditioner"
	TypeTask           = "Task"
	TypeSettings       = "Settings"
	TypeNotification   = "Notification"
)

// Task statuses.
const (
	TaskScheduled = "SCHEDULED"
	TaskExecuted  = "EXECUTED"
)

// Object is a node of the object graph. Children are found by querying
// ParentID, never through an embedded list.
type Object struct {
	ID        string            `gorm:"primaryKey;size:255"` // systemID + separator + local id
	Type      string            `gorm:"index;size:64;not null"`
	Alias     string            `gorm:"index;size:255;not null"`
	Status    string            `gorm:"index;size:64;not null"`
	Active    bool              `gorm:"index;not null"`
	CreatedAt time.Time         `gorm:"index;not null"`
	CreatedBy string            `gorm:"size:255;not null"` // user key
	Details   datatypes.JSONMap `gorm:"not null"`
	ParentID  *string           `gorm:"index;size:255"`
}

// Detail returns a detail value, or nil when the bag has no such key.
func (o *Object) Detail(key string) any {
	if o.Details == nil {
		return nil
	}
	return o.Details[key]
}

// SetDetail writes a detail value, allocating the bag when needed.
func (o *Object) SetDetail(key string, value any) {
	if o.Details == nil {
		o.Details = datatypes.JSONMap{}
	}
	o.Details[key] = value
}
