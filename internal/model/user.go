package model

// User is a registered account, keyed by systemID + separator + email.
type User struct {
	ID       string `gorm:"primaryKey;size:255"`
	Role     Role   `gorm:"index;size:16;not null"`
	Username string `gorm:"size:255;not null"`
	Avatar   string `gorm:"size:1024;not null"`
}

// The system operator owns objects the service creates on its own behalf.
const (
	SystemOperatorEmail = "SystemOperator@airwise.com"
	SystemOperatorName  = "InternalSystemOperator"
)
