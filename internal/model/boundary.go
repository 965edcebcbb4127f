package model

import "time"

// ObjectID identifies an object on the wire.
type ObjectID struct {
	SystemID string `json:"systemID"`
	ObjectID string `json:"objectId"`
}

// UserID identifies a user on the wire.
type UserID struct {
	SystemID string `json:"systemID"`
	Email    string `json:"email"`
}

// UserRef wraps a UserID the way createdBy and invokedBy are sent.
type UserRef struct {
	UserID UserID `json:"userId"`
}

// ObjectBoundary is the exposed shape of an Object.
type ObjectBoundary struct {
	ID                ObjectID       `json:"id"`
	Type              string         `json:"type"`
	Alias             string         `json:"alias"`
	Status            string         `json:"status"`
	Active            *bool          `json:"active"`
	CreationTimestamp *time.Time     `json:"creationTimestamp"`
	CreatedBy         UserRef        `json:"createdBy"`
	ObjectDetails     map[string]any `json:"objectDetails"`
}

// CommandID identifies a command on the wire.
type CommandID struct {
	SystemID string `json:"systemID"`
	ID       string `json:"id"`
}

// TargetObject points a command at an object.
type TargetObject struct {
	ID ObjectID `json:"id"`
}

// CommandBoundary is the exposed shape of a Command.
type CommandBoundary struct {
	CommandID           CommandID      `json:"commandId"`
	Command             string         `json:"command"`
	TargetObject        TargetObject   `json:"targetObject"`
	InvocationTimestamp *time.Time     `json:"invocationTimestamp"`
	InvokedBy           UserRef        `json:"invokedBy"`
	CommandAttributes   map[string]any `json:"commandAttributes"`
}

// UserBoundary is the exposed shape of a User.
type UserBoundary struct {
	UserID   UserID `json:"userId"`
	Role     string `json:"role"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// NewUserBoundary is the registration payload.
type NewUserBoundary struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}
