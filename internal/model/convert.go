package model

import (
	"maps"

	"gorm.io/datatypes"

	"airwise-backend/config"
)

// ObjectToBoundary converts a stored object to its exposed shape.
func ObjectToBoundary(sys config.SystemConfig, o *Object) ObjectBoundary {
	systemID, localID := sys.Split(o.ID)
	creatorSystem, creatorEmail := sys.Split(o.CreatedBy)
	active := o.Active
	created := o.CreatedAt
	details := map[string]any{}
	maps.Copy(details, o.Details)
	normalizeNumbers(details)

	return ObjectBoundary{
		ID:                ObjectID{SystemID: systemID, ObjectID: localID},
		Type:              o.Type,
		Alias:             o.Alias,
		Status:            o.Status,
		Active:            &active,
		CreationTimestamp: &created,
		CreatedBy:         UserRef{UserID: UserID{SystemID: creatorSystem, Email: creatorEmail}},
		ObjectDetails:     details,
	}
}

// ObjectsToBoundaries converts a page of objects.
func ObjectsToBoundaries(sys config.SystemConfig, objects []Object) []ObjectBoundary {
	out := make([]ObjectBoundary, 0, len(objects))
	for i := range objects {
		out = append(out, ObjectToBoundary(sys, &objects[i]))
	}
	return out
}

// UserToBoundary converts a stored user to its exposed shape.
func UserToBoundary(sys config.SystemConfig, u *User) UserBoundary {
	systemID, email := sys.Split(u.ID)
	return UserBoundary{
		UserID:   UserID{SystemID: systemID, Email: email},
		Role:     string(u.Role),
		Username: u.Username,
		Avatar:   u.Avatar,
	}
}

// CommandToBoundary converts a stored command to its exposed shape.
func CommandToBoundary(sys config.SystemConfig, c *Command) CommandBoundary {
	systemID, localID := sys.Split(c.ID)
	targetSystem, targetLocal := sys.Split(c.TargetObject)
	invokerSystem, invokerEmail := sys.Split(c.InvokedBy)
	invoked := c.InvocationTimestamp
	attrs := map[string]any{}
	maps.Copy(attrs, c.Attributes)
	normalizeNumbers(attrs)

	return CommandBoundary{
		CommandID:           CommandID{SystemID: systemID, ID: localID},
		Command:             c.Command,
		TargetObject:        TargetObject{ID: ObjectID{SystemID: targetSystem, ObjectID: targetLocal}},
		InvocationTimestamp: &invoked,
		InvokedBy:           UserRef{UserID: UserID{SystemID: invokerSystem, Email: invokerEmail}},
		CommandAttributes:   attrs,
	}
}

// CloneDetails copies a boundary attribute map into a detail bag.
func CloneDetails(src map[string]any) datatypes.JSONMap {
	dst := datatypes.JSONMap{}
	maps.Copy(dst, src)
	return dst
}
