// Package validate holds the stateless input checks shared by the services.
// Detail bags are free-form maps; the per-type schema is enforced here rather
// than at storage.
package validate

import (
	"regexp"
	"strings"

	"airwise-backend/config"
	"airwise-backend/internal/apperr"
	"airwise-backend/internal/model"
)

const (
	MinTemperature = 16
	MaxTemperature = 30
)

var emailRe = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// Validator checks identifiers against the configured system id.
type Validator struct {
	sys config.SystemConfig
}

func New(sys config.SystemConfig) *Validator {
	return &Validator{sys: sys}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// SystemID reports whether id names this deployment.
func (v *Validator) SystemID(id string) bool {
	return !isBlank(id) && id == v.sys.SystemID
}

func (v *Validator) ObjectID(id model.ObjectID) bool {
	return v.SystemID(id.SystemID) && !isBlank(id.ObjectID)
}

func (v *Validator) UserID(id model.UserID) bool {
	return v.SystemID(id.SystemID) && Email(id.Email)
}

// Email reports whether s looks like an email address.
func Email(s string) bool {
	return !isBlank(s) && emailRe.MatchString(s)
}

// Role reports whether s is exactly one of the known role names.
func Role(s string) bool {
	switch model.Role(s) {
	case model.RoleAdmin, model.RoleOperator, model.RoleEndUser:
		return true
	}
	return false
}

// Pagination rejects non-positive sizes and negative pages.
func Pagination(size, page int) error {
	if size <= 0 {
		return apperr.InvalidInput("size param is invalid")
	}
	if page < 0 {
		return apperr.InvalidInput("page param is invalid")
	}
	return nil
}

// CommandRequest checks the structural fields of a command.
func (v *Validator) CommandRequest(cmd model.CommandBoundary) error {
	if !v.ObjectID(cmd.TargetObject.ID) {
		return apperr.InvalidInput("targetObject is invalid")
	}
	if !v.UserID(cmd.InvokedBy.UserID) {
		return apperr.InvalidInput("invokedBy is invalid")
	}
	if isBlank(cmd.Command) {
		return apperr.InvalidInput("command is invalid")
	}
	return nil
}

// ObjectBoundary checks the fields required to create an object.
func (v *Validator) ObjectBoundary(obj model.ObjectBoundary) error {
	if isBlank(obj.Alias) {
		return apperr.InvalidInput("alias cannot be blank")
	}
	if isBlank(obj.Status) {
		return apperr.InvalidInput("status cannot be blank")
	}
	if isBlank(obj.Type) {
		return apperr.InvalidInput("type cannot be blank")
	}
	if !v.UserID(obj.CreatedBy.UserID) {
		return apperr.InvalidInput("createdBy is invalid")
	}
	return nil
}
