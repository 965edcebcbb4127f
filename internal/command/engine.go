// Package command runs the commands users invoke on their objects. Every
// invocation is authorized, validated and audited before its handler runs
// inside a single store transaction.
package command

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"airwise-backend/config"
	"airwise-backend/internal/acapi"
	"airwise-backend/internal/apperr"
	"airwise-backend/internal/authz"
	"airwise-backend/internal/model"
	"airwise-backend/internal/notification"
	"airwise-backend/internal/store"
	"airwise-backend/internal/validate"
)

// invocation is the state one handler works on. Everything it reads and
// writes goes through store, which is bound to the handler's transaction.
type invocation struct {
	store    store.Store
	notifier *notification.Notifier
	cmd      *model.Command
	invoker  model.UserID
	target   *model.Object
	derived  []model.CommandBoundary
}

type handlerFunc func(ctx context.Context, inv *invocation) error

// Engine dispatches commands to their handlers.
type Engine struct {
	store     store.Store
	sys       config.SystemConfig
	gate      *authz.Gate
	validator *validate.Validator
	gateway   acapi.Gateway
	notifier  *notification.Notifier
	clock     clockwork.Clock
	loc       *time.Location
	log       *zap.Logger
	handlers  map[string]handlerFunc
}

func NewEngine(s store.Store, sys config.SystemConfig, gate *authz.Gate, gateway acapi.Gateway, notifier *notification.Notifier, clock clockwork.Clock, log *zap.Logger) *Engine {
	e := &Engine{
		store:     s,
		sys:       sys,
		gate:      gate,
		validator: validate.New(sys),
		gateway:   gateway,
		notifier:  notifier,
		clock:     clock,
		log:       log,
	}
	e.handlers = map[string]handlerFunc{
		model.CommandVerifyACBySerial:   e.verifyACBySerial,
		model.CommandUpdateACState:      e.updateACStateCommand,
		model.CommandScheduleTask:       e.scheduleTask,
		model.CommandRoomACsControl:     e.roomACsControl,
		model.CommandDeleteWithChildren: e.deleteWithChildren,
	}
	return e
}

// WithLocation makes the engine stamp AC run times in loc instead of the
// clock's own zone. Power logs are split into days in the same zone.
func (e *Engine) WithLocation(loc *time.Location) *Engine {
	e.loc = loc
	return e
}

func (e *Engine) now() time.Time {
	if e.loc == nil {
		return e.clock.Now()
	}
	return e.clock.Now().In(e.loc)
}

// Invoke runs one command and returns its audit record followed by any
// commands derived from it.
func (e *Engine) Invoke(ctx context.Context, cb model.CommandBoundary) ([]model.CommandBoundary, error) {
	invoker := cb.InvokedBy.UserID
	if err := e.gate.Require(ctx, invoker.SystemID, invoker.Email, model.RoleEndUser); err != nil {
		return nil, err
	}
	if err := e.validator.CommandRequest(cb); err != nil {
		return nil, err
	}

	targetID := e.sys.Join(cb.TargetObject.ID.SystemID, cb.TargetObject.ID.ObjectID)
	target, err := e.store.FindActiveObject(ctx, targetID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("target object %s not found", cb.TargetObject.ID.ObjectID)
	}
	if err != nil {
		return nil, err
	}

	cmd := &model.Command{
		ID:                  e.sys.Key(uuid.NewString()),
		Command:             cb.Command,
		TargetObject:        targetID,
		InvokedBy:           e.sys.Join(invoker.SystemID, invoker.Email),
		InvocationTimestamp: e.clock.Now(),
		Attributes:          model.CloneDetails(cb.CommandAttributes),
	}
	if err := e.store.SaveCommand(ctx, cmd); err != nil {
		return nil, err
	}

	handle, ok := e.handlers[cmd.Command]
	if !ok {
		return nil, apperr.InvalidInput("unknown command: %s", cmd.Command)
	}

	inv := &invocation{cmd: cmd, invoker: invoker, target: target}
	err = e.store.Transaction(ctx, func(tx store.Store) error {
		inv.store = tx
		inv.notifier = e.notifier.With(tx)
		return handle(ctx, inv)
	})
	if err != nil {
		e.log.Info("command failed",
			zap.String("command", cmd.Command), zap.String("id", cmd.ID),
			zap.String("target", targetID), zap.Error(err))
		return nil, err
	}

	e.log.Info("command invoked",
		zap.String("command", cmd.Command), zap.String("id", cmd.ID), zap.String("target", targetID))
	return append([]model.CommandBoundary{model.CommandToBoundary(e.sys, cmd)}, inv.derived...), nil
}

// History returns the audit log, newest first. Only admins may read it.
func (e *Engine) History(ctx context.Context, systemID, email string, size, page int) ([]model.CommandBoundary, error) {
	if err := validate.Pagination(size, page); err != nil {
		return nil, err
	}
	if err := e.gate.Require(ctx, systemID, email, model.RoleAdmin); err != nil {
		return nil, err
	}

	commands, err := e.store.ListCommands(ctx, store.Page{Size: size, Page: page})
	if err != nil {
		return nil, err
	}
	out := make([]model.CommandBoundary, 0, len(commands))
	for i := range commands {
		out = append(out, model.CommandToBoundary(e.sys, &commands[i]))
	}
	return out, nil
}

// DeleteAll clears the audit log. Only admins may do it.
func (e *Engine) DeleteAll(ctx context.Context, systemID, email string) error {
	if err := e.gate.Require(ctx, systemID, email, model.RoleAdmin); err != nil {
		return err
	}
	return e.store.DeleteAllCommands(ctx)
}

// notify stores a notification for the invoker. Failures are logged only.
func (e *Engine) notify(ctx context.Context, n *notification.Notifier, to model.UserID, title, message string) {
	if err := n.Info(ctx, to.Email, title, message); err != nil {
		e.log.Warn("creating notification failed", zap.String("user", to.Email), zap.String("title", title), zap.Error(err))
	}
}

