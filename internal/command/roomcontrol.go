package command

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"airwise-backend/internal/apperr"
	"airwise-backend/internal/model"
	"airwise-backend/internal/store"
)

// roomACsControl applies one UPDATE_AC_STATE to every active AC of the
// target room. The per-AC commands are reported back but not audited.
func (e *Engine) roomACsControl(ctx context.Context, inv *invocation) error {
	room := inv.target
	if !strings.EqualFold(room.Type, model.TypeRoom) {
		return apperr.InvalidInput("%s can only be invoked on Room objects", model.CommandRoomACsControl)
	}

	acs, err := store.Children(ctx, inv.store, room.ID, model.TypeAirConditioner, true)
	if err != nil {
		return err
	}
	if len(acs) == 0 {
		return apperr.InvalidInput("No ACs in this room.")
	}

	for i := range acs {
		ac := &acs[i]
		derived := &model.Command{
			ID:                  e.sys.Key(uuid.NewString()),
			Command:             model.CommandUpdateACState,
			TargetObject:        ac.ID,
			InvokedBy:           inv.cmd.InvokedBy,
			InvocationTimestamp: e.clock.Now(),
			Attributes:          model.CloneDetails(inv.cmd.Attributes),
		}
		if err := e.applyACState(ctx, inv.store, inv.notifier, ac, derived.Attributes, inv.invoker); err != nil {
			return err
		}
		inv.derived = append(inv.derived, model.CommandToBoundary(e.sys, derived))
	}

	e.notify(ctx, inv.notifier, inv.invoker, "Group Control", "Group AC command dispatched.")
	return nil
}
