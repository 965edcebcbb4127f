package command

import (
	"context"
	"strings"

	"airwise-backend/internal/apperr"
	"airwise-backend/internal/model"
	"airwise-backend/internal/store"
)

// cascade lists, for each deletable type, the child type removed with it.
var cascade = map[string]string{
	strings.ToLower(model.TypeSite):           model.TypeRoom,
	strings.ToLower(model.TypeRoom):           model.TypeAirConditioner,
	strings.ToLower(model.TypeAirConditioner): model.TypeTask,
	strings.ToLower(model.TypeTask):           "",
}

func (e *Engine) deleteWithChildren(ctx context.Context, inv *invocation) error {
	if _, ok := cascade[strings.ToLower(inv.target.Type)]; !ok {
		return apperr.InvalidInput("Unknown entity type: %s", inv.target.Type)
	}
	return softDelete(ctx, inv.store, inv.target)
}

// softDelete deactivates obj after its children of the cascading type,
// whatever their current state.
func softDelete(ctx context.Context, s store.Store, obj *model.Object) error {
	if childType := cascade[strings.ToLower(obj.Type)]; childType != "" {
		children, err := store.Children(ctx, s, obj.ID, childType, false)
		if err != nil {
			return err
		}
		for i := range children {
			if err := softDelete(ctx, s, &children[i]); err != nil {
				return err
			}
		}
	}

	obj.Active = false
	return s.SaveObject(ctx, obj)
}
