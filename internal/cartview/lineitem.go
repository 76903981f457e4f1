package cartview

import (
	"context"
	"fmt"

	"github.com/FarhanRj389/storefront-widgets/internal/cart"
)

// Action is one of the three controls a rendered row exposes.
type Action string

const (
	ActionIncrease Action = "increase"
	ActionDecrease Action = "decrease"
	ActionRemove   Action = "remove"
)

// ParseAction validates an action name from a request path.
func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case ActionIncrease, ActionDecrease, ActionRemove:
		return Action(raw), nil
	default:
		return "", fmt.Errorf("unknown line item action %q", raw)
	}
}

// Control is one rendered row's handle on its line item, captured at render
// time via the row's three immutable data attributes.
type Control struct {
	UpdateKey string
	Quantity  int
	ItemKey   string
}

// Increase targets one more than the current quantity.
func (c Control) Increase() cart.PendingUpdate {
	return cart.PendingUpdate{c.UpdateKey: c.Quantity + 1}
}

// Decrease targets one less, floored at 0. Decreasing from 1 removes the
// item; decreasing from 0 stays at 0, never negative.
func (c Control) Decrease() cart.PendingUpdate {
	target := c.Quantity - 1
	if target < 0 {
		target = 0
	}
	return cart.PendingUpdate{c.UpdateKey: target}
}

// Remove targets 0 unconditionally.
func (c Control) Remove() cart.PendingUpdate {
	return cart.PendingUpdate{c.UpdateKey: 0}
}

// Apply builds the single-entry update for the action and delegates it to the
// cart controller.
func (c Control) Apply(ctx context.Context, ctrl cart.Controller, action Action) error {
	var updates cart.PendingUpdate
	switch action {
	case ActionIncrease:
		updates = c.Increase()
	case ActionDecrease:
		updates = c.Decrease()
	case ActionRemove:
		updates = c.Remove()
	default:
		return fmt.Errorf("unknown line item action %q", action)
	}
	return ctrl.RequestQuantityChange(ctx, updates)
}
