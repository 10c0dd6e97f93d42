// Package core declares the collaborator ports the DMF engine depends on.
// Persistence, tenancy and broker I/O stay behind these interfaces; the
// engine itself never retries or times out a collaborator call.
package core

import (
	"context"
	"errors"

	"github.com/fleethub-io/fleethub/internal/hub/core/model"
)

// ErrNotFound is returned by repositories when the requested entity does
// not exist for the calling tenant.
var ErrNotFound = errors.New("entity not found")

// TenantLookup resolves whether a tenant is known to the system.
type TenantLookup interface {
	Exists(ctx context.Context, tenant string) bool
}

// ActionRepository persists deployment actions.
type ActionRepository interface {
	// Get retrieves an action by id, or ErrNotFound.
	Get(ctx context.Context, actionID string) (*model.Action, error)

	// Create stores a new action and assigns its id.
	Create(ctx context.Context, action *model.Action) (string, error)

	// Save persists the full state of an existing action.
	Save(ctx context.Context, action *model.Action) error

	// OldestActive returns the oldest non-terminal action for a target,
	// or ErrNotFound when the target has nothing in flight.
	OldestActive(ctx context.Context, tenant, thingID string) (*model.Action, error)
}

// TargetRepository persists registered devices.
type TargetRepository interface {
	// Get retrieves a target, or ErrNotFound.
	Get(ctx context.Context, tenant, thingID string) (*model.Target, error)

	// Save creates or updates a target.
	Save(ctx context.Context, target *model.Target) error

	// Delete removes a target after a THING_REMOVED notification.
	Delete(ctx context.Context, tenant, thingID string) error
}

// AttributeRepository persists the device-reported attribute set of one
// target. Mutation goes exclusively through the attribute merge engine.
type AttributeRepository interface {
	// Get returns the target's attribute set; an unknown target has an
	// empty set.
	Get(ctx context.Context, tenant, thingID string) (map[string]string, error)

	// Save replaces the stored attribute set wholesale.
	Save(ctx context.Context, tenant, thingID string, attributes map[string]string) error
}
