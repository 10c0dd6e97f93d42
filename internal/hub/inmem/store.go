// Package inmem provides an in-memory implementation of the hub's
// persistence ports. It backs single-node deployments and tests; every read
// returns a deep copy so callers can never mutate stored state in place.
package inmem

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/fleethub-io/fleethub/internal/hub/core"
	"github.com/fleethub-io/fleethub/internal/hub/core/model"
)

// Store implements core.ActionRepository, core.TargetRepository,
// core.AttributeRepository and core.TenantLookup.
type Store struct {
	mu sync.RWMutex

	tenants    map[string]bool
	actions    map[string]*model.Action
	targets    map[string]*model.Target
	attributes map[string]map[string]string

	nextActionID uint64
}

// NewStore creates a Store serving the given tenants.
func NewStore(tenants []string) *Store {
	known := map[string]bool{}
	for _, t := range tenants {
		known[t] = true
	}
	return &Store{
		tenants:      known,
		actions:      map[string]*model.Action{},
		targets:      map[string]*model.Target{},
		attributes:   map[string]map[string]string{},
		nextActionID: 1,
	}
}

func targetKey(tenant, thingID string) string { return tenant + "/" + thingID }

// Exists reports whether the tenant is configured.
func (s *Store) Exists(_ context.Context, tenant string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tenants[tenant]
}

// Get retrieves an action by id.
func (s *Store) Get(_ context.Context, actionID string) (*model.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	act, ok := s.actions[actionID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return copyAction(act), nil
}

// Create stores a new action under a freshly assigned numeric id.
func (s *Store) Create(_ context.Context, act *model.Action) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	act.ID = strconv.FormatUint(s.nextActionID, 10)
	s.nextActionID++
	s.actions[act.ID] = copyAction(act)
	return act.ID, nil
}

// Save persists the full state of an existing action.
func (s *Store) Save(_ context.Context, act *model.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.actions[act.ID]; !ok {
		return core.ErrNotFound
	}
	s.actions[act.ID] = copyAction(act)
	return nil
}

// OldestActive returns the target's oldest non-terminal action.
func (s *Store) OldestActive(_ context.Context, tenant, thingID string) (*model.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var candidates []*model.Action
	for _, act := range s.actions {
		if act.Tenant == tenant && act.TargetID == thingID && !act.State.Terminal() {
			candidates = append(candidates, act)
		}
	}
	if len(candidates) == 0 {
		return nil, core.ErrNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	return copyAction(candidates[0]), nil
}

// GetTarget retrieves a registered target.
func (s *Store) GetTarget(_ context.Context, tenant, thingID string) (*model.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.targets[targetKey(tenant, thingID)]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

// SaveTarget creates or updates a target.
func (s *Store) SaveTarget(_ context.Context, t *model.Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.targets[targetKey(t.Tenant, t.ThingID)] = &cp
	return nil
}

// DeleteTarget removes a target; deleting an unknown target is a no-op.
func (s *Store) DeleteTarget(_ context.Context, tenant, thingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.targets, targetKey(tenant, thingID))
	delete(s.attributes, targetKey(tenant, thingID))
	return nil
}

// GetAttributes returns the target's attribute set. Unknown targets have an
// empty set.
func (s *Store) GetAttributes(_ context.Context, tenant, thingID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[string]string{}
	for k, v := range s.attributes[targetKey(tenant, thingID)] {
		out[k] = v
	}
	return out, nil
}

// SaveAttributes replaces the stored attribute set wholesale.
func (s *Store) SaveAttributes(_ context.Context, tenant, thingID string, attrs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := map[string]string{}
	for k, v := range attrs {
		cp[k] = v
	}
	s.attributes[targetKey(tenant, thingID)] = cp
	return nil
}

func copyAction(act *model.Action) *model.Action {
	cp := *act
	cp.History = append([]model.HistoryEntry{}, act.History...)
	cp.DistributionSet.Modules = append([]model.SoftwareModule{}, act.DistributionSet.Modules...)
	if act.Window != nil {
		w := *act.Window
		cp.Window = &w
	}
	return &cp
}

// Targets adapts the store to core.TargetRepository, whose method names
// collide with the action repository's.
func (s *Store) Targets() core.TargetRepository { return targetView{s} }

// Attributes adapts the store to core.AttributeRepository.
func (s *Store) Attributes() core.AttributeRepository { return attributeView{s} }

type targetView struct{ s *Store }

func (v targetView) Get(ctx context.Context, tenant, thingID string) (*model.Target, error) {
	return v.s.GetTarget(ctx, tenant, thingID)
}

func (v targetView) Save(ctx context.Context, t *model.Target) error {
	return v.s.SaveTarget(ctx, t)
}

func (v targetView) Delete(ctx context.Context, tenant, thingID string) error {
	return v.s.DeleteTarget(ctx, tenant, thingID)
}

type attributeView struct{ s *Store }

func (v attributeView) Get(ctx context.Context, tenant, thingID string) (map[string]string, error) {
	return v.s.GetAttributes(ctx, tenant, thingID)
}

func (v attributeView) Save(ctx context.Context, tenant, thingID string, attrs map[string]string) error {
	return v.s.SaveAttributes(ctx, tenant, thingID, attrs)
}
