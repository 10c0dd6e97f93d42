// Package attributes implements the device attribute merge engine. An
// update is validated in full before any key is touched, so a partially
// invalid update never leaves a half-applied attribute set.
package attributes

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/fleethub-io/fleethub/internal/hub/core"
	"github.com/fleethub-io/fleethub/internal/pkg/keylock"
	"github.com/fleethub-io/fleethub/pkg/dmf"
	"github.com/fleethub-io/fleethub/pkg/log"
)

const (
	maxKeyLen   = 32
	maxValueLen = 128
)

// Error is an attribute validation failure.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return e.Reason }

// Engine applies attribute updates to a target's stored attribute set.
// Updates for one target are serialized through a keyed lock so concurrent
// MERGE and REMOVE updates cannot interleave mid-apply.
type Engine struct {
	attributes core.AttributeRepository
	locks      *keylock.KeyLock
}

// NewEngine creates an Engine over the given repository.
func NewEngine(attributes core.AttributeRepository) *Engine {
	return &Engine{attributes: attributes, locks: keylock.New()}
}

// Apply validates and applies one attribute update for the target. The
// update is atomic: either every entry passes validation and the whole
// update is applied, or nothing changes.
func (e *Engine) Apply(ctx context.Context, tenant, thingID string, update *dmf.AttributeUpdate) (map[string]string, error) {
	if err := validate(update.Attributes); err != nil {
		return nil, err
	}

	unlock := e.locks.Lock("target/" + tenant + "/" + thingID)
	defer unlock()

	current, err := e.attributes.Get(ctx, tenant, thingID)
	if err != nil {
		return nil, err
	}

	next := apply(current, update)
	if err := e.attributes.Save(ctx, tenant, thingID, next); err != nil {
		return nil, err
	}

	log.Info("applied attribute update",
		"tenant", tenant, "thingId", thingID, "mode", update.Mode, "entries", len(update.Attributes))
	return next, nil
}

func validate(attrs map[string]string) error {
	for key, value := range attrs {
		if key == "" {
			return &Error{Reason: "attribute key must not be empty"}
		}
		// Limits count characters, not bytes.
		if utf8.RuneCountInString(key) > maxKeyLen {
			return &Error{Reason: fmt.Sprintf("attribute key %q exceeds %d characters", key, maxKeyLen)}
		}
		if utf8.RuneCountInString(value) > maxValueLen {
			return &Error{Reason: fmt.Sprintf("value of attribute %q exceeds %d characters", key, maxValueLen)}
		}
	}
	return nil
}

func apply(current map[string]string, update *dmf.AttributeUpdate) map[string]string {
	next := map[string]string{}

	switch update.Mode {
	case dmf.ModeReplace:
		for k, v := range update.Attributes {
			next[k] = v
		}
	case dmf.ModeRemove:
		for k, v := range current {
			next[k] = v
		}
		for k := range update.Attributes {
			delete(next, k)
		}
	default: // MERGE
		for k, v := range current {
			next[k] = v
		}
		for k, v := range update.Attributes {
			next[k] = v
		}
	}
	return next
}
