// Package validate enforces the DMF envelope contract on every inbound
// message. Checks run in a fixed order and short-circuit on the first
// failure; a failed message is never retried here, ownership passes to the
// dead-letter router. Validation is side-effect-free so it is safely
// replay-idempotent.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/fleethub-io/fleethub/internal/hub/core"
	"github.com/fleethub-io/fleethub/pkg/dmf"
)

// Error is a validation failure with a human-readable reason.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func errorf(format string, args ...any) error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

// Validator checks raw envelopes against the DMF contract. Tenant
// resolution is delegated; an unknown tenant is a validation failure, not a
// domain failure.
type Validator struct {
	tenants core.TenantLookup
}

// NewValidator creates a Validator backed by the given tenant lookup.
func NewValidator(tenants core.TenantLookup) *Validator {
	return &Validator{tenants: tenants}
}

// Validate checks the envelope and returns the typed inbound message, or a
// *Error describing the first violated rule.
func (v *Validator) Validate(ctx context.Context, env *dmf.Envelope) (*dmf.Inbound, error) {
	if env.ContentType != dmf.ContentTypeJSON {
		return nil, errorf("unsupported content type %q, expected %q", env.ContentType, dmf.ContentTypeJSON)
	}

	if env.ReplyTo == "" {
		return nil, errorf("reply-to address missing")
	}

	thingID := env.Header(dmf.HeaderThingID)
	if thingID == "" {
		return nil, errorf("header %q missing or empty", dmf.HeaderThingID)
	}
	if strings.ContainsFunc(thingID, unicode.IsSpace) {
		return nil, errorf("header %q contains whitespace: %q", dmf.HeaderThingID, thingID)
	}

	tenant := env.Header(dmf.HeaderTenant)
	if tenant == "" {
		return nil, errorf("header %q missing or empty", dmf.HeaderTenant)
	}
	if !v.tenants.Exists(ctx, tenant) {
		return nil, errorf("tenant %q does not exist", tenant)
	}

	rawType := env.Header(dmf.HeaderType)
	if rawType == "" {
		return nil, errorf("header %q missing or empty", dmf.HeaderType)
	}
	msgType, err := dmf.ParseMessageType(rawType)
	if err != nil {
		return nil, errorf("header %q invalid: %v", dmf.HeaderType, err)
	}

	in := &dmf.Inbound{
		Type:          msgType,
		Tenant:        tenant,
		ThingID:       thingID,
		ReplyTo:       env.ReplyTo,
		CorrelationID: string(env.CorrelationID),
	}

	switch msgType {
	case dmf.TypeEvent:
		if err := v.validateEvent(env, in); err != nil {
			return nil, err
		}
	case dmf.TypeThingCreated:
		if err := decodeRegistration(env.Body, in); err != nil {
			return nil, err
		}
	case dmf.TypeThingRemoved, dmf.TypePing:
		// No body contract.
	case dmf.TypePingResponse:
		return nil, errorf("message type %s is hub-originated and not accepted inbound", msgType)
	}

	return in, nil
}

func (v *Validator) validateEvent(env *dmf.Envelope, in *dmf.Inbound) error {
	rawTopic := env.Header(dmf.HeaderTopic)
	if rawTopic == "" {
		return errorf("header %q missing or empty", dmf.HeaderTopic)
	}
	topic, err := dmf.ParseEventTopic(rawTopic)
	if err != nil {
		return errorf("header %q invalid: %v", dmf.HeaderTopic, err)
	}
	in.Topic = topic

	switch topic {
	case dmf.TopicUpdateActionStatus:
		return decodeStatusUpdate(env.Body, in)
	case dmf.TopicUpdateAttributes:
		return decodeAttributeUpdate(env.Body, in)
	default:
		return errorf("event topic %s is hub-originated and not accepted inbound", topic)
	}
}

func decodeStatusUpdate(body []byte, in *dmf.Inbound) error {
	if len(body) == 0 {
		return errorf("update action status body missing")
	}

	var payload dmf.ActionUpdateStatus
	if err := json.Unmarshal(body, &payload); err != nil {
		return errorf("update action status body malformed: %v", err)
	}
	if payload.ActionID == "" {
		return errorf("update action status without action id")
	}
	if _, err := dmf.ParseActionStatus(string(payload.ActionStatus)); err != nil {
		return errorf("update action status body invalid: %v", err)
	}

	in.StatusUpdate = &payload
	return nil
}

func decodeAttributeUpdate(body []byte, in *dmf.Inbound) error {
	if len(body) == 0 {
		return errorf("attribute update body missing")
	}

	var payload dmf.AttributeUpdate
	if err := json.Unmarshal(body, &payload); err != nil {
		return errorf("attribute update body malformed: %v", err)
	}
	mode, err := dmf.ParseUpdateMode(string(payload.Mode))
	if err != nil {
		return errorf("attribute update body invalid: %v", err)
	}
	payload.Mode = mode
	if payload.Attributes == nil {
		payload.Attributes = map[string]string{}
	}

	in.AttributeUpdate = &payload
	return nil
}

func decodeRegistration(body []byte, in *dmf.Inbound) error {
	in.Registration = &dmf.ThingCreated{}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, in.Registration); err != nil {
		return errorf("registration body malformed: %v", err)
	}
	return nil
}
