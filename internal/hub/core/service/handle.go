package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fleethub-io/fleethub/internal/hub/core"
	"github.com/fleethub-io/fleethub/internal/hub/core/model"
	"github.com/fleethub-io/fleethub/internal/pkg/metrics"
	"github.com/fleethub-io/fleethub/pkg/dmf"
	"github.com/fleethub-io/fleethub/pkg/log"
)

// HandleOutcome reports what happened to one inbound message. A message is
// either accepted or dead-lettered; Handle itself never returns an error
// because the dead-letter path terminates all failures.
type HandleOutcome struct {
	Accepted       bool
	DeadLetterKind string
}

// Handle processes one raw inbound envelope end to end.
func (s *Service) Handle(ctx context.Context, env *dmf.Envelope) HandleOutcome {
	// Label with the parsed type only; raw header values are untrusted and
	// would blow up metric cardinality.
	msgType := "invalid"
	if parsed, err := dmf.ParseMessageType(env.Header(dmf.HeaderType)); err == nil {
		msgType = string(parsed)
	}
	metrics.MessagesReceivedTotal.WithLabelValues(msgType).Inc()

	in, err := s.validator.Validate(ctx, env)
	if err == nil {
		err = s.process(ctx, in)
	}
	if err != nil {
		kind := s.deadletter.Route(ctx, env, err)
		return HandleOutcome{DeadLetterKind: kind}
	}
	return HandleOutcome{Accepted: true}
}

func (s *Service) process(ctx context.Context, in *dmf.Inbound) error {
	switch in.Type {
	case dmf.TypePing:
		return s.transport.Pong(ctx, in.ReplyTo, []byte(in.CorrelationID))
	case dmf.TypeThingCreated:
		return s.registerTarget(ctx, in)
	case dmf.TypeThingRemoved:
		return s.repos.Targets.Delete(ctx, in.Tenant, in.ThingID)
	case dmf.TypeEvent:
		switch in.Topic {
		case dmf.TopicUpdateActionStatus:
			return s.applyStatusUpdate(ctx, in)
		case dmf.TopicUpdateAttributes:
			_, err := s.attributes.Apply(ctx, in.Tenant, in.ThingID, in.AttributeUpdate)
			return err
		}
	}
	return fmt.Errorf("unroutable message type %s", in.Type)
}

// registerTarget upserts the device and re-dispatches its oldest in-flight
// action, so a device reconnecting after downtime immediately learns about
// work assigned while it was away.
func (s *Service) registerTarget(ctx context.Context, in *dmf.Inbound) error {
	target := &model.Target{
		Tenant:   in.Tenant,
		ThingID:  in.ThingID,
		ReplyTo:  in.ReplyTo,
		LastPoll: s.now(),
	}
	if existing, err := s.repos.Targets.Get(ctx, in.Tenant, in.ThingID); err == nil {
		target.Name = existing.Name
		target.SecurityToken = existing.SecurityToken
	}
	if in.Registration != nil && in.Registration.Name != "" {
		target.Name = in.Registration.Name
	}
	if err := s.repos.Targets.Save(ctx, target); err != nil {
		return err
	}

	if in.Registration != nil && len(in.Registration.Attributes) > 0 {
		update := &dmf.AttributeUpdate{Mode: dmf.ModeMerge, Attributes: in.Registration.Attributes}
		if _, err := s.attributes.Apply(ctx, in.Tenant, in.ThingID, update); err != nil {
			return err
		}
	}

	act, err := s.repos.Actions.OldestActive(ctx, in.Tenant, in.ThingID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return err
	}
	log.Info("re-dispatching pending action to registered target",
		"tenant", in.Tenant, "thingId", in.ThingID, "actionId", act.ID)
	if act.State == model.ActionCanceling {
		return s.dispatcher.DispatchCancel(ctx, act, in.CorrelationID)
	}
	return s.dispatcher.DispatchUpdate(ctx, act, in.CorrelationID)
}

func (s *Service) applyStatusUpdate(ctx context.Context, in *dmf.Inbound) error {
	upd := in.StatusUpdate
	res, err := s.machine.ApplyStatusUpdate(ctx, in.Tenant, in.ThingID, upd.ActionID, upd.ActionStatus, upd.Message, in.CorrelationID)
	if err != nil {
		return err
	}

	// A finished update is the natural moment to refresh the device's
	// reported attributes.
	if res.EnteredTerminal && res.Action.State == model.ActionFinished {
		if err := s.dispatcher.RequestAttributes(ctx, in.Tenant, in.ThingID); err != nil {
			log.Error(err, "attribute refresh request failed",
				"tenant", in.Tenant, "thingId", in.ThingID)
		}
	}
	return nil
}
