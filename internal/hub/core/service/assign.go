package service

import (
	"context"
	"fmt"

	"github.com/fleethub-io/fleethub/internal/hub/core/model"
	"github.com/fleethub-io/fleethub/pkg/log"
)

// Assign creates a new deployment action for a registered target and
// dispatches the first download command. The target must exist; the window,
// if any, is validated up front so later evaluation cannot fail.
func (s *Service) Assign(ctx context.Context, req *AssignmentRequest) (*model.Action, error) {
	if err := req.Window.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repos.Targets.Get(ctx, req.Tenant, req.ThingID); err != nil {
		return nil, fmt.Errorf("target %s/%s: %w", req.Tenant, req.ThingID, err)
	}

	act := &model.Action{
		Tenant:          req.Tenant,
		TargetID:        req.ThingID,
		DistributionSet: toDistributionSet(req.DistributionSet),
		State:           model.ActionCreated,
		Window:          req.Window,
		CreatedAt:       s.now(),
	}
	id, err := s.repos.Actions.Create(ctx, act)
	if err != nil {
		return nil, err
	}
	act.ID = id

	log.Info("assigned distribution set",
		"tenant", req.Tenant, "thingId", req.ThingID, "actionId", id,
		"distributionSet", req.DistributionSet.ID)

	if err := s.dispatcher.DispatchUpdate(ctx, act, ""); err != nil {
		// The action exists; the device will be caught up on its next
		// registration.
		log.Error(err, "initial dispatch failed", "actionId", id)
	}
	return act, nil
}

// Cancel requests cancellation of an in-flight action. The action moves to
// CANCELING and the device is told to abandon it; the action only becomes
// CANCELED once the device confirms.
func (s *Service) Cancel(ctx context.Context, actionID string) (*model.Action, error) {
	res, err := s.machine.RequestCancel(ctx, actionID, "")
	if err != nil {
		return nil, err
	}
	if res.Transitioned {
		if err := s.dispatcher.DispatchCancel(ctx, res.Action, ""); err != nil {
			log.Error(err, "cancel dispatch failed", "actionId", actionID)
		}
	}
	return res.Action, nil
}

// GetAction retrieves an action with its full history.
func (s *Service) GetAction(ctx context.Context, actionID string) (*model.Action, error) {
	return s.repos.Actions.Get(ctx, actionID)
}

func toDistributionSet(spec DistributionSetSpec) model.DistributionSet {
	ds := model.DistributionSet{ID: spec.ID, Name: spec.Name, Version: spec.Version}
	for _, mod := range spec.Modules {
		m := model.SoftwareModule{ID: mod.ID, Type: mod.Type, Version: mod.Version}
		for _, art := range mod.Artifacts {
			m.Artifacts = append(m.Artifacts, model.Artifact{
				Filename:  art.Filename,
				ObjectKey: art.ObjectKey,
				Size:      art.Size,
				SHA1:      art.SHA1,
				MD5:       art.MD5,
			})
		}
		ds.Modules = append(ds.Modules, m)
	}
	return ds
}
