// Package dispatch turns persisted actions into outbound device commands.
// The dispatcher owns the maintenance-window decision and the resolution of
// artifact object keys into download URLs; it emits at most one command per
// call.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fleethub-io/fleethub/internal/hub/core"
	"github.com/fleethub-io/fleethub/internal/hub/core/model"
	"github.com/fleethub-io/fleethub/internal/hub/maintenance"
	"github.com/fleethub-io/fleethub/internal/pkg/metrics"
	"github.com/fleethub-io/fleethub/pkg/dmf"
	"github.com/fleethub-io/fleethub/pkg/log"
)

// Dispatcher builds and sends device commands for actions.
type Dispatcher struct {
	targets   core.TargetRepository
	transport core.OutboundTransport
	artifacts core.ArtifactResolver
	urlExpiry time.Duration
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher. urlExpiry bounds the validity of
// resolved artifact download URLs.
func NewDispatcher(targets core.TargetRepository, transport core.OutboundTransport, artifacts core.ArtifactResolver, urlExpiry time.Duration) *Dispatcher {
	return &Dispatcher{
		targets:   targets,
		transport: transport,
		artifacts: artifacts,
		urlExpiry: urlExpiry,
		now:       time.Now,
	}
}

// DispatchUpdate evaluates the action's maintenance window and sends the
// matching download command. Before an open window only the download is
// permitted; within it the device may install. An exhausted window sends
// nothing. correlationID may be empty, in which case a fresh one is
// generated.
func (d *Dispatcher) DispatchUpdate(ctx context.Context, act *model.Action, correlationID string) error {
	eligibility := maintenance.Evaluate(act.Window, d.now())

	var cmdType model.CommandType
	switch eligibility {
	case maintenance.Within:
		cmdType = model.CommandDownloadAndInstall
	case maintenance.Before:
		cmdType = model.CommandDownload
	case maintenance.AfterDone:
		log.Info("maintenance window exhausted, holding dispatch",
			"tenant", act.Tenant, "thingId", act.TargetID, "actionId", act.ID)
		return nil
	}

	target, err := d.targets.Get(ctx, act.Tenant, act.TargetID)
	if err != nil {
		return fmt.Errorf("resolve target %s/%s: %w", act.Tenant, act.TargetID, err)
	}

	modules, err := d.resolveModules(ctx, act.DistributionSet.Modules)
	if err != nil {
		return err
	}

	return d.send(ctx, &model.OutboundCommand{
		Type:          cmdType,
		Tenant:        act.Tenant,
		ThingID:       act.TargetID,
		ActionID:      act.ID,
		CorrelationID: correlationID,
		SecurityToken: target.SecurityToken,
		Modules:       modules,
	})
}

// DispatchCancel asks the device to abandon the action.
func (d *Dispatcher) DispatchCancel(ctx context.Context, act *model.Action, correlationID string) error {
	return d.send(ctx, &model.OutboundCommand{
		Type:          model.CommandCancel,
		Tenant:        act.Tenant,
		ThingID:       act.TargetID,
		ActionID:      act.ID,
		CorrelationID: correlationID,
	})
}

// RequestAttributes asks the device to re-report its attribute set.
func (d *Dispatcher) RequestAttributes(ctx context.Context, tenant, thingID string) error {
	return d.send(ctx, &model.OutboundCommand{
		Type:    model.CommandRequestAttributes,
		Tenant:  tenant,
		ThingID: thingID,
	})
}

func (d *Dispatcher) send(ctx context.Context, cmd *model.OutboundCommand) error {
	if cmd.CorrelationID == "" {
		cmd.CorrelationID = uuid.NewString()
	}
	if err := d.transport.Send(ctx, cmd); err != nil {
		return fmt.Errorf("send %s to %s/%s: %w", cmd.Type, cmd.Tenant, cmd.ThingID, err)
	}
	metrics.CommandsSentTotal.WithLabelValues(string(cmd.Type)).Inc()
	log.Info("dispatched command",
		"type", cmd.Type, "tenant", cmd.Tenant, "thingId", cmd.ThingID,
		"actionId", cmd.ActionID, "correlationId", cmd.CorrelationID)
	return nil
}

// resolveModules maps stored modules onto their wire form, presigning each
// artifact's object key.
func (d *Dispatcher) resolveModules(ctx context.Context, modules []model.SoftwareModule) ([]dmf.SoftwareModule, error) {
	out := make([]dmf.SoftwareModule, 0, len(modules))
	for _, mod := range modules {
		wire := dmf.SoftwareModule{
			ModuleID:      mod.ID,
			ModuleType:    mod.Type,
			ModuleVersion: mod.Version,
		}
		for _, art := range mod.Artifacts {
			url, err := d.artifacts.ResolveURL(ctx, art.ObjectKey, d.urlExpiry)
			if err != nil {
				return nil, fmt.Errorf("resolve artifact %q: %w", art.ObjectKey, err)
			}
			wire.Artifacts = append(wire.Artifacts, dmf.Artifact{
				Filename: art.Filename,
				URLs:     map[string]string{"HTTPS": url},
				Size:     art.Size,
				Hashes:   dmf.ArtifactHashes{SHA1: art.SHA1, MD5: art.MD5},
			})
		}
		out = append(out, wire)
	}
	return out, nil
}
