// Package service composes the DMF engine: validation, the action state
// machine, the attribute merge engine, maintenance-aware dispatch and the
// dead-letter router, behind one handler the transports call into.
package service

import (
	"context"
	"time"

	"github.com/fleethub-io/fleethub/internal/hub/action"
	"github.com/fleethub-io/fleethub/internal/hub/attributes"
	"github.com/fleethub-io/fleethub/internal/hub/core"
	"github.com/fleethub-io/fleethub/internal/hub/core/model"
	"github.com/fleethub-io/fleethub/internal/hub/deadletter"
	"github.com/fleethub-io/fleethub/internal/hub/dispatch"
	"github.com/fleethub-io/fleethub/internal/hub/maintenance"
	"github.com/fleethub-io/fleethub/internal/hub/validate"
)

// Repositories bundles the persistence ports the service needs.
type Repositories struct {
	Tenants    core.TenantLookup
	Actions    core.ActionRepository
	Targets    core.TargetRepository
	Attributes core.AttributeRepository
}

// Service is the hub's DMF engine.
type Service struct {
	validator  *validate.Validator
	machine    *action.Machine
	attributes *attributes.Engine
	dispatcher *dispatch.Dispatcher
	deadletter *deadletter.Router

	repos     Repositories
	transport core.OutboundTransport
	now       func() time.Time
}

// Config carries the collaborators a Service is wired from.
type Config struct {
	Repos     Repositories
	Transport core.OutboundTransport
	Sink      core.DeadLetterSink
	Artifacts core.ArtifactResolver
	Notifier  core.AssignmentNotifier
	URLExpiry time.Duration
}

// New wires a Service from its collaborators.
func New(cfg Config) *Service {
	s := &Service{
		repos:     cfg.Repos,
		transport: cfg.Transport,
		now:       time.Now,
	}
	s.validator = validate.NewValidator(cfg.Repos.Tenants)
	s.attributes = attributes.NewEngine(cfg.Repos.Attributes)
	s.dispatcher = dispatch.NewDispatcher(cfg.Repos.Targets, cfg.Transport, cfg.Artifacts, cfg.URLExpiry)
	s.deadletter = deadletter.NewRouter(cfg.Sink)

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = noopNotifier{}
	}
	s.machine = action.NewMachine(cfg.Repos.Actions, notifier)
	return s
}

type noopNotifier struct{}

func (noopNotifier) OnActionTerminal(context.Context, string, model.ActionState) {}

// AssignmentRequest is a management-API request to deploy a distribution
// set to a target.
type AssignmentRequest struct {
	Tenant          string
	ThingID         string
	DistributionSet DistributionSetSpec
	Window          *maintenance.Window
}

// DistributionSetSpec names the software a new assignment deploys.
type DistributionSetSpec struct {
	ID      string
	Name    string
	Version string
	Modules []ModuleSpec
}

// ModuleSpec is one software module of an assignment request.
type ModuleSpec struct {
	ID        string
	Type      string
	Version   string
	Artifacts []ArtifactSpec
}

// ArtifactSpec references one stored artifact by object key.
type ArtifactSpec struct {
	Filename  string
	ObjectKey string
	Size      int64
	SHA1      string
	MD5       string
}
