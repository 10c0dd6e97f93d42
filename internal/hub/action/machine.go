// Package action implements the deployment action lifecycle. Every
// device-reported status is applied through a state machine; the machine
// decides whether the report advances the action, is an accepted duplicate,
// or is an illegal transition that must be dead-lettered.
package action

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"

	"github.com/fleethub-io/fleethub/internal/hub/core"
	"github.com/fleethub-io/fleethub/internal/hub/core/model"
	"github.com/fleethub-io/fleethub/internal/pkg/keylock"
	"github.com/fleethub-io/fleethub/internal/pkg/metrics"
	"github.com/fleethub-io/fleethub/pkg/dmf"
	"github.com/fleethub-io/fleethub/pkg/log"
)

// ErrIllegalTransition is returned when a status report is not legal from
// the action's current state, e.g. CANCELED for an action that was never
// asked to cancel.
var ErrIllegalTransition = errors.New("illegal action state transition")

// eventCancelRequested is the hub-internal event fired when a cancellation
// is requested through the management API. It shares the transition table
// with the device-reported statuses but never arrives on the wire.
const eventCancelRequested = string(model.HistoryCancelRequested)

// historyMessage prefixes every server-appended history entry.
const historyMessage = "DMF status update"

// activeStates are the states a device may report normal progress from.
var activeStates = []string{
	string(model.ActionCreated),
	string(model.ActionRunning),
	string(model.ActionDownload),
	string(model.ActionDownloaded),
	string(model.ActionRetrieved),
	string(model.ActionWarning),
}

// nonTerminalStates additionally include CANCELING, from which a device may
// still report FINISHED or ERROR for work it had already started.
var nonTerminalStates = append(append([]string{}, activeStates...), string(model.ActionCanceling))

// transitions is the full lifecycle table. Self-loops on terminal states
// make duplicate terminal reports a no-op instead of an error; looplab
// reports them as NoTransitionError, which Apply treats as accepted.
func transitions() fsm.Events {
	events := fsm.Events{
		{Name: string(dmf.StatusFinished), Src: appendCopy(nonTerminalStates, string(model.ActionFinished)), Dst: string(model.ActionFinished)},
		{Name: string(dmf.StatusError), Src: appendCopy(nonTerminalStates, string(model.ActionError)), Dst: string(model.ActionError)},
		{Name: string(dmf.StatusCanceled), Src: []string{string(model.ActionCanceling)}, Dst: string(model.ActionCanceled)},
		{Name: string(dmf.StatusCancelRejected), Src: []string{string(model.ActionCanceling)}, Dst: string(model.ActionRunning)},
		{Name: eventCancelRequested, Src: appendCopy(activeStates, string(model.ActionCanceling)), Dst: string(model.ActionCanceling)},
	}

	// Intermediate statuses advance active actions but must not pull a
	// canceling action out of CANCELING; from there they only add history.
	intermediate := map[dmf.ActionStatus]model.ActionState{
		dmf.StatusRunning:    model.ActionRunning,
		dmf.StatusDownload:   model.ActionDownload,
		dmf.StatusDownloaded: model.ActionDownloaded,
		dmf.StatusRetrieved:  model.ActionRetrieved,
		dmf.StatusWarning:    model.ActionWarning,
	}
	for status, dst := range intermediate {
		events = append(events,
			fsm.EventDesc{Name: string(status), Src: activeStates, Dst: string(dst)},
			fsm.EventDesc{Name: string(status), Src: []string{string(model.ActionCanceling)}, Dst: string(model.ActionCanceling)},
		)
	}
	return events
}

func appendCopy(base []string, extra ...string) []string {
	return append(append([]string{}, base...), extra...)
}

// Result describes the outcome of applying one status report.
type Result struct {
	Action          *model.Action
	Transitioned    bool
	EnteredTerminal bool
}

// Machine applies device status reports to persisted actions. Processing
// for one action id is serialized through a keyed lock; the load, the
// transition decision and the save form one critical section.
type Machine struct {
	actions  core.ActionRepository
	notifier core.AssignmentNotifier
	locks    *keylock.KeyLock
	now      func() time.Time
}

// NewMachine creates a Machine over the given repository and notifier.
func NewMachine(actions core.ActionRepository, notifier core.AssignmentNotifier) *Machine {
	return &Machine{
		actions:  actions,
		notifier: notifier,
		locks:    keylock.New(),
		now:      time.Now,
	}
}

// ApplyStatusUpdate applies one device-reported status to the action. The
// report is scoped to the reporting tenant and device: an action belonging
// to another tenant or target is not found, so a device cannot drive a
// foreign action by guessing its id.
// Accepted duplicates (a terminal status re-reported on an already terminal
// action) return Transitioned=false with no error; they are recorded in the
// history but fire no notification.
func (m *Machine) ApplyStatusUpdate(ctx context.Context, tenant, thingID, actionID string, status dmf.ActionStatus, messages []string, correlationID string) (*Result, error) {
	return m.apply(ctx, tenant, thingID, actionID, string(status), messages, correlationID)
}

// RequestCancel moves the action into CANCELING on behalf of the management
// API, which addresses actions by id across tenants. Requesting cancellation
// of an already canceling action is accepted and does nothing.
func (m *Machine) RequestCancel(ctx context.Context, actionID, correlationID string) (*Result, error) {
	return m.apply(ctx, "", "", actionID, eventCancelRequested, nil, correlationID)
}

func (m *Machine) apply(ctx context.Context, tenant, thingID, actionID, event string, messages []string, correlationID string) (*Result, error) {
	unlock := m.locks.Lock("action/" + actionID)
	defer unlock()

	act, err := m.actions.Get(ctx, actionID)
	if err != nil {
		return nil, err
	}
	// A mismatched report must not reveal that the action exists.
	if tenant != "" && (act.Tenant != tenant || act.TargetID != thingID) {
		return nil, fmt.Errorf("action %s for %s/%s: %w", actionID, tenant, thingID, core.ErrNotFound)
	}

	prev := act.State
	next, transitioned, err := m.decide(ctx, prev, event)
	if err != nil {
		return nil, fmt.Errorf("action %s in state %s rejects %s: %w", actionID, prev, event, ErrIllegalTransition)
	}

	act.State = next
	act.History = append(act.History, model.HistoryEntry{
		Status:        model.HistoryStatus(event),
		Timestamp:     m.now(),
		Messages:      append([]string{historyMessage}, messages...),
		CorrelationID: correlationID,
	})

	if err := m.actions.Save(ctx, act); err != nil {
		return nil, err
	}

	enteredTerminal := !prev.Terminal() && next.Terminal()
	if enteredTerminal {
		metrics.ActionsTerminalTotal.WithLabelValues(string(next)).Inc()
		if m.notifier != nil {
			m.notifier.OnActionTerminal(ctx, actionID, next)
		}
	}

	log.Info("applied action status",
		"actionId", actionID, "event", event, "from", prev, "to", next, "transitioned", transitioned)

	return &Result{Action: act, Transitioned: transitioned, EnteredTerminal: enteredTerminal}, nil
}

// decide runs the transition table from the current state. A looplab
// NoTransitionError means the event was legal but self-looping: accepted,
// no state change.
func (m *Machine) decide(ctx context.Context, current model.ActionState, event string) (model.ActionState, bool, error) {
	machine := fsm.NewFSM(string(current), transitions(), fsm.Callbacks{})

	err := machine.Event(ctx, event)
	if err == nil {
		return model.ActionState(machine.Current()), true, nil
	}

	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return current, false, nil
	}
	return current, false, err
}
