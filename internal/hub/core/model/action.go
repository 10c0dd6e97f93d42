package model

import (
	"time"

	"github.com/fleethub-io/fleethub/internal/hub/maintenance"
)

// ActionState is one state of the deployment action lifecycle. The
// device-reported states share their names with the DMF status values;
// CREATED and CANCELING exist only server-side.
type ActionState string

const (
	ActionCreated    ActionState = "CREATED"
	ActionRunning    ActionState = "RUNNING"
	ActionDownload   ActionState = "DOWNLOAD"
	ActionDownloaded ActionState = "DOWNLOADED"
	ActionRetrieved  ActionState = "RETRIEVED"
	ActionWarning    ActionState = "WARNING"
	ActionCanceling  ActionState = "CANCELING"
	ActionCanceled   ActionState = "CANCELED"
	ActionFinished   ActionState = "FINISHED"
	ActionError      ActionState = "ERROR"
)

// Terminal reports whether the state ends the action lifecycle. Terminal
// actions are never transitioned again; retention/archival is external.
func (s ActionState) Terminal() bool {
	switch s {
	case ActionFinished, ActionError, ActionCanceled:
		return true
	}
	return false
}

// HistoryStatus identifies what produced a history entry: one of the
// device-reported DMF statuses, or the server-side cancel request. It is
// deliberately wider than the wire status enum.
type HistoryStatus string

// HistoryCancelRequested marks the entry appended when cancellation is
// requested through the management API.
const HistoryCancelRequested HistoryStatus = "CANCEL_REQUESTED"

// HistoryEntry is one immutable audit record of an action. The correlation
// id of the triggering message is kept so reports belonging to one exchange
// can be traced end to end.
type HistoryEntry struct {
	Status        HistoryStatus `json:"status"`
	Timestamp     time.Time     `json:"timestamp"`
	Messages      []string      `json:"messages,omitempty"`
	CorrelationID string        `json:"correlationId,omitempty"`
}

// Action is one in-flight (or terminal) deployment of a distribution set to
// a target. The hub only ever transitions actions; it never deletes them.
type Action struct {
	ID              string              `json:"id"`
	Tenant          string              `json:"tenant"`
	TargetID        string              `json:"targetId"`
	DistributionSet DistributionSet     `json:"distributionSet"`
	State           ActionState         `json:"state"`
	Window          *maintenance.Window `json:"maintenanceWindow,omitempty"`
	History         []HistoryEntry      `json:"history,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}
