package notifier

import (
	"context"

	"github.com/fleethub-io/fleethub/internal/hub/core/model"
	"github.com/fleethub-io/fleethub/pkg/log"
)

// LogAssignmentNotifier records terminal actions in the hub log. It stands
// in where no downstream assignment system is attached.
type LogAssignmentNotifier struct{}

// OnActionTerminal implements core.AssignmentNotifier.
func (LogAssignmentNotifier) OnActionTerminal(_ context.Context, actionID string, finalState model.ActionState) {
	log.Info("action reached terminal state", "actionId", actionID, "finalState", finalState)
}
