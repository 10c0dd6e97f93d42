package core

import (
	"context"

	"github.com/fleethub-io/fleethub/internal/hub/core/model"
	"github.com/fleethub-io/fleethub/pkg/dmf"
)

// AssignmentNotifier is told when an action reaches a terminal state, so
// the deployment/assignment subsystem can close its books. Fired exactly
// once per action.
type AssignmentNotifier interface {
	OnActionTerminal(ctx context.Context, actionID string, finalState model.ActionState)
}

// OutboundTransport delivers commands and replies to devices. Send errors
// surface to the dispatcher's caller; this engine never retries them.
type OutboundTransport interface {
	// Send delivers one command to its addressed device.
	Send(ctx context.Context, cmd *model.OutboundCommand) error

	// Pong answers a PING on the given reply address, echoing the
	// correlation data.
	Pong(ctx context.Context, replyTo string, correlation []byte) error
}

// DeadLetterSink receives failed inbound messages. The router guarantees
// one Forward call per failed message.
type DeadLetterSink interface {
	Forward(ctx context.Context, env *dmf.Envelope, reason string) error
}
