// Package deadletter routes failed inbound messages to the dead-letter
// sink. Every failed message is forwarded exactly once, with a failure kind
// derived from the error that rejected it; the router itself never fails
// message processing.
package deadletter

import (
	"context"
	"errors"

	"github.com/fleethub-io/fleethub/internal/hub/action"
	"github.com/fleethub-io/fleethub/internal/hub/attributes"
	"github.com/fleethub-io/fleethub/internal/hub/core"
	"github.com/fleethub-io/fleethub/internal/hub/validate"
	"github.com/fleethub-io/fleethub/internal/pkg/metrics"
	"github.com/fleethub-io/fleethub/pkg/dmf"
	"github.com/fleethub-io/fleethub/pkg/log"
)

// Failure kinds attached to dead-lettered messages.
const (
	KindValidation        = "validation"
	KindNotFound          = "not_found"
	KindIllegalTransition = "illegal_transition"
	KindInternal          = "internal"
)

// Router classifies processing errors and forwards the offending envelope.
type Router struct {
	sink core.DeadLetterSink
}

// NewRouter creates a Router over the given sink.
func NewRouter(sink core.DeadLetterSink) *Router {
	return &Router{sink: sink}
}

// Route forwards the envelope with the failure kind and reason derived from
// err. A sink failure is logged, not propagated: the message is already
// lost to normal processing and must not wedge the ingress loop.
func (r *Router) Route(ctx context.Context, env *dmf.Envelope, err error) string {
	kind := Classify(err)
	metrics.DeadLettersTotal.WithLabelValues(kind).Inc()

	if sinkErr := r.sink.Forward(ctx, env, err.Error()); sinkErr != nil {
		log.Error(sinkErr, "dead-letter forward failed", "kind", kind, "cause", err.Error())
	} else {
		log.Info("dead-lettered message", "kind", kind, "cause", err.Error())
	}
	return kind
}

// Classify maps a processing error onto a failure kind.
func Classify(err error) string {
	var validationErr *validate.Error
	var attributeErr *attributes.Error
	switch {
	case errors.As(err, &validationErr), errors.As(err, &attributeErr):
		return KindValidation
	case errors.Is(err, core.ErrNotFound):
		return KindNotFound
	case errors.Is(err, action.ErrIllegalTransition):
		return KindIllegalTransition
	default:
		return KindInternal
	}
}
