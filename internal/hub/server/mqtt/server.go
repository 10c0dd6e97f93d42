// Package mqtt runs the hub's DMF ingress: a shared subscription on the
// receiver topic feeding every inbound envelope into the engine.
package mqtt

import (
	"context"

	"github.com/fleethub-io/fleethub/internal/hub/core/service"
	"github.com/fleethub-io/fleethub/pkg/dmf"
	"github.com/fleethub-io/fleethub/pkg/log"
	"github.com/fleethub-io/fleethub/pkg/mqtt"
	"github.com/fleethub-io/fleethub/pkg/mqtt/topic"
)

// qosAtLeastOnce matches the delivery guarantee devices publish with.
const qosAtLeastOnce = 1

// Server subscribes to the receiver topic and hands every message to the
// DMF engine.
type Server struct {
	client mqtt.Client
	topics *topic.Builder
	group  string
	svc    *service.Service
}

// NewServer creates the ingress server. group names the shared-subscription
// group replicas join to split the inbound stream.
func NewServer(client mqtt.Client, topics *topic.Builder, group string, svc *service.Service) *Server {
	return &Server{client: client, topics: topics, group: group, svc: svc}
}

// Run connects, subscribes and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return err
	}
	if err := s.client.AwaitConnection(ctx); err != nil {
		return err
	}

	filter := s.topics.ReceiverShared(s.group)
	if err := s.client.Subscribe(ctx, filter, qosAtLeastOnce, s.onMessage); err != nil {
		return err
	}
	log.Info("DMF ingress subscribed", "filter", filter)

	<-ctx.Done()
	s.client.Disconnect(context.Background())
	log.Info("DMF ingress stopped")
	return nil
}

// onMessage converts one broker message into a DMF envelope and runs it
// through the engine. Failures are dead-lettered inside Handle; nothing is
// ever redelivered from here.
func (s *Server) onMessage(ctx context.Context, msg *mqtt.Message) {
	env := &dmf.Envelope{
		ContentType:   msg.ContentType,
		ReplyTo:       msg.ResponseTopic,
		CorrelationID: msg.CorrelationData,
		Headers:       msg.UserProperties,
		Body:          msg.Payload,
	}
	out := s.svc.Handle(ctx, env)
	if !out.Accepted {
		log.Info("inbound message rejected", "kind", out.DeadLetterKind, "topic", msg.Topic)
	}
}
