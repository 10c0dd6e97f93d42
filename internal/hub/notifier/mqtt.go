// Package notifier holds the hub's outbound adapters: the MQTT transport
// that carries commands, pongs and dead letters to the broker, and a log
// notifier for assignment lifecycle events.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleethub-io/fleethub/internal/hub/core/model"
	"github.com/fleethub-io/fleethub/pkg/dmf"
	"github.com/fleethub-io/fleethub/pkg/mqtt"
	"github.com/fleethub-io/fleethub/pkg/mqtt/topic"
)

// qosAtLeastOnce is used for every hub-originated message; command loss is
// worse than command duplication, devices de-duplicate by action id.
const qosAtLeastOnce = 1

// headerFailureReason annotates dead-lettered messages with the rejection
// cause.
const headerFailureReason = "failureReason"

// MqttTransport implements core.OutboundTransport and core.DeadLetterSink
// over the hub's MQTT client.
type MqttTransport struct {
	client mqtt.Client
	topics *topic.Builder
}

// NewMqttTransport creates a transport publishing through the given client.
func NewMqttTransport(client mqtt.Client, topics *topic.Builder) *MqttTransport {
	return &MqttTransport{client: client, topics: topics}
}

// Send publishes one command to the device's command topic.
func (t *MqttTransport) Send(ctx context.Context, cmd *model.OutboundCommand) error {
	eventTopic, body, err := encodeCommand(cmd)
	if err != nil {
		return err
	}

	msg := &mqtt.Message{
		Topic:           t.topics.Command(cmd.Tenant, cmd.ThingID),
		Payload:         body,
		ContentType:     dmf.ContentTypeJSON,
		ResponseTopic:   t.topics.Receiver(),
		CorrelationData: []byte(cmd.CorrelationID),
		UserProperties: map[string]string{
			dmf.HeaderType:    string(dmf.TypeEvent),
			dmf.HeaderTopic:   string(eventTopic),
			dmf.HeaderTenant:  cmd.Tenant,
			dmf.HeaderThingID: cmd.ThingID,
		},
	}
	return t.client.Publish(ctx, msg, qosAtLeastOnce, false)
}

// Pong answers a PING on the device's reply address.
func (t *MqttTransport) Pong(ctx context.Context, replyTo string, correlation []byte) error {
	body, err := json.Marshal(dmf.PingResponse{Timestamp: time.Now().UnixMilli()})
	if err != nil {
		return err
	}
	msg := &mqtt.Message{
		Topic:           replyTo,
		Payload:         body,
		ContentType:     dmf.ContentTypeJSON,
		CorrelationData: correlation,
		UserProperties: map[string]string{
			dmf.HeaderType: string(dmf.TypePingResponse),
		},
	}
	return t.client.Publish(ctx, msg, qosAtLeastOnce, false)
}

// Forward republishes a failed envelope on the dead-letter topic, original
// headers intact plus the failure reason.
func (t *MqttTransport) Forward(ctx context.Context, env *dmf.Envelope, reason string) error {
	props := map[string]string{headerFailureReason: reason}
	for k, v := range env.Headers {
		props[k] = v
	}
	msg := &mqtt.Message{
		Topic:           t.topics.DeadLetter(),
		Payload:         env.Body,
		ContentType:     env.ContentType,
		ResponseTopic:   env.ReplyTo,
		CorrelationData: env.CorrelationID,
		UserProperties:  props,
	}
	return t.client.Publish(ctx, msg, qosAtLeastOnce, false)
}

// encodeCommand maps a command onto its DMF event topic and JSON body.
func encodeCommand(cmd *model.OutboundCommand) (dmf.EventTopic, []byte, error) {
	switch cmd.Type {
	case model.CommandDownload, model.CommandDownloadAndInstall:
		eventTopic := dmf.TopicDownload
		if cmd.Type == model.CommandDownloadAndInstall {
			eventTopic = dmf.TopicDownloadAndInstall
		}
		body, err := json.Marshal(dmf.DownloadAndUpdateRequest{
			ActionID:            cmd.ActionID,
			TargetSecurityToken: cmd.SecurityToken,
			SoftwareModules:     cmd.Modules,
		})
		return eventTopic, body, err
	case model.CommandCancel:
		body, err := json.Marshal(dmf.ActionRequest{ActionID: cmd.ActionID})
		return dmf.TopicCancelDownload, body, err
	case model.CommandRequestAttributes:
		return dmf.TopicRequestAttributesUpdate, nil, nil
	}
	return "", nil, fmt.Errorf("unencodable command type %q", cmd.Type)
}
