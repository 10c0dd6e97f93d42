package notifier

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fleethub-io/fleethub/internal/hub/core/model"
	"github.com/fleethub-io/fleethub/pkg/dmf"
	"github.com/fleethub-io/fleethub/pkg/mqtt"
	"github.com/fleethub-io/fleethub/pkg/mqtt/topic"
)

type captureClient struct {
	published []*mqtt.Message
	qos       []int
}

func (c *captureClient) Start(context.Context) error               { return nil }
func (c *captureClient) Disconnect(context.Context)                {}
func (c *captureClient) AwaitConnection(context.Context) error     { return nil }
func (c *captureClient) Unsubscribe(context.Context, string) error { return nil }
func (c *captureClient) Subscribe(context.Context, string, int, mqtt.MessageHandler) error {
	return nil
}

func (c *captureClient) Publish(_ context.Context, msg *mqtt.Message, qos int, _ bool) error {
	c.published = append(c.published, msg)
	c.qos = append(c.qos, qos)
	return nil
}

func newTestTransport() (*MqttTransport, *captureClient) {
	client := &captureClient{}
	return NewMqttTransport(client, topic.NewBuilder("dmf/v1")), client
}

func TestSendDownloadAndInstall(t *testing.T) {
	transport, client := newTestTransport()

	err := transport.Send(context.Background(), &model.OutboundCommand{
		Type:          model.CommandDownloadAndInstall,
		Tenant:        "DEFAULT",
		ThingID:       "device42",
		ActionID:      "7",
		CorrelationID: "corr-1",
		SecurityToken: "tok",
		Modules: []dmf.SoftwareModule{{
			ModuleID: "m1", ModuleType: "os", ModuleVersion: "1.2",
		}},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	msg := client.published[0]
	if msg.Topic != "dmf/v1/command/DEFAULT/device42" {
		t.Errorf("topic = %q", msg.Topic)
	}
	if msg.ResponseTopic != "dmf/v1/receiver" {
		t.Errorf("response topic = %q", msg.ResponseTopic)
	}
	if string(msg.CorrelationData) != "corr-1" {
		t.Errorf("correlation = %q", msg.CorrelationData)
	}
	if msg.UserProperties[dmf.HeaderType] != "EVENT" ||
		msg.UserProperties[dmf.HeaderTopic] != "DOWNLOAD_AND_INSTALL" ||
		msg.UserProperties[dmf.HeaderTenant] != "DEFAULT" ||
		msg.UserProperties[dmf.HeaderThingID] != "device42" {
		t.Errorf("headers = %v", msg.UserProperties)
	}
	if client.qos[0] != 1 {
		t.Errorf("qos = %d, want 1", client.qos[0])
	}

	var body dmf.DownloadAndUpdateRequest
	if err := json.Unmarshal(msg.Payload, &body); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if body.ActionID != "7" || body.TargetSecurityToken != "tok" || len(body.SoftwareModules) != 1 {
		t.Errorf("body = %+v", body)
	}
}

func TestSendCancel(t *testing.T) {
	transport, client := newTestTransport()

	err := transport.Send(context.Background(), &model.OutboundCommand{
		Type: model.CommandCancel, Tenant: "DEFAULT", ThingID: "device42", ActionID: "7",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	msg := client.published[0]
	if msg.UserProperties[dmf.HeaderTopic] != "CANCEL_DOWNLOAD" {
		t.Errorf("topic header = %q", msg.UserProperties[dmf.HeaderTopic])
	}
	var body dmf.ActionRequest
	if err := json.Unmarshal(msg.Payload, &body); err != nil || body.ActionID != "7" {
		t.Errorf("body = %+v, err = %v", body, err)
	}
}

func TestSendRequestAttributes(t *testing.T) {
	transport, client := newTestTransport()

	err := transport.Send(context.Background(), &model.OutboundCommand{
		Type: model.CommandRequestAttributes, Tenant: "DEFAULT", ThingID: "device42",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	msg := client.published[0]
	if msg.UserProperties[dmf.HeaderTopic] != "REQUEST_ATTRIBUTES_UPDATE" {
		t.Errorf("topic header = %q", msg.UserProperties[dmf.HeaderTopic])
	}
	if len(msg.Payload) != 0 {
		t.Errorf("payload = %q, want empty", msg.Payload)
	}
}

func TestPong(t *testing.T) {
	transport, client := newTestTransport()

	if err := transport.Pong(context.Background(), "dmf/v1/replies/device42", []byte("ping-1")); err != nil {
		t.Fatalf("Pong: %v", err)
	}
	msg := client.published[0]
	if msg.Topic != "dmf/v1/replies/device42" {
		t.Errorf("topic = %q", msg.Topic)
	}
	if msg.UserProperties[dmf.HeaderType] != "PING_RESPONSE" {
		t.Errorf("type header = %q", msg.UserProperties[dmf.HeaderType])
	}
	if string(msg.CorrelationData) != "ping-1" {
		t.Errorf("correlation = %q", msg.CorrelationData)
	}
	var body dmf.PingResponse
	if err := json.Unmarshal(msg.Payload, &body); err != nil || body.Timestamp == 0 {
		t.Errorf("body = %+v, err = %v", body, err)
	}
}

func TestForward(t *testing.T) {
	transport, client := newTestTransport()

	env := &dmf.Envelope{
		ContentType:   dmf.ContentTypeJSON,
		ReplyTo:       "dmf/v1/replies/device42",
		CorrelationID: []byte("corr-1"),
		Headers:       map[string]string{dmf.HeaderTenant: "DEFAULT"},
		Body:          []byte(`{"x":1}`),
	}
	if err := transport.Forward(context.Background(), env, "tenant missing"); err != nil {
		t.Fatalf("Forward: %v", err)
	}

	msg := client.published[0]
	if msg.Topic != "dmf/v1/deadletter" {
		t.Errorf("topic = %q", msg.Topic)
	}
	if msg.UserProperties["failureReason"] != "tenant missing" {
		t.Errorf("failure reason = %q", msg.UserProperties["failureReason"])
	}
	if msg.UserProperties[dmf.HeaderTenant] != "DEFAULT" {
		t.Error("original headers not preserved")
	}
	if string(msg.Payload) != `{"x":1}` {
		t.Errorf("payload = %q", msg.Payload)
	}
}
