package mqtt

import (
	"context"
)

// Message is one MQTT v5 application message. The DMF contract rides on the
// v5 metadata: user properties carry the DMF headers, ResponseTopic and
// CorrelationData carry the reply address and correlation id.
type Message struct {
	Topic           string
	Payload         []byte
	ContentType     string
	ResponseTopic   string
	CorrelationData []byte
	UserProperties  map[string]string
}

// MessageHandler defines the callback function for processing received messages.
type MessageHandler func(ctx context.Context, msg *Message)

// Client defines the interface for a generic MQTT client.
// It abstracts the underlying paho implementation details.
type Client interface {
	// Start initiates the connection to the broker.
	// It is non-blocking and returns immediately. Use AwaitConnection to wait.
	Start(ctx context.Context) error

	// Disconnect cleanly closes the connection.
	Disconnect(ctx context.Context)

	// Publish sends a message to its Topic with the given QoS.
	Publish(ctx context.Context, msg *Message, qos int, retain bool) error

	// Subscribe registers a handler for a specific topic filter.
	// If the connection is lost and restored, the client re-subscribes.
	Subscribe(ctx context.Context, topic string, qos int, handler MessageHandler) error

	// Unsubscribe removes the handler and sends an UNSUBSCRIBE packet.
	Unsubscribe(ctx context.Context, topic string) error

	// AwaitConnection blocks until the client is connected to the broker.
	AwaitConnection(ctx context.Context) error
}
