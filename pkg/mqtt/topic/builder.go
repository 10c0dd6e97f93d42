package topic

import (
	"fmt"
)

// Constants defining the standard topic segments.
// These act as the protocol contract between the hub and managed devices.
// Changing these values will break compatibility with deployed devices.
const (
	// SuffixReceiver is the shared ingress topic all devices publish
	// DMF messages to.
	// Structure: {root}/receiver
	SuffixReceiver = "receiver"

	// SuffixCommand is the downstream per-device command topic.
	// Structure: {root}/command/{tenant}/{thingID}
	SuffixCommand = "command"

	// SuffixDeadLetter is where failed inbound messages are forwarded.
	// Structure: {root}/deadletter
	SuffixDeadLetter = "deadletter"
)

// Builder encapsulates the logic for constructing MQTT topic strings so the
// topology is defined in exactly one place.
type Builder struct {
	// root is the base namespace for all topics (e.g., "dmf/v1").
	root string
}

// NewBuilder creates a new Builder with the specified root namespace.
func NewBuilder(root string) *Builder {
	return &Builder{root: root}
}

// Receiver returns the ingress topic devices publish to.
// Direction: Device -> Hub
func (b *Builder) Receiver() string {
	return fmt.Sprintf("%s/%s", b.root, SuffixReceiver)
}

// ReceiverShared returns the shared-subscription filter for the ingress
// topic, so multiple hub replicas split the inbound stream.
// Result: $share/{group}/{root}/receiver
func (b *Builder) ReceiverShared(group string) string {
	return fmt.Sprintf("$share/%s/%s", group, b.Receiver())
}

// Command returns the per-device command topic.
// Direction: Hub -> Device
func (b *Builder) Command(tenant, thingID string) string {
	return fmt.Sprintf("%s/%s/%s/%s", b.root, SuffixCommand, tenant, thingID)
}

// DeadLetter returns the dead-letter topic for failed inbound messages.
func (b *Builder) DeadLetter() string {
	return fmt.Sprintf("%s/%s", b.root, SuffixDeadLetter)
}
