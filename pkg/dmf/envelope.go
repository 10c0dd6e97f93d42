package dmf

// Envelope is one raw inbound DMF message as delivered by the transport,
// before any validation. Headers hold the DMF user properties; ReplyTo and
// CorrelationID come from the transport-native response-topic and
// correlation-data fields.
type Envelope struct {
	ContentType   string
	ReplyTo       string
	CorrelationID []byte
	Headers       map[string]string
	Body          []byte
}

// Header returns the named user property or "" when absent.
func (e *Envelope) Header(key string) string {
	if e.Headers == nil {
		return ""
	}
	return e.Headers[key]
}

// Inbound is a fully validated inbound message. Exactly one of the payload
// pointers is set, matching Type/Topic.
type Inbound struct {
	Type          MessageType
	Topic         EventTopic
	Tenant        string
	ThingID       string
	ReplyTo       string
	CorrelationID string

	StatusUpdate    *ActionUpdateStatus
	AttributeUpdate *AttributeUpdate
	Registration    *ThingCreated
}
