// Package dmf defines the Device Management Federation wire contract:
// message header keys, the closed type/topic/status enumerations and the
// JSON payload schemas exchanged between the hub and managed devices.
//
// The enumerations are deliberately closed sets. Routing is done by
// exhaustive switches over these values, so adding a topic is a
// compile-visible change rather than a stringly-typed one.
package dmf

import "fmt"

// Header keys carried as MQTT v5 user properties on every DMF message.
const (
	HeaderType    = "type"
	HeaderTopic   = "topic"
	HeaderTenant  = "tenant"
	HeaderThingID = "thingId"
)

// ContentTypeJSON is the only serialization format the hub accepts.
const ContentTypeJSON = "application/json"

// MessageType classifies a DMF message at the outermost level.
type MessageType string

const (
	TypeEvent        MessageType = "EVENT"
	TypeThingCreated MessageType = "THING_CREATED"
	TypeThingRemoved MessageType = "THING_REMOVED"
	TypePing         MessageType = "PING"
	TypePingResponse MessageType = "PING_RESPONSE"
)

// ParseMessageType maps a raw header value onto the closed MessageType set.
func ParseMessageType(s string) (MessageType, error) {
	switch MessageType(s) {
	case TypeEvent, TypeThingCreated, TypeThingRemoved, TypePing, TypePingResponse:
		return MessageType(s), nil
	}
	return "", fmt.Errorf("unknown message type %q", s)
}

// EventTopic refines messages of type EVENT.
type EventTopic string

const (
	// Device -> hub.
	TopicUpdateActionStatus EventTopic = "UPDATE_ACTION_STATUS"
	TopicUpdateAttributes   EventTopic = "UPDATE_ATTRIBUTES"

	// Hub -> device.
	TopicDownloadAndInstall      EventTopic = "DOWNLOAD_AND_INSTALL"
	TopicDownload                EventTopic = "DOWNLOAD"
	TopicCancelDownload          EventTopic = "CANCEL_DOWNLOAD"
	TopicRequestAttributesUpdate EventTopic = "REQUEST_ATTRIBUTES_UPDATE"
)

// ParseEventTopic maps a raw header value onto the closed EventTopic set.
func ParseEventTopic(s string) (EventTopic, error) {
	switch EventTopic(s) {
	case TopicUpdateActionStatus, TopicUpdateAttributes,
		TopicDownloadAndInstall, TopicDownload,
		TopicCancelDownload, TopicRequestAttributesUpdate:
		return EventTopic(s), nil
	}
	return "", fmt.Errorf("unknown event topic %q", s)
}

// ActionStatus is a device-reported status for an in-flight action.
type ActionStatus string

const (
	StatusDownload       ActionStatus = "DOWNLOAD"
	StatusDownloaded     ActionStatus = "DOWNLOADED"
	StatusRetrieved      ActionStatus = "RETRIEVED"
	StatusRunning        ActionStatus = "RUNNING"
	StatusCanceled       ActionStatus = "CANCELED"
	StatusCancelRejected ActionStatus = "CANCEL_REJECTED"
	StatusFinished       ActionStatus = "FINISHED"
	StatusError          ActionStatus = "ERROR"
	StatusWarning        ActionStatus = "WARNING"
)

// ParseActionStatus maps a payload value onto the closed ActionStatus set.
func ParseActionStatus(s string) (ActionStatus, error) {
	switch ActionStatus(s) {
	case StatusDownload, StatusDownloaded, StatusRetrieved, StatusRunning,
		StatusCanceled, StatusCancelRejected, StatusFinished, StatusError,
		StatusWarning:
		return ActionStatus(s), nil
	}
	return "", fmt.Errorf("unknown action status %q", s)
}

// UpdateMode selects the merge policy for an attribute update.
type UpdateMode string

const (
	ModeMerge   UpdateMode = "MERGE"
	ModeReplace UpdateMode = "REPLACE"
	ModeRemove  UpdateMode = "REMOVE"
)

// ParseUpdateMode maps a payload value onto the closed UpdateMode set.
// The empty string defaults to MERGE.
func ParseUpdateMode(s string) (UpdateMode, error) {
	switch UpdateMode(s) {
	case "":
		return ModeMerge, nil
	case ModeMerge, ModeReplace, ModeRemove:
		return UpdateMode(s), nil
	}
	return "", fmt.Errorf("unknown update mode %q", s)
}
