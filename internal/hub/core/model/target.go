package model

import "time"

// Target is one managed remote device, registered via THING_CREATED.
type Target struct {
	Tenant  string `json:"tenant"`
	ThingID string `json:"thingId"`
	Name    string `json:"name,omitempty"`

	// ReplyTo is the address the device announced on its last registration.
	ReplyTo string `json:"replyTo,omitempty"`

	// SecurityToken authenticates the device's artifact downloads.
	SecurityToken string `json:"securityToken,omitempty"`

	LastPoll time.Time `json:"lastPoll"`
}
