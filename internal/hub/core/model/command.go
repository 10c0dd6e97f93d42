package model

import "github.com/fleethub-io/fleethub/pkg/dmf"

// CommandType defines the type of an outbound device command.
type CommandType string

const (
	CommandDownload           CommandType = "DOWNLOAD"
	CommandDownloadAndInstall CommandType = "DOWNLOAD_AND_INSTALL"
	CommandCancel             CommandType = "CANCEL"

	// CommandRequestAttributes asks a device to re-report its attributes,
	// typically after an action finished.
	CommandRequestAttributes CommandType = "REQUEST_ATTRIBUTES_UPDATE"
)

// OutboundCommand is one instruction addressed to a specific device.
// Exactly one command is emitted per triggering transition. CorrelationID
// is copied from the triggering message when device-triggered, or freshly
// generated for server-initiated commands.
type OutboundCommand struct {
	Type          CommandType
	Tenant        string
	ThingID       string
	ActionID      string
	CorrelationID string

	// SecurityToken and Modules are set for download commands only;
	// module artifact URLs are already resolved.
	SecurityToken string
	Modules       []dmf.SoftwareModule
}
