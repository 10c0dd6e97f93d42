package dmf

// ActionUpdateStatus is the body of an UPDATE_ACTION_STATUS event.
// ActionID is externally assigned by the hub at assignment time and echoed
// back by the device on every report.
type ActionUpdateStatus struct {
	ActionID         string       `json:"actionId"`
	ActionStatus     ActionStatus `json:"actionStatus"`
	SoftwareModuleID string       `json:"softwareModuleId,omitempty"`
	Message          []string     `json:"message,omitempty"`
}

// AttributeUpdate is the body of an UPDATE_ATTRIBUTES event. Mode may be
// empty, in which case MERGE applies.
type AttributeUpdate struct {
	Attributes map[string]string `json:"attributes"`
	Mode       UpdateMode        `json:"mode,omitempty"`
}

// ThingCreated is the optional body of a THING_CREATED registration.
type ThingCreated struct {
	Name       string            `json:"name,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// DownloadAndUpdateRequest is the body of DOWNLOAD and DOWNLOAD_AND_INSTALL
// events sent to a device.
type DownloadAndUpdateRequest struct {
	ActionID            string           `json:"actionId"`
	TargetSecurityToken string           `json:"targetSecurityToken,omitempty"`
	SoftwareModules     []SoftwareModule `json:"softwareModules"`
}

// ActionRequest is the body of a CANCEL_DOWNLOAD event; it names the action
// the device is asked to abandon.
type ActionRequest struct {
	ActionID string `json:"actionId"`
}

// PingResponse is the body answered on the reply-to address of a PING.
type PingResponse struct {
	Timestamp int64 `json:"timestamp"`
}

// SoftwareModule describes one installable unit of a distribution set.
type SoftwareModule struct {
	ModuleID      string     `json:"moduleId"`
	ModuleType    string     `json:"moduleType"`
	ModuleVersion string     `json:"moduleVersion"`
	Artifacts     []Artifact `json:"artifacts,omitempty"`
}

// Artifact points a device at one downloadable file of a software module.
// URLs are resolved by the hub (typically presigned object-store links)
// immediately before dispatch and are short-lived.
type Artifact struct {
	Filename string            `json:"filename"`
	URLs     map[string]string `json:"urls"`
	Size     int64             `json:"size,omitempty"`
	Hashes   ArtifactHashes    `json:"hashes,omitempty"`
}

// ArtifactHashes carries the checksums a device verifies after download.
type ArtifactHashes struct {
	SHA1 string `json:"sha1,omitempty"`
	MD5  string `json:"md5,omitempty"`
}
