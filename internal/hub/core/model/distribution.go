package model

// DistributionSet is a versioned bundle of software modules assigned to a
// target as one action.
type DistributionSet struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Version string           `json:"version"`
	Modules []SoftwareModule `json:"modules"`
}

// SoftwareModule is one installable unit of a distribution set.
type SoftwareModule struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Version   string     `json:"version"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
}

// Artifact references a stored file by object key. Download URLs are
// resolved against the artifact store at dispatch time, not persisted.
type Artifact struct {
	Filename  string `json:"filename"`
	ObjectKey string `json:"objectKey"`
	Size      int64  `json:"size,omitempty"`
	SHA1      string `json:"sha1,omitempty"`
	MD5       string `json:"md5,omitempty"`
}
