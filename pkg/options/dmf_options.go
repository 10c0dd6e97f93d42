package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*DmfOptions)(nil)

// DmfOptions tunes the DMF ingestion engine itself, as opposed to the
// transports carrying it.
type DmfOptions struct {
	// Tenants is the static list of tenants the hub accepts messages for.
	// Messages for any other tenant are dead-lettered.
	Tenants []string `json:"tenants" mapstructure:"tenants"`

	// ArtifactURLExpiry bounds the lifetime of presigned artifact
	// download URLs embedded in outbound commands.
	ArtifactURLExpiry time.Duration `json:"artifact-url-expiry" mapstructure:"artifact-url-expiry"`
}

// NewDmfOptions creates a new DmfOptions with default values.
func NewDmfOptions() *DmfOptions {
	return &DmfOptions{
		Tenants:           []string{"DEFAULT"},
		ArtifactURLExpiry: 1 * time.Hour,
	}
}

func (o *DmfOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if len(o.Tenants) == 0 {
		errors = append(errors, fmt.Errorf("at least one tenant must be configured"))
	}

	return errors
}

func (o *DmfOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringSliceVar(&o.Tenants, "dmf.tenants", o.Tenants, "Tenants the hub accepts DMF messages for.")
	fs.DurationVar(&o.ArtifactURLExpiry, "dmf.artifact-url-expiry", o.ArtifactURLExpiry, "Lifetime of presigned artifact download URLs.")
}
