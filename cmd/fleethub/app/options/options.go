// Package options assembles the fleethub server's flag-bound configuration.
package options

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/fleethub-io/fleethub/internal/hub"
	"github.com/fleethub-io/fleethub/pkg/app"
	"github.com/fleethub-io/fleethub/pkg/log"
	"github.com/fleethub-io/fleethub/pkg/options"
)

var _ app.Options = (*ServerOptions)(nil)

// ServerOptions bundles every option group of the fleethub server.
type ServerOptions struct {
	HttpOptions *options.HttpOptions `json:"http" mapstructure:"http"`
	MqttOptions *options.MqttOptions `json:"mqtt" mapstructure:"mqtt"`
	S3Options   *options.S3Options   `json:"s3" mapstructure:"s3"`
	DmfOptions  *options.DmfOptions  `json:"dmf" mapstructure:"dmf"`
	Log         *log.Options         `json:"log" mapstructure:"log"`
}

// NewServerOptions creates ServerOptions with defaults.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HttpOptions: options.NewHttpOptions(),
		MqttOptions: options.NewMqttOptions(),
		S3Options:   options.NewS3Options(),
		DmfOptions:  options.NewDmfOptions(),
		Log:         log.NewOptions(),
	}
}

// AddFlags registers all option groups.
func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	o.HttpOptions.AddFlags(fs)
	o.MqttOptions.AddFlags(fs)
	o.S3Options.AddFlags(fs)
	o.DmfOptions.AddFlags(fs)
	o.Log.AddFlags(fs)
}

// Complete fills in derived defaults.
func (o *ServerOptions) Complete() error {
	if o.MqttOptions.ClientID == "" {
		o.MqttOptions.ClientID = "fleethub"
	}
	return nil
}

// Validate aggregates validation over all option groups.
func (o *ServerOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.S3Options.Validate()...)
	errs = append(errs, o.DmfOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return errors.Join(errs...)
}

// Config converts the options into the hub's runtime configuration.
func (o *ServerOptions) Config() (*hub.Config, error) {
	return &hub.Config{
		HttpOptions: o.HttpOptions,
		MqttOptions: o.MqttOptions,
		S3Options:   o.S3Options,
		DmfOptions:  o.DmfOptions,
	}, nil
}
