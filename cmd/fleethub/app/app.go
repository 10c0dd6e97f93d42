// Package app builds the fleethub server command.
package app

import (
	"fmt"

	"github.com/fleethub-io/fleethub/cmd/fleethub/app/options"
	"github.com/fleethub-io/fleethub/pkg/app"
	"github.com/fleethub-io/fleethub/pkg/log"
)

const (
	commandName = "fleethub"
	commandDesc = `The fleethub server ingests DMF messages from managed devices over MQTT,
drives software update actions through their lifecycle, maintains
device-reported attributes, and exposes a management API for assigning
distribution sets and canceling in-flight updates. Messages that cannot
be processed are forwarded to the dead-letter topic.`
)

// NewApp creates the fleethub server application.
func NewApp() *app.App {
	opts := options.NewServerOptions()
	return app.NewApp(
		commandName,
		"Launch the fleethub device management server",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
}

func run(opts *options.ServerOptions) app.RunFunc {
	return func() error {
		log.Init(opts.Log)
		defer log.Sync()

		ctx := app.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		server, err := cfg.NewHubServer()
		if err != nil {
			return fmt.Errorf("create hub server: %w", err)
		}

		return server.Run(ctx)
	}
}
