// Package hub composes the fleethub server: the MQTT ingress, the
// management HTTP API and their shared DMF engine.
package hub

import (
	"context"

	"golang.org/x/sync/errgroup"

	httpserver "github.com/fleethub-io/fleethub/internal/hub/server/http"
	mqttserver "github.com/fleethub-io/fleethub/internal/hub/server/mqtt"
	"github.com/fleethub-io/fleethub/internal/hub/storage"
	"github.com/fleethub-io/fleethub/pkg/log"
)

// HubServer runs the hub's transports until the context is canceled. If any
// transport fails the whole server stops.
type HubServer struct {
	ingress   *mqttserver.Server
	api       *httpserver.Server
	artifacts *storage.MinioResolver
}

// Run starts all transports and blocks until shutdown.
func (s *HubServer) Run(ctx context.Context) error {
	if err := s.artifacts.CheckBucket(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.ingress.Run(ctx) })
	g.Go(func() error { return s.api.Run(ctx) })

	err := g.Wait()
	log.Info("fleethub server stopped")
	return err
}
