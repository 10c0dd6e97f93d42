package hub

import (
	"github.com/fleethub-io/fleethub/internal/hub/core/service"
	"github.com/fleethub-io/fleethub/internal/hub/inmem"
	"github.com/fleethub-io/fleethub/internal/hub/notifier"
	httpserver "github.com/fleethub-io/fleethub/internal/hub/server/http"
	mqttserver "github.com/fleethub-io/fleethub/internal/hub/server/mqtt"
	"github.com/fleethub-io/fleethub/internal/hub/storage"
	"github.com/fleethub-io/fleethub/pkg/mqtt"
	"github.com/fleethub-io/fleethub/pkg/mqtt/topic"
	"github.com/fleethub-io/fleethub/pkg/options"
)

// Config aggregates everything needed to construct a HubServer.
type Config struct {
	HttpOptions *options.HttpOptions
	MqttOptions *options.MqttOptions
	S3Options   *options.S3Options
	DmfOptions  *options.DmfOptions
}

// NewHubServer wires the full hub from configuration.
func (cfg *Config) NewHubServer() (*HubServer, error) {
	mqttClient, err := mqtt.NewClient(cfg.MqttOptions.ToClientConfig())
	if err != nil {
		return nil, err
	}

	topics := topic.NewBuilder(cfg.MqttOptions.TopicRoot)
	transport := notifier.NewMqttTransport(mqttClient, topics)

	artifacts, err := storage.NewMinioResolver(cfg.S3Options)
	if err != nil {
		return nil, err
	}

	store := inmem.NewStore(cfg.DmfOptions.Tenants)
	svc := service.New(service.Config{
		Repos: service.Repositories{
			Tenants:    store,
			Actions:    store,
			Targets:    store.Targets(),
			Attributes: store.Attributes(),
		},
		Transport: transport,
		Sink:      transport,
		Artifacts: artifacts,
		Notifier:  notifier.LogAssignmentNotifier{},
		URLExpiry: cfg.DmfOptions.ArtifactURLExpiry,
	})

	return &HubServer{
		ingress:   mqttserver.NewServer(mqttClient, topics, cfg.MqttOptions.ReceiverGroup, svc),
		api:       httpserver.NewServer(cfg.HttpOptions, svc),
		artifacts: artifacts,
	}, nil
}
