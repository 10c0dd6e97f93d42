package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fleethub-io/fleethub/internal/hub/core/model"
	"github.com/fleethub-io/fleethub/internal/hub/core/service"
	"github.com/fleethub-io/fleethub/internal/hub/inmem"
	"github.com/fleethub-io/fleethub/pkg/dmf"
)

type nopTransport struct{}

func (nopTransport) Send(context.Context, *model.OutboundCommand) error { return nil }
func (nopTransport) Pong(context.Context, string, []byte) error         { return nil }

type nopSink struct{}

func (nopSink) Forward(context.Context, *dmf.Envelope, string) error { return nil }

type nopResolver struct{}

func (nopResolver) ResolveURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	return "https://store.example/" + objectKey, nil
}

func newTestRouter(t *testing.T) (http.Handler, *inmem.Store) {
	t.Helper()
	store := inmem.NewStore([]string{"DEFAULT"})
	svc := service.New(service.Config{
		Repos: service.Repositories{
			Tenants:    store,
			Actions:    store,
			Targets:    store.Targets(),
			Attributes: store.Attributes(),
		},
		Transport: nopTransport{},
		Sink:      nopSink{},
		Artifacts: nopResolver{},
		URLExpiry: time.Hour,
	})
	return newRouter(svc), store
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

func TestAssignmentLifecycleOverHTTP(t *testing.T) {
	router, store := newTestRouter(t)
	_ = store.SaveTarget(context.Background(), &model.Target{Tenant: "DEFAULT", ThingID: "device42"})

	body := `{
		"distributionSet": {
			"id": "ds-1", "name": "fw", "version": "1.2",
			"modules": [{"id": "m1", "type": "os", "version": "1.2",
				"artifacts": [{"filename": "fw.bin", "objectKey": "DEFAULT/fw.bin"}]}]
		},
		"maintenanceWindow": {"schedule": "0 2 * * *", "duration": "1h", "timezone": "UTC"}
	}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/api/v1/DEFAULT/targets/device42/assignments", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST assignment = %d: %s", rec.Code, rec.Body)
	}

	var created model.Action
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("response: %v", err)
	}
	if created.ID == "" || created.State != model.ActionCreated {
		t.Fatalf("created = %+v", created)
	}
	if created.Window == nil || created.Window.Duration != time.Hour {
		t.Errorf("window = %+v", created.Window)
	}

	// Read it back.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/actions/"+created.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET action = %d", rec.Code)
	}

	// Cancel it.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/actions/"+created.ID, nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("DELETE action = %d: %s", rec.Code, rec.Body)
	}
	var canceled model.Action
	_ = json.Unmarshal(rec.Body.Bytes(), &canceled)
	if canceled.State != model.ActionCanceling {
		t.Errorf("state = %s, want CANCELING", canceled.State)
	}
}

func TestAssignUnknownTargetReturns404(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/api/v1/DEFAULT/targets/ghost/assignments",
		strings.NewReader(`{"distributionSet":{"id":"ds-1"}}`)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("POST for unknown target = %d, want 404", rec.Code)
	}
}

func TestGetUnknownActionReturns404(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/actions/999", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET unknown action = %d, want 404", rec.Code)
	}
}

func TestCancelTerminalActionReturns409(t *testing.T) {
	router, store := newTestRouter(t)
	_ = store.SaveTarget(context.Background(), &model.Target{Tenant: "DEFAULT", ThingID: "device42"})
	id, _ := store.Create(context.Background(), &model.Action{
		Tenant: "DEFAULT", TargetID: "device42", State: model.ActionFinished,
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/actions/"+id, nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("DELETE terminal action = %d, want 409", rec.Code)
	}
}

func TestAssignMalformedBodyReturns400(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/api/v1/DEFAULT/targets/device42/assignments", strings.NewReader("not json")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST malformed = %d, want 400", rec.Code)
	}
}
