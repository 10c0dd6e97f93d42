// Package http serves the hub's management API: assignments, action
// inspection and cancellation, plus health and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleethub-io/fleethub/internal/hub/action"
	"github.com/fleethub-io/fleethub/internal/hub/core"
	"github.com/fleethub-io/fleethub/internal/hub/core/service"
	"github.com/fleethub-io/fleethub/internal/hub/maintenance"
	"github.com/fleethub-io/fleethub/internal/pkg/metrics"
	"github.com/fleethub-io/fleethub/pkg/log"
	"github.com/fleethub-io/fleethub/pkg/options"
)

// Server is the management HTTP server.
type Server struct {
	srv *http.Server
}

// NewServer builds the management API around the DMF engine.
func NewServer(opts *options.HttpOptions, svc *service.Service) *Server {
	return &Server{srv: &http.Server{
		Addr:         opts.Addr,
		Handler:      newRouter(svc),
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	}}
}

func newRouter(svc *service.Service) *mux.Router {
	h := &handler{svc: svc}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", ok).Methods(http.MethodGet)
	r.HandleFunc("/readyz", ok).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/{tenant}/targets/{thingId}/assignments", h.assign).Methods(http.MethodPost)
	api.HandleFunc("/actions/{id}", h.getAction).Methods(http.MethodGet)
	api.HandleFunc("/actions/{id}", h.cancelAction).Methods(http.MethodDelete)
	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}()

	log.Info("management API listening", "address", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type handler struct {
	svc *service.Service
}

// assignmentBody is the JSON request creating a new assignment.
type assignmentBody struct {
	DistributionSet struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Version string `json:"version"`
		Modules []struct {
			ID        string `json:"id"`
			Type      string `json:"type"`
			Version   string `json:"version"`
			Artifacts []struct {
				Filename  string `json:"filename"`
				ObjectKey string `json:"objectKey"`
				Size      int64  `json:"size"`
				SHA1      string `json:"sha1"`
				MD5       string `json:"md5"`
			} `json:"artifacts"`
		} `json:"modules"`
	} `json:"distributionSet"`

	MaintenanceWindow *struct {
		Schedule string `json:"schedule"`
		Duration string `json:"duration"`
		Timezone string `json:"timezone"`
	} `json:"maintenanceWindow"`
}

func (h *handler) assign(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var body assignmentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	req := &service.AssignmentRequest{
		Tenant:  vars["tenant"],
		ThingID: vars["thingId"],
	}
	req.DistributionSet = service.DistributionSetSpec{
		ID:      body.DistributionSet.ID,
		Name:    body.DistributionSet.Name,
		Version: body.DistributionSet.Version,
	}
	for _, m := range body.DistributionSet.Modules {
		spec := service.ModuleSpec{ID: m.ID, Type: m.Type, Version: m.Version}
		for _, a := range m.Artifacts {
			spec.Artifacts = append(spec.Artifacts, service.ArtifactSpec{
				Filename: a.Filename, ObjectKey: a.ObjectKey, Size: a.Size, SHA1: a.SHA1, MD5: a.MD5,
			})
		}
		req.DistributionSet.Modules = append(req.DistributionSet.Modules, spec)
	}

	if body.MaintenanceWindow != nil {
		duration, err := time.ParseDuration(body.MaintenanceWindow.Duration)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid maintenance window duration: "+err.Error())
			return
		}
		req.Window = &maintenance.Window{
			Schedule: body.MaintenanceWindow.Schedule,
			Duration: duration,
			Timezone: body.MaintenanceWindow.Timezone,
		}
	}

	act, err := h.svc.Assign(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, act)
}

func (h *handler) getAction(w http.ResponseWriter, r *http.Request) {
	act, err := h.svc.GetAction(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, act)
}

func (h *handler) cancelAction(w http.ResponseWriter, r *http.Request) {
	act, err := h.svc.Cancel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, act)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, action.ErrIllegalTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
