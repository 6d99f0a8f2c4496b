// Package statusserver exposes the engine state over HTTP: the mirrored
// vehicle snapshot, the parameter catalog, the effective rate configuration,
// action invocation and Prometheus metrics.
package statusserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/groundlink-io/groundlink/internal/engine/enginerr"
	"github.com/groundlink-io/groundlink/internal/engine/vehicle"
	"github.com/groundlink-io/groundlink/internal/pkg/metrics"
	"github.com/groundlink-io/groundlink/pkg/log"
	"github.com/groundlink-io/groundlink/pkg/options"
)

// onlineWindow is how recent the last heartbeat must be for the health
// endpoint to report the vehicle as connected.
const onlineWindow = 5 * time.Second

// Server serves the engine's HTTP surface.
type Server struct {
	vehicle *vehicle.Vehicle
	opts    *options.HttpOptions
	logger  log.Logger

	http *http.Server
}

func New(v *vehicle.Vehicle, opts *options.HttpOptions, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	s := &Server{vehicle: v, opts: opts, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/params", s.handleParams).Methods(http.MethodGet)
	r.HandleFunc("/rates", s.handleRates).Methods(http.MethodGet)
	r.HandleFunc("/modes", s.handleModes).Methods(http.MethodGet)
	r.HandleFunc("/actions/{name}", s.handleAction).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	s.http = &http.Server{
		Addr:         opts.Addr,
		Handler:      r,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	}
	return s
}

// Run serves until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen(s.opts.Network, s.opts.Addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()
	s.logger.Info("Status server listening", "addr", s.opts.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.vehicle.Snapshot())
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	received, declared := s.vehicle.Params().Progress()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"complete":   s.vehicle.Params().Complete(),
		"received":   received,
		"declared":   declared,
		"parameters": s.vehicle.Params().All(),
	})
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.vehicle.Rates().Merged())
}

func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.vehicle.Modes())
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	err := s.vehicle.Actions().Invoke(r.Context(), name)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, map[string]string{"action": name, "result": "accepted"})
	case enginerr.IsPrecondition(err):
		s.writeJSON(w, http.StatusNotFound, map[string]string{"action": name, "error": err.Error()})
	case enginerr.IsRejected(err):
		s.writeJSON(w, http.StatusConflict, map[string]string{"action": name, "error": err.Error()})
	case enginerr.IsTimeout(err):
		s.writeJSON(w, http.StatusGatewayTimeout, map[string]string{"action": name, "error": err.Error()})
	default:
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"action": name, "error": err.Error()})
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !s.vehicle.Online(onlineWindow) {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no vehicle"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("Failed to write response", "reason", err.Error())
	}
}
