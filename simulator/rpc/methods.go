package rpc

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/chains"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/engine"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/models"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xcmsim_requests_total",
		Help: "API requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	routeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xcmsim_route_failures_total",
		Help: "Completed runs whose route failed, by failing chain slot.",
	}, []string{"endpoint", "chain"})
)

// SimulatorServer exposes the engine over JSON endpoints.
type SimulatorServer struct {
	engine *engine.Engine
	dir    *chains.Directory
}

// NewSimulatorServer creates a new SimulatorServer
func NewSimulatorServer(eng *engine.Engine, dir *chains.Directory) *SimulatorServer {
	return &SimulatorServer{engine: eng, dir: dir}
}

// Routes mounts the API endpoints on a chi router.
func (s *SimulatorServer) Routes(mux *chi.Mux) {
	mux.Post("/v1/simulate", s.handleSimulate)
	mux.Post("/v1/estimate", s.handleEstimate)
	mux.Get("/v1/chains", s.handleChains)
	mux.Get("/v1/chains/{name}", s.handleChainInfo)
}

func (s *SimulatorServer) handleSimulate(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeTransfer(w, r, "simulate")
	if !ok {
		return
	}

	result, err := s.engine.SimulateTransfer(r.Context(), p)
	if err != nil {
		requestsTotal.WithLabelValues("simulate", "error").Inc()
		writeJSON(w, http.StatusBadGateway, models.SimulateResponse{
			Success: false, ErrorMessage: err.Error(),
		})
		return
	}

	requestsTotal.WithLabelValues("simulate", "ok").Inc()
	if result.FailureChain != "" {
		routeFailures.WithLabelValues("simulate", result.FailureChain).Inc()
	}
	writeJSON(w, http.StatusOK, models.SimulateResponse{Success: true, Result: result})
}

func (s *SimulatorServer) handleEstimate(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeTransfer(w, r, "estimate")
	if !ok {
		return
	}

	result, err := s.engine.EstimateTransferFee(r.Context(), p)
	if err != nil {
		requestsTotal.WithLabelValues("estimate", "error").Inc()
		writeJSON(w, http.StatusBadGateway, models.EstimateResponse{
			Success: false, ErrorMessage: err.Error(),
		})
		return
	}

	requestsTotal.WithLabelValues("estimate", "ok").Inc()
	if result.FailureChain != "" {
		routeFailures.WithLabelValues("estimate", result.FailureChain).Inc()
	}
	writeJSON(w, http.StatusOK, models.EstimateResponse{Success: true, Result: result})
}

func (s *SimulatorServer) handleChains(w http.ResponseWriter, _ *http.Request) {
	names := s.dir.All()
	sort.Strings(names)
	requestsTotal.WithLabelValues("chains", "ok").Inc()
	writeJSON(w, http.StatusOK, models.SupportedChainsResponse{Chains: names})
}

func (s *SimulatorServer) handleChainInfo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	chain, err := s.dir.Get(name)
	if err != nil {
		requestsTotal.WithLabelValues("chain_info", "not_found").Inc()
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	requestsTotal.WithLabelValues("chain_info", "ok").Inc()
	writeJSON(w, http.StatusOK, models.ChainInfoResponse{
		Name:           chain.Name,
		ParaID:         chain.ParaID,
		Relay:          chain.Relay,
		Tier:           string(chain.Tier),
		SupportsDryRun: chain.SupportsDryRun,
		EVM:            chain.EVM,
		Assets:         s.engine.Registry().Symbols(chain.Name),
	})
}

// decodeTransfer parses and validates the shared transfer request body.
// The address format each end expects depends on the chain: EVM and
// external chains take hex accounts.
func (s *SimulatorServer) decodeTransfer(w http.ResponseWriter, r *http.Request, endpoint string) (engine.TransferParams, bool) {
	var req models.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestsTotal.WithLabelValues(endpoint, "bad_request").Inc()
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return engine.TransferParams{}, false
	}

	origin, err := s.dir.Get(req.Origin)
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "bad_request").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return engine.TransferParams{}, false
	}
	dest, err := s.dir.Get(req.Destination)
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "bad_request").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return engine.TransferParams{}, false
	}

	p, err := req.ToParams(origin.EVM || origin.IsExternal(), dest.EVM || dest.IsExternal())
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "bad_request").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return engine.TransferParams{}, false
	}
	return p, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		Logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success":      false,
		"errorMessage": message,
	})
}
