package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	assemblyengine "asamblea/contexts/governance/assembly-engine"
	enginedomainerrors "asamblea/contexts/governance/assembly-engine/domain/errors"
	enginehttp "asamblea/contexts/governance/assembly-engine/transport/http"

	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "asamblea/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	validate *validator.Validate
	engine   assemblyengine.Module
}

func New(engine assemblyengine.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		engine:   engine,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/assemblies", s.handleScheduleAssembly)
	s.mux.HandleFunc("GET /api/assemblies/{assembly_id}", s.handleGetAssembly)
	s.mux.HandleFunc("GET /api/assemblies/{assembly_id}/summary", s.handleAssemblySummary)
	s.mux.HandleFunc("POST /api/assemblies/{assembly_id}/start", s.handleStartAssembly)
	s.mux.HandleFunc("POST /api/assemblies/{assembly_id}/complete", s.handleCompleteAssembly)
	s.mux.HandleFunc("POST /api/assemblies/{assembly_id}/cancel", s.handleCancelAssembly)
	s.mux.HandleFunc("POST /api/assemblies/{assembly_id}/attendance", s.handleCheckIn)
	s.mux.HandleFunc("POST /api/assemblies/{assembly_id}/attendance/checkout", s.handleCheckOut)
	s.mux.HandleFunc("GET /api/assemblies/{assembly_id}/quorum", s.handleQuorum)
	s.mux.HandleFunc("POST /api/assemblies/{assembly_id}/votings", s.handleOpenVoting)

	s.mux.HandleFunc("POST /api/votings/{voting_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("POST /api/votings/{voting_id}/close", s.handleCloseVoting)
	s.mux.HandleFunc("POST /api/votings/{voting_id}/cancel", s.handleCancelVoting)
	s.mux.HandleFunc("GET /api/votings/{voting_id}/results", s.handleVotingResults)
}

func (s *Server) handleScheduleAssembly(w http.ResponseWriter, r *http.Request) {
	var req enginehttp.ScheduleAssemblyRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := s.engine.Handler.ScheduleAssemblyHandler(r.Context(), req)
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetAssembly(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Handler.GetAssemblyHandler(r.Context(), r.PathValue("assembly_id"))
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssemblySummary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Handler.AssemblySummaryHandler(r.Context(), r.PathValue("assembly_id"))
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartAssembly(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Handler.StartAssemblyHandler(r.Context(), r.PathValue("assembly_id"))
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompleteAssembly(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Handler.CompleteAssemblyHandler(r.Context(), r.PathValue("assembly_id"))
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelAssembly(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Handler.CancelAssemblyHandler(r.Context(), r.PathValue("assembly_id"))
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeEngineError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req enginehttp.CheckInRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := s.engine.Handler.CheckInHandler(r.Context(), r.PathValue("assembly_id"), userID, req)
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if resp.AlreadyCheckedIn {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	var req enginehttp.CheckOutRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := s.engine.Handler.CheckOutHandler(r.Context(), r.PathValue("assembly_id"), req)
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQuorum(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Handler.QuorumHandler(r.Context(), r.PathValue("assembly_id"))
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOpenVoting(w http.ResponseWriter, r *http.Request) {
	var req enginehttp.OpenVotingRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := s.engine.Handler.OpenVotingHandler(r.Context(), r.PathValue("assembly_id"), req)
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeEngineError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req enginehttp.CastVoteRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	resp, err := s.engine.Handler.CastVoteHandler(r.Context(), r.PathValue("voting_id"), userID, req)
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseVoting(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Handler.CloseVotingHandler(r.Context(), r.PathValue("voting_id"))
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelVoting(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Handler.CancelVotingHandler(r.Context(), r.PathValue("voting_id"))
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVotingResults(w http.ResponseWriter, r *http.Request) {
	resp, err := s.engine.Handler.VotingResultsHandler(r.Context(), r.PathValue("voting_id"))
	if err != nil {
		writeEngineDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeEngineError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	if err := s.validate.Struct(target); err != nil {
		writeEngineError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return false
	}
	return true
}

func writeEngineDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, enginedomainerrors.ErrInvalidInput),
		errors.Is(err, enginedomainerrors.ErrInvalidProxy),
		errors.Is(err, enginedomainerrors.ErrInvalidOption):
		writeEngineError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, enginedomainerrors.ErrAssemblyNotFound),
		errors.Is(err, enginedomainerrors.ErrVotingNotFound),
		errors.Is(err, enginedomainerrors.ErrPropertyNotFound):
		writeEngineError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, enginedomainerrors.ErrNotEligible):
		writeEngineError(w, http.StatusForbidden, "not_eligible", err.Error())
	case errors.Is(err, enginedomainerrors.ErrAlreadyCheckedIn),
		errors.Is(err, enginedomainerrors.ErrInvalidTransition),
		errors.Is(err, enginedomainerrors.ErrConflict):
		writeEngineError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, enginedomainerrors.ErrAssemblyNotOpen):
		writeEngineError(w, http.StatusUnprocessableEntity, "assembly_not_open", err.Error())
	case errors.Is(err, enginedomainerrors.ErrVotingNotActive):
		writeEngineError(w, http.StatusUnprocessableEntity, "voting_not_active", err.Error())
	case errors.Is(err, enginedomainerrors.ErrQuorumNotMet):
		writeEngineError(w, http.StatusUnprocessableEntity, "quorum_not_met", err.Error())
	case errors.Is(err, enginedomainerrors.ErrVotingsPending):
		writeEngineError(w, http.StatusUnprocessableEntity, "votings_pending", err.Error())
	case errors.Is(err, enginedomainerrors.ErrNotCheckedIn):
		writeEngineError(w, http.StatusUnprocessableEntity, "not_checked_in", err.Error())
	case errors.Is(err, enginedomainerrors.ErrCoefficientSum):
		writeEngineError(w, http.StatusUnprocessableEntity, "coefficient_sum_invalid", err.Error())
	default:
		writeEngineError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeEngineError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, enginehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
