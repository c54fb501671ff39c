package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"runbox/engine"
)

const serviceVersion = "1.0.0"

// executeRequest mirrors the public execute API schema. Timeout is in
// seconds; omitting it selects the configured default.
type executeRequest struct {
	Code    string   `json:"code"`
	Timeout *float64 `json:"timeout,omitempty"`
}

// executeResponse is the wire form of an engine.Result.
type executeResponse struct {
	Status        string  `json:"status"`
	Stdout        string  `json:"stdout"`
	Stderr        string  `json:"stderr"`
	ExecutionTime float64 `json:"execution_time"`
	ReturnCode    *int    `json:"return_code"`
}

// errorResponse is the standard error shape for every endpoint.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status    string                  `json:"status"`
	Timestamp string                  `json:"timestamp"`
	Checks    map[string]engine.Check `json:"checks"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid_request",
			Message: "request body is not valid JSON",
		})
		return
	}

	engReq := engine.Request{Code: req.Code}
	if req.Timeout != nil {
		// An explicit non-positive timeout is rejected; only an omitted
		// one selects the configured default.
		if *req.Timeout <= 0 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:   "validation_error",
				Message: "timeout must be positive",
			})
			return
		}
		engReq.Timeout = time.Duration(*req.Timeout * float64(time.Second))
	}

	result, err := s.exec.Execute(r.Context(), engReq)
	if err != nil {
		s.writeExecuteError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, executeResponse{
		Status:        string(result.Status),
		Stdout:        result.Stdout,
		Stderr:        result.Stderr,
		ExecutionTime: result.Duration.Seconds(),
		ReturnCode:    result.ReturnCode,
	})
}

// writeExecuteError maps engine validation rejections to 400s; they
// are distinct from the four result statuses, which always travel as
// a 200 with the status field set.
func (s *Server) writeExecuteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrEmptyCode), errors.Is(err, engine.ErrTimeoutOutOfRange):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	default:
		s.logger.Error("execution failed unexpectedly", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "internal_error",
			Message: "an internal error occurred",
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Health(r.Context())

	status := http.StatusOK
	text := "healthy"
	if !report.Healthy {
		status = http.StatusServiceUnavailable
		text = "unhealthy"
	}
	s.writeJSON(w, status, healthResponse{
		Status:    text,
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    report.Checks,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "runbox execution service",
		"version": serviceVersion,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; all we can do is log.
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}
