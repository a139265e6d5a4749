package apiserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/moolen/faultline/internal/analysis"
	"github.com/moolen/faultline/internal/api/response"
)

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.WriteError(w, http.StatusMethodNotAllowed, response.CodeMethodNotAllowed,
		fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path))
}

// writeRunError maps analysis errors to status codes.
func (s *Server) writeRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, analysis.ErrBusy):
		response.WriteError(w, http.StatusConflict, response.CodeConflict, err.Error())
	case errors.Is(err, analysis.ErrEmptyTopic):
		response.WriteError(w, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, analysis.ErrStopped):
		response.WriteError(w, http.StatusServiceUnavailable, response.CodeUnavailable, err.Error())
	default:
		s.logger.ErrorWithErr("Analysis request failed", err)
		response.WriteError(w, http.StatusInternalServerError, response.CodeInternal, err.Error())
	}
}
