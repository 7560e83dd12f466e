package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Sternrassler/geocode-cache/pkg/geocode"
)

const msgInternalError = "Internal server error"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "OK")
}

func (s *Server) handleForward(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("address") {
		writeText(w, http.StatusBadRequest, "Missing required parameter: address")
		return
	}

	coords, err := s.lookup.ForwardGeocode(r.Context(), query.Get("address"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body, err := json.Marshal(coords)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to write response")
	}
}

func (s *Server) handleReverse(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	for _, param := range []string{"latitude", "longitude"} {
		if !query.Has(param) {
			writeText(w, http.StatusBadRequest, "Missing required parameter: "+param)
			return
		}
	}

	label, err := s.lookup.ReverseGeocode(r.Context(), query.Get("latitude"), query.Get("longitude"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeText(w, http.StatusOK, label)
}

// StatusFor maps a lookup error to its HTTP status.
//
//	InvalidInput              400
//	Unauthorized              401
//	MalformedUpstreamResponse 400
//	UpstreamUnreachable       404
//	anything else             500
func StatusFor(err error) int {
	kind, ok := geocode.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch kind {
	case geocode.KindInvalidInput, geocode.KindMalformedResponse:
		return http.StatusBadRequest
	case geocode.KindUnauthorized:
		return http.StatusUnauthorized
	case geocode.KindUpstreamUnreachable:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client-facing text of err. Only the classified
// message is exposed; causes may carry upstream details.
func messageFor(err error) string {
	var gerr *geocode.Error
	if !errors.As(err, &gerr) {
		return msgInternalError
	}
	if gerr.Message != "" {
		return gerr.Message
	}
	return string(gerr.Kind)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	event := s.logger.Warn()
	if status == http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Err(err).Str("path", r.URL.Path).Int("status_code", status).Msg("Lookup failed")

	writeText(w, status, messageFor(err))
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
