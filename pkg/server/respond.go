package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/ngclient/ngutils/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes err as a JSON error body. Errors without a code are
// reported as internal errors.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	e := errors.FromError(err, "")
	if e.Code == "" && e.Category == "" {
		e.Message = "Internal error"
	}
	status := e.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", e.Code, "error", err)
	}
	writeJSON(w, status, e.Body())
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body := http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return errors.New("N020").WithDetail("request body is empty")
		}
		return errors.New("N020").WithDetail(err.Error()).Wrap(err)
	}
	return nil
}
