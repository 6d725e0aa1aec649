package inkwell

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

func StatusData(w http.ResponseWriter, status string, retData any, statusCode int) {
	if err, ok := retData.(error); ok {
		retData = err.Error()
	}
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(struct {
		Status string `json:"status"`
		Data   any    `json:"data"`
	}{
		Status: status,
		Data:   retData,
	})
	if err != nil {
		if strings.Contains(err.Error(), "broken pipe") {
			return
		}
		slog.Error("Couldn't send return data", slog.Any("err", err))
	}
}

// WriteError sends err with the status code it carries.
// Errors without a status are reported as a generic 500 so internals don't leak.
func WriteError(w http.ResponseWriter, err error) {
	code := ErrorCode(err)
	var perr *postError
	if !errors.As(err, &perr) {
		slog.Warn("Unhandled internal error", slog.Any("err", err))
		StatusData(w, "error", http.StatusText(code), code)
		return
	}
	StatusData(w, "error", perr.Message, code)
}
