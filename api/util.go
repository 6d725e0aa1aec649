package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/vibeworks/inkwell"
)

const maxBodySize = 8 << 20

func returnData(w http.ResponseWriter, retData any) {
	inkwell.StatusData(w, "success", retData, 200)
}

func errorData(w http.ResponseWriter, retData any, errCode int) {
	inkwell.StatusData(w, "error", retData, errCode)
}

// parseRequest decodes a JSON body, or form values for any other content type.
func parseRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			errorData(w, "Invalid JSON body", http.StatusBadRequest)
			return false
		}
		return true
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		errorData(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := decoder.Decode(dst, r.Form); err != nil {
		errorData(w, "Invalid request parameters", http.StatusBadRequest)
		return false
	}
	return true
}
