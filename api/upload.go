package api

import (
	"net/http"

	"github.com/vibeworks/inkwell"
	"github.com/vibeworks/inkwell/sudoapi/flags"
)

func (s *API) uploadImage(w http.ResponseWriter, r *http.Request) {
	// Leave headroom for the multipart framing, the store enforces the real limit
	r.Body = http.MaxBytesReader(w, r.Body, flags.ImageMaxSize.Value()+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		errorData(w, "Invalid or too large upload", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	f, fh, err := r.FormFile("image")
	if err != nil {
		errorData(w, "Missing image file", http.StatusBadRequest)
		return
	}
	defer f.Close()

	url, err := s.base.UploadImage(r.Context(), inkwell.Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Reader:      f,
	})
	if err != nil {
		inkwell.WriteError(w, err)
		return
	}
	returnData(w, struct {
		URL string `json:"url"`
	}{URL: url})
}
