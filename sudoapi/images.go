package sudoapi

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vibeworks/inkwell"
	"github.com/vibeworks/inkwell/editor"
	"github.com/vibeworks/inkwell/integrations/prometheus"
	"github.com/vibeworks/inkwell/sudoapi/flags"
)

// UploadImage stores an image for a post body or a featured image and returns its URL.
func (s *BaseAPI) UploadImage(ctx context.Context, file inkwell.Upload) (string, error) {
	if s.images == nil {
		return "", inkwell.ErrUploadsDisabled
	}
	url, err := s.images.UploadImage(ctx, file, flags.ImageMaxSize.Value())
	if err != nil {
		prometheus.ImageUploads.WithLabelValues("error").Inc()
		if inkwell.ErrorCode(err) == 500 {
			slog.WarnContext(ctx, "Couldn't upload image", slog.String("name", file.Name), slog.Any("err", err))
		}
		return "", fmt.Errorf("couldn't upload image: %w", err)
	}
	prometheus.ImageUploads.WithLabelValues("ok").Inc()
	return url, nil
}

type editorUploader struct {
	base *BaseAPI
}

func (u editorUploader) UploadImage(ctx context.Context, f editor.File) (string, error) {
	return u.base.UploadImage(ctx, inkwell.Upload{Name: f.Name, ContentType: f.ContentType, Reader: f.Reader})
}

// EditorUploader lets an in-process editor upload through the same store as the HTTP API.
func (s *BaseAPI) EditorUploader() editor.ImageUploader {
	return editorUploader{s}
}
