package inkwell

import (
	"context"
	"io"
)

// Upload is a file received from an author, before it reaches object storage.
type Upload struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// ImageStore keeps uploaded images and hands back the URL they are served from.
type ImageStore interface {
	UploadImage(ctx context.Context, file Upload, maxSize int64) (url string, err error)
	DeleteImage(ctx context.Context, key string) error
}
