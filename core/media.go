package core

import (
	"context"
	"io"
)

// UploadedFile is the public location of a file pushed to the media host.
type UploadedFile struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// MediaService is any service that can push a file to the external media host.
// A failed upload is signaled by a nil result, never an error: callers only
// need to know whether a public URL exists.
type MediaService interface {
	Upload(ctx context.Context, filename string, content io.Reader) *UploadedFile
}
