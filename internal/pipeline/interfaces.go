package pipeline

import (
	"context"
)

// StorageService is the object storage the pipeline reads from and archives to.
type StorageService interface {
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
	UploadBytes(ctx context.Context, bucketName, objectName string, data []byte) (string, error)
}
