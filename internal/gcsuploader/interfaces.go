package gcsuploader

import "context"

// StorageService is the object storage surface used by imports and the CLI.
type StorageService interface {
	UploadFile(ctx context.Context, bucketName, objectName, filePath string) (string, error)
	UploadBytes(ctx context.Context, bucketName, objectName string, data []byte) (string, error)
	FetchFromGCS(ctx context.Context, gcsURI string) ([]byte, error)
}

var _ StorageService = (*GCSStorageService)(nil)
