package filestorage

import (
	"mime/multipart"
)

// FileStorage defines the interface for attachment blob storage. Blobs are
// written before the message row that references them; a failed write aborts
// the send.
type FileStorage interface {
	// SaveFile saves a file and returns the accessible path it was stored under
	SaveFile(fileHeader *multipart.FileHeader) (string, error)

	// SaveFileWithPath lets you specify a subdirectory for storing the file
	SaveFileWithPath(fileHeader *multipart.FileHeader, path string) (string, error)

	// DeleteFile removes a file from storage
	DeleteFile(filePath string) error

	// GetBaseURL returns the public base URL files are served from
	GetBaseURL() string
}
