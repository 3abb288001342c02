package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// AttachmentRepository defines the interface for note attachment
// storage (images pasted or uploaded into notes)
type AttachmentRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}

// GenerateObjectPath creates a unique object path for a note
// attachment variant
func GenerateObjectPath(workspaceID int32, noteID uuid.UUID, variant string, ext string) string {
	filename := fmt.Sprintf("%s_%s%s", uuid.New().String(), variant, ext)
	return path.Join(fmt.Sprintf("%d", workspaceID), "notes", noteID.String(), filename)
}
