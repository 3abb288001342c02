package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/inkwell-notes/inkwell-backend/internal/repository/storage"
	"github.com/rs/zerolog/log"

	_ "image/gif"
	_ "image/png"
)

const (
	MaxImageSize   = 5 * 1024 * 1024 // 5MB
	MinImageWidth  = 50
	MinImageHeight = 50
	ThumbnailWidth = 200
	DisplayWidth   = 800
	JPEGQuality    = 85

	// PresignExpiry bounds how long an attachment URL stays valid
	PresignExpiry = 1 * time.Hour
)

var (
	ErrImageTooLarge             = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidFormat             = errors.New("invalid format. Supported: JPEG, PNG, GIF")
	ErrImageTooSmall             = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidImageData          = errors.New("invalid image data")
	ErrImageStorageNotConfigured = errors.New("image storage not configured")
)

// AllowedExtensions maps extensions to content types
var AllowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// AttachmentMetadata contains presigned URLs for each stored variant
type AttachmentMetadata struct {
	ID           string `json:"id"`
	ThumbnailURL string `json:"thumbnailUrl"`
	DisplayURL   string `json:"displayUrl"`
	OriginalURL  string `json:"originalUrl"`
}

// ImageService validates, resizes and stores images pasted into notes
type ImageService struct {
	storage storage.AttachmentRepository
}

// NewImageService creates a new ImageService
func NewImageService(storage storage.AttachmentRepository) *ImageService {
	return &ImageService{storage: storage}
}

// IsEnabled indicates whether uploads are supported (storage configured)
func (s *ImageService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// validateAndDecode validates the image and returns the decoded image
func (s *ImageService) validateAndDecode(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return nil, ErrInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImageData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinImageWidth || bounds.Dy() < MinImageHeight {
		return nil, ErrImageTooSmall
	}

	return img, nil
}

// ValidateImage validates image format and size
func (s *ImageService) ValidateImage(data []byte, filename string) error {
	_, err := s.validateAndDecode(data, filename)
	return err
}

// ProcessAndUpload resizes an image into thumbnail/display/original
// variants, uploads each, and returns presigned URLs for them
func (s *ImageService) ProcessAndUpload(ctx context.Context, workspaceID int32, noteID uuid.UUID, data []byte, filename string) (*AttachmentMetadata, error) {
	if !s.IsEnabled() {
		return nil, ErrImageStorageNotConfigured
	}

	img, err := s.validateAndDecode(data, filename)
	if err != nil {
		return nil, err
	}

	variants := []struct {
		name     string
		maxWidth int
	}{
		{"thumb", ThumbnailWidth},
		{"display", DisplayWidth},
		{"original", 0}, // keep original size
	}

	meta := &AttachmentMetadata{ID: uuid.New().String()}

	for _, variant := range variants {
		resized := img
		if variant.maxWidth > 0 && img.Bounds().Dx() > variant.maxWidth {
			resized = imaging.Resize(img, variant.maxWidth, 0, imaging.Lanczos)
		}

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return nil, fmt.Errorf("failed to encode %s variant: %w", variant.name, err)
		}

		objectPath := storage.GenerateObjectPath(workspaceID, noteID, variant.name, ".jpg")
		if _, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
			return nil, fmt.Errorf("failed to upload %s variant: %w", variant.name, err)
		}

		url, err := s.storage.GeneratePresignedURL(ctx, objectPath, PresignExpiry)
		if err != nil {
			return nil, fmt.Errorf("failed to presign %s variant: %w", variant.name, err)
		}

		switch variant.name {
		case "thumb":
			meta.ThumbnailURL = url
		case "display":
			meta.DisplayURL = url
		case "original":
			meta.OriginalURL = url
		}
	}

	return meta, nil
}

// DeleteAttachment removes a stored attachment variant, best effort
func (s *ImageService) DeleteAttachment(ctx context.Context, objectPath string) error {
	if !s.IsEnabled() {
		return ErrImageStorageNotConfigured
	}
	if err := s.storage.Delete(ctx, objectPath); err != nil {
		log.Warn().Err(err).Str("object_path", objectPath).Msg("Failed to delete attachment")
		return err
	}
	return nil
}
