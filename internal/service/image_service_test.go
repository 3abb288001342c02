package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

// recordingStorage captures uploads in memory
type recordingStorage struct {
	mu      sync.Mutex
	objects []string
}

func (r *recordingStorage) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects = append(r.objects, objectPath)
	return objectPath, nil
}

func (r *recordingStorage) Delete(ctx context.Context, objectPath string) error {
	return nil
}

func (r *recordingStorage) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return "https://cdn.example.com/" + objectPath, nil
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestImageService_ValidateImage(t *testing.T) {
	svc := NewImageService(&recordingStorage{})

	t.Run("rejects oversized file", func(t *testing.T) {
		data := make([]byte, MaxImageSize+1)
		if err := svc.ValidateImage(data, "big.png"); !errors.Is(err, ErrImageTooLarge) {
			t.Errorf("expected ErrImageTooLarge, got %v", err)
		}
	})

	t.Run("rejects unsupported extension", func(t *testing.T) {
		if err := svc.ValidateImage(pngBytes(t, 100, 100), "vector.svg"); !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("expected ErrInvalidFormat, got %v", err)
		}
	})

	t.Run("rejects garbage data", func(t *testing.T) {
		if err := svc.ValidateImage([]byte("not an image"), "fake.png"); !errors.Is(err, ErrInvalidImageData) {
			t.Errorf("expected ErrInvalidImageData, got %v", err)
		}
	})

	t.Run("rejects tiny image", func(t *testing.T) {
		if err := svc.ValidateImage(pngBytes(t, 10, 10), "tiny.png"); !errors.Is(err, ErrImageTooSmall) {
			t.Errorf("expected ErrImageTooSmall, got %v", err)
		}
	})

	t.Run("accepts valid image", func(t *testing.T) {
		if err := svc.ValidateImage(pngBytes(t, 100, 100), "photo.png"); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestImageService_ProcessAndUpload(t *testing.T) {
	storage := &recordingStorage{}
	svc := NewImageService(storage)

	meta, err := svc.ProcessAndUpload(context.Background(), testWorkspaceID, uuid.New(), pngBytes(t, 1000, 800), "photo.png")
	if err != nil {
		t.Fatalf("ProcessAndUpload failed: %v", err)
	}

	if len(storage.objects) != 3 {
		t.Fatalf("expected 3 uploaded variants, got %d", len(storage.objects))
	}
	if meta.ID == "" {
		t.Error("expected attachment ID")
	}
	if meta.ThumbnailURL == "" || meta.DisplayURL == "" || meta.OriginalURL == "" {
		t.Errorf("expected all variant URLs, got %+v", meta)
	}
}

func TestImageService_Disabled(t *testing.T) {
	svc := NewImageService(nil)

	if svc.IsEnabled() {
		t.Error("service without storage should be disabled")
	}
	if _, err := svc.ProcessAndUpload(context.Background(), testWorkspaceID, uuid.New(), pngBytes(t, 100, 100), "photo.png"); !errors.Is(err, ErrImageStorageNotConfigured) {
		t.Errorf("expected ErrImageStorageNotConfigured, got %v", err)
	}
}
