// Package files implements the photo service: uploads are normalized
// (downscaled and re-encoded) before landing in object storage, and
// reads go through presigned URLs.
package files

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"petplaza/internal/images"
	"petplaza/internal/storage"
)

// Service handles business logic for photo operations
type Service struct {
	storage storage.Service
}

// NewService creates a new files service
func NewService(storage storage.Service) *Service {
	return &Service{storage: storage}
}

// Upload normalizes a photo and stores it under a fresh key
func (s *Service) Upload(ctx context.Context, data []byte) (*UploadResponse, error) {
	result, err := images.Encode(data)
	if err != nil {
		return nil, err
	}

	fileKey := fmt.Sprintf("photos/%s.jpg", uuid.New().String())

	if err := s.storage.Upload(ctx, fileKey, result.ContentType, result.Data); err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}

	return &UploadResponse{
		Success: true,
		FileKey: fileKey,
		Width:   result.Width,
		Height:  result.Height,
		Size:    len(result.Data),
	}, nil
}

// DownloadURL creates a presigned download URL for a stored photo
func (s *Service) DownloadURL(ctx context.Context, fileKey string) (*DownloadURLResponse, error) {
	if fileKey == "" {
		return nil, fmt.Errorf("file key cannot be empty")
	}

	url, err := s.storage.GeneratePresignedDownloadURL(ctx, fileKey, DownloadTTL)
	if err != nil {
		return nil, err
	}

	return &DownloadURLResponse{
		Success:     true,
		DownloadURL: url,
		ExpiresAt:   time.Now().Add(DownloadTTL).Unix(),
	}, nil
}

// Delete removes a stored photo
func (s *Service) Delete(ctx context.Context, fileKey string) error {
	return s.storage.DeleteFile(ctx, fileKey)
}

// HealthCheck verifies the storage backend is reachable
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.storage.Health(ctx)
}
