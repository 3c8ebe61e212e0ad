package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hkd-portal-api/internal/dto"
)

var (
	// ErrProofTooLarge indicates the payment proof exceeded the size limit.
	ErrProofTooLarge = errors.New("payment proof exceeds maximum allowed size")
	// ErrProofTypeNotAllowed indicates an unsupported proof content type.
	ErrProofTypeNotAllowed = errors.New("payment proof type not allowed")
)

var allowedProofTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"application/pdf": {},
}

// FileStorage abstracts the blob destination for payment proofs.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// ProofUploadService validates and stores payment-proof images. Only the
// resulting URL travels further into the workflow.
type ProofUploadService interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (dto.ProofUploadResponse, error)
}

type proofUploadService struct {
	storage FileStorage
	maxSize int64
	logger  zerolog.Logger
}

// NewProofUploadService constructs a ProofUploadService instance.
func NewProofUploadService(storage FileStorage, maxSizeMB int, logger zerolog.Logger) ProofUploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &proofUploadService{
		storage: storage,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		logger:  logger.With().Str("component", "proof_upload_service").Logger(),
	}
}

func (s *proofUploadService) Upload(ctx context.Context, file *multipart.FileHeader) (dto.ProofUploadResponse, error) {
	if file == nil {
		return dto.ProofUploadResponse{}, errors.New("payment proof file is required")
	}
	if file.Size > s.maxSize {
		return dto.ProofUploadResponse{}, ErrProofTooLarge
	}

	reader, err := file.Open()
	if err != nil {
		return dto.ProofUploadResponse{}, fmt.Errorf("failed to open proof file: %w", err)
	}
	defer reader.Close()

	detected, err := mimetype.DetectReader(reader)
	if err != nil {
		return dto.ProofUploadResponse{}, fmt.Errorf("failed to inspect proof file: %w", err)
	}
	if _, ok := allowedProofTypes[detected.String()]; !ok {
		return dto.ProofUploadResponse{}, ErrProofTypeNotAllowed
	}
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return dto.ProofUploadResponse{}, fmt.Errorf("failed to rewind proof file: %w", err)
	}

	url, err := s.storage.Upload(ctx, file.Filename, reader)
	if err != nil {
		return dto.ProofUploadResponse{}, fmt.Errorf("failed to store proof file: %w", err)
	}

	s.logger.Info().Str("content_type", detected.String()).Msg("payment proof stored")
	return dto.ProofUploadResponse{URL: url}, nil
}
