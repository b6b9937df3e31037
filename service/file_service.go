package service

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"

	"github.com/tieubaoca/docqa-be/types"
	"github.com/tieubaoca/docqa-be/utils"
	"go.uber.org/zap"
)

// FileService stages uploaded files on disk for the lifetime of one request.
type FileService struct {
	uploadDir string
	maxSize   int64
	logger    *zap.Logger
}

func NewFileService(uploadDir string, maxSize int64, logger *zap.Logger) (*FileService, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileService{
		uploadDir: uploadDir,
		maxSize:   maxSize,
		logger:    logger,
	}, nil
}

// SaveTemp copies the upload into a temp file that keeps the original
// extension. The returned cleanup removes it and is safe to call more than once.
func (s *FileService) SaveTemp(file *multipart.FileHeader) (string, func(), error) {
	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", nil, fmt.Errorf("%w: file is %d bytes, limit is %d", types.ErrInvalidInput, file.Size, s.maxSize)
	}

	src, err := file.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	path, err := utils.CopyToTempFile(src, s.uploadDir, file.Filename)
	if err != nil {
		return "", nil, err
	}

	cleanup := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to remove temp file", zap.String("path", path), zap.Error(err))
		}
	}
	return path, cleanup, nil
}
