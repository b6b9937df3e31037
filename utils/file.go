package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SanitizeFileName replaces every character outside [A-Za-z0-9._-] with '_'.
func SanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, name)
}

// GetFileNameWithoutExt extracts filename without extension from a file path
func GetFileNameWithoutExt(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CopyToTempFile copies src into uploadDir as temp_<name>_<timestamp>_<random><ext>
// and returns the created path. The extension of originalName is preserved
// so that format detection keeps working on the copy.
func CopyToTempFile(src io.Reader, uploadDir, originalName string) (string, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	ext := filepath.Ext(originalName)
	pattern := fmt.Sprintf("temp_%s_%d_*%s",
		SanitizeFileName(GetFileNameWithoutExt(originalName)),
		time.Now().Unix(),
		SanitizeFileName(ext),
	)

	dst, err := os.CreateTemp(uploadDir, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to copy file: %w", err)
	}

	return dst.Name(), nil
}
