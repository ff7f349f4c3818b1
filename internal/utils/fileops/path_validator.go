package fileops

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/classview/internal/errors"
)

// PathValidator provides centralized path validation and cleaning functionality
type PathValidator struct{}

// NewPathValidator creates a new PathValidator instance
func NewPathValidator() *PathValidator {
	return &PathValidator{}
}

// ValidateAndClean validates and cleans a file path, ensuring it exists
func (pv *PathValidator) ValidateAndClean(filePath string) (string, error) {
	cleanPath, err := pv.ValidateAndCleanOptional(filePath)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(cleanPath); err != nil {
		return "", errors.WrapFileSystemError("stat", cleanPath, err)
	}

	return cleanPath, nil
}

// ValidateAndCleanOptional validates and cleans a path but doesn't require it to exist
func (pv *PathValidator) ValidateAndCleanOptional(filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", errors.NewValidationError("path", "a non-empty path", filePath)
	}

	cleanPath := filepath.Clean(filePath)

	// Allow .. only as a leading relative prefix
	if strings.Contains(cleanPath, "..") && !strings.HasPrefix(cleanPath, "..") {
		return "", errors.NewValidationError("path", "a path without traversal", filePath)
	}

	return cleanPath, nil
}

// Exists checks if a path exists
func (pv *PathValidator) Exists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// IsDir checks if a path exists and is a directory
func (pv *PathValidator) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsFile checks if a path exists and is a regular file
func (pv *PathValidator) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GetAbsolutePath resolves a path to its absolute form
func (pv *PathValidator) GetAbsolutePath(path string) (string, error) {
	cleanPath, err := pv.ValidateAndCleanOptional(path)
	if err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return "", errors.WrapFileSystemError("resolve path", cleanPath, err)
	}

	return absPath, nil
}
