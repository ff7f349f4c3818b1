// Package fileops bundles path validation, coded error wrapping and a
// content cache for the files classview reads.
package fileops

import (
	"os"

	"github.com/toyz/classview/internal/utils"
)

// FileOps provides a unified interface for common file operations
// combining path validation, error handling, and caching
type FileOps struct {
	pathValidator *PathValidator
	errorWrapper  *ErrorWrapper
	contents      *utils.Cache[string, []byte]
}

// NewFileOps creates a new FileOps instance with all components
func NewFileOps() *FileOps {
	return NewFileOpsWithCache(utils.NewCache[string, []byte]())
}

// NewFileOpsWithCache creates a FileOps instance with a shared content cache
func NewFileOpsWithCache(contents *utils.Cache[string, []byte]) *FileOps {
	return &FileOps{
		pathValidator: NewPathValidator(),
		errorWrapper:  NewErrorWrapper(),
		contents:      contents,
	}
}

// PathValidator returns the path validator instance
func (fo *FileOps) PathValidator() *PathValidator {
	return fo.pathValidator
}

// ErrorWrapper returns the error wrapper instance
func (fo *FileOps) ErrorWrapper() *ErrorWrapper {
	return fo.errorWrapper
}

// ReadFile reads a file, serving it from cache while the file is unchanged
func (fo *FileOps) ReadFile(filePath string) ([]byte, error) {
	cleanPath, err := fo.pathValidator.ValidateAndClean(filePath)
	if err != nil {
		return nil, err
	}

	if cached, ok := fo.contents.GetWithFileValidation(cleanPath, cleanPath); ok {
		return cached, nil
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fo.errorWrapper.WrapFileReadError(cleanPath, err)
	}

	if err := fo.contents.SetWithFileInfo(cleanPath, content, cleanPath); err != nil {
		return nil, fo.errorWrapper.WrapFileReadError(cleanPath, err)
	}
	return content, nil
}

// WriteFile writes content to a file with path validation and error handling
func (fo *FileOps) WriteFile(filePath string, content []byte, perm os.FileMode) error {
	cleanPath, err := fo.pathValidator.ValidateAndCleanOptional(filePath)
	if err != nil {
		return err
	}

	if err := os.WriteFile(cleanPath, content, perm); err != nil {
		return fo.errorWrapper.WrapFileWriteError(cleanPath, err)
	}

	fo.contents.Delete(cleanPath)
	return nil
}
