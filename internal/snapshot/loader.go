package snapshot

import (
	"bytes"

	"github.com/toyz/classview/internal/utils"
	"github.com/toyz/classview/internal/utils/fileops"
)

// Loader reads snapshot files, reusing the decoded document until the file
// changes on disk
type Loader struct {
	files *fileops.FileOps
	docs  *utils.Cache[string, *Document]
}

// NewLoader creates a loader with an empty cache
func NewLoader() *Loader {
	return &Loader{
		files: fileops.NewFileOps(),
		docs:  utils.NewCache[string, *Document](),
	}
}

// Load returns the document stored at path
func (l *Loader) Load(path string) (*Document, error) {
	clean, err := l.files.PathValidator().ValidateAndClean(path)
	if err != nil {
		return nil, err
	}

	if doc, ok := l.docs.GetWithFileValidation(clean, clean); ok {
		return doc, nil
	}

	data, err := l.files.ReadFile(clean)
	if err != nil {
		return nil, err
	}

	doc, err := decode(bytes.NewReader(data), clean)
	if err != nil {
		return nil, err
	}

	if err := l.docs.SetWithFileInfo(clean, doc, clean); err != nil {
		return nil, l.files.ErrorWrapper().WrapFileReadError(clean, err)
	}
	return doc, nil
}

// Invalidate drops the cached document for path
func (l *Loader) Invalidate(path string) {
	if clean, err := l.files.PathValidator().ValidateAndCleanOptional(path); err == nil {
		l.docs.Delete(clean)
	}
}

// Load reads a single snapshot file
func Load(path string) (*Document, error) {
	return NewLoader().Load(path)
}
