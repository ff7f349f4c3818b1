package explorer

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/toyz/classview/internal/errors"
)

const (
	// SchemeFile is the scheme of workspace resources
	SchemeFile = "file"
	// SchemeJDT is the scheme of read-only class files served by the language server
	SchemeJDT = "jdt"
)

var driveLetterPath = regexp.MustCompile(`^/[A-Za-z]:`)

// Location is the scheme and file-system path of a node URI
type Location struct {
	Scheme string
	FSPath string // slash separated
}

// IsJDTClass reports whether the location points at a read-only class file
func (l Location) IsJDTClass() bool {
	return l.Scheme == SchemeJDT
}

// ParseURI splits a node URI into its scheme and file-system path
func ParseURI(raw string) (Location, error) {
	if strings.TrimSpace(raw) == "" {
		return Location{}, errors.NewValidationError("uri", "a non-empty URI", raw)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return Location{}, errors.WrapParseError("uri "+raw, err)
	}
	if parsed.Scheme == "" {
		return Location{}, errors.NewValidationError("uri", "a URI with a scheme", raw)
	}

	fsPath := parsed.Path
	if parsed.Scheme == SchemeFile && driveLetterPath.MatchString(fsPath) {
		fsPath = fsPath[1:]
	}

	return Location{
		Scheme: strings.ToLower(parsed.Scheme),
		FSPath: fsPath,
	}, nil
}

// FileURI builds a file URI for an absolute path
func FileURI(path string) string {
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	u := url.URL{Scheme: SchemeFile, Path: slashed}
	return u.String()
}
