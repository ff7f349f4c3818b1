package classview

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned when a kind name does not match any NodeKind
var ErrUnknownKind = errors.New("unknown node kind")

// NodeKind classifies what a node represents in the project tree.
// Values match the numbering used by the language server protocol extension.
type NodeKind int

const (
	KindWorkspace NodeKind = iota + 1
	KindProject
	KindContainer
	KindPackageRoot
	KindPackage
	KindPrimaryType
	KindFolder
	KindFile
)

var kindNames = map[NodeKind]string{
	KindWorkspace:   "workspace",
	KindProject:     "project",
	KindContainer:   "container",
	KindPackageRoot: "packageRoot",
	KindPackage:     "package",
	KindPrimaryType: "primaryType",
	KindFolder:      "folder",
	KindFile:        "file",
}

// AllKinds returns every NodeKind in declaration order
func AllKinds() []NodeKind {
	return []NodeKind{
		KindWorkspace,
		KindProject,
		KindContainer,
		KindPackageRoot,
		KindPackage,
		KindPrimaryType,
		KindFolder,
		KindFile,
	}
}

// String returns the protocol name of the kind
func (k NodeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// IsValid reports whether k is one of the declared kinds
func (k NodeKind) IsValid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseNodeKind resolves a kind name, ignoring case
func ParseNodeKind(name string) (NodeKind, error) {
	trimmed := strings.TrimSpace(name)
	for _, k := range AllKinds() {
		if strings.EqualFold(kindNames[k], trimmed) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}
