// Package trie indexes values by file-system path, one level per path segment.
package trie

import (
	"path/filepath"
	"strings"
)

// Node is one path segment in the trie
type Node[V any] struct {
	value    V
	hasValue bool
	children map[string]*Node[V]
}

func newNode[V any]() *Node[V] {
	return &Node[V]{children: make(map[string]*Node[V])}
}

// Value returns the stored value and whether one was set
func (n *Node[V]) Value() (V, bool) {
	return n.value, n.hasValue
}

// SetValue stores v on the node
func (n *Node[V]) SetValue(v V) {
	n.value = v
	n.hasValue = true
}

// RemoveChildren drops every descendant of the node
func (n *Node[V]) RemoveChildren() {
	n.children = make(map[string]*Node[V])
}

// Walk calls fn with every value stored at or below the node
func (n *Node[V]) Walk(fn func(V)) {
	if n.hasValue {
		fn(n.value)
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}

// Trie maps file-system paths to values. It is not safe for concurrent use.
type Trie[V any] struct {
	root *Node[V]
}

// New creates an empty trie
func New[V any]() *Trie[V] {
	return &Trie[V]{root: newNode[V]()}
}

// Insert stores v at path, creating intermediate segments as needed
func (t *Trie[V]) Insert(path string, v V) {
	current := t.root
	for _, segment := range segments(path) {
		next, ok := current.children[segment]
		if !ok {
			next = newNode[V]()
			current.children[segment] = next
		}
		current = next
	}
	current.SetValue(v)
}

// Find returns the node at path, or nil if any segment is missing
func (t *Trie[V]) Find(path string) *Node[V] {
	current := t.root
	for _, segment := range segments(path) {
		next, ok := current.children[segment]
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

// FindNearest returns the deepest node along path that holds a value.
// The walk stops at the first segment that is not in the trie.
func (t *Trie[V]) FindNearest(path string) *Node[V] {
	var found *Node[V]
	current := t.root
	for _, segment := range segments(path) {
		next, ok := current.children[segment]
		if !ok {
			break
		}
		current = next
		if current.hasValue {
			found = current
		}
	}
	return found
}

// Walk calls fn with every stored value, in no particular order
func (t *Trie[V]) Walk(fn func(V)) {
	t.root.Walk(fn)
}

// Clear removes every entry
func (t *Trie[V]) Clear() {
	t.root.RemoveChildren()
}

// segments splits a path into its non-empty segments
func segments(path string) []string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
