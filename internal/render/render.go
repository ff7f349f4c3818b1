// Package render prints project trees as indented text.
package render

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/fatih/color"

	"github.com/toyz/classview/pkg/classview"
)

var kindColors = map[classview.NodeKind][]color.Attribute{
	classview.KindWorkspace:   {color.FgMagenta, color.Bold},
	classview.KindProject:     {color.FgCyan, color.Bold},
	classview.KindContainer:   {color.FgYellow},
	classview.KindPackageRoot: {color.FgGreen},
	classview.KindPackage:     {color.FgBlue},
	classview.KindPrimaryType: {color.FgHiWhite},
	classview.KindFolder:      {color.FgHiBlue},
	classview.KindFile:        {color.Reset},
}

// Renderer writes nodes and their present children. MaxDepth limits how many
// levels are printed; zero prints everything.
type Renderer struct {
	Writer     io.Writer
	Color      bool
	ShowURI    bool
	ShowModule bool
	MaxDepth   int
}

// Render prints every node in nodes as a separate tree
func (r *Renderer) Render(nodes []*classview.PackageNode) error {
	var b strings.Builder
	for _, node := range nodes {
		if node == nil {
			continue
		}
		t := r.build(node, 1).
			Enumerator(connector).
			Indenter(indent).
			EnumeratorStyle(lipgloss.NewStyle())
		b.WriteString(t.String())
		b.WriteByte('\n')
	}
	_, err := io.WriteString(r.Writer, b.String())
	return err
}

// build converts node and its present children, down to MaxDepth, into a tree
func (r *Renderer) build(node *classview.PackageNode, depth int) *tree.Tree {
	t := tree.Root(r.label(node))
	if r.MaxDepth > 0 && depth >= r.MaxDepth {
		return t
	}
	children, _ := node.Children().Get()
	for _, child := range children {
		if child == nil {
			continue
		}
		t.Child(r.build(child, depth+1))
	}
	return t
}

func connector(children tree.Children, index int) string {
	if index == children.Length()-1 {
		return "└── "
	}
	return "├── "
}

func indent(children tree.Children, index int) string {
	if index == children.Length()-1 {
		return "    "
	}
	return "│   "
}

func (r *Renderer) label(node *classview.PackageNode) string {
	name := node.Name().OrElse("<unnamed>")
	kind, hasKind := node.Kind().Get()

	var b strings.Builder
	b.WriteString(r.paint(name, kindColors[kind]...))
	if hasKind {
		b.WriteString(r.paint(" ("+kind.String()+")", color.FgHiBlack))
	}
	if module, ok := node.ModuleName().Get(); ok && r.ShowModule {
		b.WriteString(r.paint(" ["+module+"]", color.FgYellow))
	}
	if uri, ok := node.URI().Get(); ok && r.ShowURI {
		b.WriteString(r.paint("  "+uri, color.Faint))
	}
	return b.String()
}

func (r *Renderer) paint(s string, attrs ...color.Attribute) string {
	if !r.Color || len(attrs) == 0 {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}
