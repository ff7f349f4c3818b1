// Package selector parses reveal queries such as
//
//	project(demo) > packageRoot(src/main/java) > package(com.example)
//
// into one Selector per tree level.
package selector

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/classview/internal/errors"
	"github.com/toyz/classview/pkg/classview"
)

// Query is the parsed form of a whole reveal query
type Query struct {
	Steps []*Step `parser:"@@ ( '>' @@ )*"`
}

// Step is one `kind(name[, path])` element
type Step struct {
	Pos  lexer.Position
	Kind string  `parser:"@Word '('"`
	Name string  `parser:"@(String | Word)"`
	Path *string `parser:"( ',' @(String | Word) )? ')'"`
}

var (
	queryLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
		{Name: "Word", Pattern: `[A-Za-z0-9_.$/-]+`},
		{Name: "Punct", Pattern: `[(),>]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	queryParser = participle.MustBuild[Query](
		participle.Lexer(queryLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
		participle.UseLookahead(2),
	)

	bareWord = regexp.MustCompile(`^[A-Za-z0-9_.$/-]+$`)
)

// Selector matches a node by kind, name and optionally path
type Selector struct {
	Kind classview.NodeKind
	Name string
	Path classview.Optional[string]
}

// Matches reports whether node has the selector's kind and name, and its path
// when one was given
func (s Selector) Matches(node *classview.PackageNode) bool {
	if node == nil {
		return false
	}
	if kind, ok := node.Kind().Get(); !ok || kind != s.Kind {
		return false
	}
	if name, ok := node.Name().Get(); !ok || name != s.Name {
		return false
	}
	if want, ok := s.Path.Get(); ok {
		got, has := node.Path().Get()
		return has && got == want
	}
	return true
}

// String renders the selector back in query syntax
func (s Selector) String() string {
	out := fmt.Sprintf("%s(%s", s.Kind, quote(s.Name))
	if p, ok := s.Path.Get(); ok {
		out += ", " + quote(p)
	}
	return out + ")"
}

// Parse parses a query into selectors, outermost first
func Parse(query string) ([]Selector, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.NewValidationError("query", "at least one step", query).
			WithSuggestion("Write steps like project(demo) > package(com.example)")
	}

	parsed, err := queryParser.ParseString("", query)
	if err != nil {
		return nil, syntaxError(err)
	}

	selectors := make([]Selector, 0, len(parsed.Steps))
	for _, step := range parsed.Steps {
		kind, err := classview.ParseNodeKind(step.Kind)
		if err != nil {
			return nil, errors.NewSyntaxErrorWithToken("unknown node kind", step.Kind, step.Pos.Offset).
				WithLocation(errors.SourceLocation{Column: step.Pos.Column}).
				WithCause(err).
				WithSuggestion("Run `classview kinds` to list valid kinds")
		}

		sel := Selector{Kind: kind, Name: step.Name}
		if step.Path != nil {
			sel.Path = classview.Some(*step.Path)
		}
		selectors = append(selectors, sel)
	}
	return selectors, nil
}

// Format joins selectors back into a query
func Format(selectors []Selector) string {
	parts := make([]string, len(selectors))
	for i, s := range selectors {
		parts[i] = s.String()
	}
	return strings.Join(parts, " > ")
}

func syntaxError(err error) error {
	var perr participle.Error
	if !stderrors.As(err, &perr) {
		return errors.WrapParseError("query", err)
	}
	pos := perr.Position()
	return errors.NewSyntaxErrorWithToken(perr.Message(), "", pos.Offset).
		WithLocation(errors.SourceLocation{Column: pos.Column})
}

func quote(s string) string {
	if bareWord.MatchString(s) {
		return s
	}
	return strconv.Quote(s)
}
