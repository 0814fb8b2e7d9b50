// Package lang holds the per-language knowledge used by the context
// pipeline: keyword sets, regex pattern tables for declarations, imports and
// control-flow blocks, and syntax-position heuristics. Languages are looked up
// through a Registry; unknown languages get the generic analyzer.
//
// Everything here is heuristic. Patterns approximate structure well enough for
// prompting and never build a syntax tree for the core languages.
package lang

import (
	"regexp"
	"strings"
)

// Kind classifies a recognized structure.
type Kind string

const (
	KindFunction      Kind = "function"
	KindArrowFunction Kind = "arrow-function"
	KindMethod        Kind = "method"
	KindClass         Kind = "class"
	KindInterface     Kind = "interface"
	KindType          Kind = "type"
	KindStruct        Kind = "struct"
	KindEnum          Kind = "enum"
	KindImport        Kind = "import"

	KindIf     Kind = "if"
	KindElse   Kind = "else"
	KindFor    Kind = "for"
	KindWhile  Kind = "while"
	KindDo     Kind = "do"
	KindSwitch Kind = "switch"
	KindTry    Kind = "try"
	KindCatch  Kind = "catch"
)

// IsControlFlow reports whether k is a control-flow block kind.
func (k Kind) IsControlFlow() bool {
	switch k {
	case KindIf, KindElse, KindFor, KindWhile, KindDo, KindSwitch, KindTry, KindCatch:
		return true
	}
	return false
}

// IsScope reports whether k opens a named scope the resolver may report.
func (k Kind) IsScope() bool {
	switch k {
	case KindFunction, KindArrowFunction, KindMethod, KindClass:
		return true
	}
	return false
}

// IsCallable reports whether k is a function-like declaration.
func (k Kind) IsCallable() bool {
	return k == KindFunction || k == KindArrowFunction || k == KindMethod
}

// IsTypeLike reports whether k declares a type.
func (k Kind) IsTypeLike() bool {
	switch k {
	case KindClass, KindInterface, KindType, KindStruct, KindEnum:
		return true
	}
	return false
}

// Structure is a recognized declaration or control-flow block.
type Structure struct {
	Kind   Kind   `json:"kind"`
	Name   string `json:"name,omitempty"`
	Offset int    `json:"offset"`
}

// Import is an import-like statement and the names it binds in the file.
// Source is the text as written when it differs from Statement, as for one
// spec of a Go import block.
type Import struct {
	Statement string
	Source    string
	Names     []string
	Offset    int
}

// Family groups languages that share block and keyword conventions.
type Family int

const (
	FamilyGeneric    Family = iota
	FamilyBrace             // C-style braces
	FamilyIndent            // significant indentation
	FamilyVisibility        // braces plus explicit visibility modifiers
)

func (f Family) String() string {
	switch f {
	case FamilyBrace:
		return "brace"
	case FamilyIndent:
		return "indent"
	case FamilyVisibility:
		return "visibility"
	}
	return "generic"
}

// Pattern pairs a regular expression with the kind it recognizes. Name is the
// submatch index holding the declared name, or 0 when there is none.
//
// Patterns are written in multi-line mode anchored at line starts so the same
// table serves whole-text scans and single-line checks.
type Pattern struct {
	Kind Kind
	Re   *regexp.Regexp
	Name int
}

// ScopeRules is what the scope resolver needs from a language.
type ScopeRules struct {
	// Indented languages delimit blocks by indentation instead of braces.
	Indented bool
	// Declarations recognize scope-opening lines.
	Declarations []Pattern
	// ControlFlow recognize if/for/while/... lines. A line matching both is
	// control flow.
	ControlFlow []Pattern
	// Arrow matches a lambda marker for bodyless expression functions.
	Arrow *regexp.Regexp
	// HashComments is set when "#" starts a line comment.
	HashComments bool
}

// IsControlFlow reports whether line opens a control-flow construct.
func (r ScopeRules) IsControlFlow(line string) bool {
	for _, p := range r.ControlFlow {
		if p.Re.MatchString(line) {
			return true
		}
	}
	return false
}

// Declaration matches line against the declaration patterns. Control-flow
// lines never match.
func (r ScopeRules) Declaration(line string) (Kind, string, bool) {
	if r.IsControlFlow(line) || statementRe.MatchString(line) {
		return "", "", false
	}
	for _, p := range r.Declarations {
		m := p.Re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := ""
		if p.Name > 0 && p.Name < len(m) {
			name = m[p.Name]
		}
		if controlKeywords[name] {
			continue
		}
		return p.Kind, name, true
	}
	return "", "", false
}

// Analyzer is the per-language capability set used by the context pipeline.
type Analyzer interface {
	// Language returns the canonical language id.
	Language() string
	Family() Family
	IsKeyword(word string) bool
	// Structures returns declarations and control-flow blocks sorted by
	// offset.
	Structures(text string) []Structure
	ScopeRules() ScopeRules
	// Imports returns the import-like statements of text in source order.
	Imports(text string) []Import
	// SyntaxContext describes the syntactic position at the end of
	// beforeCursor, or returns "".
	SyntaxContext(beforeCursor string) string
	// Style is a one-line style guide for generated code.
	Style() string
}

// LeadingWhitespace returns the run of spaces and tabs at the start of s.
func LeadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

// controlKeywords are never accepted as declaration names.
var controlKeywords = map[string]bool{
	"if": true, "else": true, "elif": true, "for": true, "foreach": true,
	"while": true, "do": true, "switch": true, "case": true, "try": true,
	"catch": true, "except": true, "finally": true, "return": true,
	"match": true, "when": true, "select": true, "loop": true, "until": true,
	"with": true, "using": true, "lock": true, "synchronized": true,
	"new": true, "throw": true, "sizeof": true, "typeof": true,
}
