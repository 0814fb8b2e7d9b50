// Package analysis turns a document and cursor position into the structural
// facts the prompt is built from: nearby symbols, the enclosing scope, the
// code window around the cursor, the expected indentation and the imports
// that matter for the code being edited.
//
// Every function here is a pure, best-effort heuristic over in-memory text.
package analysis

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Paranoid-AF/codelet/lang"
)

// PriorityMarker is appended to symbols found near the cursor.
const PriorityMarker = "*"

// Declaration tag prefixes.
const (
	FunctionTag = "function:"
	ClassTag    = "class:"
)

// Region is a piece of text to extract symbols from.
type Region struct {
	Text         string
	HighPriority bool
}

var (
	identRe = regexp.MustCompile(`\b[A-Za-z_]\w*`)
	callRe  = regexp.MustCompile(`\b([A-Za-z_]\w*)\(`)
	chainRe = regexp.MustCompile(`\b[A-Za-z_]\w*(?:\.[A-Za-z_]\w*)+`)
)

// ExtractSymbols collects identifiers, calls, property paths and tagged
// declarations from regions, dropping keywords of the analyzer's language.
// The result is sorted. A symbol seen in any high-priority region carries
// PriorityMarker.
func ExtractSymbols(regions []Region, a lang.Analyzer) (symbols []string) {
	seen := make(map[string]bool)
	add := func(sym string, high bool) {
		seen[sym] = seen[sym] || high
	}
	defer func() {
		if recover() != nil {
			symbols = collectSymbols(seen)
		}
	}()

	for _, r := range regions {
		if r.Text == "" {
			continue
		}
		for _, word := range identRe.FindAllString(r.Text, -1) {
			if !a.IsKeyword(word) {
				add(word, r.HighPriority)
			}
		}
		for _, m := range callRe.FindAllStringSubmatch(r.Text, -1) {
			if !a.IsKeyword(m[1]) {
				add(m[1]+"()", r.HighPriority)
			}
		}
		for _, chain := range chainRe.FindAllString(r.Text, -1) {
			base := chain[:strings.IndexByte(chain, '.')]
			if !a.IsKeyword(base) {
				add(base, r.HighPriority)
			}
			add(chain, r.HighPriority)
		}
		for _, s := range a.Structures(r.Text) {
			if s.Name == "" || a.IsKeyword(s.Name) {
				continue
			}
			switch {
			case s.Kind.IsCallable():
				add(FunctionTag+s.Name, r.HighPriority)
			case s.Kind.IsTypeLike():
				add(ClassTag+s.Name, r.HighPriority)
			}
		}
	}
	return collectSymbols(seen)
}

func collectSymbols(seen map[string]bool) []string {
	out := make([]string, 0, len(seen))
	for sym, high := range seen {
		if high {
			sym += PriorityMarker
		}
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// IsHighPriority reports whether symbol carries the priority marker.
func IsHighPriority(symbol string) bool {
	return strings.HasSuffix(symbol, PriorityMarker)
}

// StripMarker removes the priority marker.
func StripMarker(symbol string) string {
	return strings.TrimSuffix(symbol, PriorityMarker)
}

// BaseName reduces a symbol to the identifier an import could bind:
// "obj.prop*" and "obj()" both become "obj", "class:Repo" becomes "Repo".
func BaseName(symbol string) string {
	s := StripMarker(symbol)
	s = strings.TrimSuffix(s, "()")
	s = strings.TrimPrefix(s, FunctionTag)
	s = strings.TrimPrefix(s, ClassTag)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	return s
}
