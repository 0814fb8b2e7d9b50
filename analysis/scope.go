package analysis

import (
	"sort"
	"strings"

	"github.com/Paranoid-AF/codelet/document"
	"github.com/Paranoid-AF/codelet/lang"
)

// GlobalScope is the description used when no named declaration encloses
// the cursor.
const GlobalScope = "global scope"

// ScopeConfig bounds the scope search.
type ScopeConfig struct {
	// Lookback is how many lines above the cursor are searched for
	// declarations.
	Lookback int
	// SignatureLines is how many lines, starting at a declaration, may hold
	// its opening brace.
	SignatureLines int
}

// DefaultScopeConfig returns the default search bounds.
func DefaultScopeConfig() ScopeConfig {
	return ScopeConfig{Lookback: 60, SignatureLines: 5}
}

// Scope is a named declaration and the lines its body covers.
type Scope struct {
	Kind  lang.Kind
	Name  string
	Range document.Range
}

// ScopeResolver finds the declarations enclosing a position.
type ScopeResolver struct {
	cfg ScopeConfig
}

// NewScopeResolver returns a resolver; zero fields of cfg take defaults.
func NewScopeResolver(cfg ScopeConfig) *ScopeResolver {
	def := DefaultScopeConfig()
	if cfg.Lookback <= 0 {
		cfg.Lookback = def.Lookback
	}
	if cfg.SignatureLines <= 0 {
		cfg.SignatureLines = def.SignatureLines
	}
	return &ScopeResolver{cfg: cfg}
}

// Resolve returns the innermost declaration whose body contains pos, found by
// scanning upward from the cursor line.
func (r *ScopeResolver) Resolve(doc *document.Document, pos document.Position, a lang.Analyzer) (Scope, bool) {
	chain := r.scan(doc, doc.Clamp(pos), a)
	if len(chain) == 0 {
		return Scope{}, false
	}
	return chain[0], true
}

// Describe renders the declarations enclosing pos, innermost first, such as
// "inside method run in class Worker". It returns GlobalScope when none is
// found.
func (r *ScopeResolver) Describe(doc *document.Document, pos document.Position, a lang.Analyzer) string {
	return describeChain(r.scan(doc, doc.Clamp(pos), a))
}

// DescribeFromStructures is like Describe but takes its candidates from a
// structure list with document offsets instead of scanning upward.
func (r *ScopeResolver) DescribeFromStructures(doc *document.Document, pos document.Position, a lang.Analyzer, structures []lang.Structure) string {
	pos = doc.Clamp(pos)
	cursor := doc.OffsetAt(pos)
	var chain []Scope
	for _, s := range structures {
		if !s.Kind.IsScope() || s.Offset > cursor {
			continue
		}
		line := doc.PositionAt(s.Offset).Line
		if sc, ok := r.scopeAt(doc, line, s.Kind, s.Name, a); ok && r.valid(doc, sc, pos) {
			chain = append(chain, sc)
		}
	}
	return describeChain(innermostFirst(chain))
}

// scan collects every declaration within the lookback window whose body
// contains pos, innermost first.
func (r *ScopeResolver) scan(doc *document.Document, pos document.Position, a lang.Analyzer) []Scope {
	rules := a.ScopeRules()
	if rules.Indented {
		return r.scanIndented(doc, pos, rules)
	}
	first := pos.Line - r.cfg.Lookback
	if first < 0 {
		first = 0
	}
	var chain []Scope
	for line := pos.Line; line >= first; line-- {
		kind, name, ok := rules.Declaration(doc.LineAt(line))
		if !ok || !kind.IsScope() {
			continue
		}
		if sc, ok := r.scopeAt(doc, line, kind, name, a); ok && r.valid(doc, sc, pos) {
			chain = append(chain, sc)
		}
	}
	return innermostFirst(chain)
}

// scanIndented walks upward tracking an indentation ceiling: each strictly
// shallower def or class line is an enclosing declaration.
func (r *ScopeResolver) scanIndented(doc *document.Document, pos document.Position, rules lang.ScopeRules) []Scope {
	ceiling := cursorIndent(doc, pos)
	var chain []Scope
	for line := pos.Line - 1; line >= 0 && ceiling > 0; line-- {
		text := doc.LineAt(line)
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		ind := indentWidth(text)
		if ind >= ceiling {
			continue
		}
		ceiling = ind
		kind, name, ok := rules.Declaration(text)
		if !ok || !kind.IsScope() {
			continue
		}
		sc := Scope{Kind: kind, Name: name, Range: indentedRange(doc, line)}
		if r.valid(doc, sc, pos) {
			chain = append(chain, sc)
		}
	}
	return chain
}

// cursorIndent is the indentation the cursor line belongs to. A blank line
// without typed indentation inherits it from the previous non-blank line, one
// level deeper when that line opens a block.
func cursorIndent(doc *document.Document, pos document.Position) int {
	cur := doc.LineAt(pos.Line)
	if strings.TrimSpace(cur) != "" {
		return indentWidth(cur)
	}
	if w := indentWidth(cur[:pos.Character]); w > 0 {
		return w
	}
	for line := pos.Line - 1; line >= 0; line-- {
		text := doc.LineAt(line)
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		if strings.HasSuffix(trimmed, ":") {
			return indentWidth(text) + 1
		}
		return indentWidth(text)
	}
	return 0
}

// scopeAt computes the body range of the declaration on line.
func (r *ScopeResolver) scopeAt(doc *document.Document, line int, kind lang.Kind, name string, a lang.Analyzer) (Scope, bool) {
	rules := a.ScopeRules()
	sc := Scope{Kind: kind, Name: name}
	if rules.Indented {
		sc.Range = indentedRange(doc, line)
		return sc, true
	}
	rng, ok := r.braceRange(doc, line, rules)
	if !ok {
		rng, ok = arrowRange(doc, line, rules)
	}
	sc.Range = rng
	return sc, ok
}

// valid applies the sanity checks: inside the document, containing pos and
// spanning at least two lines.
func (r *ScopeResolver) valid(doc *document.Document, sc Scope, pos document.Position) bool {
	if sc.Range.Start.Line < 0 || sc.Range.End.Line >= doc.LineCount() {
		return false
	}
	return sc.Range.LineSpan() >= 2 && sc.Range.Contains(pos)
}

// braceRange finds the opening brace of the declaration on line at paren
// depth 0 within the signature window, then its matching closing brace. An
// unclosed body extends to the end of the document.
func (r *ScopeResolver) braceRange(doc *document.Document, line int, rules lang.ScopeRules) (document.Range, bool) {
	text := doc.Text()
	start := doc.LineStart(line)
	limit := doc.LineEnd(line + r.cfg.SignatureLines - 1)

	open, depth := -1, 0
	walkCode(text, start, rules.HashComments, func(i int, c byte) bool {
		if i >= limit {
			return false
		}
		switch c {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ';':
			if depth <= 0 {
				return false
			}
		case '{':
			if depth <= 0 {
				open = i
				return false
			}
		}
		return true
	})
	if open < 0 {
		return document.Range{}, false
	}

	end, braces := len(text), 0
	walkCode(text, open, rules.HashComments, func(i int, c byte) bool {
		switch c {
		case '{':
			braces++
		case '}':
			braces--
			if braces == 0 {
				end = i
				return false
			}
		}
		return true
	})
	return document.Range{
		Start: document.Position{Line: line},
		End:   doc.PositionAt(end),
	}, true
}

// arrowRange treats a brace-less declaration with a lambda marker as a
// bodyless expression function spanning its line, plus the next line when the
// marker starts there.
func arrowRange(doc *document.Document, line int, rules lang.ScopeRules) (document.Range, bool) {
	if rules.Arrow == nil {
		return document.Range{}, false
	}
	end := line
	if !rules.Arrow.MatchString(doc.LineAt(line)) {
		next := strings.TrimSpace(doc.LineAt(line + 1))
		if line+1 >= doc.LineCount() || !rules.Arrow.MatchString(next) || rules.Arrow.FindStringIndex(next)[0] != 0 {
			return document.Range{}, false
		}
		end = line + 1
	}
	return document.Range{
		Start: document.Position{Line: line},
		End:   document.Position{Line: end, Character: len(doc.LineAt(end))},
	}, true
}

// indentedRange covers a def or class line up to the line before the next
// non-blank line at or below its indentation.
func indentedRange(doc *document.Document, line int) document.Range {
	base := indentWidth(doc.LineAt(line))
	end := doc.LineCount() - 1
	for l := line + 1; l < doc.LineCount(); l++ {
		text := doc.LineAt(l)
		if strings.TrimSpace(text) != "" && indentWidth(text) <= base {
			end = l - 1
			break
		}
	}
	return document.Range{
		Start: document.Position{Line: line},
		End:   document.Position{Line: end, Character: len(doc.LineAt(end))},
	}
}

// innermostFirst orders containing scopes by greatest start, then smallest
// span, and drops duplicates of the same declaration line.
func innermostFirst(chain []Scope) []Scope {
	sort.SliceStable(chain, func(i, j int) bool {
		si, sj := chain[i].Range, chain[j].Range
		if si.Start.Line != sj.Start.Line {
			return si.Start.Line > sj.Start.Line
		}
		return si.End.Before(sj.End)
	})
	var out []Scope
	for _, sc := range chain {
		if len(out) > 0 && sc.Range.Start.Line == out[len(out)-1].Range.Start.Line {
			continue
		}
		out = append(out, sc)
	}
	return out
}

func describeChain(chain []Scope) string {
	if len(chain) == 0 {
		return GlobalScope
	}
	parts := make([]string, len(chain))
	for i, sc := range chain {
		var parent *Scope
		if i+1 < len(chain) {
			parent = &chain[i+1]
		}
		parts[i] = scopeNoun(sc, parent)
	}
	return "inside " + strings.Join(parts, " in ")
}

func scopeNoun(sc Scope, parent *Scope) string {
	noun := string(sc.Kind)
	switch sc.Kind {
	case lang.KindFunction:
		if parent != nil && parent.Kind == lang.KindClass {
			noun = "method"
		}
	case lang.KindArrowFunction:
		noun = "arrow function"
	}
	if sc.Name == "" {
		return "anonymous " + noun
	}
	return noun + " " + sc.Name
}

// walkCode calls fn for each byte of text from offset start that lies outside
// string literals and comments, until fn returns false. Single and double
// quoted strings end at a newline; backtick strings may span lines.
func walkCode(text string, start int, hash bool, fn func(i int, c byte) bool) {
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '/' && i+1 < len(text) && text[i+1] == '/', hash && c == '#':
			nl := strings.IndexByte(text[i:], '\n')
			if nl < 0 {
				return
			}
			i += nl
			continue
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return
			}
			i += end + 3
			continue
		case c == '"' || c == '\'' || c == '`':
			if end, ok := stringEnd(text, i); ok {
				i = end
				continue
			}
		}
		if !fn(i, c) {
			return
		}
	}
}

// stringEnd returns the offset of the quote closing the string opened at i.
// A quote with no closer on its line is not treated as a string, which keeps
// apostrophes and lifetimes from swallowing code.
func stringEnd(text string, i int) (int, bool) {
	q := text[i]
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case q:
			return j, true
		case '\n':
			if q != '`' {
				return 0, false
			}
		}
	}
	return 0, false
}

func indentWidth(line string) int {
	w := 0
	for _, c := range line {
		switch c {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}
