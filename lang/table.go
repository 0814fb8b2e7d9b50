package lang

import (
	"regexp"
	"sort"
	"strings"
)

var rx = regexp.MustCompile

// controlPatterns apply to every language. A leading "}" is allowed so that
// "} else {" and "} catch (e) {" are recognized.
var controlPatterns = []Pattern{
	{Kind: KindIf, Re: rx(`(?m)^[ \t]*(?:\}[ \t]*)?(?:if|elif|unless)\b`)},
	{Kind: KindElse, Re: rx(`(?m)^[ \t]*(?:\}[ \t]*)?else\b`)},
	{Kind: KindFor, Re: rx(`(?m)^[ \t]*(?:for|foreach)\b`)},
	{Kind: KindWhile, Re: rx(`(?m)^[ \t]*(?:\}[ \t]*)?(?:(?:while|until)\b|loop[ \t]*\{)`)},
	{Kind: KindDo, Re: rx(`(?m)^[ \t]*do\b`)},
	{Kind: KindSwitch, Re: rx(`(?m)^[ \t]*(?:switch|select|match|when)(?:[ \t]*[({]|[ \t]+[^ \t=.\n])`)},
	{Kind: KindTry, Re: rx(`(?m)^[ \t]*try\b`)},
	{Kind: KindCatch, Re: rx(`(?m)^[ \t]*(?:\}[ \t]*)?(?:catch|except|finally|rescue)\b`)},
}

// statementRe matches lines led by a word that never starts a declaration.
var statementRe = rx(`^[ \t]*(?:return|else|case|goto|throw|delete|new|yield|await|echo|print|raise|assert|defer|go)\b`)

// langDef is the table a pattern-driven analyzer is built from.
type langDef struct {
	id       string
	family   Family
	keywords map[string]bool
	// decls are declaration and import patterns, in priority order. When
	// two patterns match at the same offset with the same name, the first
	// wins.
	decls   []Pattern
	imports func(text string) []Import
	arrow   *regexp.Regexp
	syntax  syntaxRules
	style   string
}

// tableAnalyzer implements Analyzer from a langDef.
type tableAnalyzer struct {
	def   langDef
	rules ScopeRules
}

func newTableAnalyzer(def langDef) *tableAnalyzer {
	rules := ScopeRules{
		Indented:    def.family == FamilyIndent,
		ControlFlow: controlPatterns,
		Arrow:       def.arrow,
	}
	rules.HashComments = contains(def.syntax.lineComment, "#")
	for _, p := range def.decls {
		if p.Kind != KindImport {
			rules.Declarations = append(rules.Declarations, p)
		}
	}
	if def.imports == nil {
		def.imports = GenericImports
	}
	return &tableAnalyzer{def: def, rules: rules}
}

func (a *tableAnalyzer) Language() string { return a.def.id }

func (a *tableAnalyzer) Family() Family { return a.def.family }

func (a *tableAnalyzer) IsKeyword(word string) bool { return a.def.keywords[word] }

func (a *tableAnalyzer) ScopeRules() ScopeRules { return a.rules }

func (a *tableAnalyzer) Style() string { return a.def.style }

func (a *tableAnalyzer) Imports(text string) []Import { return a.def.imports(text) }

func (a *tableAnalyzer) SyntaxContext(beforeCursor string) string {
	return a.def.syntax.describe(beforeCursor)
}

func (a *tableAnalyzer) Structures(text string) []Structure {
	return matchStructures(text, a.def.decls, a.rules)
}

// matchStructures runs the control-flow patterns and decls over text.
// Declarations on control-flow lines, or named after a control keyword, are
// dropped.
func matchStructures(text string, decls []Pattern, rules ScopeRules) []Structure {
	var out []Structure
	for _, p := range controlPatterns {
		for _, m := range p.Re.FindAllStringIndex(text, -1) {
			out = append(out, Structure{Kind: p.Kind, Offset: skipIndent(text, m[0], m[1])})
		}
	}
	for _, p := range decls {
		for _, m := range p.Re.FindAllStringSubmatchIndex(text, -1) {
			name := ""
			if g := 2 * p.Name; p.Name > 0 && g+1 < len(m) && m[g] >= 0 {
				name = text[m[g]:m[g+1]]
			}
			if controlKeywords[name] {
				continue
			}
			if p.Kind != KindImport {
				if line := lineAt(text, m[0]); statementRe.MatchString(line) || rules.IsControlFlow(line) {
					continue
				}
			}
			out = append(out, Structure{Kind: p.Kind, Name: name, Offset: skipIndent(text, m[0], m[1])})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return dedupeStructures(out)
}

func dedupeStructures(in []Structure) []Structure {
	if len(in) < 2 {
		return in
	}
	out := in[:1]
	for _, s := range in[1:] {
		dup := false
		for k := len(out) - 1; k >= 0 && out[k].Offset == s.Offset; k-- {
			if out[k].Name == s.Name && out[k].Kind.IsControlFlow() == s.Kind.IsControlFlow() {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	return out
}

// skipIndent moves a match start past leading spaces and tabs.
func skipIndent(text string, start, end int) int {
	for start < end && (text[start] == ' ' || text[start] == '\t') {
		start++
	}
	return start
}

// lineAt returns the full line containing offset.
func lineAt(text string, offset int) string {
	start := strings.LastIndexByte(text[:offset], '\n') + 1
	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		return text[start:]
	}
	return text[start : offset+end]
}
