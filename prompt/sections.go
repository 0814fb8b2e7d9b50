package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Paranoid-AF/codelet"
	"github.com/Paranoid-AF/codelet/analysis"
	"github.com/Paranoid-AF/codelet/lang"
)

type sectionID string

const (
	secSystem      sectionID = "system"
	secCode        sectionID = "code"
	secStructure   sectionID = "structure"
	secSyntax      sectionID = "syntax"
	secScope       sectionID = "scope"
	secImports     sectionID = "imports"
	secSymbols     sectionID = "symbols"
	secIndentation sectionID = "indentation"
	secProject     sectionID = "project"
	secStyle       sectionID = "style"
	secRequest     sectionID = "request"
	secFormat      sectionID = "format"
	secNotice      sectionID = "notice"
)

// Notices appended by the truncation pass.
const (
	TruncatedNotice = "Note: the context above was truncated to fit the prompt budget."
	OmittedNotice   = "Note: supplementary context was omitted to fit the prompt budget."
)

type section struct {
	id    sectionID
	title string
	// fence is the code fence language; set only on the code section.
	fence string
	body  string
}

func (s section) render() string {
	var sb strings.Builder
	if s.title != "" {
		sb.WriteString("## ")
		sb.WriteString(s.title)
		sb.WriteString("\n")
	}
	if s.id == secCode {
		sb.WriteString("```")
		sb.WriteString(s.fence)
		sb.WriteString("\n")
		sb.WriteString(s.body)
		sb.WriteString("\n```")
		return sb.String()
	}
	sb.WriteString(s.body)
	return sb.String()
}

// critical sections are always kept.
func (s section) critical() bool {
	switch s.id {
	case secSystem, secCode, secRequest, secFormat, secNotice:
		return true
	}
	return false
}

// priority orders optional sections for the budget; lower goes first.
func (s section) priority() int {
	switch s.id {
	case secSymbols, secIndentation:
		return 0
	case secScope, secSyntax:
		return 1
	}
	return 2
}

// sections builds every enabled section in document order.
func (b *Builder) sections(opts Options, rec *codelet.ContextRecord, project *codelet.ProjectInfo, userPrompt string) []section {
	var a lang.Analyzer
	if b.registry != nil {
		a = b.registry.Lookup(rec.LanguageID)
	}

	secs := []section{
		{id: secSystem, body: b.system},
		codeSection(opts, rec),
	}
	if opts.IncludeStructure {
		if s, ok := structureSection(rec); ok {
			secs = append(secs, s)
		}
	}
	if opts.IncludeSyntax && rec.SyntaxContext != "" {
		secs = append(secs, section{
			id:    secSyntax,
			title: "Syntax",
			body:  "The cursor is " + rec.SyntaxContext + ".\nThe completion must be valid code at exactly this position.",
		})
	}
	if opts.IncludeScope && rec.CurrentScope != "" {
		where := rec.CurrentScope
		if where == analysis.GlobalScope {
			where = "in the global scope"
		}
		secs = append(secs, section{
			id:    secScope,
			title: "Scope",
			body:  "The cursor is " + where + ".\nKeep the completion inside this scope and use its parameters and local variables.",
		})
	}
	if opts.IncludeImports && len(rec.RelatedImports) > 0 {
		secs = append(secs, section{
			id:    secImports,
			title: "Imports",
			body:  strings.Join(rec.RelatedImports, "\n") + "\nPrefer these already-imported names over adding new imports.",
		})
	}
	secs = append(secs, symbolsSection(rec.Symbols, opts.MaxSymbols), indentationSection(rec))
	if opts.IncludeProject && !project.Empty() {
		secs = append(secs, projectSection(project, opts.MaxDependencies))
	}
	if opts.IncludeStyle && a != nil && a.Style() != "" {
		secs = append(secs, section{
			id:    secStyle,
			title: "Style",
			body:  a.Style() + "\nFollow these conventions in the completion.",
		})
	}

	request := strings.TrimSpace(userPrompt)
	if request == "" {
		request = opts.DefaultRequest
	}
	secs = append(secs,
		section{id: secRequest, title: "Request", body: request},
		section{id: secFormat, title: "Output", body: formatInstructions(opts.Mode)},
	)
	return secs
}

func codeSection(opts Options, rec *codelet.ContextRecord) section {
	before, after := rec.BeforeCode, rec.AfterCode
	if opts.Mode == codelet.ModeLine {
		before = lastLines(before, opts.SingleLineWindow)
		after = firstLines(after, opts.SingleLineWindow)
	}
	var sb strings.Builder
	sb.WriteString(before)
	sb.WriteString(rec.BeforeCursor)
	sb.WriteString(CursorMarker)
	sb.WriteString(rec.AfterCursor)
	if after != "" {
		sb.WriteString("\n")
		sb.WriteString(after)
	}
	body := strings.TrimRight(sb.String(), "\n")
	if opts.RedactSecrets {
		body = RedactSecrets(body)
	}
	title := "Code"
	if rec.FileName != "" {
		title = "Code (" + rec.FileName + ")"
	}
	return section{id: secCode, title: title, fence: fenceLanguage(rec.LanguageID), body: body}
}

func structureSection(rec *codelet.ContextRecord) (section, bool) {
	var lines []string
	seen := make(map[string]bool)
	for _, s := range rec.Structures {
		if s.Kind.IsControlFlow() || s.Name == "" {
			continue
		}
		line := "- " + string(s.Kind) + " " + s.Name
		if seen[line] {
			continue
		}
		seen[line] = true
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return section{}, false
	}
	return section{
		id:    secStructure,
		title: "Declarations",
		body:  strings.Join(lines, "\n") + "\nCall and extend these declarations consistently with their existing names and shapes.",
	}, true
}

func symbolsSection(symbols []string, max int) section {
	ranked := rankSymbols(symbols, max)
	body := "No identifiers were found near the cursor."
	if len(ranked) > 0 {
		body = strings.Join(ranked, ", ")
	}
	return section{
		id:    secSymbols,
		title: "Nearby names",
		body:  body + "\nReuse these names where they fit instead of inventing new ones; names marked " + analysis.PriorityMarker + " are closest to the cursor.",
	}
}

// rankSymbols puts high-priority symbols first, then declaration tags, then
// the rest, keeping sorted order inside each group.
func rankSymbols(symbols []string, max int) []string {
	rank := func(s string) int {
		switch {
		case analysis.IsHighPriority(s):
			return 0
		case strings.HasPrefix(s, analysis.FunctionTag), strings.HasPrefix(s, analysis.ClassTag):
			return 1
		}
		return 2
	}
	out := append([]string(nil), symbols...)
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })
	if len(out) > max {
		out = out[:max]
	}
	return out
}

func indentationSection(rec *codelet.ContextRecord) section {
	return section{
		id:    secIndentation,
		title: "Indentation",
		body: fmt.Sprintf("The cursor line is indented with %s; a new line of the completion starts at %s.\nMatch this indentation exactly.",
			describeWhitespace(rec.Indentation), describeWhitespace(rec.ExpectedIndentation)),
	}
}

func describeWhitespace(ws string) string {
	switch {
	case ws == "":
		return "no indentation"
	case strings.Trim(ws, " ") == "":
		return plural(len(ws), "space")
	case strings.Trim(ws, "\t") == "":
		return plural(len(ws), "tab")
	}
	return fmt.Sprintf("%q", ws)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func projectSection(p *codelet.ProjectInfo, maxDeps int) section {
	var lines []string
	if p.Name != "" {
		lines = append(lines, "Project: "+p.Name)
	}
	if len(p.Dependencies) > 0 {
		deps := p.Dependencies
		if len(deps) > maxDeps {
			deps = deps[:maxDeps]
		}
		lines = append(lines, "Dependencies: "+strings.Join(deps, ", "))
	}
	if p.PackageManager != "" {
		lines = append(lines, "Package manager: "+p.PackageManager)
	}
	if len(p.Files) > 0 {
		files := p.Files
		if len(files) > 30 {
			files = files[:30]
		}
		lines = append(lines, "Files: "+strings.Join(files, ", "))
	}
	lines = append(lines, "Only use libraries that appear in the dependency list or the standard library.")
	return section{id: secProject, title: "Project", body: strings.Join(lines, "\n")}
}

func formatInstructions(mode string) string {
	if mode == codelet.ModeSnippet {
		return "Return only the code to insert at " + CursorMarker + ". It may span several lines; stop at the end of the enclosing block. Do not repeat code before the cursor. No markdown fences, no explanations."
	}
	return "Return only the text that completes the current line after " + CursorMarker + ". Do not start new lines. No markdown fences, no explanations."
}

func lastLines(s string, n int) string {
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "")
}

func firstLines(s string, n int) string {
	lines := strings.SplitAfter(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "")
}

// fenceLanguage maps a language id to a markdown fence tag.
func fenceLanguage(id string) string {
	switch id {
	case "javascriptreact":
		return "jsx"
	case "typescriptreact":
		return "tsx"
	case "shellscript":
		return "sh"
	case "generic", "plaintext", "":
		return ""
	}
	return id
}
