package generate

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/Paranoid-AF/codelet/analysis"
	"github.com/Paranoid-AF/codelet/document"
	"github.com/Paranoid-AF/codelet/lang"
)

func newTestGatherer() *Gatherer {
	return NewGatherer(lang.NewRegistry(), nil)
}

func TestGatherSplitsCursorLine(t *testing.T) {
	doc := document.New("a.js", "javascript", "const total = sum(items);\n")
	rec := newTestGatherer().Gather(doc, document.Position{Line: 0, Character: 14}, GatherOptions{InsertSpaces: true})

	if rec.BeforeCursor != "const total = " {
		t.Errorf("before cursor = %q", rec.BeforeCursor)
	}
	if rec.AfterCursor != "sum(items);" {
		t.Errorf("after cursor = %q", rec.AfterCursor)
	}
	if rec.CursorOffset != 14 {
		t.Errorf("cursor offset = %d, want 14", rec.CursorOffset)
	}
	if rec.Position != (document.Position{Line: 0, Character: 14}) {
		t.Errorf("position = %+v", rec.Position)
	}
}

func TestGatherRangeIsContiguous(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 400; i++ {
		sb.WriteString("let value = compute(value, 1);\n")
	}
	text := sb.String()
	doc := document.New("big.js", "javascript", text)
	pos := document.Position{Line: 200, Character: 4}

	rec := newTestGatherer().Gather(doc, pos, GatherOptions{InsertSpaces: true})
	if rec.RangeStrategy != analysis.StrategyWindow {
		t.Errorf("expected window strategy, got %q", rec.RangeStrategy)
	}
	window := rec.BeforeCode + doc.LinesText(pos.Line, pos.Line+1) + rec.AfterCode
	if !strings.Contains(text, window) {
		t.Error("before, cursor line and after should be a contiguous slice of the document")
	}
	if !strings.HasSuffix(text[:doc.LineStart(pos.Line)], rec.BeforeCode) {
		t.Error("before code should end at the cursor line")
	}
}

func TestGatherStructuresUseDocumentOffsets(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 120; i++ {
		sb.WriteString("// filler line to push the window down the file\n")
	}
	sb.WriteString("function render(view) {\n")
	sb.WriteString("  if (view.ready) {\n")
	sb.WriteString("    view.draw();\n")
	sb.WriteString("  }\n")
	sb.WriteString("}\n")
	text := sb.String()
	doc := document.New("view.js", "javascript", text)

	rec := newTestGatherer().Gather(doc, document.Position{Line: 122, Character: 4}, GatherOptions{InsertSpaces: true})
	if len(rec.Structures) == 0 {
		t.Fatal("expected structures")
	}
	found := false
	for _, s := range rec.Structures {
		if s.Kind == lang.KindFunction && s.Name == "render" {
			found = true
			if !strings.HasPrefix(text[s.Offset:], "function render") {
				t.Errorf("offset %d does not point at the declaration", s.Offset)
			}
		}
	}
	if !found {
		t.Errorf("expected function render in %+v", rec.Structures)
	}
	for i := 1; i < len(rec.Structures); i++ {
		if rec.Structures[i].Offset < rec.Structures[i-1].Offset {
			t.Fatal("structures should be sorted by offset")
		}
	}
	if rec.CurrentScope != "inside function render" {
		t.Errorf("scope = %q", rec.CurrentScope)
	}
}

func TestGatherGenericFallback(t *testing.T) {
	doc := document.New("script.xyz", "unknownlang", "function greet(name) {\n  \n}\n")
	rec := newTestGatherer().Gather(doc, document.Position{Line: 1, Character: 2}, GatherOptions{InsertSpaces: true})

	if rec.LanguageID != "unknownlang" {
		t.Errorf("language id = %q", rec.LanguageID)
	}
	if len(rec.Structures) == 0 {
		t.Error("generic analyzer should find the function")
	}
}

func TestGatherRelatedImports(t *testing.T) {
	text := "import { readFile } from \"fs\";\nimport path from \"path\";\n\nfunction load(p) {\n  return readFile(\n}\n"
	doc := document.New("load.js", "javascript", text)
	rec := newTestGatherer().Gather(doc, document.Position{Line: 4, Character: 18}, GatherOptions{InsertSpaces: true})

	if !slices.Equal(rec.RelatedImports, []string{`import { readFile } from "fs";`}) {
		t.Errorf("related imports = %q", rec.RelatedImports)
	}
	for _, imp := range rec.RelatedImports {
		if strings.Contains(imp, "path") {
			t.Errorf("unused import reported: %q", imp)
		}
	}
	if !slices.Contains(rec.Symbols, "readFile()*") && !slices.Contains(rec.Symbols, "readFile*") {
		t.Errorf("expected readFile among symbols, got %v", rec.Symbols)
	}
}

func TestGatherUnusedGoBlockImport(t *testing.T) {
	text := "package main\n\nimport (\n\t\"fmt\"\n\t\"strings\"\n)\n\nfunc main() {\n\tfmt.Println(\"hi\")\n\t\n}\n"
	doc := document.New("main.go", "go", text)
	rec := newTestGatherer().Gather(doc, document.Position{Line: 9, Character: 1}, GatherOptions{TabSize: 4})

	if !slices.Equal(rec.RelatedImports, []string{`import "fmt"`}) {
		t.Errorf("related imports = %q", rec.RelatedImports)
	}
	for _, s := range rec.Symbols {
		if analysis.StripMarker(s) == "strings" {
			t.Errorf("unused import name among symbols: %v", rec.Symbols)
		}
	}
}

func TestGatherSymbolsAreHighPriorityNearCursor(t *testing.T) {
	text := "const a = obj.prop;\n"
	doc := document.New("a.js", "javascript", text)
	rec := newTestGatherer().Gather(doc, document.Position{Line: 0, Character: len("const a = obj.prop;")}, GatherOptions{InsertSpaces: true})

	for _, want := range []string{"obj*", "obj.prop*"} {
		if !slices.Contains(rec.Symbols, want) {
			t.Errorf("expected %q in %v", want, rec.Symbols)
		}
	}
	for _, s := range rec.Symbols {
		if analysis.StripMarker(s) == "const" {
			t.Error("keywords must not be symbols")
		}
	}
}

func TestGatherExpectedIndentation(t *testing.T) {
	text := "if (x > 0) {\n\n}\n"
	doc := document.New("a.js", "javascript", text)
	pos := document.Position{Line: 1, Character: 0}

	rec := newTestGatherer().Gather(doc, pos, GatherOptions{TabSize: 4, InsertSpaces: true})
	if rec.ExpectedIndentation != "    " {
		t.Errorf("expected four spaces, got %q", rec.ExpectedIndentation)
	}
	rec = newTestGatherer().Gather(doc, pos, GatherOptions{TabSize: 4})
	if rec.ExpectedIndentation != "\t" {
		t.Errorf("expected a tab, got %q", rec.ExpectedIndentation)
	}
}

func TestGatherScopeDeclaredAboveWindow(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "const pad%02d = compute(%d, 'padding padding');\n", i, i)
	}
	sb.WriteString("function longBody(input) {\n")
	for i := 0; i < 70; i++ {
		fmt.Fprintf(&sb, "  step(input, %d);\n", i)
	}
	cursor := strings.Count(sb.String(), "\n")
	sb.WriteString("  \n")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&sb, "  step(input, %d);\n", 100+i)
	}
	sb.WriteString("}\n")

	doc := document.New("long.js", "javascript", sb.String())
	rec := newTestGatherer().Gather(doc, document.Position{Line: cursor, Character: 2}, GatherOptions{InsertSpaces: true})
	if rec.RangeStrategy != analysis.StrategyWindow {
		t.Fatalf("strategy = %q, want %q", rec.RangeStrategy, analysis.StrategyWindow)
	}
	if strings.Contains(rec.BeforeCode, "function longBody") {
		t.Fatal("declaration should sit above the window")
	}
	if rec.CurrentScope != "inside function longBody" {
		t.Errorf("scope = %q", rec.CurrentScope)
	}
}

func TestGatherGlobalScope(t *testing.T) {
	doc := document.New("a.js", "javascript", "const x = 1;\n\n")
	rec := newTestGatherer().Gather(doc, document.Position{Line: 1}, GatherOptions{InsertSpaces: true})
	if rec.CurrentScope != analysis.GlobalScope {
		t.Errorf("scope = %q, want %q", rec.CurrentScope, analysis.GlobalScope)
	}
	if rec.Symbols == nil || rec.Structures == nil || rec.RelatedImports == nil {
		t.Error("list fields should never be nil")
	}
}

func TestSymbolRegions(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("line\n")
	}
	doc := document.New("a.txt", "plaintext", sb.String())
	pos := document.Position{Line: 2}
	b := analysis.Bounds{
		Before: doc.LinesText(0, 2),
		After:  doc.LinesText(3, 20),
	}

	regions := symbolRegions(doc, pos, b)
	if len(regions) != 4 {
		t.Fatalf("expected 4 regions, got %d", len(regions))
	}
	if got := strings.Count(regions[2].Text, "\n"); got != nearbyLines {
		t.Errorf("expected %d nearby lines, got %d", nearbyLines, got)
	}
	if !regions[2].HighPriority || regions[3].HighPriority {
		t.Error("only nearby lines after the cursor should be high priority")
	}
}

func TestSafelyRecovers(t *testing.T) {
	got := safely("boom", func() []string { panic("boom") })
	if got != nil {
		t.Errorf("expected zero value, got %v", got)
	}
	if safely("ok", func() int { return 3 }) != 3 {
		t.Error("expected the step's result")
	}
}
