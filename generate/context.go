package generate

import (
	"log/slog"
	"strings"

	"github.com/Paranoid-AF/codelet"
	"github.com/Paranoid-AF/codelet/analysis"
	"github.com/Paranoid-AF/codelet/document"
	"github.com/Paranoid-AF/codelet/lang"
)

// nearbyLines is how many lines after the cursor count as high priority for
// symbols even outside the enclosing scope.
const nearbyLines = 5

// GatherOptions carries the editor settings of one request.
type GatherOptions struct {
	TabSize      int
	InsertSpaces bool
}

// Gatherer builds the context record for a cursor position. It does no I/O
// and is safe for concurrent use.
type Gatherer struct {
	registry *lang.Registry
	resolver *analysis.ScopeResolver
	bounds   analysis.BoundsConfig
}

// NewGatherer creates a new context gatherer. cfg may be nil for defaults.
func NewGatherer(registry *lang.Registry, cfg *codelet.Config) *Gatherer {
	bounds := analysis.DefaultBoundsConfig()
	if cfg != nil {
		c := cfg.Context
		bounds.SmallDocumentChars = c.SmallDocumentChars
		bounds.SmallPrefixChars = c.SmallPrefixChars
		bounds.ContextLines = c.ContextLines
		if c.ScopeLookback > 0 {
			bounds.Scope.Lookback = c.ScopeLookback
		}
		if c.SignatureLines > 0 {
			bounds.Scope.SignatureLines = c.SignatureLines
		}
	}
	return &Gatherer{
		registry: registry,
		resolver: analysis.NewScopeResolver(bounds.Scope),
		bounds:   bounds,
	}
}

// Gather collects context around pos. Each step is isolated: a step that
// panics is logged and its field left empty.
func (g *Gatherer) Gather(doc *document.Document, pos document.Position, opts GatherOptions) *codelet.ContextRecord {
	pos = doc.Clamp(pos)
	a := g.registry.Lookup(doc.LanguageID())
	line := doc.LineAt(pos.Line)

	rec := &codelet.ContextRecord{
		BeforeCursor: line[:pos.Character],
		AfterCursor:  line[pos.Character:],
		LanguageID:   doc.LanguageID(),
		FileName:     doc.FileName(),
		CursorOffset: doc.OffsetAt(pos),
		Position:     pos,
	}
	rec.Indentation = lang.LeadingWhitespace(rec.BeforeCursor)

	bounds := safely("range", func() analysis.Bounds {
		return analysis.SelectContextRange(doc, pos, a, g.bounds)
	})
	rec.BeforeCode = bounds.Before
	rec.AfterCode = bounds.After
	rec.RangeStrategy = bounds.Strategy

	rec.ExpectedIndentation = safely("indentation", func() string {
		unit := analysis.IndentUnit(opts.TabSize, opts.InsertSpaces)
		return analysis.ExpectedIndentation(previousCodeLine(doc, pos.Line), rec.BeforeCursor, a.Family(), unit)
	})

	rec.Structures = safely("structures", func() []lang.Structure {
		structures := windowStructures(doc, pos, bounds, a)
		if len(structures) == 0 && a.Language() != lang.Generic {
			structures = windowStructures(doc, pos, bounds, g.registry.Generic())
		}
		return structures
	})

	// Scope candidates come from the whole document so a declaration above
	// the window still names the enclosing scope.
	rec.CurrentScope = safely("scope", func() string {
		var sa lang.Analyzer = a
		structures := a.Structures(doc.Text())
		if len(structures) == 0 && a.Language() != lang.Generic {
			sa = g.registry.Generic()
			structures = sa.Structures(doc.Text())
		}
		desc := g.resolver.DescribeFromStructures(doc, pos, sa, structures)
		if desc == analysis.GlobalScope {
			desc = g.resolver.Describe(doc, pos, a)
		}
		return desc
	})
	if rec.CurrentScope == "" {
		rec.CurrentScope = analysis.GlobalScope
	}

	imports := safely("imports", func() []lang.Import {
		imports := a.Imports(doc.Text())
		if len(imports) == 0 {
			imports = lang.GenericImports(doc.Text())
		}
		return imports
	})

	rec.Symbols = safely("symbols", func() []string {
		regions := symbolRegions(doc, pos, bounds)
		for i := range regions {
			regions[i].Text = withoutImports(regions[i].Text, imports)
		}
		return analysis.ExtractSymbols(regions, a)
	})

	rec.RelatedImports = safely("related imports", func() []string {
		return analysis.RelatedImports(imports, rec.Symbols)
	})

	rec.SyntaxContext = safely("syntax", func() string {
		before := bounds.Before + rec.BeforeCursor
		if s := a.SyntaxContext(before); s != "" {
			return s
		}
		return lang.BasicSyntaxContext(before)
	})

	if rec.Symbols == nil {
		rec.Symbols = []string{}
	}
	if rec.Structures == nil {
		rec.Structures = []lang.Structure{}
	}
	if rec.RelatedImports == nil {
		rec.RelatedImports = []string{}
	}
	return rec
}

// windowStructures runs a over the before, cursor and after lines and
// rebases the offsets onto the document.
func windowStructures(doc *document.Document, pos document.Position, b analysis.Bounds, a lang.Analyzer) []lang.Structure {
	start := doc.LineStart(pos.Line) - len(b.Before)
	text := b.Before + doc.LinesText(pos.Line, pos.Line+1) + b.After
	structures := a.Structures(text)
	for i := range structures {
		structures[i].Offset += start
	}
	return structures
}

// symbolRegions splits the window into regions. Everything up to the cursor
// line is high priority, and so are the lines after it that sit inside the
// enclosing scope or close to the cursor.
func symbolRegions(doc *document.Document, pos document.Position, b analysis.Bounds) []analysis.Region {
	regions := []analysis.Region{
		{Text: b.Before, HighPriority: true},
		{Text: doc.LineAt(pos.Line), HighPriority: true},
	}
	if b.After == "" {
		return regions
	}

	lastHigh := pos.Line + nearbyLines
	if b.Scope != nil && b.Scope.Range.End.Line > lastHigh {
		lastHigh = b.Scope.Range.End.Line
	}
	after := strings.SplitAfter(b.After, "\n")
	split := lastHigh - pos.Line
	if split > len(after) {
		split = len(after)
	}
	regions = append(regions,
		analysis.Region{Text: strings.Join(after[:split], ""), HighPriority: true},
		analysis.Region{Text: strings.Join(after[split:], "")},
	)
	return regions
}

// withoutImports blanks the import statements in text so the names they
// bind only count as symbols where they are used.
func withoutImports(text string, imports []lang.Import) string {
	for _, imp := range imports {
		stmt := imp.Source
		if stmt == "" {
			stmt = imp.Statement
		}
		if stmt != "" {
			text = strings.Replace(text, stmt, "", 1)
		}
	}
	return text
}

// previousCodeLine returns the nearest non-blank line above line.
func previousCodeLine(doc *document.Document, line int) string {
	for i := line - 1; i >= 0; i-- {
		if l := doc.LineAt(i); strings.TrimSpace(l) != "" {
			return l
		}
	}
	return ""
}

// safely runs one analysis step, turning a panic into the zero value.
func safely[T any](step string, fn func() T) (out T) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("context step failed", "step", step, "panic", r)
			var zero T
			out = zero
		}
	}()
	return fn()
}
