package analysis

import (
	"strings"

	"github.com/Paranoid-AF/codelet/document"
	"github.com/Paranoid-AF/codelet/lang"
)

// Range strategies, reported for diagnostics.
const (
	StrategyDocument = "document"
	StrategyPrefix   = "prefix"
	StrategyScope    = "scope"
	StrategyWindow   = "window"
)

// BoundsConfig holds the thresholds of the range bounder.
type BoundsConfig struct {
	SmallDocumentChars int
	SmallPrefixChars   int
	ContextLines       int
	Scope              ScopeConfig
}

// DefaultBoundsConfig returns the default thresholds.
func DefaultBoundsConfig() BoundsConfig {
	return BoundsConfig{
		SmallDocumentChars: 3000,
		SmallPrefixChars:   1500,
		ContextLines:       50,
		Scope:              DefaultScopeConfig(),
	}
}

func (c BoundsConfig) withDefaults() BoundsConfig {
	def := DefaultBoundsConfig()
	if c.SmallDocumentChars <= 0 {
		c.SmallDocumentChars = def.SmallDocumentChars
	}
	if c.SmallPrefixChars <= 0 {
		c.SmallPrefixChars = def.SmallPrefixChars
	}
	if c.ContextLines <= 0 {
		c.ContextLines = def.ContextLines
	}
	return c
}

// Bounds is the code around the cursor line. Before holds whole lines above
// the cursor line and After whole lines below it, so Before, the cursor line
// and After form a contiguous slice of the document.
type Bounds struct {
	Before   string
	After    string
	Strategy string
	// Scope is the resolved enclosing scope, when there is one.
	Scope *Scope
}

// SelectContextRange picks the code window around pos. Small documents are
// used whole; otherwise the enclosing scope bounds the window, with a fixed
// line window as the fallback.
func SelectContextRange(doc *document.Document, pos document.Position, a lang.Analyzer, cfg BoundsConfig) Bounds {
	cfg = cfg.withDefaults()
	pos = doc.Clamp(pos)
	line := pos.Line
	last := doc.LineCount() - 1

	var scope *Scope
	if sc, ok := NewScopeResolver(cfg.Scope).Resolve(doc, pos, a); ok {
		scope = &sc
	}

	if doc.Len() < cfg.SmallDocumentChars {
		return Bounds{
			Before:   doc.LinesText(0, line),
			After:    doc.LinesText(line+1, last+1),
			Strategy: StrategyDocument,
			Scope:    scope,
		}
	}

	if doc.OffsetAt(pos) < cfg.SmallPrefixChars {
		b := Bounds{Before: doc.LinesText(0, line), Strategy: StrategyPrefix, Scope: scope}
		if scope != nil && scope.Range.End.Line >= line {
			b.After = doc.LinesText(line+1, scope.Range.End.Line+1)
		}
		if blank(b.After) && hasContent(doc, line+1, last+1) {
			b.After = doc.LinesText(line+1, line+1+cfg.ContextLines)
		}
		return b
	}

	if scope != nil {
		b := Bounds{
			Before:   doc.LinesText(scope.Range.Start.Line, line),
			After:    doc.LinesText(line+1, scope.Range.End.Line+1),
			Strategy: StrategyScope,
			Scope:    scope,
		}
		emptyAbove := blank(b.Before) && hasContent(doc, 0, line)
		emptyBelow := blank(b.After) && hasContent(doc, line+1, last+1)
		if !emptyAbove && !emptyBelow {
			return b
		}
	}

	return Bounds{
		Before:   doc.LinesText(line-cfg.ContextLines, line),
		After:    doc.LinesText(line+1, line+1+cfg.ContextLines),
		Strategy: StrategyWindow,
		Scope:    scope,
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func hasContent(doc *document.Document, from, to int) bool {
	return !blank(doc.LinesText(from, to))
}
