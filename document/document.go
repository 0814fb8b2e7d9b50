// Package document provides the editor buffer abstraction used by the
// context pipeline: line access, offset/position conversion and the
// language identifier of the buffer.
package document

import (
	"strings"
)

// Position is a zero-based line/character location. Character counts bytes
// within the line.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Before reports whether p comes strictly before q.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Character < q.Character
}

// Range is a half-open span [Start, End) of the buffer.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether p lies inside r (End is inclusive so a cursor
// placed right before a closing delimiter still counts as inside).
func (r Range) Contains(p Position) bool {
	return !p.Before(r.Start) && !r.End.Before(p)
}

// LineSpan returns the number of lines r touches.
func (r Range) LineSpan() int {
	return r.End.Line - r.Start.Line + 1
}

// Document is an immutable snapshot of an editor buffer.
type Document struct {
	fileName   string
	languageID string
	text       string
	lines      []string
	lineStarts []int
}

// New creates a document snapshot. CRLF line endings are normalized to LF so
// offsets always refer to the normalized text.
func New(fileName, languageID, text string) *Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	starts := make([]int, len(lines))
	off := 0
	for i, l := range lines {
		starts[i] = off
		off += len(l) + 1
	}
	return &Document{
		fileName:   fileName,
		languageID: languageID,
		text:       text,
		lines:      lines,
		lineStarts: starts,
	}
}

// FileName returns the name the document was opened with.
func (d *Document) FileName() string { return d.fileName }

// LanguageID returns the language tag of the document.
func (d *Document) LanguageID() string { return d.languageID }

// Text returns the full normalized text.
func (d *Document) Text() string { return d.text }

// Len returns the length of the text in bytes.
func (d *Document) Len() int { return len(d.text) }

// LineCount returns the number of lines. An empty document has one line.
func (d *Document) LineCount() int { return len(d.lines) }

// LineAt returns the text of line i without its newline, or "" when i is out
// of range.
func (d *Document) LineAt(i int) string {
	if i < 0 || i >= len(d.lines) {
		return ""
	}
	return d.lines[i]
}

// Lines returns the lines in [from, to), clamped to the document.
func (d *Document) Lines(from, to int) []string {
	from, to = d.clampLines(from, to)
	return d.lines[from:to]
}

// LineStart returns the offset of the first byte of line i.
func (d *Document) LineStart(i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(d.lines) {
		return len(d.text)
	}
	return d.lineStarts[i]
}

// LineEnd returns the offset just past line i including its newline, when the
// line has one.
func (d *Document) LineEnd(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(d.lines)-1 {
		return len(d.text)
	}
	return d.lineStarts[i+1]
}

// Clamp moves p inside the document.
func (d *Document) Clamp(p Position) Position {
	if p.Line < 0 {
		return Position{}
	}
	if p.Line >= len(d.lines) {
		last := len(d.lines) - 1
		return Position{Line: last, Character: len(d.lines[last])}
	}
	if p.Character < 0 {
		p.Character = 0
	}
	if p.Character > len(d.lines[p.Line]) {
		p.Character = len(d.lines[p.Line])
	}
	return p
}

// OffsetAt converts a position to a byte offset, clamping out-of-range input.
func (d *Document) OffsetAt(p Position) int {
	p = d.Clamp(p)
	return d.lineStarts[p.Line] + p.Character
}

// PositionAt converts a byte offset to a position, clamping out-of-range input.
func (d *Document) PositionAt(offset int) Position {
	if offset <= 0 {
		return Position{}
	}
	if offset >= len(d.text) {
		last := len(d.lines) - 1
		return Position{Line: last, Character: len(d.lines[last])}
	}
	// Binary search for the last line start <= offset.
	lo, hi := 0, len(d.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if d.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return Position{Line: lo, Character: offset - d.lineStarts[lo]}
}

// TextBetween returns the text in the offset range [from, to), clamped.
func (d *Document) TextBetween(from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(d.text) {
		to = len(d.text)
	}
	if from >= to {
		return ""
	}
	return d.text[from:to]
}

// TextInRange returns the text covered by r.
func (d *Document) TextInRange(r Range) string {
	return d.TextBetween(d.OffsetAt(r.Start), d.OffsetAt(r.End))
}

// LinesText returns lines [from, to) as a contiguous slice of the document,
// newlines included.
func (d *Document) LinesText(from, to int) string {
	from, to = d.clampLines(from, to)
	if from >= to {
		return ""
	}
	return d.TextBetween(d.LineStart(from), d.LineEnd(to-1))
}

func (d *Document) clampLines(from, to int) (int, int) {
	if from < 0 {
		from = 0
	}
	if to > len(d.lines) {
		to = len(d.lines)
	}
	if from > to {
		from = to
	}
	return from, to
}
