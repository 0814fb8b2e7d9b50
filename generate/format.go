package generate

import (
	"regexp"
	"strings"

	"github.com/Paranoid-AF/codelet"
	"github.com/Paranoid-AF/codelet/lang"
	"github.com/Paranoid-AF/codelet/prompt"
)

// FormatOptions describes how a completion is inserted.
type FormatOptions struct {
	Mode         string
	TabSize      int
	InsertSpaces bool
}

var reFence = regexp.MustCompile("(?s)```[\\w+#.-]*[ \t]*\n(.*?)(?:\n?[ \t]*```|$)")

// FormatCompletion turns raw model output into the text to insert at the
// cursor described by rec.
func FormatCompletion(raw string, rec *codelet.ContextRecord, opts FormatOptions) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = stripFences(text)
	text = strings.ReplaceAll(text, prompt.CursorMarker, "")
	text = strings.TrimRight(text, " \t\n")

	blankCursor := strings.TrimSpace(rec.BeforeCursor) == ""
	if blankCursor {
		text = strings.TrimLeft(text, "\n")
	}
	text = stripEcho(text, rec.BeforeCursor)
	text = trimOverlap(text, rec.AfterCursor)
	if strings.TrimSpace(text) == "" {
		return ""
	}

	if opts.Mode != codelet.ModeSnippet {
		text = strings.TrimLeft(text, "\n")
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[:i]
		}
		if blankCursor {
			text = strings.TrimLeft(text, " \t")
		}
		return strings.TrimRight(text, " \t")
	}

	in := indenter{tabSize: opts.TabSize, spaces: opts.InsertSpaces}
	if in.tabSize <= 0 {
		in.tabSize = 4
	}
	return in.reindent(text, rec, blankCursor)
}

// stripFences returns the body of the first markdown code block, or text
// unchanged when there is none.
func stripFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	if m := reFence.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return strings.ReplaceAll(text, "```", "")
}

// stripEcho removes a copy of the code before the cursor that the model
// repeated at the start of its answer.
func stripEcho(text, beforeCursor string) string {
	typed := strings.TrimLeft(beforeCursor, " \t")
	if typed == "" {
		return text
	}
	trimmed := strings.TrimLeft(text, " \t")
	if strings.HasPrefix(trimmed, typed) {
		return trimmed[len(typed):]
	}
	return text
}

// trimOverlap drops the longest tail of text that the code after the cursor
// already starts with.
func trimOverlap(text, afterCursor string) string {
	after := strings.TrimSpace(afterCursor)
	n := len(after)
	if n > len(text) {
		n = len(text)
	}
	for ; n > 0; n-- {
		if strings.HasSuffix(text, after[:n]) {
			return strings.TrimRight(text[:len(text)-n], " \t")
		}
	}
	return text
}

type indenter struct {
	tabSize int
	spaces  bool
}

// width returns the column width of leading whitespace ws.
func (in indenter) width(ws string) int {
	col := 0
	for _, c := range ws {
		if c == '\t' {
			col += in.tabSize - col%in.tabSize
		} else {
			col++
		}
	}
	return col
}

// render returns whitespace spanning col columns in the editor's style.
func (in indenter) render(col int) string {
	if col <= 0 {
		return ""
	}
	if in.spaces {
		return strings.Repeat(" ", col)
	}
	return strings.Repeat("\t", col/in.tabSize) + strings.Repeat(" ", col%in.tabSize)
}

// reindent shifts the continuation lines of a multi-line completion so the
// block lines up with the cursor line, keeping their relative indentation.
func (in indenter) reindent(text string, rec *codelet.ContextRecord, blankCursor bool) string {
	lines := strings.Split(text, "\n")
	first := lines[0]

	var base, target int
	if blankCursor {
		base = in.width(lang.LeadingWhitespace(first))
		first = strings.TrimLeft(first, " \t")
		expected := rec.ExpectedIndentation
		if strings.HasPrefix(expected, rec.BeforeCursor) {
			first = expected[len(rec.BeforeCursor):] + first
		} else {
			expected = rec.BeforeCursor
		}
		target = in.width(expected)
	} else {
		base = -1
		for _, l := range lines[1:] {
			if strings.TrimSpace(l) == "" {
				continue
			}
			if w := in.width(lang.LeadingWhitespace(l)); base < 0 || w < base {
				base = w
			}
		}
		target = in.width(rec.Indentation)
	}

	out := make([]string, 0, len(lines))
	out = append(out, first)
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			out = append(out, "")
			continue
		}
		ws := lang.LeadingWhitespace(l)
		col := target + in.width(ws) - base
		out = append(out, in.render(col)+l[len(ws):])
	}
	return strings.Join(out, "\n")
}
