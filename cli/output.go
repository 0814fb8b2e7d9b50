package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/term"

	"github.com/Paranoid-AF/codelet"
	"github.com/Paranoid-AF/codelet/lang"
	"github.com/Paranoid-AF/codelet/prompt"
)

// highlightStyle is the chroma style used for terminal output.
const highlightStyle = "monokai"

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// highlight colors text as languageID for a 256-color terminal. The text is
// returned unchanged when it cannot be tokenised.
func highlight(text, languageID string) string {
	lex := chroma.Coalesce(lang.Lexer(languageID))
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return text
	}
	fmtr := formatters.Get("terminal256")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}
	var buf strings.Builder
	if err := fmtr.Format(&buf, styles.Get(highlightStyle), it); err != nil {
		return text
	}
	return strings.TrimRight(buf.String(), "\n")
}

// entry is one inspected request in TOML form.
type entry struct {
	Request requestEntry `toml:"request"`
	Context contextEntry `toml:"context"`
	Prompt  promptEntry  `toml:"prompt"`
}

type requestEntry struct {
	Timestamp string `toml:"timestamp"`
	File      string `toml:"file"`
	Language  string `toml:"language"`
	Line      int    `toml:"line"`
	Character int    `toml:"character"`
	Mode      string `toml:"mode,omitempty"`
}

type contextEntry struct {
	Strategy            string   `toml:"strategy"`
	Scope               string   `toml:"scope"`
	Syntax              string   `toml:"syntax"`
	BeforeCursor        string   `toml:"before_cursor"`
	AfterCursor         string   `toml:"after_cursor"`
	Indentation         string   `toml:"indentation"`
	ExpectedIndentation string   `toml:"expected_indentation"`
	Symbols             []string `toml:"symbols"`
	RelatedImports      []string `toml:"related_imports"`
	Structures          []string `toml:"structures"`
}

type promptEntry struct {
	Tokens int    `toml:"approx_tokens"`
	Text   string `toml:"text"`
}

// writeEntry writes a single TOML-formatted entry to w.
func writeEntry(w io.Writer, req *codelet.Request, rec *codelet.ContextRecord, text string) error {
	e := entry{
		Request: requestEntry{
			Timestamp: time.Now().Format(time.RFC3339),
			File:      req.FileName,
			Language:  rec.LanguageID,
			Line:      rec.Position.Line,
			Character: rec.Position.Character,
			Mode:      req.Mode,
		},
		Context: contextEntry{
			Strategy:            rec.RangeStrategy,
			Scope:               rec.CurrentScope,
			Syntax:              rec.SyntaxContext,
			BeforeCursor:        rec.BeforeCursor,
			AfterCursor:         rec.AfterCursor,
			Indentation:         rec.Indentation,
			ExpectedIndentation: rec.ExpectedIndentation,
			Symbols:             rec.Symbols,
			RelatedImports:      rec.RelatedImports,
		},
		Prompt: promptEntry{
			Tokens: prompt.EstimateTokens(text),
			Text:   text,
		},
	}
	for _, s := range rec.Structures {
		e.Context.Structures = append(e.Context.Structures, strings.TrimSpace(fmt.Sprintf("%s %s", s.Kind, s.Name)))
	}

	fmt.Fprintf(w, "# %s\n\n", strings.Repeat("═", 60))
	return toml.NewEncoder(w).Encode(e)
}
