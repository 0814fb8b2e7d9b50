package lang

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Plaintext is the id Detect returns when nothing matches.
const Plaintext = "plaintext"

// lexerIDs maps chroma lexer names to editor language ids.
var lexerIDs = map[string]string{
	"javascript": "javascript",
	"react":      "javascriptreact",
	"typescript": "typescript",
	"tsx":        "typescriptreact",
	"python":     "python",
	"python 2":   "python",
	"go":         "go",
	"java":       "java",
	"c#":         "csharp",
	"kotlin":     "kotlin",
	"c":          "c",
	"c++":        "cpp",
	"rust":       "rust",
	"bash":       "shellscript",
	"zsh":        "shellscript",
}

// Detect guesses the language id of a file from its name, then from its
// content.
func Detect(fileName, text string) string {
	if l := lexers.Match(fileName); l != nil {
		return lexerID(l)
	}
	if text != "" {
		if l := lexers.Analyse(text); l != nil {
			return lexerID(l)
		}
	}
	return Plaintext
}

// lexerNames maps language ids back to chroma lexer names.
var lexerNames = map[string]string{
	"javascript":      "javascript",
	"javascriptreact": "react",
	"typescript":      "typescript",
	"typescriptreact": "tsx",
	"python":          "python",
	"go":              "go",
	"java":            "java",
	"csharp":          "c#",
	"kotlin":          "kotlin",
	"c":               "c",
	"cpp":             "c++",
	"rust":            "rust",
	"shellscript":     "bash",
}

// Lexer returns the chroma lexer for a language id, or the fallback lexer.
func Lexer(languageID string) chroma.Lexer {
	name, ok := lexerNames[languageID]
	if !ok {
		name = languageID
	}
	if l := lexers.Get(name); l != nil {
		return l
	}
	return lexers.Fallback
}

func lexerID(l chroma.Lexer) string {
	name := strings.ToLower(l.Config().Name)
	if id, ok := lexerIDs[name]; ok {
		return id
	}
	return strings.ReplaceAll(name, " ", "")
}
