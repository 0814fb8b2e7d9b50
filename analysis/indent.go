package analysis

import (
	"regexp"
	"strings"

	"github.com/Paranoid-AF/codelet/lang"
)

// IndentUnit returns one level of indentation for the editor settings.
func IndentUnit(tabSize int, insertSpaces bool) string {
	if !insertSpaces {
		return "\t"
	}
	if tabSize <= 0 {
		tabSize = 4
	}
	return strings.Repeat(" ", tabSize)
}

var (
	condKeywordRe = regexp.MustCompile(`^(?:\}\s*)?(?:else\s+)?(?:if|for|foreach|while|switch|catch|with|using|lock)\b.*\)$`)
	bareKeywordRe = regexp.MustCompile(`^(?:\}\s*)?(?:else|try|finally|do)$`)
	typeKeywordRe = regexp.MustCompile(`^(?:(?:export|public|private|protected|internal|abstract|final|static|sealed|data|open)\s+)*(?:class|interface|enum|struct|trait)\s+\w+[^;{}()]*$`)
	caseLabelRe   = regexp.MustCompile(`^(?:case\b.*|default\s*):$`)
)

// ExpectedIndentation returns the indentation the completion should start
// at: one unit deeper than the deciding line when the code before the cursor
// opens a block, otherwise beforeCursor's own indentation.
//
// The deciding line is beforeCursor when it has code on it, else prevLine,
// the nearest non-blank line above the cursor.
func ExpectedIndentation(prevLine, beforeCursor string, family lang.Family, unit string) string {
	indentation := lang.LeadingWhitespace(beforeCursor)
	if strings.TrimSpace(beforeCursor) != "" {
		if opensBlock(strings.TrimSpace(beforeCursor), family) || bracketBalance(beforeCursor) > 0 {
			return indentation + unit
		}
		return indentation
	}
	if opensBlock(strings.TrimSpace(prevLine), family) {
		return lang.LeadingWhitespace(prevLine) + unit
	}
	return indentation
}

func opensBlock(line string, family lang.Family) bool {
	if line == "" {
		return false
	}
	switch line[len(line)-1] {
	case '{', '[', '(':
		return true
	case ':':
		if family == lang.FamilyIndent || caseLabelRe.MatchString(line) {
			return true
		}
	case ';', '}', ',':
		return false
	}
	if family == lang.FamilyIndent {
		return false
	}
	return condKeywordRe.MatchString(line) || bareKeywordRe.MatchString(line) || typeKeywordRe.MatchString(line)
}

// bracketBalance counts opening minus closing brackets.
func bracketBalance(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			n++
		case ')', ']', '}':
			n--
		}
	}
	return n
}
