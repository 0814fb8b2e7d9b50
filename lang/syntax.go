package lang

import (
	"regexp"
	"strings"
)

// syntaxRules parameterize the syntax-position scanner for one language.
type syntaxRules struct {
	// quotes lists string delimiters; longer delimiters (""") first.
	quotes []string
	// raw lists delimiters whose strings have no escapes.
	raw         []string
	lineComment []string
	blockOpen   string
	blockClose  string
	// interp returns the interpolation opener for a string that starts at
	// offset i of text with delimiter q, or "".
	interp func(text string, i int, q string) string
	// arrayPhrase and objectPhrase describe "[" and "{" in expression
	// position.
	arrayPhrase  string
	objectPhrase string
}

type frameKind int

const (
	frameString frameKind = iota
	frameExpr
	frameBracket
)

type frame struct {
	kind   frameKind
	delim  string // closing delimiter
	open   string
	interp string
	raw    bool
	at     int
}

var (
	braceSyntax = syntaxRules{
		quotes:       []string{`"`, `'`},
		lineComment:  []string{"//"},
		blockOpen:    "/*",
		blockClose:   "*/",
		arrayPhrase:  "inside an array literal",
		objectPhrase: "inside an initializer list",
	}
	genericSyntax = syntaxRules{
		quotes:       []string{`"`, `'`, "`"},
		lineComment:  []string{"//"},
		blockOpen:    "/*",
		blockClose:   "*/",
		arrayPhrase:  "inside an array literal",
		objectPhrase: "inside an object literal",
	}
)

var closers = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// scan walks text and returns the frames still open at its end. inComment
// reports that the end lies inside a comment.
func (r syntaxRules) scan(text string) (stack []frame, inComment bool) {
	top := func() *frame {
		if len(stack) == 0 {
			return nil
		}
		return &stack[len(stack)-1]
	}
	for i := 0; i < len(text); {
		f := top()
		if f != nil && f.kind == frameString {
			switch {
			case text[i] == '\\' && !f.raw:
				i += 2
			case strings.HasPrefix(text[i:], f.delim):
				stack = stack[:len(stack)-1]
				i += len(f.delim)
			case f.interp != "" && strings.HasPrefix(text[i:], f.interp):
				if f.interp == "{" && strings.HasPrefix(text[i:], "{{") {
					i += 2
					continue
				}
				closer := "}"
				if strings.HasSuffix(f.interp, "(") {
					closer = ")"
				}
				stack = append(stack, frame{kind: frameExpr, delim: closer, open: f.interp, at: i})
				i += len(f.interp)
			default:
				i++
			}
			continue
		}
		if c, ok := r.commentAt(text, i); ok {
			if c < 0 {
				return stack, true
			}
			i = c
			continue
		}
		if q := r.quoteAt(text, i); q != "" {
			fr := frame{kind: frameString, delim: q, open: q, at: i, raw: contains(r.raw, q)}
			if r.interp != nil {
				fr.interp = r.interp(text, i, q)
			}
			stack = append(stack, fr)
			i += len(q)
			continue
		}
		ch := text[i]
		switch ch {
		case '(', '[', '{':
			stack = append(stack, frame{kind: frameBracket, delim: string(closers[ch]), open: string(ch), at: i})
		case ')', ']', '}':
			if f != nil && f.delim == string(ch) {
				stack = stack[:len(stack)-1]
			}
		}
		i++
	}
	return stack, false
}

// commentAt reports whether a comment starts at i and returns the offset
// after it, or -1 when it runs to the end of text.
func (r syntaxRules) commentAt(text string, i int) (int, bool) {
	for _, lc := range r.lineComment {
		if strings.HasPrefix(text[i:], lc) {
			if lc == "#" && i > 0 && text[i-1] == '$' {
				continue
			}
			nl := strings.IndexByte(text[i:], '\n')
			if nl < 0 {
				return -1, true
			}
			return i + nl + 1, true
		}
	}
	if r.blockOpen != "" && strings.HasPrefix(text[i:], r.blockOpen) {
		end := strings.Index(text[i+len(r.blockOpen):], r.blockClose)
		if end < 0 {
			return -1, true
		}
		return i + len(r.blockOpen) + end + len(r.blockClose), true
	}
	return 0, false
}

func (r syntaxRules) quoteAt(text string, i int) string {
	for _, q := range r.quotes {
		if strings.HasPrefix(text[i:], q) {
			return q
		}
	}
	return ""
}

// describe returns a phrase for the syntactic position at the end of text.
func (r syntaxRules) describe(text string) string {
	stack, inComment := r.scan(text)
	if inComment {
		return "inside a comment"
	}
	if len(stack) > 0 {
		f := stack[len(stack)-1]
		switch f.kind {
		case frameString:
			switch {
			case f.open == "`":
				return "inside a template literal"
			case len(f.open) == 3:
				return "inside a multi-line string literal"
			}
			return "inside a string literal"
		case frameExpr:
			if f.open == "${" && len(stack) > 1 && stack[len(stack)-2].open == "`" {
				return "inside a template literal expression"
			}
			return "inside a string interpolation expression"
		case frameBracket:
			return r.describeBracket(text, f)
		}
	}
	lines := strings.Split(text, "\n")
	return describeStatement(lines[len(lines)-1])
}

var (
	paramListRe = []*regexp.Regexp{
		rx(`\bfunction\*?[ \t]*([A-Za-z_$][\w$]*)?[ \t]*(?:<[^>]*>)?$`),
		rx(`\b(?:def|func|fn|fun|sub)[ \t]+([A-Za-z_$][\w$]*)[ \t]*(?:<[^>]*>|\[[^\]]*\])?$`),
		rx(`\bfunc()$`),
		rx(`\bfunc[ \t]*\([^)]*\)[ \t]*([A-Za-z_]\w*)[ \t]*(?:\[[^\]]*\])?$`),
		rx(`^[ \t]*(?:(?:public|private|protected|internal|static|final|abstract|virtual|override|async|synchronized)[ \t]+)+(?:[\w<>\[\],.?]+[ \t]+)?([A-Za-z_]\w*)$`),
	}
	conditionWords = map[string]string{
		"if":      "inside an if condition",
		"elif":    "inside an if condition",
		"while":   "inside a while condition",
		"for":     "inside a for loop header",
		"foreach": "inside a for loop header",
		"switch":  "inside a switch expression",
		"when":    "inside a when expression",
		"catch":   "inside a catch clause",
		"with":    "inside a with statement",
	}
	lastWordRe   = rx(`([A-Za-z_$][\w$]*)$`)
	calleeRe     = rx(`([A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)*)[ \t]*(?:<[^<>()]*>)?$`)
	objectPrevRe = rx(`(?:[=:(,\[?]|\breturn|=>)$`)
)

func (r syntaxRules) describeBracket(text string, f frame) string {
	before := strings.TrimRight(text[:f.at], " \t")
	switch f.open {
	case "(":
		if m := lastWordRe.FindStringSubmatch(before); m != nil {
			if d, ok := conditionWords[m[1]]; ok {
				return d
			}
		}
		for _, re := range paramListRe {
			if m := re.FindStringSubmatch(before); m != nil {
				if m[1] == "" {
					return "inside the parameter list of an anonymous function"
				}
				return "inside the parameter list of function " + m[1]
			}
		}
		if m := calleeRe.FindStringSubmatch(before); m != nil && !controlKeywords[m[1]] {
			return "inside the arguments of a call to " + m[1]
		}
		return "inside parentheses"
	case "[":
		if before != "" {
			last := before[len(before)-1]
			if isWordByte(last) || last == ')' || last == ']' {
				return "inside an index expression"
			}
		}
		return r.arrayPhrase
	case "{":
		if before == "" || objectPrevRe.MatchString(before) {
			return r.objectPhrase
		}
		return "inside a block"
	}
	return ""
}

var (
	returnRe     = rx(`^[ \t]*return\b`)
	importLineRe = rx(`^[ \t]*(?:import|from|#[ \t]*include|using|use|require)\b`)
	memberRe     = rx(`([A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)*)\.[ \t]*$`)
	newRe        = rx(`\bnew[ \t]+[\w.]*$`)
	assignRe     = rx(`([A-Za-z_$][\w$.]*)[ \t]*(?:[-+*/%|&^]|\?\?|:)?=[ \t]*$`)
	bareIfRe     = rx(`^[ \t]*(?:\}[ \t]*)?(?:else[ \t]+)?(if|elif|while)\b[^{:]*$`)
	bareForRe    = rx(`^[ \t]*for\b[^{:]*$`)
	caseRe       = rx(`^[ \t]*case\b[^:]*$`)
	declNameRe   = rx(`^[ \t]*(?:export[ \t]+)?(?:async[ \t]+)?(?:function|def|func|fn|fun)[ \t]+[\w$]*$`)
)

// describeStatement covers positions that are not inside any bracket or
// string: keyword-led statements and trailing operators on the last line.
func describeStatement(line string) string {
	switch {
	case strings.TrimSpace(line) == "":
		return ""
	case returnRe.MatchString(line):
		return "in a return statement"
	case importLineRe.MatchString(line):
		return "in an import statement"
	case declNameRe.MatchString(line):
		return "naming a function declaration"
	case bareIfRe.MatchString(line):
		return conditionWords[bareIfRe.FindStringSubmatch(line)[1]]
	case bareForRe.MatchString(line):
		return "inside a for loop header"
	case caseRe.MatchString(line):
		return "in a case label"
	}
	if m := memberRe.FindStringSubmatch(line); m != nil {
		return "accessing a member of " + m[1]
	}
	if newRe.MatchString(line) {
		return "after new, constructing an object"
	}
	if m := assignRe.FindStringSubmatch(line); m != nil && !strings.HasSuffix(strings.TrimSpace(line), "==") {
		return "on the right-hand side of an assignment to " + m[1]
	}
	return ""
}

// BasicSyntaxContext describes text using only quote parity and bracket
// balance. It is the fallback when a language analyzer has nothing to say.
func BasicSyntaxContext(text string) string {
	for _, q := range []string{`"`, `'`, "`"} {
		if strings.Count(text, q)%2 == 1 {
			if q == "`" {
				return "inside a template literal"
			}
			return "inside a string literal"
		}
	}
	pairs := []struct {
		open, close, phrase string
	}{
		{"(", ")", "inside parentheses"},
		{"[", "]", "inside brackets"},
		{"{", "}", "inside braces"},
	}
	best, bestAt := "", -1
	for _, p := range pairs {
		if strings.Count(text, p.open) > strings.Count(text, p.close) {
			if at := strings.LastIndex(text, p.open); at > bestAt {
				best, bestAt = p.phrase, at
			}
		}
	}
	return best
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
