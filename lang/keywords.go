package lang

var genericKeywordList = []string{
	"if", "else", "for", "while", "do", "switch", "case", "default", "break",
	"continue", "return", "function", "class", "new", "delete", "this", "self",
	"true", "false", "null", "nil", "none", "undefined", "try", "catch",
	"finally", "throw", "import", "export", "from", "as", "in", "of", "is",
	"not", "and", "or", "var", "let", "const", "def", "async", "await", "yield",
	"static", "public", "private", "protected", "void",
}

var braceKeywordList = []string{
	"typeof", "instanceof", "extends", "implements", "interface", "enum",
	"super", "with", "debugger", "package", "struct", "union", "typedef",
	"sizeof", "goto", "unsigned", "signed", "char", "short", "long", "float",
	"double", "int", "boolean", "bool", "byte", "final", "abstract",
	"synchronized", "volatile", "transient", "native", "throws", "auto",
	"register", "extern", "inline", "constexpr", "template", "typename",
	"namespace", "using", "operator", "virtual", "friend", "mutable",
	"explicit", "void",
}

var javascriptKeywordList = []string{
	"arguments", "NaN", "Infinity",
}

var typescriptKeywordList = []string{
	"type", "declare", "readonly", "keyof", "infer", "never", "unknown", "any",
	"number", "string", "symbol", "bigint", "object", "namespace", "module",
	"asserts", "satisfies", "override",
}

var indentKeywordList = []string{
	"False", "None", "True", "and", "as", "assert", "async", "await", "break",
	"class", "continue", "def", "del", "elif", "else", "except", "finally",
	"for", "from", "global", "if", "import", "in", "is", "lambda", "nonlocal",
	"not", "or", "pass", "raise", "return", "try", "while", "with", "yield",
	"match", "case", "self", "cls",
}

var visibilityKeywordList = []string{
	"public", "private", "protected", "internal", "sealed", "override",
	"virtual", "readonly", "partial", "abstract", "final", "static", "fun",
	"val", "var", "object", "companion", "data", "open", "lateinit", "suspend",
	"when", "is", "as", "string", "decimal", "base", "out", "ref", "params",
	"lock", "unchecked", "checked", "fixed", "event", "delegate", "implicit",
	"record", "init", "required", "throws", "import", "package", "void",
}

var goKeywordList = []string{
	"break", "case", "chan", "const", "continue", "default", "defer", "else",
	"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
	"map", "package", "range", "return", "select", "struct", "switch", "type",
	"var", "nil", "true", "false", "iota",
}

var rustKeywordList = []string{
	"as", "break", "const", "continue", "crate", "else", "enum", "extern",
	"false", "fn", "for", "if", "impl", "in", "let", "loop", "match", "mod",
	"move", "mut", "pub", "ref", "return", "self", "Self", "static", "struct",
	"super", "trait", "true", "type", "unsafe", "use", "where", "while",
	"async", "await", "dyn",
}

var shellKeywordList = []string{
	"if", "then", "else", "elif", "fi", "case", "esac", "for", "select",
	"while", "until", "do", "done", "in", "function", "time", "coproc",
	"return", "exit", "local", "export", "readonly", "declare", "typeset",
	"break", "continue", "true", "false",
}

func keywordSet(lists ...[]string) map[string]bool {
	set := make(map[string]bool)
	for _, l := range lists {
		for _, w := range l {
			set[w] = true
		}
	}
	return set
}

// Family keyword sets. Languages extend these with their own additions.
var (
	genericKeywords    = keywordSet(genericKeywordList)
	braceKeywords      = keywordSet(genericKeywordList, braceKeywordList)
	indentKeywords     = keywordSet(indentKeywordList)
	visibilityKeywords = keywordSet(genericKeywordList, braceKeywordList, visibilityKeywordList)
)

// FamilyKeywords returns the base keyword set of a family. The returned map
// must not be modified.
func FamilyKeywords(f Family) map[string]bool {
	switch f {
	case FamilyBrace:
		return braceKeywords
	case FamilyIndent:
		return indentKeywords
	case FamilyVisibility:
		return visibilityKeywords
	}
	return genericKeywords
}
