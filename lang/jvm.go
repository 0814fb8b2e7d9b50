package lang

const modifiers = `(?:(?:public|private|protected|internal|static|final|abstract|sealed|partial|open|data|inner|virtual|override|async|synchronized|native|extern|unsafe|suspend|inline|operator|default|readonly)[ \t]+)`

var jvmTypeDecls = []Pattern{
	{Kind: KindInterface, Name: 1, Re: rx(`(?m)^[ \t]*` + modifiers + `*(?:fun[ \t]+)?interface[ \t]+([A-Za-z_]\w*)`)},
	{Kind: KindEnum, Name: 1, Re: rx(`(?m)^[ \t]*` + modifiers + `*enum[ \t]+(?:class[ \t]+)?([A-Za-z_]\w*)`)},
	{Kind: KindStruct, Name: 1, Re: rx(`(?m)^[ \t]*` + modifiers + `*(?:record[ \t]+)?struct[ \t]+([A-Za-z_]\w*)`)},
	{Kind: KindClass, Name: 1, Re: rx(`(?m)^[ \t]*` + modifiers + `*(?:class|record|object)[ \t]+([A-Za-z_]\w*)`)},
}

// Methods need either a modifier or a return type followed by a brace so
// that plain calls are not mistaken for declarations.
var jvmMethodDecls = []Pattern{
	{Kind: KindMethod, Name: 1, Re: rx(`(?m)^[ \t]*` + modifiers + `+(?:<[^>]+>[ \t]+)?(?:[\w<>\[\],.?]+[ \t]+)?([A-Za-z_]\w*)[ \t]*\(`)},
	{Kind: KindMethod, Name: 1, Re: rx(`(?m)^[ \t]*(?:<[^>]+>[ \t]+)?[\w<>\[\],.?]+[ \t]+([A-Za-z_]\w*)[ \t]*\([^()]*\)[ \t]*(?:throws[ \t]+[\w., ]+)?\{`)},
}

var kotlinDecls = concatPatterns(
	[]Pattern{
		{Kind: KindFunction, Name: 1, Re: rx(`(?m)^[ \t]*` + modifiers + `*fun[ \t]+(?:<[^>]+>[ \t]*)?(?:[\w.]+\.)?([A-Za-z_]\w*)[ \t]*\(`)},
	},
	jvmTypeDecls,
	[]Pattern{
		{Kind: KindImport, Name: 1, Re: rx(`(?m)^[ \t]*import[ \t]+([\w.]+)`)},
	},
)

var javaDecls = concatPatterns(jvmTypeDecls, jvmMethodDecls, []Pattern{
	{Kind: KindImport, Name: 1, Re: rx(`(?m)^[ \t]*import[ \t]+(?:static[ \t]+)?([\w.]+)`)},
})

var csharpDecls = concatPatterns(jvmTypeDecls, jvmMethodDecls, []Pattern{
	{Kind: KindImport, Name: 1, Re: rx(`(?m)^[ \t]*(?:global[ \t]+)?using[ \t]+(?:static[ \t]+)?([\w.]+)[ \t]*;`)},
})

func concatPatterns(lists ...[]Pattern) []Pattern {
	var out []Pattern
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

var jvmSyntax = syntaxRules{
	quotes:       []string{`"""`, `"`, `'`},
	lineComment:  []string{"//"},
	blockOpen:    "/*",
	blockClose:   "*/",
	arrayPhrase:  "inside an array initializer",
	objectPhrase: "inside an initializer block",
}

func newJava(id string) Analyzer {
	return newTableAnalyzer(langDef{
		id:       id,
		family:   FamilyVisibility,
		keywords: visibilityKeywords,
		decls:    javaDecls,
		imports:  func(text string) []Import { return findImports(text, javaImportFinders) },
		arrow:    rx(`->`),
		syntax:   jvmSyntax,
		style:    "Follow standard Java conventions: camelCase methods, PascalCase types, braces on the same line, and explicit access modifiers.",
	})
}

func newCSharp(id string) Analyzer {
	syntax := jvmSyntax
	syntax.quotes = []string{`"`, `'`}
	syntax.interp = func(text string, i int, _ string) string {
		if i > 0 && (text[i-1] == '$' || i > 1 && text[i-1] == '@' && text[i-2] == '$') {
			return "{"
		}
		return ""
	}
	return newTableAnalyzer(langDef{
		id:       id,
		family:   FamilyVisibility,
		keywords: visibilityKeywords,
		decls:    csharpDecls,
		imports:  func(text string) []Import { return findImports(text, csharpImportFinders) },
		arrow:    rx(`=>`),
		syntax:   syntax,
		style:    "Follow .NET conventions: PascalCase for types, methods and properties, camelCase for locals, and var where the type is obvious.",
	})
}

func newKotlin(id string) Analyzer {
	syntax := jvmSyntax
	syntax.interp = func(_ string, _ int, q string) string {
		if q != `'` {
			return "${"
		}
		return ""
	}
	syntax.arrayPhrase = "inside a collection literal"
	return newTableAnalyzer(langDef{
		id:       id,
		family:   FamilyVisibility,
		keywords: visibilityKeywords,
		decls:    kotlinDecls,
		imports:  func(text string) []Import { return findImports(text, javaImportFinders) },
		arrow:    rx(`->`),
		syntax:   syntax,
		style:    "Prefer val over var, expression bodies for short functions, null-safe calls, and camelCase names.",
	})
}
