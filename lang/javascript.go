package lang

const jsIdent = `[A-Za-z_$][\w$]*`

var jsDecls = []Pattern{
	{Kind: KindClass, Name: 1, Re: rx(`(?m)^[ \t]*(?:export[ \t]+)?(?:default[ \t]+)?(?:abstract[ \t]+)?class[ \t]+(` + jsIdent + `)`)},
	{Kind: KindFunction, Name: 1, Re: rx(`(?m)^[ \t]*(?:export[ \t]+)?(?:default[ \t]+)?(?:async[ \t]+)?function[ \t]*\*?[ \t]*(` + jsIdent + `)?[ \t]*(?:<[^>]*>)?\(`)},
	{Kind: KindFunction, Name: 1, Re: rx(`(?m)^[ \t]*(?:export[ \t]+)?(?:const|let|var)[ \t]+(` + jsIdent + `)[ \t]*(?::[^=]+)?=[ \t]*(?:async[ \t]+)?function\b`)},
	{Kind: KindArrowFunction, Name: 1, Re: rx(`(?m)^[ \t]*(?:export[ \t]+)?(?:const|let|var)[ \t]+(` + jsIdent + `)[ \t]*(?::[^=]+)?=[ \t]*(?:async[ \t]+)?(?:<[^>]*>)?(?:\([^()]*\)|` + jsIdent + `)[ \t]*(?::[^=]+)?=>`)},
	{Kind: KindArrowFunction, Name: 1, Re: rx(`(?m)^[ \t]*(?:export[ \t]+)?(?:const|let|var)[ \t]+(` + jsIdent + `)[ \t]*=[ \t]*(?:async[ \t]+)?\([^()]*$`)},
	{Kind: KindArrowFunction, Name: 1, Re: rx(`(?m)^[ \t]*(` + jsIdent + `)[ \t]*[:=][ \t]*(?:async[ \t]+)?(?:\([^()]*\)|` + jsIdent + `)[ \t]*=>`)},
	{Kind: KindMethod, Name: 1, Re: rx(`(?m)^[ \t]*(?:(?:public|private|protected|static|async|readonly|override|abstract|get|set)[ \t]+)*\*?(` + jsIdent + `)[ \t]*(?:<[^>]*>)?\([^()]*\)[ \t]*(?::[^{=;]+)?\{`)},
	{Kind: KindImport, Name: 1, Re: rx(`(?m)^[ \t]*import\b(?:[^'"\n]*from)?[ \t]*['"]([^'"]+)['"]`)},
}

var tsDecls = append([]Pattern{
	{Kind: KindInterface, Name: 1, Re: rx(`(?m)^[ \t]*(?:export[ \t]+)?(?:declare[ \t]+)?interface[ \t]+(` + jsIdent + `)`)},
	{Kind: KindType, Name: 1, Re: rx(`(?m)^[ \t]*(?:export[ \t]+)?(?:declare[ \t]+)?type[ \t]+(` + jsIdent + `)[ \t]*(?:<[^>]*>)?[ \t]*=`)},
	{Kind: KindEnum, Name: 1, Re: rx(`(?m)^[ \t]*(?:export[ \t]+)?(?:declare[ \t]+)?(?:const[ \t]+)?enum[ \t]+(` + jsIdent + `)`)},
}, jsDecls...)

var jsSyntax = syntaxRules{
	quotes:      []string{"`", `"`, `'`},
	lineComment: []string{"//"},
	blockOpen:   "/*",
	blockClose:  "*/",
	interp: func(_ string, _ int, q string) string {
		if q == "`" {
			return "${"
		}
		return ""
	},
	arrayPhrase:  "inside an array literal",
	objectPhrase: "inside an object literal",
}

var jsArrow = rx(`=>`)

func newJavaScript(id string) Analyzer {
	return newTableAnalyzer(langDef{
		id:       id,
		family:   FamilyBrace,
		keywords: keywordSet(genericKeywordList, braceKeywordList, javascriptKeywordList),
		decls:    jsDecls,
		imports:  func(text string) []Import { return findImports(text, jsImportFinders) },
		arrow:    jsArrow,
		syntax:   jsSyntax,
		style:    "Use const and let instead of var, arrow functions for callbacks, strict equality, and keep the file's semicolon and quote style.",
	})
}

func newTypeScript(id string) Analyzer {
	return newTableAnalyzer(langDef{
		id:       id,
		family:   FamilyBrace,
		keywords: keywordSet(genericKeywordList, braceKeywordList, javascriptKeywordList, typescriptKeywordList),
		decls:    tsDecls,
		imports:  func(text string) []Import { return findImports(text, jsImportFinders) },
		arrow:    jsArrow,
		syntax:   jsSyntax,
		style:    "Keep type annotations consistent with the surrounding code, prefer interfaces for object shapes, avoid any, and use const and let with strict equality.",
	})
}
