package lang

const rustVis = `(?:pub(?:\([^)]*\))?[ \t]+)?`

var rustDecls = []Pattern{
	{Kind: KindFunction, Name: 1, Re: rx(`(?m)^[ \t]*` + rustVis + `(?:(?:default|const|async|unsafe|extern[ \t]+"[^"]*")[ \t]+)*fn[ \t]+([A-Za-z_]\w*)`)},
	{Kind: KindStruct, Name: 1, Re: rx(`(?m)^[ \t]*` + rustVis + `struct[ \t]+([A-Za-z_]\w*)`)},
	{Kind: KindEnum, Name: 1, Re: rx(`(?m)^[ \t]*` + rustVis + `enum[ \t]+([A-Za-z_]\w*)`)},
	{Kind: KindInterface, Name: 1, Re: rx(`(?m)^[ \t]*` + rustVis + `(?:unsafe[ \t]+)?trait[ \t]+([A-Za-z_]\w*)`)},
	{Kind: KindType, Name: 1, Re: rx(`(?m)^[ \t]*` + rustVis + `type[ \t]+([A-Za-z_]\w*)`)},
	// impl blocks hold methods, so they resolve as the enclosing class.
	{Kind: KindClass, Name: 1, Re: rx(`(?m)^[ \t]*(?:unsafe[ \t]+)?impl(?:[ \t]*<[^>]*>)?[ \t]+(?:[\w:<>, ]+[ \t]+for[ \t]+)?([A-Za-z_]\w*)`)},
	{Kind: KindImport, Name: 1, Re: rx(`(?m)^[ \t]*` + rustVis + `use[ \t]+([\w:]+)`)},
}

func newRust(id string) Analyzer {
	return newTableAnalyzer(langDef{
		id:       id,
		family:   FamilyBrace,
		keywords: keywordSet(rustKeywordList),
		decls:    rustDecls,
		imports:  func(text string) []Import { return findImports(text, rustImportFinders) },
		arrow:    rx(`\|[^|]*\|`),
		syntax: syntaxRules{
			quotes:       []string{`"`},
			lineComment:  []string{"//"},
			blockOpen:    "/*",
			blockClose:   "*/",
			arrayPhrase:  "inside an array or vec! literal",
			objectPhrase: "inside a struct literal",
		},
		style: "Follow rustfmt conventions: snake_case functions, propagate errors with ?, prefer borrowing over cloning, and avoid unwrap outside tests.",
	})
}
