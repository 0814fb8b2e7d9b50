package lang

var goDecls = []Pattern{
	{Kind: KindMethod, Name: 1, Re: rx(`(?m)^func[ \t]*\([^)]*\)[ \t]*([A-Za-z_]\w*)`)},
	{Kind: KindFunction, Name: 1, Re: rx(`(?m)^func[ \t]+([A-Za-z_]\w*)`)},
	{Kind: KindFunction, Name: 1, Re: rx(`(?m)^[ \t]*([A-Za-z_]\w*)[ \t]*:?=[ \t]*func\b`)},
	{Kind: KindStruct, Name: 1, Re: rx(`(?m)^[ \t]*type[ \t]+([A-Za-z_]\w*)(?:\[[^\]]*\])?[ \t]+struct\b`)},
	{Kind: KindInterface, Name: 1, Re: rx(`(?m)^[ \t]*type[ \t]+([A-Za-z_]\w*)(?:\[[^\]]*\])?[ \t]+interface\b`)},
	{Kind: KindType, Name: 1, Re: rx(`(?m)^[ \t]*type[ \t]+([A-Za-z_]\w*)[ \t]+`)},
	{Kind: KindImport, Name: 1, Re: rx(`(?m)^import[ \t]+(?:[\w.]+[ \t]+)?"([^"]+)"`)},
	{Kind: KindImport, Re: rx(`(?m)^import[ \t]*\(`)},
}

func newGo(id string) Analyzer {
	return newTableAnalyzer(langDef{
		id:       id,
		family:   FamilyBrace,
		keywords: keywordSet(goKeywordList),
		decls:    goDecls,
		imports:  goImports,
		syntax: syntaxRules{
			quotes:       []string{"`", `"`, `'`},
			raw:          []string{"`"},
			lineComment:  []string{"//"},
			blockOpen:    "/*",
			blockClose:   "*/",
			arrayPhrase:  "inside a slice or array literal",
			objectPhrase: "inside a composite literal",
		},
		style: "Follow gofmt conventions: tabs for indentation, early returns, and explicit if err != nil handling with wrapped errors.",
	})
}
