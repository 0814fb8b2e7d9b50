package lang

var cDecls = []Pattern{
	{Kind: KindStruct, Name: 1, Re: rx(`(?m)^[ \t]*(?:typedef[ \t]+)?struct[ \t]+([A-Za-z_]\w*)[^;=()]*$`)},
	{Kind: KindEnum, Name: 1, Re: rx(`(?m)^[ \t]*(?:typedef[ \t]+)?enum[ \t]+(?:class[ \t]+)?([A-Za-z_]\w*)[^;=()]*$`)},
	{Kind: KindFunction, Name: 1, Re: rx(`(?m)^[ \t]*(?:(?:static|inline|extern|virtual|constexpr|const|unsigned|signed|struct|enum)[ \t]+)*[\w:<>*&]+[ \t*&]+([A-Za-z_][\w:~]*)[ \t]*\([^;]*$`)},
	{Kind: KindImport, Name: 1, Re: rx(`(?m)^[ \t]*#[ \t]*include[ \t]*[<"]([^>"]+)[>"]`)},
}

var cppDecls = concatPatterns(
	[]Pattern{
		{Kind: KindClass, Name: 1, Re: rx(`(?m)^[ \t]*(?:template[ \t]*<[^>]*>[ \t]*)?class[ \t]+([A-Za-z_]\w*)[^;=()]*$`)},
	},
	cDecls,
)

var cSyntax = braceSyntax

func newC(id string) Analyzer {
	return newTableAnalyzer(langDef{
		id:       id,
		family:   FamilyBrace,
		keywords: braceKeywords,
		decls:    cDecls,
		imports:  func(text string) []Import { return findImports(text, cImportFinders) },
		syntax:   cSyntax,
		style:    "Match the file's brace placement, check every return value, free what you allocate, and keep declarations in the existing order.",
	})
}

func newCpp(id string) Analyzer {
	return newTableAnalyzer(langDef{
		id:       id,
		family:   FamilyBrace,
		keywords: braceKeywords,
		decls:    cppDecls,
		imports:  func(text string) []Import { return findImports(text, cImportFinders) },
		arrow:    rx(`\]\s*\([^)]*\)\s*(?:->[^{]*)?$`),
		syntax:   cSyntax,
		style:    "Prefer RAII and standard library containers, const references for parameters, and auto where the type is obvious.",
	})
}
