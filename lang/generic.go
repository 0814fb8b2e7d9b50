package lang

// Generic is the id of the fallback analyzer.
const Generic = "generic"

var genericDecls = []Pattern{
	{Kind: KindFunction, Name: 1, Re: rx(`(?m)^[ \t]*(?:export[ \t]+)?(?:async[ \t]+)?(?:function|def|func|fn|fun|sub|proc)[ \t]+([A-Za-z_$][\w$]*)`)},
	{Kind: KindArrowFunction, Name: 1, Re: rx(`(?m)^[ \t]*(?:export[ \t]+)?(?:const|let|var)[ \t]+([A-Za-z_$][\w$]*)[ \t]*=[ \t]*(?:async[ \t]+)?(?:\([^()]*\)|[A-Za-z_$][\w$]*)[ \t]*=>`)},
	{Kind: KindInterface, Name: 1, Re: rx(`(?m)^[ \t]*(?:(?:public|private|protected|export|abstract)[ \t]+)*(?:interface|trait|protocol)[ \t]+([A-Za-z_$][\w$]*)`)},
	{Kind: KindStruct, Name: 1, Re: rx(`(?m)^[ \t]*(?:(?:public|private|protected|export)[ \t]+)*struct[ \t]+([A-Za-z_$][\w$]*)`)},
	{Kind: KindEnum, Name: 1, Re: rx(`(?m)^[ \t]*(?:(?:public|private|protected|export)[ \t]+)*enum[ \t]+([A-Za-z_$][\w$]*)`)},
	{Kind: KindClass, Name: 1, Re: rx(`(?m)^[ \t]*(?:(?:public|private|protected|export|abstract|final|static)[ \t]+)*(?:class|module|object)[ \t]+([A-Za-z_$][\w$]*)`)},
	{Kind: KindImport, Re: rx(`(?m)^[ \t]*(?:import|from|using|require|#[ \t]*include)\b[^\n]*`)},
}

func newGeneric(id string) Analyzer {
	return newTableAnalyzer(langDef{
		id:       id,
		family:   FamilyGeneric,
		keywords: genericKeywords,
		decls:    genericDecls,
		imports:  GenericImports,
		arrow:    rx(`=>|->`),
		syntax:   genericSyntax,
		style:    "Match the naming, spacing and commenting conventions of the surrounding code.",
	})
}
