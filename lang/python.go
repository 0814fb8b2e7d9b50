package lang

import "strings"

var pythonDecls = []Pattern{
	{Kind: KindClass, Name: 1, Re: rx(`(?m)^[ \t]*class[ \t]+([A-Za-z_]\w*)`)},
	{Kind: KindFunction, Name: 1, Re: rx(`(?m)^[ \t]*(?:async[ \t]+)?def[ \t]+([A-Za-z_]\w*)`)},
	{Kind: KindImport, Name: 1, Re: rx(`(?m)^[ \t]*(?:from[ \t]+([\w.]+)[ \t]+import|import[ \t]+[\w.]+)`)},
}

// pythonInterp treats f-strings (f"", rf"", fr"") as interpolating.
func pythonInterp(text string, i int, _ string) string {
	j := i
	for j > 0 && strings.ContainsRune("rRbBfF", rune(text[j-1])) && i-j < 2 {
		j--
	}
	if j > 0 && isWordByte(text[j-1]) {
		return ""
	}
	if strings.ContainsAny(text[j:i], "fF") {
		return "{"
	}
	return ""
}

func newPython(id string) Analyzer {
	return newTableAnalyzer(langDef{
		id:       id,
		family:   FamilyIndent,
		keywords: indentKeywords,
		decls:    pythonDecls,
		imports:  func(text string) []Import { return findImports(text, pythonImportFinders) },
		arrow:    rx(`\blambda\b`),
		syntax: syntaxRules{
			quotes:       []string{`"""`, `'''`, `"`, `'`},
			lineComment:  []string{"#"},
			interp:       pythonInterp,
			arrayPhrase:  "inside a list literal",
			objectPhrase: "inside a dict or set literal",
		},
		style: "Follow PEP 8: four-space indentation, snake_case names, and type hints where the surrounding code uses them.",
	})
}
