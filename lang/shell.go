package lang

import (
	"sort"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

var shellDecls = []Pattern{
	{Kind: KindFunction, Name: 1, Re: rx(`(?m)^[ \t]*function[ \t]+([A-Za-z_][\w-]*)`)},
	{Kind: KindFunction, Name: 1, Re: rx(`(?m)^[ \t]*([A-Za-z_][\w-]*)[ \t]*\(\)`)},
	{Kind: KindImport, Name: 1, Re: rx(`(?m)^[ \t]*(?:source|\.)[ \t]+([^\s;&|]+)`)},
}

// shellAnalyzer parses with the shell parser and falls back to the regex
// tables when the text does not parse, which is common for partial windows.
type shellAnalyzer struct {
	*tableAnalyzer
}

func newShell(id string) Analyzer {
	return &shellAnalyzer{newTableAnalyzer(langDef{
		id:       id,
		family:   FamilyBrace,
		keywords: keywordSet(shellKeywordList),
		decls:    shellDecls,
		imports:  func(text string) []Import { return findImports(text, shellImportFinders) },
		syntax: syntaxRules{
			quotes:      []string{`"`, `'`},
			lineComment: []string{"#"},
			interp: func(_ string, _ int, q string) string {
				if q == `"` {
					return "$("
				}
				return ""
			},
			arrayPhrase:  "inside an array or test expression",
			objectPhrase: "inside a brace group",
		},
		style: "Quote variable expansions, prefer $(...) over backticks, use [[ ]] for tests in bash, and check exit statuses.",
	})}
}

func (a *shellAnalyzer) Structures(text string) []Structure {
	structs, _, err := parseShell(text)
	if err != nil {
		return a.tableAnalyzer.Structures(text)
	}
	return structs
}

func (a *shellAnalyzer) Imports(text string) []Import {
	_, imports, err := parseShell(text)
	if err != nil {
		return a.tableAnalyzer.Imports(text)
	}
	return imports
}

func parseShell(text string) ([]Structure, []Import, error) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	prog, err := parser.Parse(strings.NewReader(text), "")
	if err != nil {
		return nil, nil, err
	}

	var (
		structs []Structure
		imports []Import
	)
	add := func(kind Kind, name string, pos syntax.Pos) {
		structs = append(structs, Structure{Kind: kind, Name: name, Offset: int(pos.Offset())})
	}
	syntax.Walk(prog, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.FuncDecl:
			if n.Name != nil {
				add(KindFunction, n.Name.Value, n.Pos())
			}
		case *syntax.IfClause:
			if len(n.Cond) == 0 {
				add(KindElse, "", n.Pos())
			} else {
				add(KindIf, "", n.Pos())
			}
		case *syntax.ForClause:
			add(KindFor, "", n.Pos())
		case *syntax.WhileClause:
			add(KindWhile, "", n.Pos())
		case *syntax.CaseClause:
			add(KindSwitch, "", n.Pos())
		case *syntax.CallExpr:
			if len(n.Args) < 2 {
				break
			}
			if cmd := n.Args[0].Lit(); cmd != "source" && cmd != "." {
				break
			}
			target := n.Args[1].Lit()
			start, end := int(n.Pos().Offset()), int(n.End().Offset())
			add(KindImport, target, n.Pos())
			imports = append(imports, Import{
				Statement: text[start:end],
				Names:     shellImportFinders[0].names([]string{"", target}),
				Offset:    start,
			})
		}
		return true
	})
	sort.SliceStable(structs, func(i, j int) bool { return structs[i].Offset < structs[j].Offset })
	return structs, imports, nil
}
