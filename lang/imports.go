package lang

import (
	"path"
	"regexp"
	"sort"
	"strings"
)

// importFinder recognizes one import statement shape. names maps the
// submatches to the identifiers the statement binds.
type importFinder struct {
	re    *regexp.Regexp
	names func(m []string) []string
}

func findImports(text string, finders []importFinder) []Import {
	var out []Import
	for _, f := range finders {
		for _, loc := range f.re.FindAllStringSubmatchIndex(text, -1) {
			m := make([]string, len(loc)/2)
			for g := range m {
				if loc[2*g] >= 0 {
					m[g] = text[loc[2*g]:loc[2*g+1]]
				}
			}
			out = append(out, Import{
				Statement: strings.TrimSpace(m[0]),
				Names:     f.names(m),
				Offset:    skipIndent(text, loc[0], loc[1]),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

var identRe = rx(`^[A-Za-z_$][\w$]*$`)

// splitNames splits a comma separated binding list, resolving "x as y"
// aliases and dropping wildcards.
func splitNames(list string) []string {
	list = strings.NewReplacer("{", ",", "}", ",", "(", ",", ")", ",", "\n", ",").Replace(list)
	var names []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimPrefix(part, "type ")
		if i := strings.LastIndex(part, " as "); i >= 0 {
			part = strings.TrimSpace(part[i+4:])
		}
		if identRe.MatchString(part) {
			names = append(names, part)
		}
	}
	return names
}

var (
	jsImportFinders = []importFinder{
		{
			re:    rx(`(?m)^[ \t]*import[ \t]+(?:type[ \t]+)?([^'";]+?)[ \t]+from[ \t]+['"]([^'"]+)['"][ \t]*;?`),
			names: func(m []string) []string { return splitNames(m[1]) },
		},
		{
			re:    rx(`(?m)^[ \t]*(?:const|let|var)[ \t]+(\{[^}]*\}|[A-Za-z_$][\w$]*)[ \t]*=[ \t]*require\([ \t]*['"]([^'"]+)['"][ \t]*\)[ \t]*;?`),
			names: func(m []string) []string { return splitNames(strings.ReplaceAll(m[1], ":", " as ")) },
		},
		{
			re:    rx(`(?m)^[ \t]*import[ \t]+([A-Za-z_$][\w$]*)[ \t]*=[ \t]*require\([ \t]*['"]([^'"]+)['"][ \t]*\)[ \t]*;?`),
			names: func(m []string) []string { return []string{m[1]} },
		},
	}

	pythonImportFinders = []importFinder{
		{
			re:    rx(`(?m)^[ \t]*from[ \t]+([\w.]+)[ \t]+import[ \t]+(\([^)]*\)|[^\n#]+)`),
			names: func(m []string) []string { return splitNames(m[2]) },
		},
		{
			re: rx(`(?m)^[ \t]*import[ \t]+([\w.]+(?:[ \t]+as[ \t]+\w+)?(?:[ \t]*,[ \t]*[\w.]+(?:[ \t]+as[ \t]+\w+)?)*)[ \t]*$`),
			names: func(m []string) []string {
				var names []string
				for _, part := range strings.Split(m[1], ",") {
					part = strings.TrimSpace(part)
					if i := strings.LastIndex(part, " as "); i >= 0 {
						names = append(names, strings.TrimSpace(part[i+4:]))
						continue
					}
					names = append(names, strings.SplitN(part, ".", 2)[0])
				}
				return names
			},
		},
	}

	javaImportFinders = []importFinder{
		{
			re: rx(`(?m)^[ \t]*import[ \t]+(?:static[ \t]+)?([\w.]+?)(\.\*)?(?:[ \t]+as[ \t]+(\w+))?[ \t]*;?[ \t]*$`),
			names: func(m []string) []string {
				if m[3] != "" {
					return []string{m[3]}
				}
				return []string{lastSegment(m[1], ".")}
			},
		},
	}

	csharpImportFinders = []importFinder{
		{
			re: rx(`(?m)^[ \t]*(?:global[ \t]+)?using[ \t]+(?:static[ \t]+)?(?:(\w+)[ \t]*=[ \t]*)?([\w.]+)[ \t]*;`),
			names: func(m []string) []string {
				if m[1] != "" {
					return []string{m[1]}
				}
				return []string{lastSegment(m[2], ".")}
			},
		},
	}

	cImportFinders = []importFinder{
		{
			re: rx(`(?m)^[ \t]*#[ \t]*include[ \t]*[<"]([^>"]+)[>"]`),
			names: func(m []string) []string {
				base := path.Base(m[1])
				return []string{strings.TrimSuffix(base, path.Ext(base))}
			},
		},
		{
			re:    rx(`(?m)^[ \t]*using[ \t]+namespace[ \t]+([\w:]+)[ \t]*;`),
			names: func(m []string) []string { return []string{lastSegment(m[1], "::")} },
		},
		{
			re:    rx(`(?m)^[ \t]*using[ \t]+[\w:]*::(\w+)[ \t]*;`),
			names: func(m []string) []string { return []string{m[1]} },
		},
	}

	rustImportFinders = []importFinder{
		{
			re:    rx(`(?m)^[ \t]*(?:pub(?:\([^)]*\))?[ \t]+)?use[ \t]+([^;]+);`),
			names: func(m []string) []string { return rustUseNames(m[1]) },
		},
	}

	shellImportFinders = []importFinder{
		{
			re: rx(`(?m)^[ \t]*(?:source|\.)[ \t]+([^\s;&|]+)`),
			names: func(m []string) []string {
				base := path.Base(strings.Trim(m[1], `"'`))
				return []string{strings.TrimSuffix(base, path.Ext(base))}
			},
		},
	}

	genericImportFinders = concatFinders(
		jsImportFinders[:1],
		pythonImportFinders,
		[]importFinder{{
			re:    rx(`(?m)^[ \t]*import[ \t]+(?:static[ \t]+)?([\w.]+?)(?:\.\*)?[ \t]*;`),
			names: func(m []string) []string { return []string{lastSegment(m[1], ".")} },
		}},
		cImportFinders[:1],
		csharpImportFinders,
	)
)

// GenericImports finds import statements of any common shape: ES module
// imports, Python imports, Java imports, #include and using directives.
func GenericImports(text string) []Import {
	return findImports(text, genericImportFinders)
}

func concatFinders(lists ...[]importFinder) []importFinder {
	var out []importFinder
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

func lastSegment(s, sep string) string {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[i+len(sep):]
	}
	return s
}

// rustUseNames flattens a use tree into the names it brings into scope.
func rustUseNames(tree string) []string {
	tree = strings.NewReplacer("{", ",", "}", ",", "\n", " ").Replace(tree)
	var names []string
	for _, item := range strings.Split(tree, ",") {
		item = strings.TrimSpace(item)
		if i := strings.LastIndex(item, " as "); i >= 0 {
			item = strings.TrimSpace(item[i+4:])
		} else {
			item = lastSegment(item, "::")
		}
		if item == "" || item == "self" || item == "*" || !identRe.MatchString(item) {
			continue
		}
		names = append(names, item)
	}
	return names
}

var (
	goSingleImportRe = rx(`(?m)^import[ \t]+(?:([A-Za-z_.]\w*)[ \t]+)?"([^"]+)"`)
	goBlockImportRe  = rx(`(?ms)^import[ \t]*\((.*?)^\)`)
	goSpecRe         = rx(`(?m)^[ \t]*(?:([A-Za-z_.]\w*)[ \t]+)?"([^"]+)"`)
	goMajorRe        = rx(`^v[0-9]+$`)
)

// goImports handles single-line imports and parenthesized import blocks; each
// spec of a block becomes its own Import.
func goImports(text string) []Import {
	var out []Import
	for _, loc := range goSingleImportRe.FindAllStringSubmatchIndex(text, -1) {
		alias, p := "", text[loc[4]:loc[5]]
		if loc[2] >= 0 {
			alias = text[loc[2]:loc[3]]
		}
		out = append(out, Import{
			Statement: text[loc[0]:loc[1]],
			Names:     []string{goBinding(alias, p)},
			Offset:    loc[0],
		})
	}
	for _, blk := range goBlockImportRe.FindAllStringSubmatchIndex(text, -1) {
		body := text[blk[2]:blk[3]]
		for _, loc := range goSpecRe.FindAllStringSubmatchIndex(body, -1) {
			alias, p := "", body[loc[4]:loc[5]]
			if loc[2] >= 0 {
				alias = body[loc[2]:loc[3]]
			}
			spec := strings.TrimSpace(body[loc[0]:loc[1]])
			out = append(out, Import{
				Statement: "import " + spec,
				Source:    spec,
				Names:     []string{goBinding(alias, p)},
				Offset:    blk[2] + skipIndent(body, loc[0], loc[1]),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// goBinding guesses the package name an import path binds.
func goBinding(alias, importPath string) string {
	if alias != "" && alias != "." && alias != "_" {
		return alias
	}
	segs := strings.Split(importPath, "/")
	name := segs[len(segs)-1]
	if goMajorRe.MatchString(name) && len(segs) > 1 {
		name = segs[len(segs)-2]
	}
	if i := strings.Index(name, ".v"); i > 0 {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "go-")
	return strings.ReplaceAll(name, "-", "_")
}
