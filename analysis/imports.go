package analysis

import "github.com/Paranoid-AF/codelet/lang"

// RelatedImports keeps the import statements that bind a name used in
// symbols. Statements are returned once each, in source order.
func RelatedImports(imports []lang.Import, symbols []string) []string {
	used := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		used[BaseName(s)] = true
	}
	var out []string
	seen := make(map[string]bool)
	for _, imp := range imports {
		if seen[imp.Statement] {
			continue
		}
		for _, name := range imp.Names {
			if used[name] {
				seen[imp.Statement] = true
				out = append(out, imp.Statement)
				break
			}
		}
	}
	return out
}
