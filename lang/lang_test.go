package lang

import (
	"reflect"
	"testing"
)

func kinds(structs []Structure) []Kind {
	out := make([]Kind, len(structs))
	for i, s := range structs {
		out[i] = s.Kind
	}
	return out
}

func TestRegistryFallsBackToGeneric(t *testing.T) {
	r := NewRegistry()
	a := r.Lookup("cobol")
	if a.Language() != Generic {
		t.Errorf("expected generic analyzer, got %q", a.Language())
	}
	if r.Lookup("cobol") != a {
		t.Error("expected the same instance on repeated lookups")
	}
	if r.Known("cobol") {
		t.Error("expected cobol to be unknown")
	}
}

func TestRegistryAliases(t *testing.T) {
	r := NewRegistry()
	if got := r.Lookup("TS").Language(); got != "typescript" {
		t.Errorf("expected typescript, got %q", got)
	}
	if got := r.Lookup("bash").Language(); got != "shellscript" {
		t.Errorf("expected shellscript, got %q", got)
	}
	if r.Lookup("js") != r.Lookup("javascript") {
		t.Error("expected alias and canonical id to share an analyzer")
	}
}

func TestJavaScriptStructures(t *testing.T) {
	src := `import { foo } from 'bar';
class Widget {
  render() {
    if (x) {
    }
  }
}
function helper(a) {
  return a;
}
`
	a := NewRegistry().Lookup("javascript")
	got := a.Structures(src)
	want := []Kind{KindImport, KindClass, KindMethod, KindIf, KindFunction}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Fatalf("expected kinds %v, got %+v", want, got)
	}
	if got[1].Name != "Widget" || got[2].Name != "render" || got[4].Name != "helper" {
		t.Errorf("unexpected names: %+v", got)
	}
	if src[got[4].Offset:got[4].Offset+8] != "function" {
		t.Errorf("expected offset at declaration keyword, got %d", got[4].Offset)
	}
}

func TestControlFlowNeverClassifiedAsDeclaration(t *testing.T) {
	src := "} else if (check(a)) {\n  while (next()) {\n  }\n  switch (kind) {\n  }\n}\n"
	for _, id := range []string{"javascript", "java", "c", "generic"} {
		for _, s := range NewRegistry().Lookup(id).Structures(src) {
			if !s.Kind.IsControlFlow() {
				t.Errorf("%s: control-flow line classified as %s %q", id, s.Kind, s.Name)
			}
		}
	}
}

func TestStructuresSortedByOffset(t *testing.T) {
	src := "type Server struct {\n}\n\nfunc (s *Server) Run() error {\n\tfor {\n\t}\n}\n\nfunc main() {\n\tif true {\n\t}\n}\n"
	got := NewRegistry().Lookup("go").Structures(src)
	for i := 1; i < len(got); i++ {
		if got[i].Offset < got[i-1].Offset {
			t.Fatalf("structures out of order: %+v", got)
		}
	}
	want := []Kind{KindStruct, KindMethod, KindFor, KindFunction, KindIf}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Errorf("expected %v, got %+v", want, got)
	}
}

func TestPythonStructuresAndImports(t *testing.T) {
	src := "import os\nfrom typing import List, Optional\n\nclass Repo:\n    def load(self, path):\n        if path:\n            return os.path.join(path)\n"
	a := NewRegistry().Lookup("python")
	var names []string
	for _, s := range a.Structures(src) {
		if s.Kind == KindClass || s.Kind == KindFunction {
			names = append(names, string(s.Kind)+":"+s.Name)
		}
	}
	if !reflect.DeepEqual(names, []string{"class:Repo", "function:load"}) {
		t.Errorf("unexpected declarations %v", names)
	}
	imports := a.Imports(src)
	if len(imports) != 2 {
		t.Fatalf("expected 2 imports, got %+v", imports)
	}
	if !reflect.DeepEqual(imports[0].Names, []string{"os"}) {
		t.Errorf("expected os binding, got %v", imports[0].Names)
	}
	if !reflect.DeepEqual(imports[1].Names, []string{"List", "Optional"}) {
		t.Errorf("expected List and Optional, got %v", imports[1].Names)
	}
}

func TestJavaScriptImportNames(t *testing.T) {
	src := "import React, { useState, useEffect as effect } from 'react';\nimport * as path from 'path';\nconst { readFile } = require('fs');\n"
	imports := NewRegistry().Lookup("javascript").Imports(src)
	if len(imports) != 3 {
		t.Fatalf("expected 3 imports, got %+v", imports)
	}
	tests := [][]string{{"React", "useState", "effect"}, {"path"}, {"readFile"}}
	for i, want := range tests {
		if !reflect.DeepEqual(imports[i].Names, want) {
			t.Errorf("import %d: expected %v, got %v", i, want, imports[i].Names)
		}
	}
	if imports[0].Statement != "import React, { useState, useEffect as effect } from 'react';" {
		t.Errorf("unexpected statement %q", imports[0].Statement)
	}
}

func TestGoImportBlock(t *testing.T) {
	src := "package main\n\nimport (\n\t\"fmt\"\n\tyaml \"gopkg.in/yaml.v3\"\n\t\"github.com/sashabaranov/go-openai\"\n)\n"
	imports := NewRegistry().Lookup("go").Imports(src)
	var names []string
	for _, imp := range imports {
		names = append(names, imp.Names...)
	}
	if !reflect.DeepEqual(names, []string{"fmt", "yaml", "openai"}) {
		t.Errorf("unexpected bindings %v", names)
	}
	if imports[0].Statement != `import "fmt"` {
		t.Errorf("unexpected statement %q", imports[0].Statement)
	}
	if imports[1].Source != `yaml "gopkg.in/yaml.v3"` {
		t.Errorf("unexpected source %q", imports[1].Source)
	}
}

func TestShellParsedStructures(t *testing.T) {
	src := "greet() {\n  echo hi\n}\nsource ./lib/util.sh\nif [ -n \"$x\" ]; then\n  greet\nfi\n"
	a := NewRegistry().Lookup("shellscript")
	got := a.Structures(src)
	want := []Kind{KindFunction, KindImport, KindIf}
	if !reflect.DeepEqual(kinds(got), want) {
		t.Fatalf("expected %v, got %+v", want, got)
	}
	if got[0].Name != "greet" {
		t.Errorf("expected greet, got %q", got[0].Name)
	}
	imports := a.Imports(src)
	if len(imports) != 1 || !reflect.DeepEqual(imports[0].Names, []string{"util"}) {
		t.Errorf("unexpected imports %+v", imports)
	}
}

func TestShellFallsBackOnParseError(t *testing.T) {
	src := "deploy() {\n  if [ -z \"$1\" ]; then\n"
	got := NewRegistry().Lookup("shellscript").Structures(src)
	if len(got) == 0 || got[0].Kind != KindFunction || got[0].Name != "deploy" {
		t.Errorf("expected regex fallback to find deploy, got %+v", got)
	}
}

func TestSyntaxContext(t *testing.T) {
	js := NewRegistry().Lookup("javascript")
	tests := []struct {
		before, want string
	}{
		{"const s = 'abc", "inside a string literal"},
		{"const s = `hello ${na", "inside a template literal expression"},
		{"const s = `hello", "inside a template literal"},
		{"foo(a, ", "inside the arguments of a call to foo"},
		{"if (x > ", "inside an if condition"},
		{"function add(a, ", "inside the parameter list of function add"},
		{"const xs = [1, ", "inside an array literal"},
		{"const o = {a: 1, ", "inside an object literal"},
		{"return ", "in a return statement"},
		{"user.", "accessing a member of user"},
		{"// todo", "inside a comment"},
		{"foo()", ""},
	}
	for _, tt := range tests {
		if got := js.SyntaxContext(tt.before); got != tt.want {
			t.Errorf("SyntaxContext(%q) = %q, want %q", tt.before, got, tt.want)
		}
	}
}

func TestPythonSyntaxContext(t *testing.T) {
	py := NewRegistry().Lookup("python")
	tests := []struct {
		before, want string
	}{
		{`name = f"hello {us`, "inside a string interpolation expression"},
		{`doc = """Summary`, "inside a multi-line string literal"},
		{"x = 1  # it's", "inside a comment"},
		{"def load(self, ", "inside the parameter list of function load"},
		{"items = [", "inside a list literal"},
	}
	for _, tt := range tests {
		if got := py.SyntaxContext(tt.before); got != tt.want {
			t.Errorf("SyntaxContext(%q) = %q, want %q", tt.before, got, tt.want)
		}
	}
}

func TestBasicSyntaxContext(t *testing.T) {
	tests := []struct {
		before, want string
	}{
		{`say("hi`, "inside a string literal"},
		{"foo(bar, [1", "inside brackets"},
		{"call(x", "inside parentheses"},
		{"done()", ""},
	}
	for _, tt := range tests {
		if got := BasicSyntaxContext(tt.before); got != tt.want {
			t.Errorf("BasicSyntaxContext(%q) = %q, want %q", tt.before, got, tt.want)
		}
	}
}

func TestScopeRulesDeclaration(t *testing.T) {
	rules := NewRegistry().Lookup("javascript").ScopeRules()
	if _, _, ok := rules.Declaration("  } else if (foo(bar)) {"); ok {
		t.Error("expected control-flow line to be rejected")
	}
	kind, name, ok := rules.Declaration("export async function load(id) {")
	if !ok || kind != KindFunction || name != "load" {
		t.Errorf("expected function load, got %v %q %v", kind, name, ok)
	}
	kind, name, ok = rules.Declaration("const onClick = (e) => {")
	if !ok || kind != KindArrowFunction || name != "onClick" {
		t.Errorf("expected arrow-function onClick, got %v %q %v", kind, name, ok)
	}
}

func TestKeywordSets(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"generic", "javascript", "python", "go", "java", "rust", "shellscript"} {
		if !r.Lookup(id).IsKeyword("if") {
			t.Errorf("%s: expected if to be a keyword", id)
		}
	}
	if r.Lookup("python").IsKeyword("const") {
		t.Error("python should not treat const as a keyword")
	}
	if !r.Lookup("java").IsKeyword("public") {
		t.Error("java should treat public as a keyword")
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		file, want string
	}{
		{"main.go", "go"},
		{"app/script.py", "python"},
		{"lib.rs", "rust"},
		{"run.sh", "shellscript"},
	}
	for _, tt := range tests {
		if got := Detect(tt.file, ""); got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.file, got, tt.want)
		}
	}
}
