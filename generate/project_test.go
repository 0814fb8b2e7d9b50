package generate

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/Paranoid-AF/codelet"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestProjectCacheGetMiss(t *testing.T) {
	pc := NewProjectCache()
	defer pc.Close()

	if got := pc.Get("/nonexistent/path"); got != nil {
		t.Errorf("expected nil for cache miss, got %+v", got)
	}
}

func TestProjectCacheGetHit(t *testing.T) {
	pc := NewProjectCache()
	defer pc.Close()

	pc.cache.Set("/test", &codelet.ProjectInfo{Root: "/test", Name: "demo"}, ttlcache.DefaultTTL)

	got := pc.Get("/test")
	if got == nil {
		t.Fatal("expected cache hit")
	}
	if got.Name != "demo" {
		t.Errorf("expected name %q, got %q", "demo", got.Name)
	}
}

func TestProjectCacheGetExpired(t *testing.T) {
	pc := newProjectCache(time.Millisecond)
	defer pc.Close()

	pc.cache.Set("/test", &codelet.ProjectInfo{Root: "/test"}, ttlcache.DefaultTTL)
	time.Sleep(10 * time.Millisecond)

	if got := pc.Get("/test"); got != nil {
		t.Errorf("expected nil for expired entry, got %+v", got)
	}
}

func TestProjectCacheGatherListsFiles(t *testing.T) {
	pc := NewProjectCache()
	defer pc.Close()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "hello.txt"), "hi")
	writeFile(t, filepath.Join(dir, "src", "main.go"), "package main")
	writeFile(t, filepath.Join(dir, ".env"), "SECRET=1")

	info := pc.Gather(context.Background(), dir)
	if !slices.Contains(info.Files, "hello.txt") {
		t.Errorf("expected hello.txt in files, got %v", info.Files)
	}
	if !slices.Contains(info.Files, "src/") {
		t.Errorf("expected src/ in files, got %v", info.Files)
	}
	if slices.Contains(info.Files, ".env") {
		t.Errorf("hidden files should be skipped, got %v", info.Files)
	}
	if pc.Get(dir) != info {
		t.Error("expected gathered info to be cached")
	}
}

func TestProjectCacheGatherCancelled(t *testing.T) {
	pc := NewProjectCache()
	defer pc.Close()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name":"web"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	info := pc.Gather(ctx, dir)
	if !info.Empty() {
		t.Errorf("expected empty info for cancelled gather, got %+v", info)
	}
	if pc.Get(dir) != nil {
		t.Error("cancelled gather should not be cached")
	}
}

func TestProjectCacheManifests(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantName string
		wantDeps []string
	}{
		{
			name:     "package.json",
			file:     "package.json",
			content:  `{"name":"web","dependencies":{"react":"^18","axios":"1"},"devDependencies":{"vitest":"1"}}`,
			wantName: "web",
			wantDeps: []string{"axios", "react", "vitest"},
		},
		{
			name: "go.mod",
			file: "go.mod",
			content: `module example.com/svc

go 1.22

require (
	github.com/spf13/cobra v1.8.0
	golang.org/x/sys v0.20.0 // indirect
)
`,
			wantName: "example.com/svc",
			wantDeps: []string{"github.com/spf13/cobra", "golang.org/x/sys"},
		},
		{
			name: "Cargo.toml",
			file: "Cargo.toml",
			content: `[package]
name = "tool"

[dependencies]
serde = { version = "1", features = ["derive"] }
tokio = "1"

[dev-dependencies]
proptest = "1"
`,
			wantName: "tool",
			wantDeps: []string{"serde", "tokio", "proptest"},
		},
		{
			name: "pyproject.toml",
			file: "pyproject.toml",
			content: `[project]
name = "app"
dependencies = ["requests>=2.31", "pydantic[email]~=2.0", "numpy ; python_version>'3.9'"]
`,
			wantName: "app",
			wantDeps: []string{"requests", "pydantic", "numpy"},
		},
		{
			name: "poetry",
			file: "pyproject.toml",
			content: `[tool.poetry]
name = "poem"

[tool.poetry.dependencies]
python = "^3.11"
httpx = "^0.27"
`,
			wantName: "poem",
			wantDeps: []string{"httpx"},
		},
		{
			name:     "requirements.txt",
			file:     "requirements.txt",
			content:  "# pinned\nflask==3.0.0\n-r base.txt\n\ngunicorn\n",
			wantDeps: []string{"flask", "gunicorn"},
		},
		{
			name: "pubspec.yaml",
			file: "pubspec.yaml",
			content: `name: mobile
dependencies:
  flutter:
    sdk: flutter
  http: ^1.2.0
dev_dependencies:
  lints: ^3.0.0
`,
			wantName: "mobile",
			wantDeps: []string{"http", "lints"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := NewProjectCache()
			defer pc.Close()

			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, tt.file), tt.content)

			info := pc.Gather(context.Background(), dir)
			if info.Name != tt.wantName {
				t.Errorf("name = %q, want %q", info.Name, tt.wantName)
			}
			if !slices.Equal(info.Dependencies, tt.wantDeps) {
				t.Errorf("dependencies = %v, want %v", info.Dependencies, tt.wantDeps)
			}
			if !slices.Equal(info.Manifests, []string{tt.file}) {
				t.Errorf("manifests = %v, want [%s]", info.Manifests, tt.file)
			}
		})
	}
}

func TestProjectCacheSkipsBrokenManifest(t *testing.T) {
	pc := NewProjectCache()
	defer pc.Close()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name":`)
	writeFile(t, filepath.Join(dir, "requirements.txt"), "django\n")

	info := pc.Gather(context.Background(), dir)
	if !slices.Equal(info.Manifests, []string{"requirements.txt"}) {
		t.Errorf("expected only requirements.txt to be read, got %v", info.Manifests)
	}
	if !slices.Equal(info.Dependencies, []string{"django"}) {
		t.Errorf("unexpected dependencies %v", info.Dependencies)
	}
}

func TestProjectCacheNamePreference(t *testing.T) {
	pc := NewProjectCache()
	defer pc.Close()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "go.mod"), "module example.com/backend\n")
	writeFile(t, filepath.Join(dir, "package.json"), `{"name":"frontend","dependencies":{"vue":"3"}}`)

	info := pc.Gather(context.Background(), dir)
	if info.Name != "frontend" {
		t.Errorf("expected package.json name to win, got %q", info.Name)
	}
	if !slices.Equal(info.Manifests, []string{"package.json", "go.mod"}) {
		t.Errorf("unexpected manifests %v", info.Manifests)
	}
}

func TestProjectCacheLookupFindsRoot(t *testing.T) {
	pc := NewProjectCache()
	defer pc.Close()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Cargo.toml"), "[package]\nname = \"crate\"\n")
	file := filepath.Join(dir, "src", "bin", "main.rs")
	writeFile(t, file, "fn main() {}\n")

	info := pc.Lookup(context.Background(), file, "")
	if info == nil {
		t.Fatal("expected project info")
	}
	if info.Root != dir {
		t.Errorf("root = %q, want %q", info.Root, dir)
	}
	if info.Name != "crate" {
		t.Errorf("name = %q, want %q", info.Name, "crate")
	}
}

func TestFindProjectRoot(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(dir, "pkg", "util", "strings.go")
	writeFile(t, file, "package util\n")

	if got := FindProjectRoot(file); got != dir {
		t.Errorf("FindProjectRoot = %q, want %q", got, dir)
	}
	if got := FindProjectRoot(""); got != "" {
		t.Errorf("expected empty root for empty file name, got %q", got)
	}
}

func TestDetectPackageManager(t *testing.T) {
	dir := t.TempDir()

	// No lockfile
	if got := detectPackageManager(dir); got != "" {
		t.Errorf("expected empty, got %q", got)
	}

	writeFile(t, filepath.Join(dir, "package-lock.json"), "{}")
	writeFile(t, filepath.Join(dir, "pnpm-lock.yaml"), "")
	if got := detectPackageManager(dir); got != "pnpm" {
		t.Errorf("expected pnpm, got %q", got)
	}
}

func TestRequirementName(t *testing.T) {
	tests := map[string]string{
		"requests":                   "requests",
		"requests>=2.0":              "requests",
		"uvicorn[standard]":          "uvicorn",
		"pkg @ https://example.com/": "pkg",
		"  black ; extra == 'dev'":   "black",
	}
	for in, want := range tests {
		if got := requirementName(in); got != want {
			t.Errorf("requirementName(%q) = %q, want %q", in, got, want)
		}
	}
}
