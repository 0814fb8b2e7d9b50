package generate

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/mod/modfile"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/Paranoid-AF/codelet"
)

const (
	projectCacheTTL  = 1 * time.Hour
	gatherTimeout    = 5 * time.Second
	maxProjectFiles  = 50
	manifestMaxBytes = 1 << 20
)

// manifestFiles lists the manifest filenames to look for, in the order their
// project names are preferred.
var manifestFiles = []string{
	"package.json",
	"go.mod",
	"Cargo.toml",
	"pyproject.toml",
	"pubspec.yaml",
	"requirements.txt",
}

// manifest is what one manifest file contributes to the project info.
type manifest struct {
	name string
	deps []string
}

var manifestParsers = map[string]func(data []byte) (manifest, error){
	"package.json":     parsePackageJSON,
	"go.mod":           parseGoMod,
	"Cargo.toml":       parseCargoToml,
	"pyproject.toml":   parsePyproject,
	"pubspec.yaml":     parsePubspec,
	"requirements.txt": parseRequirements,
}

// ProjectCache is a TTL cache of project info keyed by absolute project root.
type ProjectCache struct {
	cache *ttlcache.Cache[string, *codelet.ProjectInfo]
}

// NewProjectCache creates a new ProjectCache with TTL-based expiration.
func NewProjectCache() *ProjectCache {
	return newProjectCache(projectCacheTTL)
}

func newProjectCache(ttl time.Duration) *ProjectCache {
	c := ttlcache.New[string, *codelet.ProjectInfo](
		ttlcache.WithTTL[string, *codelet.ProjectInfo](ttl),
		ttlcache.WithDisableTouchOnHit[string, *codelet.ProjectInfo](),
	)
	go c.Start()
	return &ProjectCache{cache: c}
}

// Close stops the cache expiration loop.
func (pc *ProjectCache) Close() {
	pc.cache.Stop()
}

// Get returns the cached info for root, or nil if not cached/expired.
func (pc *ProjectCache) Get(root string) *codelet.ProjectInfo {
	item := pc.cache.Get(root)
	if item == nil {
		return nil
	}
	return item.Value()
}

// Lookup returns the project info for a file. root overrides discovery when
// non-empty. Cached entries are returned as is; misses are gathered. Returns
// nil when no project root can be found.
func (pc *ProjectCache) Lookup(ctx context.Context, fileName, root string) *codelet.ProjectInfo {
	if root == "" {
		root = FindProjectRoot(fileName)
	}
	if root == "" {
		return nil
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if info := pc.Get(root); info != nil {
		return info
	}
	return pc.Gather(ctx, root)
}

// Gather reads the manifests and top-level files of root and caches the
// result. Manifests that fail to parse are skipped. A cancelled gather
// returns an empty record that is not cached.
func (pc *ProjectCache) Gather(ctx context.Context, root string) *codelet.ProjectInfo {
	ctx, cancel := context.WithTimeout(ctx, gatherTimeout)
	defer cancel()

	info := &codelet.ProjectInfo{Root: root}
	results := make([]*manifest, len(manifestFiles))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range manifestFiles {
		i, name := i, name
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			m, err := readManifest(filepath.Join(root, name))
			if err != nil {
				if !os.IsNotExist(err) {
					slog.Debug("skipping manifest", "path", filepath.Join(root, name), "error", err)
				}
				return nil
			}
			results[i] = &m
			return nil
		})
	}
	var files []string
	g.Go(func() error {
		files = listFiles(root)
		return nil
	})
	if err := g.Wait(); err != nil || ctx.Err() != nil {
		slog.Debug("project gather cancelled", "root", root)
		return &codelet.ProjectInfo{Root: root}
	}

	var deps []string
	for i, m := range results {
		if m == nil {
			continue
		}
		info.Manifests = append(info.Manifests, manifestFiles[i])
		if info.Name == "" {
			info.Name = m.name
		}
		deps = append(deps, m.deps...)
	}
	info.Dependencies = dedupe(deps)
	info.PackageManager = detectPackageManager(root)
	info.Files = files

	pc.cache.Set(root, info, ttlcache.DefaultTTL)
	slog.Debug("gathered project info", "root", root, "manifests", len(info.Manifests), "dependencies", len(info.Dependencies))
	return info
}

// FindProjectRoot returns the nearest ancestor directory of fileName that
// holds a manifest or a .git entry, or "" when there is none.
func FindProjectRoot(fileName string) string {
	if fileName == "" {
		return ""
	}
	abs, err := filepath.Abs(fileName)
	if err != nil {
		return ""
	}
	dir := filepath.Dir(abs)
	for {
		if isProjectRoot(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func isProjectRoot(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return true
	}
	for _, name := range manifestFiles {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

func readManifest(path string) (manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return manifest{}, err
	}
	if info.IsDir() {
		return manifest{}, os.ErrNotExist
	}
	if info.Size() > manifestMaxBytes {
		return manifest{}, fmt.Errorf("manifest too large: %d bytes", info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return manifest{}, err
	}
	return manifestParsers[filepath.Base(path)](data)
}

// listFiles returns the visible top-level entries of dir, directories with a
// trailing slash.
func listFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		files = append(files, name)
		if len(files) == maxProjectFiles {
			break
		}
	}
	return files
}

func parsePackageJSON(data []byte) (manifest, error) {
	var pkg struct {
		Name            string            `json:"name"`
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return manifest{}, err
	}
	return manifest{name: pkg.Name, deps: append(sortedKeys(pkg.Dependencies), sortedKeys(pkg.DevDependencies)...)}, nil
}

// parseGoMod lists direct requirements before indirect ones.
func parseGoMod(data []byte) (manifest, error) {
	f, err := modfile.ParseLax("go.mod", data, nil)
	if err != nil {
		return manifest{}, err
	}
	var m manifest
	if f.Module != nil {
		m.name = f.Module.Mod.Path
	}
	var indirect []string
	for _, r := range f.Require {
		if r.Indirect {
			indirect = append(indirect, r.Mod.Path)
		} else {
			m.deps = append(m.deps, r.Mod.Path)
		}
	}
	m.deps = append(m.deps, indirect...)
	return m, nil
}

type cargoToml struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Dependencies    map[string]any `toml:"dependencies"`
	DevDependencies map[string]any `toml:"dev-dependencies"`
}

func parseCargoToml(data []byte) (manifest, error) {
	var cargo cargoToml
	if _, err := toml.Decode(string(data), &cargo); err != nil {
		return manifest{}, err
	}
	return manifest{
		name: cargo.Package.Name,
		deps: append(sortedKeys(cargo.Dependencies), sortedKeys(cargo.DevDependencies)...),
	}, nil
}

type pyprojectToml struct {
	Project struct {
		Name         string   `toml:"name"`
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name         string         `toml:"name"`
			Dependencies map[string]any `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func parsePyproject(data []byte) (manifest, error) {
	var py pyprojectToml
	if _, err := toml.Decode(string(data), &py); err != nil {
		return manifest{}, err
	}
	m := manifest{name: py.Project.Name}
	if m.name == "" {
		m.name = py.Tool.Poetry.Name
	}
	for _, spec := range py.Project.Dependencies {
		if name := requirementName(spec); name != "" {
			m.deps = append(m.deps, name)
		}
	}
	for _, name := range sortedKeys(py.Tool.Poetry.Dependencies) {
		if name != "python" {
			m.deps = append(m.deps, name)
		}
	}
	return m, nil
}

func parsePubspec(data []byte) (manifest, error) {
	var pub struct {
		Name            string         `yaml:"name"`
		Dependencies    map[string]any `yaml:"dependencies"`
		DevDependencies map[string]any `yaml:"dev_dependencies"`
	}
	if err := yaml.Unmarshal(data, &pub); err != nil {
		return manifest{}, err
	}
	var deps []string
	for _, name := range append(sortedKeys(pub.Dependencies), sortedKeys(pub.DevDependencies)...) {
		if name != "flutter" && name != "flutter_test" {
			deps = append(deps, name)
		}
	}
	return manifest{name: pub.Name, deps: deps}, nil
}

func parseRequirements(data []byte) (manifest, error) {
	var m manifest
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip comments and pip options (-r, -e, --index-url).
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		if name := requirementName(line); name != "" {
			m.deps = append(m.deps, name)
		}
	}
	return m, scanner.Err()
}

// requirementName returns the distribution name of a PEP 508 requirement
// such as "requests[socks]>=2.0; python_version>'3'".
func requirementName(spec string) string {
	spec = strings.TrimSpace(spec)
	if i := strings.IndexAny(spec, " <>=!~[;@("); i >= 0 {
		spec = spec[:i]
	}
	return spec
}

// lockfileMap maps lockfile names to package manager names.
// Ordered by priority (more specific lockfiles first).
var lockfileMap = []struct {
	file    string
	manager string
}{
	{"pnpm-lock.yaml", "pnpm"},
	{"yarn.lock", "yarn"},
	{"bun.lockb", "bun"},
	{"bun.lock", "bun"},
	{"package-lock.json", "npm"},
	{"Cargo.lock", "cargo"},
	{"poetry.lock", "poetry"},
	{"uv.lock", "uv"},
	{"pubspec.lock", "pub"},
	{"go.sum", "go"},
}

// detectPackageManager detects the package manager from lockfile presence.
func detectPackageManager(root string) string {
	for _, lf := range lockfileMap {
		if _, err := os.Stat(filepath.Join(root, lf.file)); err == nil {
			return lf.manager
		}
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// dedupe keeps the first occurrence of each item, in order.
func dedupe(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
