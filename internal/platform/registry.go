package platform

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Categorizer assigns a category to a platform. It must fail for names it
// does not know.
type Categorizer interface {
	Categorize(name, path string) (string, error)
}

// CategorizerFunc adapts a function to Categorizer.
type CategorizerFunc func(name, path string) (string, error)

func (f CategorizerFunc) Categorize(name, path string) (string, error) { return f(name, path) }

// Resolver finds the implementation source for a peripheral type.
type Resolver interface {
	Resolve(typeName string) (uri string, ok bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(typeName string) (string, bool)

func (f ResolverFunc) Resolve(typeName string) (string, bool) { return f(typeName) }

// CycleError reports an include chain that leads back to a platform still
// being parsed.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return "platform: cyclic include: " + strings.Join(e.Chain, " -> ")
}

// Options configures a Registry.
type Options struct {
	// TopDir is the directory include paths are resolved against.
	TopDir string
	// Categorizer is required.
	Categorizer Categorizer
	// Resolver is optional; without one no peripheral carries a URI.
	Resolver Resolver
}

// Registry owns every Platform of one scan. It guarantees a single entity per
// cleaned path, so diamond-shaped include graphs are parsed once and shared.
type Registry struct {
	opts       Options
	nodes      []*Platform
	index      map[string]ID
	order      []ID
	stack      []ID
	categories []string
	catSeen    map[string]bool

	// OnUnresolved, when set, is called for every peripheral type whose
	// source could not be found.
	OnUnresolved func(typeName string)
}

// NewRegistry returns an empty registry.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:    opts,
		index:   make(map[string]ID),
		catSeen: make(map[string]bool),
	}
}

// Get returns the platform for path, parsing it (and, recursively, everything
// it includes) on first request. Subsequent requests for the same path return
// the identical *Platform.
func (r *Registry) Get(path string) (*Platform, error) {
	path = filepath.Clean(path)
	if id, ok := r.index[path]; ok {
		p := r.nodes[id]
		if p.state == stateParsing {
			return nil, &CycleError{Chain: r.chainTo(id)}
		}
		return p, nil
	}

	name := NameFromPath(path)
	cat, err := r.opts.Categorizer.Categorize(name, path)
	if err != nil {
		return nil, err
	}
	r.noteCategory(cat)

	p := &Platform{
		ID:       ID(len(r.nodes)),
		Path:     path,
		Name:     name,
		Category: cat,
		reg:      r,
		state:    stateParsing,
	}
	r.nodes = append(r.nodes, p)
	r.index[path] = p.ID

	r.stack = append(r.stack, p.ID)
	err = r.parse(p)
	r.stack = r.stack[:len(r.stack)-1]
	if err != nil {
		return nil, err
	}

	p.state = stateDone
	r.order = append(r.order, p.ID)
	return p, nil
}

// chainTo lists the in-progress paths from id to the top of the parse stack,
// closed with id again.
func (r *Registry) chainTo(id ID) []string {
	var chain []string
	for i, sid := range r.stack {
		if sid != id {
			continue
		}
		for _, cid := range r.stack[i:] {
			chain = append(chain, r.nodes[cid].Path)
		}
		break
	}
	return append(chain, r.nodes[id].Path)
}

func (r *Registry) noteCategory(cat string) {
	if r.catSeen[cat] {
		return
	}
	r.catSeen[cat] = true
	r.categories = append(r.categories, cat)
}

func (r *Registry) parse(p *Platform) error {
	f, err := os.Open(p.Path)
	if err != nil {
		return fmt.Errorf("platform: open %s: %w", p.Path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := ParseLine(sc.Text())
		switch line.Class {
		case LineUsing:
			inc, err := r.Get(filepath.Join(r.opts.TopDir, line.Include))
			if err != nil {
				return err
			}
			p.Includes = append(p.Includes, inc.ID)
		case LinePeripheral:
			p.addOwn(line.Kind, line.Type, r.resolve)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("platform: read %s: %w", p.Path, err)
	}
	return nil
}

func (r *Registry) resolve(typeName string) string {
	if r.opts.Resolver == nil {
		return ""
	}
	uri, ok := r.opts.Resolver.Resolve(typeName)
	if !ok {
		if r.OnUnresolved != nil {
			r.OnUnresolved(typeName)
		}
		return ""
	}
	return uri
}

// ---------------------------------------------------------------------------
// Lookups
// ---------------------------------------------------------------------------

// Lookup returns the platform already registered for path, without parsing.
func (r *Registry) Lookup(path string) (*Platform, bool) {
	id, ok := r.index[filepath.Clean(path)]
	if !ok || r.nodes[id].state != stateDone {
		return nil, false
	}
	return r.nodes[id], true
}

// ByName returns the first completed platform whose name is name.
func (r *Registry) ByName(name string) (*Platform, bool) {
	for _, id := range r.order {
		if r.nodes[id].Name == name {
			return r.nodes[id], true
		}
	}
	return nil, false
}

// Platforms returns every completed platform in completion order: an
// included platform precedes the first platform that includes it.
func (r *Registry) Platforms() []*Platform {
	out := make([]*Platform, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.nodes[id])
	}
	return out
}

// Len reports the number of completed platforms.
func (r *Registry) Len() int { return len(r.order) }

// Categories returns every assigned category in first-assigned order.
func (r *Registry) Categories() []string {
	return append([]string(nil), r.categories...)
}

// InCategory returns the platforms assigned cat, in completion order.
func (r *Registry) InCategory(cat string) []*Platform {
	var out []*Platform
	for _, p := range r.Platforms() {
		if p.Category == cat {
			out = append(out, p)
		}
	}
	return out
}

// Kinds returns the sorted set of kinds present in any platform's grouped
// view.
func (r *Registry) Kinds() []string {
	seen := make(map[string]bool)
	for _, p := range r.Platforms() {
		for kind := range p.Grouped() {
			seen[kind] = true
		}
	}
	kinds := make([]string, 0, len(seen))
	for k := range seen {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
