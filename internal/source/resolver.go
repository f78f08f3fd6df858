// Package source locates the implementation file behind a peripheral type
// and turns it into a browsable link.
package source

import (
	"errors"
	"io/fs"
	"path/filepath"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultBaseURI prefixes resolved paths when no other base is configured.
const DefaultBaseURI = "https://github.com/renode/renode-infrastructure/tree/master/"

var errFound = errors.New("found")

// Resolver searches Root for <type><Ext>. Lookups, including misses, are
// memoised for the resolver's lifetime; the tree is assumed not to change
// during a scan.
type Resolver struct {
	Root    string
	Ext     string
	BaseURI string

	memo *gocache.Cache
}

// New returns a Resolver. ext includes the leading dot (".cs").
func New(root, ext, baseURI string) *Resolver {
	return &Resolver{
		Root:    root,
		Ext:     ext,
		BaseURI: baseURI,
		memo:    gocache.New(gocache.NoExpiration, 0),
	}
}

type lookup struct {
	uri string
	ok  bool
}

// Resolve returns BaseURI + the slash-separated path of the first file named
// typeName+Ext found under Root, depth first. ok is false when there is no
// such file or Root does not exist.
func (r *Resolver) Resolve(typeName string) (string, bool) {
	if v, found := r.memo.Get(typeName); found {
		l := v.(lookup)
		return l.uri, l.ok
	}
	rel, ok := r.Find(typeName + r.Ext)
	l := lookup{ok: ok}
	if ok {
		l.uri = r.BaseURI + rel
	}
	r.memo.Set(typeName, l, gocache.NoExpiration)
	return l.uri, l.ok
}

// Find walks Root for a file named fname and returns its path relative to
// Root in forward-slash form. The first match wins.
func (r *Resolver) Find(fname string) (string, bool) {
	var match string
	err := filepath.WalkDir(r.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped; a missing root ends the walk.
			if path == r.Root {
				return err
			}
			return nil
		}
		if d.IsDir() || d.Name() != fname {
			return nil
		}
		rel, err := filepath.Rel(r.Root, path)
		if err != nil {
			return err
		}
		match = filepath.ToSlash(rel)
		return errFound
	})
	if !errors.Is(err, errFound) {
		return "", false
	}
	return match, true
}
