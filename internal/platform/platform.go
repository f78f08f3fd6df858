// Package platform holds the in-memory model of a scanned description tree:
// platforms, the peripherals they declare, the include graph between them and
// the two aggregation views computed over that graph.
package platform

import (
	"path/filepath"
	"strings"
)

// ID indexes a Platform inside its Registry. Include edges are stored as IDs.
type ID int

// Peripheral is a declared hardware component. Two peripherals are the same
// entity when Kind and Type match; Count and URI are not part of identity.
type Peripheral struct {
	Kind  string
	Type  string
	Count int
	// URI links to the implementation source; empty when none was found.
	URI string
}

// SameAs reports whether p and o denote the same (kind, type) pair.
func (p Peripheral) SameAs(o Peripheral) bool {
	return p.Kind == o.Kind && p.Type == o.Type
}

type peripheralKey struct{ kind, typ string }

func (p Peripheral) key() peripheralKey { return peripheralKey{p.Kind, p.Type} }

type parseState uint8

const (
	stateParsing parseState = iota + 1
	stateDone
)

// Platform is one parsed description file. Platforms are created by a
// Registry and are read-only once parsing completes.
type Platform struct {
	ID       ID
	Path     string
	Name     string
	Category string
	Includes []ID
	Own      []Peripheral

	reg     *Registry
	state   parseState
	grouped map[string][]string
}

// NameFromPath returns the file stem used as a platform's name.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IncludedPlatforms resolves the include edges to platform entities, in
// declaration order.
func (p *Platform) IncludedPlatforms() []*Platform {
	out := make([]*Platform, 0, len(p.Includes))
	for _, id := range p.Includes {
		out = append(out, p.reg.nodes[id])
	}
	return out
}

// addOwn records a declaration, bumping the count of an existing entry with
// the same identity.
func (p *Platform) addOwn(kind, typ string, resolve func(string) string) {
	for i := range p.Own {
		if p.Own[i].Kind == kind && p.Own[i].Type == typ {
			p.Own[i].Count++
			return
		}
	}
	p.Own = append(p.Own, Peripheral{
		Kind:  kind,
		Type:  typ,
		Count: 1,
		URI:   resolve(typ),
	})
}

// ---------------------------------------------------------------------------
// Aggregation views
// ---------------------------------------------------------------------------

// Grouped returns kind → types over the transitive include closure: every
// included platform's grouped view in include order, then this platform's own
// types. One entry is added per own peripheral regardless of its count.
//
// The result is computed once and cached for the platform's lifetime. The
// returned map is shared; callers must not modify it.
func (p *Platform) Grouped() map[string][]string {
	if p.grouped != nil {
		return p.grouped
	}
	res := make(map[string][]string)
	for _, inc := range p.IncludedPlatforms() {
		for kind, types := range inc.Grouped() {
			res[kind] = append(res[kind], types...)
		}
	}
	for _, per := range p.Own {
		res[per.Kind] = append(res[per.Kind], per.Type)
	}
	p.grouped = res
	return res
}

// Deduplicated returns one Peripheral per (kind, type) across the transitive
// include closure, with Count summed over every path that reaches it. A
// platform included along two edges contributes twice. Included platforms
// contribute first, in include order, followed by own declarations.
//
// Deduplicated is recomputed on every call and returns fresh values; it never
// caches and never mutates registry state.
func (p *Platform) Deduplicated() []Peripheral {
	var res []Peripheral
	index := make(map[peripheralKey]int)
	add := func(per Peripheral) {
		if i, ok := index[per.key()]; ok {
			res[i].Count += per.Count
			return
		}
		index[per.key()] = len(res)
		res = append(res, per)
	}
	for _, inc := range p.IncludedPlatforms() {
		for _, per := range inc.Deduplicated() {
			add(per)
		}
	}
	for _, per := range p.Own {
		add(per)
	}
	return res
}
