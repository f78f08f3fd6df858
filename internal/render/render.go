// Package render turns a scanned platform registry into output documents.
package render

import (
	"io"

	"periscope/internal/platform"
)

// Renderer is implemented by every output format.
type Renderer interface {
	// Name returns the format's canonical short identifier (e.g. "json").
	Name() string

	// Render writes the document for every platform in reg to w.
	Render(w io.Writer, reg *platform.Registry) error
}

// Formats is the registry of available output formats, keyed by Name.
var Formats = map[string]Renderer{
	"json": JSON{},
	"yaml": YAML{},
	"html": HTML{},
}

// Order is the order in which formats are emitted when several are selected.
var Order = []string{"json", "yaml", "html"}

// ---------------------------------------------------------------------------
// Records
// ---------------------------------------------------------------------------

// PeripheralRecord is the serialised form of a peripheral. Field order is
// alphabetical so documents have stable key ordering.
type PeripheralRecord struct {
	Count int    `json:"count" yaml:"count"`
	Kind  string `json:"kind" yaml:"kind"`
	Type  string `json:"type" yaml:"type"`
	URI   string `json:"uri,omitempty" yaml:"uri,omitempty"`
}

// PlatformRecord is the serialised form of a platform. Includes are embedded
// as full records. Aggregation caches are never serialised.
type PlatformRecord struct {
	Category       string             `json:"category" yaml:"category"`
	Includes       []PlatformRecord   `json:"includes" yaml:"includes"`
	Name           string             `json:"name" yaml:"name"`
	OwnPeripherals []PeripheralRecord `json:"ownPeripherals" yaml:"ownPeripherals"`
	Path           string             `json:"path" yaml:"path"`
}

// NewPlatformRecord builds the record for p, recursing through its includes.
func NewPlatformRecord(p *platform.Platform) PlatformRecord {
	rec := PlatformRecord{
		Category:       p.Category,
		Includes:       make([]PlatformRecord, 0, len(p.Includes)),
		Name:           p.Name,
		OwnPeripherals: make([]PeripheralRecord, 0, len(p.Own)),
		Path:           p.Path,
	}
	for _, inc := range p.IncludedPlatforms() {
		rec.Includes = append(rec.Includes, NewPlatformRecord(inc))
	}
	for _, per := range p.Own {
		rec.OwnPeripherals = append(rec.OwnPeripherals, newPeripheralRecord(per))
	}
	return rec
}

func newPeripheralRecord(p platform.Peripheral) PeripheralRecord {
	return PeripheralRecord{Count: p.Count, Kind: p.Kind, Type: p.Type, URI: p.URI}
}

// Records returns one record per platform in registry order.
func Records(reg *platform.Registry) []PlatformRecord {
	platforms := reg.Platforms()
	out := make([]PlatformRecord, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, NewPlatformRecord(p))
	}
	return out
}
