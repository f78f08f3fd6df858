// Package scan discovers description files under a directory tree and loads
// them into a platform registry.
package scan

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/charmbracelet/log"

	"periscope/internal/category"
	"periscope/internal/config"
	"periscope/internal/platform"
	"periscope/internal/source"
)

// Result is the outcome of one full scan.
type Result struct {
	Registry *platform.Registry
	// Files is the number of description files discovered by the walk.
	Files int
	// Skipped counts discovered files excluded by the deny list.
	Skipped int
	// Kinds is the sorted set of peripheral kinds found.
	Kinds []string
	// Unresolved lists peripheral types with no implementation file, in
	// first-seen order.
	Unresolved []string
}

// Run performs a full scan described by cfg. Every platform is categorised
// while it is loaded; an unknown category, an include cycle or a filesystem
// error aborts the scan.
func Run(ctx context.Context, cfg config.Config, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	cats, err := category.Load(cfg.CategoriesFile)
	if err != nil {
		return nil, err
	}
	resolver := source.New(cfg.SourcesRoot(), cfg.SourceExt, cfg.SourceURI)
	reg := platform.NewRegistry(platform.Options{
		TopDir:      cfg.Dir,
		Categorizer: cats,
		Resolver:    resolver,
	})

	res := &Result{Registry: reg}
	seen := make(map[string]bool)
	reg.OnUnresolved = func(typeName string) {
		if seen[typeName] {
			return
		}
		seen[typeName] = true
		res.Unresolved = append(res.Unresolved, typeName)
		logger.Debug("no implementation found", "type", typeName, "root", resolver.Root)
	}

	root := cfg.PlatformsRoot()
	files, err := collectDescriptions(root, cfg.Pattern)
	if err != nil {
		return nil, fmt.Errorf("scan: walk %s: %w", root, err)
	}
	res.Files = len(files)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, fmt.Errorf("scan: rel path %s: %w", path, err)
		}
		if cfg.IsDenied(filepath.ToSlash(rel)) {
			res.Skipped++
			logger.Debug("skipping denied file", "path", path)
			continue
		}
		p, err := reg.Get(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded platform", "name", p.Name, "category", p.Category,
			"includes", len(p.Includes), "peripherals", len(p.Own))
	}

	res.Kinds = reg.Kinds()
	logger.Info("scan complete",
		"platforms", reg.Len(),
		"categories", len(reg.Categories()),
		"kinds", len(res.Kinds),
		"skipped", res.Skipped,
		"unresolved", len(res.Unresolved))
	return res, nil
}

// collectDescriptions walks root and returns every regular file whose base
// name matches pattern, in lexical walk order.
func collectDescriptions(root, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
