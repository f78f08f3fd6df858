// Package category maps platform names to the coarse labels used to group
// platforms in reports. The table is exhaustive by policy: a platform with no
// entry is an error, so every new description must be categorised before it
// can be scanned.
package category

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var builtin []byte

// UnknownError is returned for a platform name missing from the table.
type UnknownError struct {
	Name string
	Path string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("category: don't know category for: %s (%s)", e.Name, e.Path)
}

// Table is a static name → category mapping.
type Table map[string]string

// Builtin returns a fresh copy of the embedded table.
func Builtin() (Table, error) {
	return Parse(builtin)
}

// Parse decodes a YAML mapping of platform name to category.
func Parse(data []byte) (Table, error) {
	t := Table{}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("category: parse table: %w", err)
	}
	return t, nil
}

// Load returns the embedded table with the entries of the YAML file at path
// layered on top. An empty path returns the embedded table unchanged.
func Load(path string) (Table, error) {
	t, err := Builtin()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("category: read %s: %w", path, err)
	}
	extra, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for name, cat := range extra {
		t[name] = cat
	}
	return t, nil
}

// Lookup returns the category for name.
func (t Table) Lookup(name string) (string, bool) {
	cat, ok := t[name]
	return cat, ok
}

// Categorize implements platform.Categorizer. path is only used to describe
// the failure.
func (t Table) Categorize(name, path string) (string, error) {
	cat, ok := t[name]
	if !ok {
		return "", &UnknownError{Name: name, Path: path}
	}
	return cat, nil
}
