package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"periscope/internal/platform"
)

// JSON renders the structured document as an indented JSON array.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Render(w io.Writer, reg *platform.Registry) error {
	data, err := json.MarshalIndent(Records(reg), "", "    ")
	if err != nil {
		return fmt.Errorf("render: json: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("render: json: %w", err)
	}
	return nil
}

// YAML renders the structured document as a YAML sequence.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Render(w io.Writer, reg *platform.Registry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Records(reg)); err != nil {
		return fmt.Errorf("render: yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("render: yaml: %w", err)
	}
	return nil
}
