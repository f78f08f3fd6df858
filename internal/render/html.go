package render

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"periscope/internal/platform"
)

//go:embed report.html.tmpl
var reportSource string

var reportTemplate = template.Must(template.New("report").Parse(reportSource))

// HTML renders the interactive report: a fragment meant to be inlined into a
// larger page, with one clickable group per category, one hidden panel per
// platform listing its deduplicated peripherals, and a script that keeps at
// most one panel visible.
type HTML struct{}

func (HTML) Name() string { return "html" }

type reportData struct {
	Categories []categoryGroup
	Panels     []panel
}

type categoryGroup struct {
	Name      string
	Platforms []string
}

type panel struct {
	Name string
	Rows []PeripheralRecord
}

func (HTML) Render(w io.Writer, reg *platform.Registry) error {
	var data reportData
	for _, cat := range reg.Categories() {
		g := categoryGroup{Name: cat}
		for _, p := range reg.InCategory(cat) {
			g.Platforms = append(g.Platforms, p.Name)
		}
		data.Categories = append(data.Categories, g)
	}
	for _, p := range reg.Platforms() {
		pn := panel{Name: p.Name}
		for _, per := range p.Deduplicated() {
			pn.Rows = append(pn.Rows, newPeripheralRecord(per))
		}
		data.Panels = append(data.Panels, pn)
	}
	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render: html: %w", err)
	}
	return nil
}
