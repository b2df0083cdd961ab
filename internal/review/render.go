package review

import (
	_ "embed"
	"html/template"
	"io"
)

//go:embed panel.html.tmpl
var panelTemplateText string

var panelTemplate = template.Must(template.New("panel").Parse(panelTemplateText))

type panelView struct {
	Marker string
	Snap   Snapshot
}

// Render writes the panel as an HTML fragment. Card text is escaped.
func (p *Panel) Render(w io.Writer) error {
	return RenderSnapshot(w, p.Snapshot())
}

// RenderSnapshot writes snap as an HTML fragment.
func RenderSnapshot(w io.Writer, snap Snapshot) error {
	return panelTemplate.Execute(w, panelView{Marker: PanelMarker, Snap: snap})
}
