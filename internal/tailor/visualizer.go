package tailor

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/born-ml/tailor/internal/naming"
)

// Format selects how records are rendered.
type Format string

// Supported formats.
const (
	FormatTable   Format = "table"
	FormatDOT     Format = "dot"
	FormatMermaid Format = "mermaid"
	FormatJSON    Format = "json"
)

// ParseFormat returns the Format named s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatDOT, FormatMermaid, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("tailor: unknown format %q", s)
	}
}

// Visualizer renders records.
type Visualizer struct {
	tl *Tailor
}

// NewVisualizer creates a visualizer for the model held by tl.
func NewVisualizer(tl *Tailor) *Visualizer {
	return &Visualizer{tl: tl}
}

// Plot interprets the model with every node kept and renders the records.
func (v *Visualizer) Plot(w io.Writer, inputShape []int, format Format) error {
	records, err := v.tl.Interpret(inputShape, false)
	if err != nil {
		return err
	}
	return v.Render(w, records, format)
}

// Render writes records to w in the given format. Tables end with the
// total parameter count of the model.
func (v *Visualizer) Render(w io.Writer, records []Record, format Format) error {
	if err := Render(w, records, format); err != nil {
		return err
	}
	if format != FormatTable {
		return nil
	}
	_, err := fmt.Fprintf(w, "total parameters: %d\n", naming.CountParameters(v.tl.Model()))
	return err
}

// Render writes records to w in the given format.
func Render(w io.Writer, records []Record, format Format) error {
	switch format {
	case FormatTable:
		return renderTable(w, records)
	case FormatDOT:
		return renderDOT(w, records)
	case FormatMermaid:
		return renderMermaid(w, records)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if records == nil {
			records = []Record{}
		}
		return enc.Encode(records)
	default:
		return fmt.Errorf("tailor: unknown format %q", format)
	}
}

func renderTable(w io.Writer, records []Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPARAMS\tTRAINABLE\tDTYPE\tSHAPE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%d\t%t\t%s\t%s\n", r.Name, r.NumParams, r.Trainable, r.DType(), r.ShapeString())
	}
	return tw.Flush()
}

// Records follow execution order, so each one is drawn as feeding the next.
func renderDOT(w io.Writer, records []Record) error {
	var b strings.Builder
	b.WriteString("digraph model {\n")
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [shape=box, fontname=\"monospace\"];\n")
	for i, r := range records {
		label := strings.ReplaceAll(nodeLabel(r, `\n`), `"`, `\"`)
		fmt.Fprintf(&b, "  n%d [label=\"%s\"];\n", i, label)
	}
	for i := 1; i < len(records); i++ {
		fmt.Fprintf(&b, "  n%d -> n%d;\n", i-1, i)
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func renderMermaid(w io.Writer, records []Record) error {
	var b strings.Builder
	b.WriteString("flowchart TB\n")
	for i, r := range records {
		label := strings.ReplaceAll(nodeLabel(r, "<br/>"), `"`, "#quot;")
		fmt.Fprintf(&b, "    n%d[\"%s\"]\n", i, label)
	}
	for i := 1; i < len(records); i++ {
		fmt.Fprintf(&b, "    n%d --> n%d\n", i-1, i)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func nodeLabel(r Record, sep string) string {
	parts := []string{r.Name, r.DType() + " " + r.ShapeString()}
	if r.NumParams > 0 {
		params := fmt.Sprintf("%d params", r.NumParams)
		if !r.Trainable {
			params += " (frozen)"
		}
		parts = append(parts, params)
	}
	return strings.Join(parts, sep)
}
