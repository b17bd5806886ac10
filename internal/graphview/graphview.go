// Package graphview draws a map's routing graph as a Graphviz diagram, one
// cluster per floor.
package graphview

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"wayfinder/core-go/internal/indoor"
)

// ToDOT converts the nodes and edges of m to DOT. Exits and entrances get their
// own fill colors; edges are labelled with their weight.
func ToDOT(m *indoor.Map) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", quote(m.Name))
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for _, f := range m.Floors {
		fmt.Fprintf(&buf, "  subgraph \"cluster_floor_%d\" {\n", f.Number)
		fmt.Fprintf(&buf, "    label=%s;\n", quote(floorLabel(f)))
		for _, n := range m.Nodes {
			if n.Floor != f.Number {
				continue
			}
			fmt.Fprintf(&buf, "    %s [%s];\n", quote(n.Ref.String()), strings.Join(nodeAttrs(n), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range m.Edges {
		fmt.Fprintf(&buf, "  %s -> %s [label=\"%d\"];\n", quote(e.From.String()), quote(e.To.String()), e.Weight)
	}

	buf.WriteString("}\n")
	return buf.String()
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

// quote returns s as a DOT double-quoted string. Quotes and backslashes are
// escaped and newlines become \n line breaks; any other rune is written as is.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

func floorLabel(f indoor.FloorEntry) string {
	if f.Label != "" {
		return f.Label
	}
	return fmt.Sprintf("Floor %d", f.Number)
}

func nodeAttrs(n indoor.Node) []string {
	label := n.Name
	if label == "" {
		label = n.Ref.String()
	}
	attrs := []string{"label=" + quote(label)}
	switch {
	case n.IsExit && n.IsEntrance:
		attrs = append(attrs, "fillcolor=gold")
	case n.IsExit:
		attrs = append(attrs, "fillcolor=salmon")
	case n.IsEntrance:
		attrs = append(attrs, "fillcolor=palegreen")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using the embedded Graphviz runtime.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
