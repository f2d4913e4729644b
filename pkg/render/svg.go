package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// Layout selects the Graphviz layout engine.
type Layout string

// Supported layout engines.
const (
	LayoutDot   Layout = "dot"   // hierarchical, good for small crawls
	LayoutSfdp  Layout = "sfdp"  // force-directed, scales to large crawls
	LayoutCirco Layout = "circo" // circular
)

// ParseLayout validates a layout name. An empty name selects [LayoutDot].
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(s); l {
	case "":
		return LayoutDot, nil
	case LayoutDot, LayoutSfdp, LayoutCirco:
		return l, nil
	default:
		return "", fmt.Errorf("unknown layout %q (want dot, sfdp or circo)", s)
	}
}

// RenderSVG renders a DOT graph to SVG with the given layout engine.
func RenderSVG(ctx context.Context, dot string, layout Layout) ([]byte, error) {
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

	if layout != "" {
		gv.SetLayout(graphviz.Layout(layout))
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz <svg> header, which uses pt units
// and a transform-heavy viewBox, with a plain pixel-sized one.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
