// Package render turns Graphviz DOT produced by the graph stores into
// images.
//
// [RenderSVG] uses the WebAssembly build of Graphviz bundled with
// go-graphviz, so no system Graphviz installation is required:
//
//	dot := store.ToDOT()
//	svg, err := render.RenderSVG(ctx, dot, render.LayoutDot)
package render
