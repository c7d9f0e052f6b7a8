// Package figure describes plots declaratively and renders them through a
// plyght.Session in the order the server expects.
//
// Invariants:
// - A figure renders as exactly one frame.
// - Within a subplot, style and label precede their series, colorbar
//   precedes the image, ranges follow the data and the legend comes last.
// - Figures are validated before any token is sent.
//
// Usage:
//
//	fig, _ := figure.Load("sine.toml")
//	s := plyght.New(plyght.DefaultConfig())
//	defer s.Close()
//	_ = figure.Render(s, fig)
package figure
