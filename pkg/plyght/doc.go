// Package plyght streams plotting commands to a Plyght server over loopback TCP.
//
// Invariants:
// - A Session attempts its connection at most once until it is closed.
// - Once a connect or write fails, every later command is a silent no-op.
// - Each command writes exactly one token line; Line writes len+2 lines.
// - Coordinates and ranges are formatted so that parsing them back yields the
//   same float64.
// - A Session is not safe for concurrent use; callers serialize access.
//
// Usage:
//
//	s := plyght.New(plyght.DefaultConfig())
//	defer s.Close()
//	s.StartFrame().
//		Plot().
//		LineLabel("Sine").
//		Line(xs, ys).
//		Legend("").
//		EndFrame()
package plyght
