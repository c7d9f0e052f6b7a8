// Package capture provides a loopback token sink that speaks the server side
// of the Plyght protocol without rendering anything.
//
// Invariants:
// - Lines are recorded in arrival order across all connections, and
//   OnLine/OnFrame see them in that same order.
// - A frame is the run of lines from the first !!StartIBuf up to !!EndIBuf;
//   an end marker with no start drops the buffered lines.
// - Close waits for every reader goroutine to exit.
//
// Usage:
//
//	srv, _ := capture.Listen(capture.Config{Address: "127.0.0.1:0"})
//	defer srv.Close()
//	s := plyght.New(plyght.Config{Address: srv.Addr()})
//	s.StartFrame().Plot().EndFrame()
//	frames, _ := srv.WaitForFrames(1, time.Second)
package capture
