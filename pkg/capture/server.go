package capture

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/harun/plyght/internal/observability"
	"github.com/harun/plyght/pkg/plyght"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxLineSize bounds a single token line; the reference server reads in
// 1MB chunks.
const maxLineSize = 1 << 20

// ErrTimeout is returned by WaitForLines and WaitForFrames.
var ErrTimeout = errors.New("capture: timed out waiting for tokens")

// Config holds capture server settings.
type Config struct {
	// Address to listen on. Use "127.0.0.1:0" for an ephemeral port.
	Address string
	// OnLine is called for every received line, in the order Lines reports.
	// Callbacks run one at a time.
	OnLine func(line string)
	// OnFrame is called with each complete frame, StartIBuf through EndIBuf.
	OnFrame func(frame []string)
	Logger  *zerolog.Logger
}

// Server records every token line it receives.
type Server struct {
	listener net.Listener
	onLine   func(string)
	onFrame  func([]string)
	logger   zerolog.Logger

	mu          sync.Mutex
	lines       []string
	pending     []string
	frames      [][]string
	connections int
	conns       map[net.Conn]struct{}
	closed      bool
	notify      chan struct{}

	// callbacks is taken before mu is released so callbacks fire in
	// recorded order.
	callbacks sync.Mutex

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Listen binds the address and starts accepting connections.
func Listen(cfg Config) (*Server, error) {
	if cfg.Address == "" {
		cfg.Address = plyght.DefaultAddress
	}

	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Address, err)
	}

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	observability.EnsureRegistered()

	s := &Server{
		listener: ln,
		onLine:   cfg.OnLine,
		onFrame:  cfg.OnFrame,
		logger:   logger.With().Str("component", "capture").Logger(),
		conns:    make(map[net.Conn]struct{}),
		notify:   make(chan struct{}),
	}

	s.wg.Add(1)
	go s.acceptLoop()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Capture server listening")
	return s, nil
}

// Addr returns the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Close stops accepting, drops open connections and waits for readers.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.listener.Close()

		s.mu.Lock()
		s.closed = true
		for conn := range s.conns {
			_ = conn.Close()
		}
		s.mu.Unlock()

		s.wg.Wait()
		s.logger.Info().Msg("Capture server stopped")
	})
	return err
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error().Err(err).Msg("Accept failed")
			return
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			return
		}
		s.connections++
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		s.logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("Client connected")

		go s.readLoop(conn)
	}
}

func (s *Server) readLoop(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		s.record(scanner.Text())
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn().Err(err).Msg("Client stream ended with error")
	}
}

func (s *Server) record(line string) {
	var frame []string

	s.mu.Lock()
	s.lines = append(s.lines, line)
	s.pending = append(s.pending, line)
	if line == plyght.Bare(plyght.KeyEndFrame).String() {
		frame = s.cutFrame()
	}
	close(s.notify)
	s.notify = make(chan struct{})
	s.callbacks.Lock()
	s.mu.Unlock()
	defer s.callbacks.Unlock()

	observability.RecordCapturedLine()
	if s.onLine != nil {
		s.onLine(line)
	}
	if frame != nil {
		observability.RecordCapturedFrame()
		if s.onFrame != nil {
			s.onFrame(frame)
		}
	}
}

// cutFrame consumes pending lines up to the EndIBuf just appended. Lines
// before the first StartIBuf are discarded. Caller holds s.mu.
func (s *Server) cutFrame() []string {
	buf := s.pending
	s.pending = nil

	start := plyght.Bare(plyght.KeyStartFrame).String()
	for i, line := range buf {
		if line == start {
			frame := append([]string(nil), buf[i:]...)
			s.frames = append(s.frames, frame)
			return frame
		}
	}
	s.logger.Warn().Int("lines", len(buf)).Msg("Frame end without start, dropping")
	return nil
}

// Lines returns a copy of every line received so far.
func (s *Server) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// Frames returns a copy of every complete frame received so far.
func (s *Server) Frames() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.frames))
	for i, f := range s.frames {
		out[i] = append([]string(nil), f...)
	}
	return out
}

// Connections returns how many clients have connected.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connections
}

// WaitForLines blocks until at least n lines arrived or timeout elapses.
func (s *Server) WaitForLines(n int, timeout time.Duration) ([]string, error) {
	err := s.waitFor(timeout, func() bool { return len(s.lines) >= n })
	lines := s.Lines()
	if err != nil {
		return lines, fmt.Errorf("%w: have %d of %d lines", err, len(lines), n)
	}
	return lines, nil
}

// WaitForFrames blocks until at least n frames completed or timeout elapses.
func (s *Server) WaitForFrames(n int, timeout time.Duration) ([][]string, error) {
	err := s.waitFor(timeout, func() bool { return len(s.frames) >= n })
	frames := s.Frames()
	if err != nil {
		return frames, fmt.Errorf("%w: have %d of %d frames", err, len(frames), n)
	}
	return frames, nil
}

func (s *Server) waitFor(timeout time.Duration, done func() bool) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		s.mu.Lock()
		if done() {
			s.mu.Unlock()
			return nil
		}
		ch := s.notify
		s.mu.Unlock()

		select {
		case <-ch:
		case <-timer.C:
			return ErrTimeout
		}
	}
}
