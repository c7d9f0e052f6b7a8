package plyght

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/harun/plyght/internal/observability"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultAddress is where the Plyght server listens.
const DefaultAddress = "127.0.0.1:41410"

// Dialer opens the transport. *net.Dialer satisfies it.
type Dialer interface {
	Dial(network, address string) (net.Conn, error)
}

// Config holds session settings. Zero values fall back to defaults.
type Config struct {
	Address string
	Dialer  Dialer
	Logger  *zerolog.Logger
}

// DefaultConfig returns a config targeting the local Plyght server.
func DefaultConfig() Config {
	return Config{
		Address: DefaultAddress,
		Dialer:  &net.Dialer{},
	}
}

// Session owns one lazily opened connection to a Plyght server.
//
// Commands never return errors: if the connection cannot be established or
// breaks, the session records the failure and every later command does
// nothing. Use Init, OK and Err to observe that state.
//
// The zero value dials DefaultAddress and does not log.
type Session struct {
	id      string
	address string
	dialer  Dialer
	logger  zerolog.Logger

	initialized bool
	failed      bool
	err         error
	conn        net.Conn
}

// New creates an unconnected session. No I/O happens until Init or the
// first command.
func New(cfg Config) *Session {
	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &net.Dialer{}
	}

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	id, err := gonanoid.New()
	if err != nil {
		id = "unknown"
	}

	observability.EnsureRegistered()

	return &Session{
		id:      id,
		address: cfg.Address,
		dialer:  cfg.Dialer,
		logger:  logger.With().Str("session_id", id).Str("address", cfg.Address).Logger(),
	}
}

// ID returns the identifier used in this session's log lines.
func (s *Session) ID() string {
	return s.id
}

// Address returns the server address the session dials.
func (s *Session) Address() string {
	return s.address
}

// Init connects on first call and reports the outcome. Later calls return
// the same outcome without touching the network.
func (s *Session) Init() error {
	if s.initialized {
		return s.err
	}
	s.initialized = true

	dialer := s.dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	if s.address == "" {
		s.address = DefaultAddress
	}

	conn, err := dialer.Dial("tcp", s.address)
	if err != nil {
		s.failed = true
		if isResourceExhausted(err) {
			s.err = fmt.Errorf("%w: %w", ErrTransport, err)
			observability.RecordConnectAttempt("transport")
			s.logger.Error().Err(err).Msg("Unable to create socket")
			return s.err
		}
		s.err = fmt.Errorf("%w: %w", ErrConnect, err)
		observability.RecordConnectAttempt("connect")
		s.logger.Warn().Err(err).Msg("Is the plyght server running?")
		return s.err
	}

	s.conn = conn
	observability.RecordConnectAttempt("ok")
	s.logger.Debug().Msg("Connected to plyght server")
	return nil
}

// OK reports whether the session is usable, connecting first if needed.
func (s *Session) OK() bool {
	return s.Init() == nil
}

// Failed reports whether a connect or write failure disabled the session.
// It does not trigger a connection attempt.
func (s *Session) Failed() bool {
	return s.failed
}

// Err returns the failure that disabled the session, if any.
func (s *Session) Err() error {
	return s.err
}

// Close releases the transport and returns the session to its initial
// state, so a later command connects again. Closing a session that never
// connected, or whose connection failed, only resets it.
func (s *Session) Close() error {
	var err error
	if s.conn != nil {
		err = s.conn.Close()
		s.conn = nil
		observability.RecordTransportReleased()
		s.logger.Debug().Msg("Closed plyght connection")
	}
	s.initialized = false
	s.failed = false
	s.err = nil
	return err
}

// send writes one token. A write error disables the session.
func (s *Session) send(tok Token) {
	if s.failed {
		return
	}
	b := tok.Bytes()
	if _, err := s.conn.Write(b); err != nil {
		s.fail(err)
		return
	}
	observability.RecordTokenSent(tok.Keyword, len(b))
}

func (s *Session) fail(err error) {
	s.failed = true
	s.err = fmt.Errorf("%w: %w", ErrWrite, err)
	observability.RecordWriteError()
	s.logger.Warn().Err(err).Msg("Plyght connection lost, dropping further commands")

	if s.conn != nil {
		if cerr := s.conn.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			s.logger.Debug().Err(cerr).Msg("Error closing broken connection")
		}
		s.conn = nil
		observability.RecordTransportReleased()
	}
}

func (s *Session) emit(tok Token) *Session {
	if !s.OK() {
		return s
	}
	s.send(tok)
	return s
}

// StartFrame begins a frame holding one or more subplots.
func (s *Session) StartFrame() *Session {
	return s.emit(Bare(KeyStartFrame))
}

// EndFrame closes the frame; the server renders what it accumulated.
func (s *Session) EndFrame() *Session {
	return s.emit(Bare(KeyEndFrame))
}

// Frame brackets fn between StartFrame and EndFrame.
func (s *Session) Frame(fn func(*Session)) *Session {
	s.StartFrame()
	if fn != nil {
		fn(s)
	}
	return s.EndFrame()
}

// Plot opens a new subplot in the current frame.
func (s *Session) Plot() *Session {
	return s.emit(Bare(KeyNew2D))
}

// PlotType sets the axis kind of the current subplot (linlin, semilogx,
// semilogy, loglog).
func (s *Session) PlotType(kind string) *Session {
	return s.emit(Text(KeyPlotType, kind))
}

// LineStyle sets the matplotlib-style format string for the next series.
func (s *Session) LineStyle(style string) *Session {
	return s.emit(Text(KeyLineStyle, style))
}

// LineLabel sets the legend label for the next series.
func (s *Session) LineLabel(label string) *Session {
	return s.emit(Text(KeyLabel, label))
}

// Line sends one series of min(len(xs), len(ys)) points.
func (s *Session) Line(xs, ys []float64) *Session {
	return s.LineN(xs, ys, 0)
}

// LineN sends the first n points of xs and ys. n <= 0, or n beyond the
// shorter slice, means min(len(xs), len(ys)).
func (s *Session) LineN(xs, ys []float64, n int) *Session {
	if !s.OK() {
		return s
	}
	limit := min(len(xs), len(ys))
	if n <= 0 || n > limit {
		n = limit
	}

	s.send(Bare(KeyStartPts))
	for i := 0; i < n && !s.failed; i++ {
		s.send(Pair(KeyPoint, xs[i], ys[i]))
	}
	s.send(Bare(KeyEndPts))
	return s
}

// Title sets the subplot title.
func (s *Session) Title(text string) *Session {
	return s.emit(Text(KeyTitle, text))
}

// SupTitle sets the title of the whole figure.
func (s *Session) SupTitle(text string) *Session {
	return s.emit(Text(KeySupTitle, text))
}

// XLabel sets the x axis title.
func (s *Session) XLabel(text string) *Session {
	return s.emit(Text(KeyXTitle, text))
}

// YLabel sets the y axis title.
func (s *Session) YLabel(text string) *Session {
	return s.emit(Text(KeyYTitle, text))
}

// Legend draws the legend. An empty location lets the server pick. It must
// be the last command for a subplot.
func (s *Session) Legend(location string) *Session {
	return s.emit(Text(KeyLegend, location))
}

// Print asks the server to save the figure to file. dpi <= 0 keeps the
// server default.
func (s *Session) Print(file string, dpi int) *Session {
	if !s.OK() {
		return s
	}
	if dpi > 0 {
		s.send(Text(KeyDpi, strconv.Itoa(dpi)))
	}
	s.send(Text(KeyPrint, file))
	return s
}

// FigSize sets the figure size in inches.
func (s *Session) FigSize(width, height float64) *Session {
	return s.emit(Token{Keyword: KeyFigSize, Args: []string{FormatSize(width), FormatSize(height)}})
}

// XRange limits the x axis.
func (s *Session) XRange(lo, hi float64) *Session {
	return s.emit(Pair(KeyXRange, lo, hi))
}

// YRange limits the y axis.
func (s *Session) YRange(lo, hi float64) *Session {
	return s.emit(Pair(KeyYRange, lo, hi))
}

// Colormap selects a named colormap.
func (s *Session) Colormap(name string) *Session {
	return s.emit(Text(KeyColormap, name))
}

// Colorbar requests a colorbar for the next image.
func (s *Session) Colorbar() *Session {
	return s.emit(Bare(KeyColorbar))
}
