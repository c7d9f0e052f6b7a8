package figure

import (
	"errors"
	"fmt"
	"time"

	"github.com/harun/plyght/internal/observability"
	"github.com/harun/plyght/pkg/plyght"
	"github.com/rs/zerolog/log"
)

// ErrInvalidFigure wraps every validation failure.
var ErrInvalidFigure = errors.New("invalid figure")

// Figure is one frame: a grid of subplots plus figure-wide settings.
type Figure struct {
	Title    string    `toml:"title" yaml:"title"`
	Width    float64   `toml:"width" yaml:"width"`
	Height   float64   `toml:"height" yaml:"height"`
	Output   string    `toml:"output" yaml:"output"`
	DPI      int       `toml:"dpi" yaml:"dpi"`
	Subplots []Subplot `toml:"subplot" yaml:"subplots"`
}

// Subplot is one 2D axes area.
type Subplot struct {
	Type           string    `toml:"type" yaml:"type"` // linlin, semilogx, semilogy, loglog
	Title          string    `toml:"title" yaml:"title"`
	XLabel         string    `toml:"x_label" yaml:"x_label"`
	YLabel         string    `toml:"y_label" yaml:"y_label"`
	XRange         []float64 `toml:"x_range" yaml:"x_range"`
	YRange         []float64 `toml:"y_range" yaml:"y_range"`
	Colormap       string    `toml:"colormap" yaml:"colormap"`
	Colorbar       bool      `toml:"colorbar" yaml:"colorbar"`
	Legend         bool      `toml:"legend" yaml:"legend"`
	LegendLocation string    `toml:"legend_location" yaml:"legend_location"`
	Series         []Series  `toml:"series" yaml:"series"`
	Image          *Image    `toml:"image" yaml:"image"`
}

// Series is one line. An empty X means 0..len(Y)-1.
type Series struct {
	Label string    `toml:"label" yaml:"label"`
	Style string    `toml:"style" yaml:"style"`
	X     []float64 `toml:"x" yaml:"x"`
	Y     []float64 `toml:"y" yaml:"y"`
}

// Image is a row-major grid of values.
type Image struct {
	Width  int       `toml:"width" yaml:"width"`
	Height int       `toml:"height" yaml:"height"`
	Data   []float64 `toml:"data" yaml:"data"`
}

var plotTypes = map[string]bool{
	"":         true,
	"linlin":   true,
	"semilogx": true,
	"semilogy": true,
	"loglog":   true,
}

// Validate checks the figure can be expressed in the token stream.
func (f *Figure) Validate() error {
	if len(f.Subplots) == 0 {
		return fmt.Errorf("%w: at least one subplot is required", ErrInvalidFigure)
	}
	if f.DPI < 0 {
		return fmt.Errorf("%w: dpi must not be negative", ErrInvalidFigure)
	}
	if (f.Width == 0) != (f.Height == 0) || f.Width < 0 || f.Height < 0 {
		return fmt.Errorf("%w: width and height must both be positive or both unset", ErrInvalidFigure)
	}
	if f.DPI > 0 && f.Output == "" {
		return fmt.Errorf("%w: dpi requires an output file", ErrInvalidFigure)
	}

	for i, sp := range f.Subplots {
		if err := sp.validate(); err != nil {
			return fmt.Errorf("subplot %d: %w", i, err)
		}
	}
	return nil
}

func (sp *Subplot) validate() error {
	if !plotTypes[sp.Type] {
		return fmt.Errorf("%w: unknown plot type %q", ErrInvalidFigure, sp.Type)
	}
	if sp.XRange != nil && len(sp.XRange) != 2 {
		return fmt.Errorf("%w: x_range needs exactly two values", ErrInvalidFigure)
	}
	if sp.YRange != nil && len(sp.YRange) != 2 {
		return fmt.Errorf("%w: y_range needs exactly two values", ErrInvalidFigure)
	}
	if sp.Image != nil && len(sp.Series) > 0 {
		return fmt.Errorf("%w: a subplot holds either series or an image", ErrInvalidFigure)
	}
	if sp.LegendLocation != "" && !sp.Legend {
		return fmt.Errorf("%w: legend_location set without legend", ErrInvalidFigure)
	}

	for j, s := range sp.Series {
		if len(s.X) > 0 && len(s.X) != len(s.Y) {
			return fmt.Errorf("%w: series %d has %d x values and %d y values", ErrInvalidFigure, j, len(s.X), len(s.Y))
		}
	}

	if img := sp.Image; img != nil {
		if img.Width <= 0 || img.Height <= 0 {
			return fmt.Errorf("%w: image dimensions must be positive", ErrInvalidFigure)
		}
		if len(img.Data) != img.Width*img.Height {
			return fmt.Errorf("%w: image has %d values, want %d", ErrInvalidFigure, len(img.Data), img.Width*img.Height)
		}
	}
	return nil
}

// Render validates f and emits it as one frame. Figure-wide settings ride
// in the first subplot and the export directive closes the last one, which
// is where the server looks for them. The returned error is a validation
// error or the session's sticky failure.
func Render(s *plyght.Session, f *Figure) error {
	start := time.Now()
	err := render(s, f)
	observability.RecordFigureRender(time.Since(start), err == nil)

	if err != nil {
		log.Warn().Err(err).Str("session_id", s.ID()).Msg("Figure render failed")
		return err
	}
	log.Debug().
		Str("session_id", s.ID()).
		Int("subplots", len(f.Subplots)).
		Dur("duration", time.Since(start)).
		Msg("Figure rendered")
	return nil
}

func render(s *plyght.Session, f *Figure) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}

	s.StartFrame()
	for i := range f.Subplots {
		s.Plot()
		if i == 0 {
			if f.Title != "" {
				s.SupTitle(f.Title)
			}
			if f.Width > 0 {
				s.FigSize(f.Width, f.Height)
			}
		}
		renderSubplot(s, &f.Subplots[i])
	}
	if f.Output != "" {
		s.Print(f.Output, f.DPI)
	}
	s.EndFrame()

	return s.Err()
}

func renderSubplot(s *plyght.Session, sp *Subplot) {
	if sp.Type != "" {
		s.PlotType(sp.Type)
	}
	if sp.Title != "" {
		s.Title(sp.Title)
	}
	if sp.XLabel != "" {
		s.XLabel(sp.XLabel)
	}
	if sp.YLabel != "" {
		s.YLabel(sp.YLabel)
	}
	if sp.Colormap != "" {
		s.Colormap(sp.Colormap)
	}

	for _, series := range sp.Series {
		if series.Style != "" {
			s.LineStyle(series.Style)
		}
		if series.Label != "" {
			s.LineLabel(series.Label)
		}
		s.Line(series.xs(), series.Y)
	}

	if img := sp.Image; img != nil {
		if sp.Colorbar {
			s.Colorbar()
		}
		s.ImShow(img.Data, img.Width, img.Height)
	}

	if sp.XRange != nil {
		s.XRange(sp.XRange[0], sp.XRange[1])
	}
	if sp.YRange != nil {
		s.YRange(sp.YRange[0], sp.YRange[1])
	}
	if sp.Legend {
		s.Legend(sp.LegendLocation)
	}
}

func (s Series) xs() []float64 {
	if len(s.X) > 0 {
		return s.X
	}
	xs := make([]float64, len(s.Y))
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}
