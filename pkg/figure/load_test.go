package figure

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
title = "Waves"
width = 8.0
height = 4.0
output = "waves.png"
dpi = 120

[[subplot]]
type = "semilogy"
title = "Growth"
x_range = [0.0, 3.0]
legend = true
legend_location = "upper left"

[[subplot.series]]
label = "exp"
style = "--r"
x = [0.0, 1.0, 2.0]
y = [1.0, 2.718, 7.389]

[[subplot]]
colormap = "viridis"
colorbar = true

[subplot.image]
width = 2
height = 2
data = [1.0, 2.0, 3.0, 4.0]
`

const sampleYAML = `
title: Waves
subplots:
  - title: Sine
    legend: true
    series:
      - label: s
        y: [0, 1, 0, -1]
`

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("fig.TOML")
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, f)

	f, err = FormatFromPath("fig.yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = FormatFromPath("fig.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeTOML(t *testing.T) {
	fig, err := Decode(strings.NewReader(sampleTOML), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "Waves", fig.Title)
	assert.Equal(t, 8.0, fig.Width)
	assert.Equal(t, 120, fig.DPI)
	require.Len(t, fig.Subplots, 2)

	first := fig.Subplots[0]
	assert.Equal(t, "semilogy", first.Type)
	assert.Equal(t, []float64{0, 3}, first.XRange)
	assert.Equal(t, "upper left", first.LegendLocation)
	require.Len(t, first.Series, 1)
	assert.Equal(t, "--r", first.Series[0].Style)
	assert.Equal(t, []float64{1, 2.718, 7.389}, first.Series[0].Y)

	second := fig.Subplots[1]
	require.NotNil(t, second.Image)
	assert.Equal(t, 2, second.Image.Width)
	assert.True(t, second.Colorbar)
}

func TestDecodeYAML(t *testing.T) {
	fig, err := Decode(strings.NewReader(sampleYAML), FormatYAML)
	require.NoError(t, err)

	require.Len(t, fig.Subplots, 1)
	assert.Equal(t, "Sine", fig.Subplots[0].Title)
	assert.Equal(t, []float64{0, 1, 2, 3}, fig.Subplots[0].Series[0].xs())
}

func TestDecodeErrors(t *testing.T) {
	t.Run("unknown toml key", func(t *testing.T) {
		_, err := Decode(strings.NewReader("colour = \"red\"\n[[subplot]]\n"), FormatTOML)
		assert.ErrorIs(t, err, ErrInvalidFigure)
	})

	t.Run("unknown yaml key", func(t *testing.T) {
		_, err := Decode(strings.NewReader("colour: red\nsubplots: [{}]\n"), FormatYAML)
		assert.Error(t, err)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := Decode(strings.NewReader("[[subplot"), FormatTOML)
		assert.Error(t, err)
	})

	t.Run("empty yaml fails validation", func(t *testing.T) {
		_, err := Decode(strings.NewReader(""), FormatYAML)
		assert.ErrorIs(t, err, ErrInvalidFigure)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := Decode(strings.NewReader(""), Format("ini"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "fig.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleTOML), 0644))

	fig, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, fig.Subplots, 2)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}
