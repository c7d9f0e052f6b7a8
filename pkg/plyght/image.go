package plyght

import "strconv"

// ImShow sends a width x height image stored row-major in data and sets the
// current subplot to image mode. Colorbar and Colormap must come first.
// Invalid dimensions or short data send nothing.
func (s *Session) ImShow(data []float64, width, height int) *Session {
	if !s.OK() {
		return s
	}
	if width <= 0 || height <= 0 || len(data) < width*height {
		s.logger.Warn().
			Int("width", width).
			Int("height", height).
			Int("values", len(data)).
			Msg("Skipping image with inconsistent dimensions")
		return s
	}

	s.send(Bare(KeyImShow))
	s.send(Token{Keyword: KeyDimension, Args: []string{strconv.Itoa(width), strconv.Itoa(height)}})
	s.send(Bare(KeyStartPts))
	for i := 0; i < width*height && !s.failed; i++ {
		s.send(Text(KeyValue, FormatCoord(data[i])))
	}
	s.send(Bare(KeyEndPts))
	return s
}
