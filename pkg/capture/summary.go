package capture

import (
	"fmt"

	"github.com/harun/plyght/pkg/plyght"
)

// Summary counts what a frame asks the server to draw.
type Summary struct {
	Subplots  int
	Series    int
	Points    int
	Images    int
	Print     string
	Malformed int
}

// Summarize walks one frame's lines.
func Summarize(frame []string) Summary {
	var sum Summary
	for _, line := range frame {
		tok, err := plyght.ParseToken(line)
		if err != nil {
			sum.Malformed++
			continue
		}
		switch tok.Keyword {
		case plyght.KeyNew2D:
			sum.Subplots++
		case plyght.KeyPoint:
			sum.Points++
		case plyght.KeyEndPts:
			sum.Series++
		case plyght.KeyImShow:
			sum.Images++
		case plyght.KeyPrint:
			sum.Print = tok.Value()
		}
	}
	// Image value lists are closed by EndPts too.
	sum.Series -= sum.Images
	return sum
}

func (s Summary) String() string {
	out := fmt.Sprintf("subplots=%d series=%d points=%d images=%d", s.Subplots, s.Series, s.Points, s.Images)
	if s.Print != "" {
		out += " print=" + s.Print
	}
	if s.Malformed > 0 {
		out += fmt.Sprintf(" malformed=%d", s.Malformed)
	}
	return out
}
