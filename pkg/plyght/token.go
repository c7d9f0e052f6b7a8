package plyght

import (
	"fmt"
	"strconv"
	"strings"
)

// Protocol keywords, as they appear after the "!!" prefix.
const (
	KeyStartFrame = "StartIBuf"
	KeyEndFrame   = "EndIBuf"
	KeyNew2D      = "New2D"
	KeyPlotType   = "Plot"
	KeyLineStyle  = "Line"
	KeyLabel      = "Label"
	KeyStartPts   = "StartPts"
	KeyPoint      = "Pt"
	KeyEndPts     = "EndPts"
	KeyTitle      = "Title"
	KeyXTitle     = "XTitle"
	KeyYTitle     = "YTitle"
	KeySupTitle   = "SupTitle"
	KeyLegend     = "Legend"
	KeyDpi        = "Dpi"
	KeyPrint      = "Print"
	KeyFigSize    = "FigSize"
	KeyXRange     = "XRange"
	KeyYRange     = "YRange"
	KeyColormap   = "Colormap"
	KeyColorbar   = "Colorbar"
	KeyImShow     = "ImShow"
	KeyDimension  = "Dimension"
	KeyValue      = "Value"
)

const tokenPrefix = "!!"

// Token is one protocol line. A nil Args renders without angle brackets;
// a non-nil Args renders its elements comma-separated inside them.
type Token struct {
	Keyword string
	Args    []string
}

// Bare builds a token with no argument list, e.g. !!New2D.
func Bare(keyword string) Token {
	return Token{Keyword: keyword}
}

// Text builds a token carrying one verbatim string, e.g. !!Title<text>.
// The text is not escaped: '>' ',' and newlines corrupt the stream.
func Text(keyword, text string) Token {
	return Token{Keyword: keyword, Args: []string{text}}
}

// Pair builds a token carrying two coordinate values in round-trip form.
func Pair(keyword string, a, b float64) Token {
	return Token{Keyword: keyword, Args: []string{FormatCoord(a), FormatCoord(b)}}
}

// String renders the token without its trailing newline.
func (t Token) String() string {
	if t.Args == nil {
		return tokenPrefix + t.Keyword
	}
	return tokenPrefix + t.Keyword + "<" + strings.Join(t.Args, ",") + ">"
}

// Bytes renders the newline-terminated wire form.
func (t Token) Bytes() []byte {
	return []byte(t.String() + "\n")
}

// Value joins the arguments back into the original string field.
func (t Token) Value() string {
	return strings.Join(t.Args, ",")
}

// Floats parses every argument as a float64.
func (t Token) Floats() ([]float64, error) {
	out := make([]float64, len(t.Args))
	for i, arg := range t.Args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("%s argument %d: %w", t.Keyword, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// ParseToken decodes a single line. Trailing CR/LF is ignored.
func ParseToken(line string) (Token, error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, tokenPrefix) {
		return Token{}, fmt.Errorf("%w: missing %q prefix: %q", ErrMalformedToken, tokenPrefix, line)
	}
	body := line[len(tokenPrefix):]

	open := strings.IndexByte(body, '<')
	if open < 0 {
		if body == "" || strings.ContainsAny(body, ">,") {
			return Token{}, fmt.Errorf("%w: %q", ErrMalformedToken, line)
		}
		return Token{Keyword: body}, nil
	}
	if open == 0 || !strings.HasSuffix(body, ">") {
		return Token{}, fmt.Errorf("%w: %q", ErrMalformedToken, line)
	}
	return Token{
		Keyword: body[:open],
		Args:    strings.Split(body[open+1:len(body)-1], ","),
	}, nil
}

// FormatCoord renders v in scientific notation with 16 digits after the
// point, which is enough for strconv.ParseFloat to recover v exactly.
func FormatCoord(v float64) string {
	return strconv.FormatFloat(v, 'e', 16, 64)
}

// FormatSize renders v in fixed notation with six decimals.
func FormatSize(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
