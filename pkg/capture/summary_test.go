package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	frame := []string{
		"!!StartIBuf",
		"!!New2D",
		"!!Label<a>",
		"!!StartPts",
		"!!Pt<0,0>",
		"!!Pt<1,1>",
		"!!EndPts",
		"!!Legend<>",
		"!!New2D",
		"!!ImShow",
		"!!Dimension<1,1>",
		"!!StartPts",
		"!!Value<1>",
		"!!EndPts",
		"garbage",
		"!!Print<out.png>",
		"!!EndIBuf",
	}

	sum := Summarize(frame)
	assert.Equal(t, Summary{
		Subplots:  2,
		Series:    1,
		Points:    2,
		Images:    1,
		Print:     "out.png",
		Malformed: 1,
	}, sum)
	assert.Equal(t, "subplots=2 series=1 points=2 images=1 print=out.png malformed=1", sum.String())
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	assert.Equal(t, Summary{}, sum)
	assert.Equal(t, "subplots=0 series=0 points=0 images=0", sum.String())
}
