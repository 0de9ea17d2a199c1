package snapshot

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceLogic/pkg/logic"
)

// Colors shared by the PNG renderer and the editor
var (
	ColorBackground = color.NRGBA{R: 250, G: 250, B: 248, A: 255}
	ColorGrid       = color.NRGBA{R: 225, G: 225, B: 220, A: 255}
	ColorBody       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	ColorOutline    = color.NRGBA{R: 51, G: 51, B: 51, A: 255}
	ColorText       = color.NRGBA{R: 40, G: 40, B: 40, A: 255}
	ColorTap        = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	ColorSelected   = color.NRGBA{R: 21, G: 101, B: 192, A: 255}

	colorHigh    = color.NRGBA{R: 46, G: 160, B: 67, A: 255}
	colorLow     = color.NRGBA{R: 30, G: 60, B: 140, A: 255}
	colorUnknown = color.NRGBA{R: 150, G: 150, B: 150, A: 255}
)

// SignalColor is the wire colour for a signal value.
func SignalColor(s logic.Signal) color.NRGBA {
	switch s {
	case logic.High:
		return colorHigh
	case logic.Low:
		return colorLow
	}
	return colorUnknown
}

// ParseHexColor reads "#rgb" or "#rrggbb". Ok is false for anything else,
// including the empty string.
func ParseHexColor(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// OutlineColor is the component's own colour, or the default outline.
func OutlineColor(hex string) color.NRGBA {
	if c, ok := ParseHexColor(hex); ok {
		return c
	}
	return ColorOutline
}
