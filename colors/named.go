package colors

import (
	"fmt"
	"image/color"

	"golang.org/x/image/colornames"
)

// rebeccapurple is the one CSS Color Module Level 4 keyword missing from
// the SVG 1.1 table.
var rebeccapurple = color.RGBA{0x66, 0x33, 0x99, 0xff}

// named maps lower-case colour keywords to "#rrggbb".
var named = func() map[string]string {
	m := make(map[string]string, len(colornames.Map)+1)
	for name, c := range colornames.Map {
		m[name] = hexOf(c)
	}
	m["rebeccapurple"] = hexOf(rebeccapurple)
	return m
}()

func hexOf(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
