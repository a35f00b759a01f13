package render

import (
	"strconv"
	"strings"

	"github.com/wricardo/radio-car-sim/game/engine"
)

// Glyphs used by the plain text frame
const (
	GlyphBlank = ' '
	GlyphTrail = '.'
	GlyphCar   = 'C'
)

// Glyph returns the plain text character for a marker
func Glyph(m engine.Marker) rune {
	switch m {
	case engine.Trail:
		return GlyphTrail
	case engine.Car:
		return GlyphCar
	}
	return GlyphBlank
}

// Frame draws the grid as plain text. The northern row is printed first and
// every row carries its displayed (bottom counted) label:
//
//	  +-+-+-+
//	2 | | | |
//	1 | |.| |
//	0 | |C| |
//	  +-+-+-+
//	   0 1 2
func Frame(g *engine.Grid) string {
	return draw(g, func(_ Style, s string) string { return s })
}

func draw(g *engine.Grid, paint func(Style, string) string) string {
	height, width := g.Height(), g.Width()
	labelWidth := len(strconv.Itoa(max(height-1, 0)))
	pad := strings.Repeat(" ", labelWidth)

	var b strings.Builder
	border := pad + " +" + strings.Repeat("-+", width)
	b.WriteString(paint(StyleLabel, border))
	b.WriteByte('\n')

	for i, row := range g.Rows() {
		label := strconv.Itoa(engine.DisplayRow(height, i))
		b.WriteString(paint(StyleLabel, strings.Repeat(" ", labelWidth-len(label))+label+" |"))
		for _, cell := range row {
			b.WriteString(paint(markerStyle(cell), string(Glyph(cell))))
			b.WriteString(paint(StyleLabel, "|"))
		}
		b.WriteByte('\n')
	}

	b.WriteString(paint(StyleLabel, border))
	b.WriteByte('\n')

	if width > 0 {
		var footer strings.Builder
		footer.WriteString(pad + "  ")
		for col := 0; col < width; col++ {
			footer.WriteString(strconv.Itoa(col % 10))
			if col < width-1 {
				footer.WriteByte(' ')
			}
		}
		b.WriteString(paint(StyleLabel, footer.String()))
		b.WriteByte('\n')
	}
	return b.String()
}

func markerStyle(m engine.Marker) Style {
	switch m {
	case engine.Trail:
		return StyleTrail
	case engine.Car:
		return StyleCar
	}
	return StyleBlank
}
