package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/annel0/tileworld/internal/render"
)

// Glyph символ и стиль, которым скин выводится в терминал
type Glyph struct {
	Rune  rune
	Style tcell.Style
	// Overlay сохраняет символ под объектом и меняет только стиль
	Overlay bool
}

// Glyphs таблица скин -> символ
type Glyphs map[render.SkinID]Glyph

// DefaultGlyphs символы встроенных тайлов, сапера, курсора и игрока
func DefaultGlyphs() Glyphs {
	wall := tcell.StyleDefault.Foreground(tcell.ColorGray)
	g := Glyphs{
		"tile-block":        {Rune: '█', Style: wall},
		"tile-top":          {Rune: '▀', Style: wall},
		"tile-bottom":       {Rune: '▄', Style: wall},
		"tile-left":         {Rune: '▌', Style: wall},
		"tile-right":        {Rune: '▐', Style: wall},
		"tile-top-left":     {Rune: '▛', Style: wall},
		"tile-top-right":    {Rune: '▜', Style: wall},
		"tile-bottom-left":  {Rune: '▙', Style: wall},
		"tile-bottom-right": {Rune: '▟', Style: wall},

		"tile-ms-unopened": {Rune: '■', Style: tcell.StyleDefault.Foreground(tcell.ColorSilver)},
		"tile-ms-flag":     {Rune: '⚑', Style: tcell.StyleDefault.Foreground(tcell.ColorRed)},
		"tile-ms-mine":     {Rune: '*', Style: tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)},
		"tile-ms-0":        {Rune: '·', Style: tcell.StyleDefault.Foreground(tcell.ColorGray)},

		"player": {Rune: '@', Style: tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)},
		"cursor": {Style: tcell.StyleDefault.Reverse(true), Overlay: true},

		render.DefaultErrorSkin: {Rune: '?', Style: tcell.StyleDefault.Foreground(tcell.ColorFuchsia)},
	}
	counts := []tcell.Color{
		tcell.ColorBlue, tcell.ColorGreen, tcell.ColorRed, tcell.ColorNavy,
		tcell.ColorMaroon, tcell.ColorTeal, tcell.ColorWhite, tcell.ColorGray,
	}
	for n := 1; n <= 8; n++ {
		g[render.SkinID(fmt.Sprintf("tile-ms-%d", n))] = Glyph{
			Rune:  rune('0' + n),
			Style: tcell.StyleDefault.Foreground(counts[n-1]),
		}
	}
	return g
}

// lookup символ скина; неизвестные скины рисуются скином ошибки
// found=false, если скин подменен.
func (g Glyphs) lookup(skin render.SkinID) (gl Glyph, found bool) {
	if gl, ok := g[skin]; ok {
		return gl, true
	}
	if gl, ok := g[render.DefaultErrorSkin]; ok {
		return gl, false
	}
	return Glyph{Rune: '?', Style: tcell.StyleDefault}, false
}
