package gui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Logical canvas resolution in device pixels
// Drawing coordinates are scaled from this grid onto the cells of the view area
const (
	CanvasWidth  = 128
	CanvasHeight = 64
)

// Font selects the text face
type Font uint8

const (
	FontPrimary   Font = iota // Title face, bold
	FontSecondary             // Body face
)

// Align positions text relative to an anchor point
type Align uint8

const (
	AlignLeft Align = iota
	AlignRight
	AlignTop
	AlignBottom
	AlignCenter
)

// Device palette: dark ink on amber backlight
var (
	colorInk       = tcell.NewRGBColor(0, 0, 0)
	colorBacklight = tcell.NewRGBColor(255, 130, 0)

	styleBase = tcell.StyleDefault.Foreground(colorInk).Background(colorBacklight)
)

var fontStyles = [...]tcell.Style{
	FontPrimary:   styleBase.Bold(true),
	FontSecondary: styleBase,
}

// Canvas is the drawing surface handed to a draw callback for a single redraw
// It is invalidated when the callback returns; later calls are no-ops
type Canvas struct {
	screen tcell.Screen
	x, y   int // Origin cell of the view area
	cols   int
	rows   int
	font   Font
}

// NewCanvas creates a canvas over the cell rectangle (x, y, cols, rows) of screen
func NewCanvas(screen tcell.Screen, x, y, cols, rows int) *Canvas {
	return &Canvas{
		screen: screen,
		x:      x,
		y:      y,
		cols:   cols,
		rows:   rows,
		font:   FontSecondary,
	}
}

// Width returns the logical width in device pixels
func (c *Canvas) Width() int {
	return CanvasWidth
}

// Height returns the logical height in device pixels
func (c *Canvas) Height() int {
	return CanvasHeight
}

// Clear fills the view area with the backlight color and resets the font
func (c *Canvas) Clear() {
	if c.screen == nil {
		return
	}
	c.font = FontSecondary
	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			c.screen.SetContent(c.x+col, c.y+row, ' ', nil, styleBase)
		}
	}
}

// SetFont selects the face for subsequent text
func (c *Canvas) SetFont(font Font) {
	if int(font) < len(fontStyles) {
		c.font = font
	}
}

// DrawStr draws text with its left edge at x and its baseline at y
func (c *Canvas) DrawStr(x, y int, text string) {
	if c.screen == nil {
		return
	}
	c.put(c.col(x), c.row(y), text)
}

// DrawStrAligned draws text anchored at (x, y)
// horizontal is AlignLeft, AlignCenter or AlignRight; vertical is AlignTop, AlignCenter or AlignBottom
func (c *Canvas) DrawStrAligned(x, y int, horizontal, vertical Align, text string) {
	if c.screen == nil {
		return
	}

	col := c.col(x)
	width := runewidth.StringWidth(text)
	switch horizontal {
	case AlignCenter:
		col -= width / 2
	case AlignRight:
		col -= width
	}

	// Text occupies a single row; top and bottom anchors select the row below or above
	row := c.row(y)
	switch vertical {
	case AlignTop:
		row++
	case AlignBottom:
		row--
	}

	c.put(col, row, text)
}

// col maps a logical x coordinate to a view column
func (c *Canvas) col(x int) int {
	return x * c.cols / CanvasWidth
}

// row maps a logical baseline y coordinate to a view row
func (c *Canvas) row(y int) int {
	row := y*c.rows/CanvasHeight - 1
	if row < 0 {
		row = 0
	}
	if row >= c.rows {
		row = c.rows - 1
	}
	return row
}

// put writes text starting at view cell (col, row), clipped to the view area
func (c *Canvas) put(col, row int, text string) {
	if row < 0 || row >= c.rows {
		return
	}

	style := fontStyles[c.font]
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col >= c.cols {
			return
		}
		if col >= 0 && col+w <= c.cols {
			c.screen.SetContent(c.x+col, c.y+row, r, nil, style)
		}
		col += w
	}
}

// invalidate detaches the canvas from the screen once the draw callback returned
func (c *Canvas) invalidate() {
	c.screen = nil
}
