package display

import (
	"io"
	"os"
)

var (
	seqCursorShow      = []byte("\x1b[?25h")
	seqAltScreenExit   = []byte("\x1b[?1049l")
	seqSGR0            = []byte("\x1b[0m")
	seqAutoWrapOn      = []byte("\x1b[?7h")
	seqMouseOff        = []byte("\x1b[?1000l\x1b[?1002l\x1b[?1003l\x1b[?1006l")
	seqBracketPasteOff = []byte("\x1b[?2004l")
)

// EmergencyReset attempts to restore terminal to sane state
// Call this from panic recovery if the screen cannot be finalized normally
func EmergencyReset(w io.Writer) {
	w.Write(seqMouseOff)
	w.Write(seqBracketPasteOff)
	w.Write(seqCursorShow)
	w.Write(seqAltScreenExit)
	w.Write(seqSGR0)
	w.Write(seqAutoWrapOn)

	if f, ok := w.(*os.File); ok {
		f.Sync()
	}

	// Escape sequences alone don't restore termios
	resetTerminalMode()
}
