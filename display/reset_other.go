//go:build !linux

package display

// resetTerminalMode is a no-op where termios ioctls are unavailable
func resetTerminalMode() {}
