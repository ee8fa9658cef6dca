// Package clipboard copies published URLs to the system clipboard.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("clipboard: unsupported on this system")

// Writer puts text on a clipboard.
type Writer interface {
	WriteText(text string) error
}

// System writes to the OS clipboard (pbcopy, xclip/xsel/wl-copy, or the Windows API).
type System struct{}

// WriteText implements Writer.
func (System) WriteText(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(text)
}

// Nop discards everything; used when the clipboard is disabled in config.
type Nop struct{}

// WriteText implements Writer.
func (Nop) WriteText(string) error { return nil }

// New returns the system clipboard when enabled, otherwise Nop.
func New(enabled bool) Writer {
	if enabled {
		return System{}
	}
	return Nop{}
}
