package input

import (
	"fmt"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// Terminal puts a terminal file (normally stdin) into cbreak mode so
// single keystrokes arrive without line buffering or local echo, and
// restores the original attributes on Close. It implements io.Reader
// and is meant to feed a Decoder.
type Terminal struct {
	f     *os.File
	saved unix.Termios
}

// NewTerminal switches f into cbreak mode.
func NewTerminal(f *os.File) (*Terminal, error) {
	t := &Terminal{f: f}
	if err := termios.Tcgetattr(f.Fd(), &t.saved); err != nil {
		return nil, fmt.Errorf("input: reading terminal attributes: %w", err)
	}

	cbreak := t.saved
	termios.Cfmakecbreak(&cbreak)
	if err := termios.Tcsetattr(f.Fd(), termios.TCIFLUSH, &cbreak); err != nil {
		return nil, fmt.Errorf("input: entering cbreak mode: %w", err)
	}
	return t, nil
}

// Read reads raw bytes from the terminal.
func (t *Terminal) Read(p []byte) (int, error) {
	return t.f.Read(p)
}

// Close restores the terminal attributes saved by NewTerminal.
func (t *Terminal) Close() error {
	if err := termios.Tcsetattr(t.f.Fd(), termios.TCIFLUSH, &t.saved); err != nil {
		return fmt.Errorf("input: restoring terminal attributes: %w", err)
	}
	return nil
}
