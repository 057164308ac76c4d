// Package input decodes control commands for flip-dot applications from
// a byte stream.
//
// The stream is typically a serial console or a local terminal in
// cbreak mode (see Terminal). WASD keys, a handful of control keys and
// ANSI arrow-key escape sequences map onto the Command set; everything
// else is ignored.
package input

import (
	"bufio"
	"io"
)

// Command is one decoded control input.
type Command int

const (
	None Command = iota
	Up
	Down
	Left
	Right
	Select
	Back
	Start
	Pause
	Reset
)

func (c Command) String() string {
	switch c {
	case None:
		return "none"
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case Select:
		return "select"
	case Back:
		return "back"
	case Start:
		return "start"
	case Pause:
		return "pause"
	case Reset:
		return "reset"
	}
	return "unknown"
}

// FromChar maps a single key to its command. Unmapped keys decode to
// None.
func FromChar(c byte) Command {
	switch c {
	case 'w', 'W':
		return Up
	case 's', 'S':
		return Down
	case 'a', 'A':
		return Left
	case 'd', 'D':
		return Right
	case ' ':
		return Select
	case 'b', 'B':
		return Back
	case 'p', 'P':
		return Pause
	case 'r', 'R':
		return Reset
	}
	return None
}

// Decoder turns a raw byte stream into commands.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder wraps the given stream.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next blocks until the stream yields a recognized command and returns
// it. Unmapped bytes and unknown escape sequences are skipped. The only
// errors are the reader's own, typically io.EOF when the stream closes.
func (d *Decoder) Next() (Command, error) {
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return None, err
		}

		if b != 0x1b {
			if cmd := FromChar(b); cmd != None {
				return cmd, nil
			}
			continue
		}

		// ANSI arrow sequence: ESC [ A..D.
		b, err = d.r.ReadByte()
		if err != nil {
			return None, err
		}
		if b != '[' {
			// Not a CSI sequence; reconsider the byte on its own.
			if err := d.r.UnreadByte(); err != nil {
				return None, err
			}
			continue
		}
		b, err = d.r.ReadByte()
		if err != nil {
			return None, err
		}
		switch b {
		case 'A':
			return Up, nil
		case 'B':
			return Down, nil
		case 'C':
			return Right, nil
		case 'D':
			return Left, nil
		}
	}
}
