// Package console decodes single-character commands from the device
// console. Input is pumped onto a channel so the idle loop never blocks on
// a read.
package console

import (
	"io"

	"github.com/bft-labs/warmboot/pkg/log"
)

// Command is a single-character console command. Letters are accepted in
// either case.
type Command byte

const (
	// CmdSuspend puts the device into low-power suspend; the following
	// boot counts as a deep-sleep wake.
	CmdSuspend Command = 'S'

	// CmdClear invalidates the persistent record and dumps it, forcing a
	// cold path on the next boot.
	CmdClear Command = 'C'

	// CmdQuit stops the device loop.
	CmdQuit Command = 'Q'
)

// Reader decodes commands from an input stream.
type Reader struct {
	ch  chan Command
	log log.Logger
}

// NewReader starts pumping in and returns the reader. The command channel
// is closed when in reaches EOF.
func NewReader(in io.Reader, logger log.Logger) *Reader {
	r := &Reader{ch: make(chan Command, 8), log: logger}
	go r.pump(in)
	return r
}

func (r *Reader) pump(in io.Reader) {
	defer close(r.ch)
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n == 1 {
			b := buf[0]
			if b >= 'a' && b <= 'z' {
				b -= 'a' - 'A'
			}
			switch c := Command(b); c {
			case CmdSuspend, CmdClear, CmdQuit:
				select {
				case r.ch <- c:
				default:
					// Idle loop is behind; drop rather than block.
				}
			case '\n', '\r', '\t', ' ':
			default:
				r.log.Debug("unknown console command", log.Str("char", string(buf[:1])))
			}
		}
		if err != nil {
			return
		}
	}
}

// Commands returns the decoded command stream. The channel is closed on
// EOF.
func (r *Reader) Commands() <-chan Command {
	return r.ch
}

// Poll returns a pending command without blocking. ok is false when no
// command is waiting or the stream has ended.
func (r *Reader) Poll() (cmd Command, ok bool) {
	select {
	case cmd, ok = <-r.ch:
		return cmd, ok
	default:
		return 0, false
	}
}
